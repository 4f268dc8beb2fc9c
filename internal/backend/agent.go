package backend

import (
	"fmt"

	"svcaudit/pkg/logging"
)

// TaskStatus is a wave task's lifecycle state.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// Task is one unit of work dispatched to the agent backend.
type Task struct {
	ServiceName string
	Depth       string
}

// AuditEventKind names the kind of event in a wave's observable trail.
type AuditEventKind string

const (
	EventCreate  AuditEventKind = "create"
	EventUpdate  AuditEventKind = "update"
	EventMessage AuditEventKind = "message"
)

// WaveAuditEvent is one entry in ExecuteWave's ordered audit trail. The
// trail is observable for tests but is not persisted.
type WaveAuditEvent struct {
	Kind        AuditEventKind
	ServiceName string
	Status      TaskStatus
	Message     string
}

// ExecuteWave simulates the agent backend's task lifecycle for each task:
// pending -> in_progress -> completed, emitting an ordered audit trail.
func ExecuteWave(tasks []Task) []WaveAuditEvent {
	var trail []WaveAuditEvent

	for _, task := range tasks {
		trail = append(trail, WaveAuditEvent{Kind: EventCreate, ServiceName: task.ServiceName, Status: TaskPending, Message: fmt.Sprintf("task created for %s at depth %s", task.ServiceName, task.Depth)})
		trail = append(trail, WaveAuditEvent{Kind: EventUpdate, ServiceName: task.ServiceName, Status: TaskInProgress, Message: "agent backend started task"})
		trail = append(trail, WaveAuditEvent{Kind: EventMessage, ServiceName: task.ServiceName, Status: TaskInProgress, Message: fmt.Sprintf("synthesizing %s", task.ServiceName)})
		trail = append(trail, WaveAuditEvent{Kind: EventUpdate, ServiceName: task.ServiceName, Status: TaskCompleted, Message: "agent backend finished task"})

		logging.Info("Backend", "agent wave task %s completed", task.ServiceName)
	}

	return trail
}
