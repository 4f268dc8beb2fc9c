package builder

import "strings"

// secretDenylist is the set of environment variable names stripped from
// every builder subprocess's environment. This is a security invariant —
// deleting or bypassing it is a P0 bug class. Both AWS key variables are
// filtered, the conservative choice over a single-key denylist.
var secretDenylist = map[string]bool{
	"ANTHROPIC_API_KEY":     true,
	"OPENAI_API_KEY":        true,
	"AWS_SECRET_ACCESS_KEY": true,
	"AWS_ACCESS_KEY_ID":     true,
}

// FilterSecretEnv returns a copy of env with every secretDenylist key
// removed, plus the names (never values) that were removed.
func FilterSecretEnv(env map[string]string) (filtered map[string]string, removedKeys []string) {
	filtered = make(map[string]string, len(env))
	for k, v := range env {
		if secretDenylist[strings.ToUpper(k)] {
			removedKeys = append(removedKeys, k)
			continue
		}
		filtered[k] = v
	}
	return filtered, removedKeys
}

// processEnvToMap converts os.Environ()-style "KEY=VALUE" strings into a map.
func processEnvToMap(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		idx := strings.IndexByte(kv, '=')
		if idx < 0 {
			continue
		}
		out[kv[:idx]] = kv[idx+1:]
	}
	return out
}

// envMapToSlice converts a map back into "KEY=VALUE" slice form for exec.Cmd.Env.
func envMapToSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}
