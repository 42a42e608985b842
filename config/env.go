package config

import (
	"os"
	"regexp"
)

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// ExpandEnvWithDefaults replaces ${VAR} and ${VAR:-default} references. An
// unset or empty VAR expands to the default, or to nothing.
func ExpandEnvWithDefaults(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(ref string) string {
		m := envPattern.FindStringSubmatch(ref)
		if v := os.Getenv(m[1]); v != "" {
			return v
		}
		return m[3]
	})
}
