// Package config loads the optional YAML settings file for billingflatfile run.
package config

import (
	"os"
	"regexp"
)

// envRef matches ${NAME} and ${NAME:-fallback}.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnv substitutes environment references in a settings document
// before it is parsed. A variable that is unset or empty takes its
// fallback, or the empty string when there is none; missing values are
// caught later by settings validation.
func ExpandEnv(input string) string {
	return envRef.ReplaceAllStringFunc(input, expandRef)
}

func expandRef(ref string) string {
	m := envRef.FindStringSubmatch(ref)
	if v := os.Getenv(m[1]); v != "" {
		return v
	}
	return m[2]
}
