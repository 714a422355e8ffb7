// Package config loads snapclone.yaml and resolves the generation
// credential from the environment and an optional .env file.
package config

import (
	"os"
	"regexp"
)

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// - ${VAR} expands to the env var value, or empty string if unset
// - ${VAR:-default} expands to the env var value, or "default" if unset/empty
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnv replaces ${VAR} and ${VAR:-default} patterns in the input string
// with their corresponding environment variable values.
//
// Unset variables without defaults expand to empty string (not an error).
// UnsetVars reports them so the CLI can warn.
func ExpandEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		value, _ := resolve(envVarPattern.FindStringSubmatch(match))
		return value
	})
}

// UnsetVars returns the names of ${VAR} references that expand to empty
// because the variable is unset or empty and no default is given.
// Each name appears once, in first-seen order.
func UnsetVars(input string) []string {
	var names []string
	seen := map[string]bool{}
	for _, groups := range envVarPattern.FindAllStringSubmatch(input, -1) {
		if _, ok := resolve(groups); ok || seen[groups[1]] {
			continue
		}
		seen[groups[1]] = true
		names = append(names, groups[1])
	}
	return names
}

// resolve expands one submatch. ok is false when neither the variable
// nor a default supplied a value.
func resolve(groups []string) (value string, ok bool) {
	if v, set := os.LookupEnv(groups[1]); set && v != "" {
		return v, true
	}
	if len(groups) >= 3 && groups[2] != "" {
		return groups[2], true
	}
	return "", false
}
