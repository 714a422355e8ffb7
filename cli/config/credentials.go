package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// DefaultAPIKeyEnv names the environment variable holding the generation
// API key.
const DefaultAPIKeyEnv = "GROQ_API_KEY"

// DefaultDotEnv is the dotenv file loaded at startup when present.
const DefaultDotEnv = ".env"

// StartupConfigError is a fatal configuration problem detected before any
// work starts.
type StartupConfigError struct {
	// Var is the offending environment variable, if any.
	Var string
	// Reason describes the problem.
	Reason string
}

func (e *StartupConfigError) Error() string {
	if e.Var != "" {
		return fmt.Sprintf("%s %s", e.Var, e.Reason)
	}
	return e.Reason
}

// LoadDotEnv loads variables from path into the process environment.
// Variables already set in the environment win. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = DefaultDotEnv
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return &StartupConfigError{Reason: fmt.Sprintf("cannot load %s: %v", path, err)}
	}
	return nil
}

// ResolveAPIKey returns the value of envName (DefaultAPIKeyEnv when empty).
// An unset or empty variable yields a *StartupConfigError.
func ResolveAPIKey(envName string) (string, error) {
	if envName == "" {
		envName = DefaultAPIKeyEnv
	}
	key := os.Getenv(envName)
	if key == "" {
		return "", &StartupConfigError{Var: envName, Reason: "is not set"}
	}
	return key, nil
}

// IsStartupConfigError reports whether err is a *StartupConfigError.
func IsStartupConfigError(err error) bool {
	var sce *StartupConfigError
	return errors.As(err, &sce)
}
