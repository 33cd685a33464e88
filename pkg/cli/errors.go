package cli

import (
	"errors"
	"fmt"

	"mercator-hq/wiretap/pkg/config"
)

// Exit codes returned by the wiretap command.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitConfigError = 2
)

// ConfigError reports an invalid or unreadable configuration.
type ConfigError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config error: " + e.Message
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError reports a command that failed while running.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewCommandError creates a CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}

// ConfigErrors converts a configuration loading error into one ConfigError
// per invalid field. Errors that are not validation errors become a single
// ConfigError without a field.
func ConfigErrors(err error) []*ConfigError {
	if err == nil {
		return nil
	}

	var verr config.ValidationError
	if errors.As(err, &verr) {
		out := make([]*ConfigError, len(verr.Errors))
		for i, fe := range verr.Errors {
			out[i] = NewConfigError(fe.Field, fe.Message)
		}
		return out
	}
	return []*ConfigError{NewConfigError("", err.Error())}
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cerr *ConfigError
	if errors.As(err, &cerr) {
		return ExitConfigError
	}
	return ExitFailure
}
