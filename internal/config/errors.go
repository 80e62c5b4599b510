package config

import "fmt"

// ConfigurationError reports a missing or invalid setting or asset. It is
// fatal at startup: nothing is generated until it is fixed.
type ConfigurationError struct {
	Message string
	Path    string // file involved, if any
	Cause   error
}

func (e *ConfigurationError) Error() string {
	msg := "configuration error: " + e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}
