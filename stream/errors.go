package stream

import "fmt"

// A ConfigError reports a configuration that cannot be elaborated, such as a
// stream-tag field too narrow for the number of streams. It is raised while
// building and prevents the block from being instantiated.
type ConfigError struct {
	Component string
	Reason    string
}

// NewConfigError creates a ConfigError.
func NewConfigError(component, format string, args ...any) *ConfigError {
	return &ConfigError{
		Component: component,
		Reason:    fmt.Sprintf(format, args...),
	}
}

func (e *ConfigError) Error() string {
	if e.Component == "" {
		return "invalid configuration: " + e.Reason
	}

	return fmt.Sprintf("%s: invalid configuration: %s", e.Component, e.Reason)
}

// A ProtocolError reports a violation of the streaming protocol detected at
// run time, for example a stream tag outside the configured range. Blocks
// raise it with panic at the tick where it is detected.
type ProtocolError struct {
	Component string
	Reason    string
	Transfer  Transfer
}

// NewProtocolError creates a ProtocolError.
func NewProtocolError(
	component string,
	t Transfer,
	format string,
	args ...any,
) *ProtocolError {
	return &ProtocolError{
		Component: component,
		Reason:    fmt.Sprintf(format, args...),
		Transfer:  t,
	}
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: protocol violation: %s (%s)",
		e.Component, e.Reason, e.Transfer)
}
