package calcgraph

import "fmt"

// DuplicateNameError reports an attempt to register a second node under
// a name that is already taken.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("node %q is already registered", e.Name)
}

// UnknownNodeError reports an evaluation of a name with no registered node.
type UnknownNodeError struct {
	Name string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("no node registered under %q", e.Name)
}

// InvalidCallError reports a call that the engine cannot key: named
// parameters, NaN arguments, or arguments outside the supported types.
type InvalidCallError struct {
	Name   string
	Reason string
}

func (e *InvalidCallError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid call: %s", e.Reason)
	}
	return fmt.Sprintf("invalid call to %q: %s", e.Name, e.Reason)
}

// InvalidValueError reports a value the engine refuses to store, such as
// a nil override or a nil settable value. Nil is reserved to mean
// "absent" and can never stand for a node's value.
type InvalidValueError struct {
	Name   string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for %q: %s", e.Name, e.Reason)
}

// ComputeError wraps an error raised by a node's compute function with
// the key that was being evaluated. The cause is reachable through
// errors.Is and errors.As; the engine performs no recovery beyond
// restoring the evaluation stack.
type ComputeError struct {
	Key   Key
	Cause error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("computing %s: %v", e.Key, e.Cause)
}

func (e *ComputeError) Unwrap() error {
	return e.Cause
}
