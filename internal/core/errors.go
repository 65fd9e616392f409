package core

import "fmt"

// InvariantError reports a violated domain invariant, such as placing an
// agent on an occupied tile or composing a joint action with a duplicate
// mover. These are programming errors in the caller, not runtime conditions
// to recover from, so they surface as panics carrying a typed value.
type InvariantError struct {
	msg string
}

func (e *InvariantError) Error() string { return e.msg }

func panicInvariant(format string, args ...any) {
	panic(&InvariantError{msg: fmt.Sprintf(format, args...)})
}
