// Package guard runs user-supplied functions so that a panic inside them is
// reported as an ordinary error instead of crashing the process.
package guard

import (
	"fmt"
	"runtime/debug"
)

// PanicError is returned by Call when the guarded function panicked.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Call invokes fn and converts a panic into a *PanicError carrying the
// goroutine stack at the point of the panic.
func Call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}
