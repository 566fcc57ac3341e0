package mvi

import "errors"

var (
	// ErrAlreadyAttached is returned by Attach when the model is attached
	ErrAlreadyAttached = errors.New("mvi: model already attached")

	// ErrNotAttached is returned by DispatchEvent when no attachment is active
	ErrNotAttached = errors.New("mvi: model not attached")

	// ErrClosed is returned by any operation on a closed model
	ErrClosed = errors.New("mvi: model closed")

	// ErrPanic wraps a recovered panic from a reducer or mapping stage
	ErrPanic = errors.New("mvi: recovered panic")
)
