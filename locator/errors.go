// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package locator

// ErrBadRequest is returned for locators the caller can fix: malformed
// syntax, dimensions that were never consumed, misused logic
// operators, and requests for locator help.
type ErrBadRequest struct {
	Message string
}

func (err ErrBadRequest) Error() string {
	return err.Message
}

// ErrNotFound is returned when a locator that must produce an item
// produced none.  The message says whether the lookup limit ran out
// before anything matched.
type ErrNotFound struct {
	Message string
}

func (err ErrNotFound) Error() string {
	return err.Message
}

// ErrOperation reports an internal inconsistency, such as a
// single-item locator that matched several items.
type ErrOperation struct {
	Message string
}

func (err ErrOperation) Error() string {
	return err.Message
}

// ErrLocatorProcess is returned while creating or reading a locator,
// for instance when it names a dimension that is not supported in
// its context.  Finders convert this to ErrBadRequest.
type ErrLocatorProcess struct {
	Message string
}

func (err ErrLocatorProcess) Error() string {
	return err.Message
}
