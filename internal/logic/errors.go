package logic

import "errors"

// ErrNotRemovable is returned when a removal is requested for a signal that
// remediation cannot touch, such as the referrer.
var ErrNotRemovable = errors.New("signal is not removable")

// ErrNilEnvironment is returned when an operation is given no environment.
var ErrNilEnvironment = errors.New("environment is nil")
