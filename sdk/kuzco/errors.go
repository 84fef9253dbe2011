package kuzco

import "errors"

// ErrNotReady is returned for scoring calls made before Load completes or
// after Unload. The condition is retryable once Load finishes.
var ErrNotReady = errors.New("model not ready")

// ErrUnloaded is returned when the handle has been permanently unloaded.
var ErrUnloaded = errors.New("kuzco has been unloaded")

// errAlreadyClosed signals Unload that there is nothing left to do.
var errAlreadyClosed = errors.New("already unloaded")
