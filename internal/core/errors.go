package core

import "errors"

// Failure taxonomy shared across the pipeline. Callers branch with errors.Is.
//
// ErrUnavailable means a timeout or connection failure: retryable, and after
// retries are exhausted it means "use minimal/cached data", never "does not
// exist" and never a crashed turn.
var ErrUnavailable = errors.New("upstream unavailable")

// ErrInvalid means a malformed response. Not retryable as-is; the detection
// agent answers it with one simplified-prompt retry, then the assume-process
// fallback.
var ErrInvalid = errors.New("invalid response")

// ErrNotFound means the entity does not exist. Not an error condition in
// itself; the caller decides what absence means.
var ErrNotFound = errors.New("not found")
