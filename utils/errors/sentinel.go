package errors

import (
	"errors"
)

// Sentinel errors usable with errors.Is across layers
var (
	ErrInvalidPath         = errors.New("invalid path")
	ErrBadMenuSelection    = errors.New("bad category/tab")
	ErrNodeDisabled        = errors.New("node disabled")
	ErrUpstreamStatus      = errors.New("upstream returned non-success status")
	ErrUpstreamNotImage    = errors.New("upstream did not return an image")
	ErrForbiddenTarget     = errors.New("forbidden target")
	ErrMissingFeedMapping  = errors.New("no feed mapping")
	ErrInvalidFeedDocument = errors.New("invalid feed document")
)

// IsSecurityRejection reports whether err came from the SSRF validation pipeline.
func IsSecurityRejection(err error) bool {
	return errors.Is(err, ErrForbiddenTarget)
}

// IsUpstreamFailure reports whether err is a non-success upstream response.
func IsUpstreamFailure(err error) bool {
	return errors.Is(err, ErrUpstreamStatus) || errors.Is(err, ErrUpstreamNotImage)
}

// AsAppContextError unwraps err into an *AppContextError when one is in the chain.
func AsAppContextError(err error) (*AppContextError, bool) {
	var appErr *AppContextError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
