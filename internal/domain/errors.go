package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrModelNotFound       = errors.New("model not found")
	ErrInvalidCost         = errors.New("invalid cost")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrRateLimitExceeded   = errors.New("rate limit exceeded")
	ErrInvalidParams       = errors.New("invalid params")
	ErrSubmissionFailed    = errors.New("failed to submit task")
	ErrProviderFailure     = errors.New("provider failure")
)
