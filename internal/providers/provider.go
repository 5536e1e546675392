// Package providers contains one adapter per external compute platform. Every
// adapter maps the normalized provider input into the platform's wire format
// and canonicalizes the heterogeneous responses into a task id or an error;
// the submission protocol never sees platform-specific shapes.
package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"server/internal/domain"
)

// SubmitRequest is the normalized dispatch payload handed to an adapter.
type SubmitRequest struct {
	// ModelName is the platform-specific model identifier; some platforms
	// encode a version after a colon.
	ModelName string

	// Input is the parsed, provider-ready input.
	Input domain.ProviderInput

	// CallbackURL is attached so the platform reports completion to the
	// webhook receiver.
	CallbackURL string

	// Payload carries the original request fields for platforms whose
	// submission body is built from raw params rather than parsed input.
	Payload domain.Payload

	UserID string
}

// Submitter is implemented by every platform adapter. On success exactly one
// job exists on the platform; on error none does.
type Submitter interface {
	Submit(ctx context.Context, req SubmitRequest) (taskID string, err error)
}

// Canceler is the optional cancellation capability. Platforms without a
// cancel API simply do not implement it.
type Canceler interface {
	Cancel(ctx context.Context, taskID string) error
}

// Registry maps platforms to their adapters.
type Registry map[domain.Platform]Submitter

// For returns the adapter for a platform.
func (r Registry) For(p domain.Platform) (Submitter, bool) {
	s, ok := r[p]
	return s, ok
}

// CancelerFor returns the platform's cancel capability when it has one.
func (r Registry) CancelerFor(p domain.Platform) (Canceler, bool) {
	s, ok := r[p]
	if !ok {
		return nil, false
	}
	c, ok := s.(Canceler)
	return c, ok
}

const defaultSubmitTimeout = 60 * time.Second

// newRestyClient builds the shared HTTP client used by all platform adapters.
func newRestyClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = defaultSubmitTimeout
	}
	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "generation-orchestrator/1.0")
}

// errUnexpectedStatus normalizes a non-2xx platform response.
func errUnexpectedStatus(platform string, resp *resty.Response) error {
	return fmt.Errorf("%s: unexpected status %d: %s", platform, resp.StatusCode(), resp.String())
}
