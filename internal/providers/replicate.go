package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const replicateBaseURL = "https://api.replicate.com/v1"

// Replicate submits predictions to replicate.com. It is the only adapter
// with a cancellation API.
type Replicate struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	logger  zerolog.Logger
}

type replicatePrediction struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

func NewReplicate(apiKey string, timeout time.Duration, logger zerolog.Logger) *Replicate {
	return &Replicate{
		client:  newRestyClient(timeout),
		baseURL: replicateBaseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

// SetBaseURL points the adapter at a different endpoint, used by tests.
func (r *Replicate) SetBaseURL(u string) { r.baseURL = u }

func (r *Replicate) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	// Model names carry an optional pinned version after a colon.
	name, version, _ := strings.Cut(req.ModelName, ":")
	body := map[string]any{
		"model":                 name,
		"input":                 req.Input,
		"webhook":               req.CallbackURL,
		"webhook_events_filter": []string{"completed"},
	}
	if version != "" {
		body["version"] = version
	}

	var out replicatePrediction
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Token "+r.apiKey).
		SetBody(body).
		SetResult(&out).
		Post(r.baseURL + "/predictions")
	if err != nil {
		return "", fmt.Errorf("replicate: submit: %w", err)
	}
	if resp.IsError() {
		return "", errUnexpectedStatus("replicate", resp)
	}
	if out.ID == "" {
		return "", fmt.Errorf("replicate: response missing prediction id")
	}
	return out.ID, nil
}

// Cancel aborts a running prediction. Best effort: the prediction may have
// already finished by the time the request lands.
func (r *Replicate) Cancel(ctx context.Context, taskID string) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Token "+r.apiKey).
		Post(r.baseURL + "/predictions/" + taskID + "/cancel")
	if err != nil {
		return fmt.Errorf("replicate: cancel %s: %w", taskID, err)
	}
	if resp.IsError() {
		return errUnexpectedStatus("replicate", resp)
	}
	return nil
}

var (
	_ Submitter = (*Replicate)(nil)
	_ Canceler  = (*Replicate)(nil)
)
