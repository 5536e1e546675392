package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const falQueueBaseURL = "https://queue.fal.run"

// Fal submits jobs to the fal.ai queue API.
type Fal struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	logger  zerolog.Logger
}

type falSubmitResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

func NewFal(apiKey string, timeout time.Duration, logger zerolog.Logger) *Fal {
	return &Fal{
		client:  newRestyClient(timeout),
		baseURL: falQueueBaseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

// SetBaseURL points the adapter at a different endpoint, used by tests.
func (f *Fal) SetBaseURL(u string) { f.baseURL = u }

func (f *Fal) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	var out falSubmitResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Key "+f.apiKey).
		SetQueryParam("fal_webhook", req.CallbackURL).
		SetBody(req.Input).
		SetResult(&out).
		Post(f.baseURL + "/" + req.ModelName)
	if err != nil {
		return "", fmt.Errorf("fal: submit: %w", err)
	}
	if resp.IsError() {
		return "", errUnexpectedStatus("fal", resp)
	}
	// The queue API acknowledges with IN_QUEUE; anything else means the
	// job was not accepted even though the status code looked fine.
	if out.Status != "IN_QUEUE" {
		f.logger.Error().Str("status", out.Status).Msg("fal submit not queued")
		return "", fmt.Errorf("fal: job not queued, status %q", out.Status)
	}
	if out.RequestID == "" {
		return "", fmt.Errorf("fal: response missing request id")
	}
	return out.RequestID, nil
}

var _ Submitter = (*Fal)(nil)
