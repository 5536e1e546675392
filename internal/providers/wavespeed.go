package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const wavespeedBaseURL = "https://api.wavespeed.ai/api/v3"

// Wavespeed submits jobs to the WaveSpeed API; the webhook rides along as a
// query parameter rather than a body field.
type Wavespeed struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	logger  zerolog.Logger
}

type wavespeedResponse struct {
	Data struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
}

func NewWavespeed(apiKey string, timeout time.Duration, logger zerolog.Logger) *Wavespeed {
	return &Wavespeed{
		client:  newRestyClient(timeout),
		baseURL: wavespeedBaseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

// SetBaseURL points the adapter at a different endpoint, used by tests.
func (w *Wavespeed) SetBaseURL(u string) { w.baseURL = u }

func (w *Wavespeed) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	var out wavespeedResponse
	resp, err := w.client.R().
		SetContext(ctx).
		SetAuthToken(w.apiKey).
		SetQueryParam("webhook", req.CallbackURL).
		SetBody(req.Input).
		SetResult(&out).
		Post(w.baseURL + "/" + req.ModelName)
	if err != nil {
		return "", fmt.Errorf("wavespeed: submit: %w", err)
	}
	if resp.IsError() {
		return "", errUnexpectedStatus("wavespeed", resp)
	}
	if out.Data.ID == "" {
		return "", fmt.Errorf("wavespeed: response missing task id")
	}
	w.logger.Debug().Str("task_id", out.Data.ID).Str("status", out.Data.Status).Msg("wavespeed task submitted")
	return out.Data.ID, nil
}

var _ Submitter = (*Wavespeed)(nil)
