package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const lumaBaseURL = "https://api.lumalabs.ai/dream-machine/v1"

// Luma submits generations to the Dream Machine API. The modify-video model
// posts the parsed input; plain generations post the raw request params, as
// the API accepts them directly.
type Luma struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	logger  zerolog.Logger
}

type lumaGeneration struct {
	ID string `json:"id"`
}

func NewLuma(apiKey string, timeout time.Duration, logger zerolog.Logger) *Luma {
	return &Luma{
		client:  newRestyClient(timeout),
		baseURL: lumaBaseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

// SetBaseURL points the adapter at a different endpoint, used by tests.
func (l *Luma) SetBaseURL(u string) { l.baseURL = u }

func (l *Luma) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	var (
		url  string
		body map[string]any
	)
	if req.ModelName == "luma/modify-video" {
		url = l.baseURL + "/generations/video/modify"
		body = map[string]any{"callback_url": req.CallbackURL}
		for k, v := range req.Input {
			body[k] = v
		}
	} else {
		url = l.baseURL + "/generations"
		body = map[string]any{"callback_url": req.CallbackURL}
		for k, v := range req.Payload {
			body[k] = v
		}
	}

	var out lumaGeneration
	resp, err := l.client.R().
		SetContext(ctx).
		SetAuthToken(l.apiKey).
		SetBody(body).
		SetResult(&out).
		Post(url)
	if err != nil {
		return "", fmt.Errorf("luma: submit: %w", err)
	}
	if resp.IsError() {
		return "", errUnexpectedStatus("luma", resp)
	}
	if out.ID == "" {
		return "", fmt.Errorf("luma: response missing generation id")
	}
	return out.ID, nil
}

var _ Submitter = (*Luma)(nil)
