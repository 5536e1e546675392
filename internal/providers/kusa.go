package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const kusaBaseURL = "https://api.kusa.pics/api/go/b2b"

// Kusa submits tasks to the KUSA B2B API, which authenticates with an
// X-API-Key header and can fail a task synchronously inside a 200 response.
type Kusa struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	logger  zerolog.Logger
}

type kusaResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		TaskID string `json:"task_id"`
		Status string `json:"status"`
	} `json:"data"`
}

func NewKusa(apiKey string, timeout time.Duration, logger zerolog.Logger) *Kusa {
	return &Kusa{
		client:  newRestyClient(timeout),
		baseURL: kusaBaseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

// SetBaseURL points the adapter at a different endpoint, used by tests.
func (k *Kusa) SetBaseURL(u string) { k.baseURL = u }

func (k *Kusa) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	body := map[string]any{"webhook_url": req.CallbackURL}
	for key, v := range req.Input {
		body[key] = v
	}

	var out kusaResponse
	resp, err := k.client.R().
		SetContext(ctx).
		SetHeader("X-API-Key", k.apiKey).
		SetBody(body).
		SetResult(&out).
		Post(k.baseURL + "/tasks/create")
	if err != nil {
		return "", fmt.Errorf("kusa: submit: %w", err)
	}
	if resp.IsError() {
		return "", errUnexpectedStatus("kusa", resp)
	}
	if out.Code != 0 || out.Data.Status == "FAILED" {
		k.logger.Error().Int("code", out.Code).Str("message", out.Message).Msg("kusa submit rejected")
		if out.Message != "" {
			return "", fmt.Errorf("kusa: %s", out.Message)
		}
		return "", fmt.Errorf("kusa: submit failed with code %d", out.Code)
	}
	if out.Data.TaskID == "" {
		return "", fmt.Errorf("kusa: response missing task id")
	}
	return out.Data.TaskID, nil
}

var _ Submitter = (*Kusa)(nil)
