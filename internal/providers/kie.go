package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const kieBaseURL = "https://api.kie.ai/api/v1"

// Kie submits jobs to the KIE AI job API. The API reports failures inside a
// 200 envelope, so the body code is checked as well as the HTTP status.
type Kie struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	logger  zerolog.Logger
}

type kieResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		TaskID string `json:"taskId"`
	} `json:"data"`
}

func NewKie(apiKey string, timeout time.Duration, logger zerolog.Logger) *Kie {
	return &Kie{
		client:  newRestyClient(timeout),
		baseURL: kieBaseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

// SetBaseURL points the adapter at a different endpoint, used by tests.
func (k *Kie) SetBaseURL(u string) { k.baseURL = u }

func (k *Kie) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	var out kieResponse
	resp, err := k.client.R().
		SetContext(ctx).
		SetAuthToken(k.apiKey).
		SetBody(map[string]any{
			"model":       req.ModelName,
			"callBackUrl": req.CallbackURL,
			"input":       req.Input,
		}).
		SetResult(&out).
		Post(k.baseURL + "/jobs/createTask")
	if err != nil {
		return "", fmt.Errorf("kie: submit: %w", err)
	}
	if resp.IsError() {
		return "", errUnexpectedStatus("kie", resp)
	}
	if out.Code != 200 || out.Data.TaskID == "" {
		k.logger.Error().Int("code", out.Code).Str("message", out.Message).Msg("kie submit rejected")
		if out.Message != "" {
			return "", fmt.Errorf("kie: %s", out.Message)
		}
		return "", fmt.Errorf("kie: submit rejected with code %d", out.Code)
	}
	return out.Data.TaskID, nil
}

var _ Submitter = (*Kie)(nil)
