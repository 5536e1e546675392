package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const arkBaseURL = "https://ark.cn-beijing.volces.com/api/v3"

// Ark submits content generation tasks to the Volcengine Ark API.
type Ark struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	logger  zerolog.Logger
}

type arkTask struct {
	ID string `json:"id"`
}

func NewArk(apiKey string, timeout time.Duration, logger zerolog.Logger) *Ark {
	return &Ark{
		client:  newRestyClient(timeout),
		baseURL: arkBaseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

// SetBaseURL points the adapter at a different endpoint, used by tests.
func (a *Ark) SetBaseURL(u string) { a.baseURL = u }

func (a *Ark) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	var out arkTask
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(a.apiKey).
		SetBody(map[string]any{
			"model":        req.ModelName,
			"content":      req.Input["content"],
			"callback_url": req.CallbackURL,
		}).
		SetResult(&out).
		Post(a.baseURL + "/contents/generations/tasks")
	if err != nil {
		return "", fmt.Errorf("ark: submit: %w", err)
	}
	if resp.IsError() {
		return "", errUnexpectedStatus("ark", resp)
	}
	if out.ID == "" {
		return "", fmt.Errorf("ark: response missing task id")
	}
	return out.ID, nil
}

var _ Submitter = (*Ark)(nil)
