package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	runwayBaseURL    = "https://api.dev.runwayml.com/v1"
	runwayAPIVersion = "2024-11-06"
)

// Runway submits character performance tasks to the Runway API.
type Runway struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	logger  zerolog.Logger
}

type runwayTask struct {
	ID string `json:"id"`
}

func NewRunway(apiKey string, timeout time.Duration, logger zerolog.Logger) *Runway {
	return &Runway{
		client:  newRestyClient(timeout),
		baseURL: runwayBaseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

// SetBaseURL points the adapter at a different endpoint, used by tests.
func (r *Runway) SetBaseURL(u string) { r.baseURL = u }

func (r *Runway) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	name, _, _ := strings.Cut(req.ModelName, ":")
	body := map[string]any{
		"model":                 name,
		"publicFigureThreshold": "low",
	}
	for k, v := range req.Input {
		body[k] = v
	}

	var out runwayTask
	resp, err := r.client.R().
		SetContext(ctx).
		SetAuthToken(r.apiKey).
		SetHeader("X-Runway-Version", runwayAPIVersion).
		SetBody(body).
		SetResult(&out).
		Post(r.baseURL + "/character_performance")
	if err != nil {
		return "", fmt.Errorf("runway: submit: %w", err)
	}
	if resp.IsError() {
		return "", errUnexpectedStatus("runway", resp)
	}
	if out.ID == "" {
		return "", fmt.Errorf("runway: response missing task id")
	}
	return out.ID, nil
}

var _ Submitter = (*Runway)(nil)
