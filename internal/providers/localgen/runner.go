// Package localgen executes nano-canvas jobs in process: it renders a
// deterministic placeholder asset and reports completion to the webhook the
// same way a remote platform would, so the rest of the pipeline stays
// identical in local and CI environments.
package localgen

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"server/internal/providers"
)

const canvasSize = 512

// Runner renders local generations and posts their results to the callback.
type Runner struct {
	client *resty.Client
	logger zerolog.Logger
}

func NewRunner(timeout time.Duration, logger zerolog.Logger) *Runner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Runner{
		client: resty.New().SetTimeout(timeout),
		logger: logger,
	}
}

// Run renders the asset and delivers the completion callback. An undeliverable
// callback is an error; the webhook receiver is what advances task status.
func (r *Runner) Run(ctx context.Context, job providers.LocalJob) error {
	prompt, _ := job.Input["prompt"].(string)
	asset, err := renderCanvas(prompt, job.TaskID)
	if err != nil {
		return fmt.Errorf("localgen: render: %w", err)
	}

	body := map[string]any{
		"task_id": job.TaskID,
		"status":  "COMPLETED",
		"output": map[string]any{
			"images": []string{asset},
		},
	}
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(job.CallbackURL)
	if err != nil {
		return fmt.Errorf("localgen: deliver callback: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("localgen: callback returned status %d", resp.StatusCode())
	}
	r.logger.Debug().Str("task_id", job.TaskID).Msg("local generation delivered")
	return nil
}

// renderCanvas produces a deterministic solid-color PNG derived from the
// prompt and task id, returned as a data URL.
func renderCanvas(prompt, taskID string) (string, error) {
	sum := sha256.Sum256([]byte(prompt + "|" + taskID))
	fill := color.RGBA{R: sum[0], G: sum[1], B: sum[2], A: 255}

	img := image.NewRGBA(image.Rect(0, 0, canvasSize, canvasSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: fill}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

var _ providers.LocalRunner = (*Runner)(nil)
