package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LocalJob describes work scheduled on the in-process provider.
type LocalJob struct {
	TaskID      string
	ModelName   string
	Input       map[string]any
	CallbackURL string
	UserID      string
}

// LocalRunner executes a local job and reports its outcome to the callback
// URL the same way a remote platform would.
type LocalRunner interface {
	Run(ctx context.Context, job LocalJob) error
}

// Local is the in-process adapter: it mints its own task id and schedules the
// work asynchronously, so the submission protocol cannot tell it apart from a
// network-bound platform.
type Local struct {
	runner  LocalRunner
	logger  zerolog.Logger
	timeout time.Duration
}

func NewLocal(runner LocalRunner, timeout time.Duration, logger zerolog.Logger) *Local {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Local{runner: runner, logger: logger, timeout: timeout}
}

func (l *Local) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	if l.runner == nil {
		return "", fmt.Errorf("local: no runner configured")
	}
	taskID := uuid.NewString()
	job := LocalJob{
		TaskID:      taskID,
		ModelName:   req.ModelName,
		Input:       req.Input,
		CallbackURL: req.CallbackURL,
		UserID:      req.UserID,
	}

	// The work outlives the request; it gets its own deadline.
	go func() {
		runCtx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()
		if err := l.runner.Run(runCtx, job); err != nil {
			l.logger.Error().Err(err).Str("task_id", taskID).Msg("local generation failed")
		}
	}()

	return taskID, nil
}

var _ Submitter = (*Local)(nil)
