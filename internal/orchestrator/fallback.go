package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"server/internal/domain"
	"server/internal/providers"
)

// FallbackRequest asks for an existing task to be re-routed to a replacement
// model. When FallbackModelID is zero the original model's configured
// fallback is used.
type FallbackRequest struct {
	OriginalTaskID  string
	OriginalPayload []byte
	FallbackModelID domain.ModelID
	ParamsOverride  map[string]any
}

// CreateFallbackTask re-parses the stored payload through the replacement
// model, dispatches it, and rewrites the original row in place: the row keeps
// its identity but task_id changes and previous_task_id records the lineage.
// No new row is ever created, and any failure leaves the original untouched.
func (o *Orchestrator) CreateFallbackTask(ctx context.Context, req FallbackRequest) (string, error) {
	payload, err := domain.ParsePayload(req.OriginalPayload)
	if err != nil {
		o.logger.Error().Err(err).Str("task_id", req.OriginalTaskID).Msg("failed to parse original payload")
		return "", fmt.Errorf("%w: original payload: %v", domain.ErrInvalidParams, err)
	}

	fallbackID := req.FallbackModelID
	override := req.ParamsOverride
	if fallbackID == 0 {
		fallbackID, override, err = o.configuredFallback(ctx, req.OriginalTaskID, override)
		if err != nil {
			return "", err
		}
	}

	model := o.catalog.Get(fallbackID)
	if model == nil {
		o.logger.Error().Int("model_id", int(fallbackID)).Msg("fallback model config not found")
		return "", domain.ErrModelNotFound
	}

	merged := payload.Merge(override)
	merged["target_model"] = int(fallbackID)

	input, err := model.ParseParams(merged)
	if err != nil {
		o.logger.Error().Err(err).Int("model_id", int(fallbackID)).Msg("failed to parse fallback params")
		if errors.Is(err, domain.ErrInvalidParams) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidParams, err)
	}

	submitter, ok := o.providers.For(model.Platform)
	if !ok {
		return "", fmt.Errorf("%w: no adapter for platform %s", domain.ErrSubmissionFailed, model.Platform)
	}
	newTaskID, err := submitter.Submit(ctx, providers.SubmitRequest{
		ModelName:   model.Name,
		Input:       input,
		CallbackURL: o.callbackURL,
		Payload:     merged,
	})
	if err != nil || newTaskID == "" {
		o.logger.Error().Err(err).Str("platform", string(model.Platform)).Msg("failed to submit fallback task")
		return "", domain.ErrSubmissionFailed
	}

	encoded, err := merged.Encode()
	if err != nil {
		return "", fmt.Errorf("%w: encode fallback payload: %v", domain.ErrSubmissionFailed, err)
	}
	rewrite := &domain.GenerationTask{
		TaskID:         newTaskID,
		PreviousTaskID: req.OriginalTaskID,
		ModelID:        fallbackID,
		ModelName:      model.Name,
		Platform:       model.Platform,
		Type:           model.Type,
		Status:         domain.TaskStatusPending,
		Payload:        encoded,
	}
	if err := o.tasks.RewriteForFallback(ctx, req.OriginalTaskID, rewrite); err != nil {
		o.logger.Error().Err(err).
			Str("original_task_id", req.OriginalTaskID).
			Str("new_task_id", newTaskID).
			Msg("failed to update original task record")
		return "", fmt.Errorf("%w: update task record: %v", domain.ErrSubmissionFailed, err)
	}

	o.logger.Info().
		Str("original_task_id", req.OriginalTaskID).
		Str("new_task_id", newTaskID).
		Int("model_id", int(fallbackID)).
		Msg("task rewritten to fallback model")
	return newTaskID, nil
}

// configuredFallback resolves the replacement declared on the original
// task's model when the caller did not name one.
func (o *Orchestrator) configuredFallback(ctx context.Context, taskID string, override map[string]any) (domain.ModelID, map[string]any, error) {
	task, err := o.tasks.GetByTaskID(ctx, taskID)
	if err != nil {
		return 0, nil, err
	}
	original := o.catalog.Get(task.ModelID)
	if original == nil || original.Fallback == nil {
		return 0, nil, fmt.Errorf("%w: model %d has no fallback configured", domain.ErrModelNotFound, task.ModelID)
	}
	if override == nil {
		override = original.Fallback.ParamsOverride
	}
	return original.Fallback.ModelID, override, nil
}
