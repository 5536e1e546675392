package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"server/internal/catalog"
	"server/internal/domain"
	"server/internal/providers"
)

// Submit runs one logical generation request: it guards budget and quota once
// up front, then fans out num_images independent attempts through the
// create→dispatch→reconcile protocol. It succeeds when any attempt succeeds
// and returns the reconciled provider task ids.
func (o *Orchestrator) Submit(ctx context.Context, userID string, modelID domain.ModelID, params domain.Payload) ([]string, error) {
	resolvedID, model, err := catalog.Resolve(o.catalog, modelID, params)
	if err != nil {
		return nil, err
	}

	cost := model.Cost(params)
	if math.IsNaN(cost) || math.IsInf(cost, 0) || cost < 0 {
		return nil, fmt.Errorf("%w: model %d produced cost %v", domain.ErrInvalidCost, resolvedID, cost)
	}

	count := 1
	if n, ok := params.Int("num_images"); ok && n > 0 {
		count = n
	}

	// Soft reservation: in-flight cost is read-then-decide, never locked.
	// Concurrent submissions from one user can jointly overshoot; accepted.
	reserved, err := o.tasks.SumInFlightCost(ctx, userID)
	if err != nil {
		o.logger.Warn().Err(err).Str("user_id", userID).Msg("in-flight cost lookup failed, reserving nothing")
		reserved = 0
	}
	required := cost*float64(count) + reserved
	enough, err := o.credits.CanConsume(ctx, userID, required)
	if err != nil {
		return nil, fmt.Errorf("%w: credit check: %v", domain.ErrSubmissionFailed, err)
	}
	if !enough {
		return nil, domain.ErrInsufficientCredits
	}

	if model.Type == domain.TaskTypeVideo {
		allowed, err := o.quota.Allow(ctx, userID, model.Type)
		if err != nil {
			// Fail closed: an unanswerable limit check is a denial.
			o.logger.Warn().Err(err).Str("user_id", userID).Msg("generation limit check failed")
			return nil, domain.ErrRateLimitExceeded
		}
		if !allowed {
			return nil, domain.ErrRateLimitExceeded
		}
	}

	input, err := model.ParseParams(params)
	if err != nil {
		o.logger.Error().Err(err).Int("model_id", int(resolvedID)).Msg("failed to parse params")
		if errors.Is(err, domain.ErrInvalidParams) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidParams, err)
	}

	results := make([]attemptResult, count)
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			results[slot] = o.runAttempt(ctx, userID, resolvedID, model, params, input, cost)
		}(i)
	}
	wg.Wait()

	var taskIDs []string
	rateLimited := false
	for _, res := range results {
		if res.err == nil {
			taskIDs = append(taskIDs, res.taskID)
			continue
		}
		if errors.Is(res.err, domain.ErrRateLimitExceeded) {
			rateLimited = true
		}
	}
	if len(taskIDs) == 0 {
		if rateLimited {
			return nil, domain.ErrRateLimitExceeded
		}
		return nil, domain.ErrSubmissionFailed
	}
	return taskIDs, nil
}

type attemptResult struct {
	taskID string
	err    error
}

// runAttempt executes the create→dispatch→reconcile protocol for a single
// generation. Store-create strictly precedes provider dispatch: a provider
// job must never exist without a durable row.
func (o *Orchestrator) runAttempt(
	ctx context.Context,
	userID string,
	modelID domain.ModelID,
	model *domain.ModelConfig,
	params domain.Payload,
	input domain.ProviderInput,
	cost float64,
) attemptResult {
	// The parsed input may promote the attempt to a higher-tier sibling;
	// the promoted model is what gets billed and dispatched.
	effectiveID, effective := modelID, model
	if model.UpgradeToModelByInput != nil {
		if upgraded := model.UpgradeToModelByInput(input); upgraded != 0 {
			if cfg := o.catalog.Get(upgraded); cfg != nil {
				effectiveID, effective = upgraded, cfg
			}
		}
	}

	payload, err := params.Redacted().Encode()
	if err != nil {
		return attemptResult{err: fmt.Errorf("%w: encode payload: %v", domain.ErrSubmissionFailed, err)}
	}

	placeholderID := placeholderPrefix + uuid.NewString()
	task := &domain.GenerationTask{
		TaskID:    placeholderID,
		UserID:    userID,
		ModelID:   effectiveID,
		ModelName: effective.Name,
		Platform:  effective.Platform,
		Type:      effective.Type,
		Cost:      cost,
		Payload:   payload,
		Tool:      params.String("tool"),
		Status:    domain.TaskStatusPending,
	}

	outcome, err := o.tasks.CreatePlaceholder(ctx, task)
	if err != nil {
		o.logger.Error().Err(err).Str("placeholder", placeholderID).Msg("store write failed before provider call")
		return attemptResult{err: domain.ErrSubmissionFailed}
	}
	if outcome.RateLimited {
		return attemptResult{err: domain.ErrRateLimitExceeded}
	}
	if !outcome.Created {
		return attemptResult{err: domain.ErrSubmissionFailed}
	}

	submitter, ok := o.providers.For(effective.Platform)
	if !ok {
		o.deletePlaceholder(ctx, placeholderID)
		return attemptResult{err: fmt.Errorf("%w: no adapter for platform %s", domain.ErrSubmissionFailed, effective.Platform)}
	}

	providerTaskID, err := submitter.Submit(ctx, providers.SubmitRequest{
		ModelName:   effective.Name,
		Input:       input,
		CallbackURL: o.callbackURL,
		Payload:     params,
		UserID:      userID,
	})
	if err != nil || providerTaskID == "" {
		// Provider failed: remove the placeholder so the caller can retry
		// immediately with no partial state left behind.
		o.logger.Error().Err(err).Str("platform", string(effective.Platform)).Msg("provider dispatch failed")
		o.deletePlaceholder(ctx, placeholderID)
		return attemptResult{err: domain.ErrSubmissionFailed}
	}

	if err := o.reconcile(ctx, placeholderID, providerTaskID); err != nil {
		// The provider job is live but the row cannot be pointed at it.
		// Cancel the job best-effort and delete the placeholder so no
		// orphan survives on either side.
		o.logger.Error().Err(err).
			Str("placeholder", placeholderID).
			Str("provider_task_id", providerTaskID).
			Msg("failed to reconcile task id after retries")
		o.cancelProviderTask(ctx, effective.Platform, providerTaskID)
		o.deletePlaceholder(ctx, placeholderID)
		return attemptResult{err: domain.ErrSubmissionFailed}
	}

	return attemptResult{taskID: providerTaskID}
}

// reconcile swaps the placeholder id for the provider id. The row may not be
// visible to the update path immediately after creation, so a zero-row match
// is retried with a linearly growing delay.
func (o *Orchestrator) reconcile(ctx context.Context, placeholderID, providerTaskID string) error {
	var lastErr error
	for attempt := 1; attempt <= o.reconcileAttempts; attempt++ {
		matched, err := o.tasks.UpdateTaskID(ctx, placeholderID, providerTaskID)
		if err == nil && matched > 0 {
			return nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("no row matched placeholder id %s", placeholderID)
		}
		if attempt < o.reconcileAttempts {
			if err := o.sleep(ctx, o.reconcileDelay*time.Duration(attempt)); err != nil {
				return err
			}
		}
	}
	return lastErr
}

func (o *Orchestrator) deletePlaceholder(ctx context.Context, taskID string) {
	if err := o.tasks.DeleteByTaskID(ctx, taskID); err != nil {
		o.logger.Error().Err(err).Str("task_id", taskID).Msg("failed to delete placeholder row")
	}
}

// cancelProviderTask is a best-effort compensating action; platforms without
// a cancel API only get a log line.
func (o *Orchestrator) cancelProviderTask(ctx context.Context, platform domain.Platform, taskID string) {
	canceler, ok := o.providers.CancelerFor(platform)
	if !ok {
		o.logger.Warn().
			Str("platform", string(platform)).
			Str("task_id", taskID).
			Msg("cannot cancel task, platform has no cancel API")
		return
	}
	if err := canceler.Cancel(ctx, taskID); err != nil {
		o.logger.Warn().Err(err).
			Str("platform", string(platform)).
			Str("task_id", taskID).
			Msg("failed to cancel provider task")
	}
}
