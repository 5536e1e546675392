// Package orchestrator implements the generation task submission protocol:
// budget guarding, create-before-dispatch placeholder rows, provider
// dispatch, id reconciliation with compensation, and the fallback
// substitution flow.
package orchestrator

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/providers"
)

const (
	// placeholderPrefix marks locally-generated task ids that have not been
	// reconciled with a provider id yet.
	placeholderPrefix = "temp-"

	defaultReconcileAttempts = 5
	defaultReconcileDelay    = 200 * time.Millisecond
)

// SleepFunc suspends between reconciliation attempts; injected so tests run
// without wall-clock delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Options configures an Orchestrator.
type Options struct {
	Catalog     domain.Catalog
	Tasks       domain.TaskRepository
	Credits     domain.CreditLedger
	Quota       domain.QuotaChecker
	Providers   providers.Registry
	CallbackURL string
	Logger      zerolog.Logger

	// ReconcileAttempts and ReconcileDelay shape the bounded retry loop
	// that swaps the placeholder id for the provider id. The delay grows
	// linearly with the attempt number.
	ReconcileAttempts int
	ReconcileDelay    time.Duration
	Sleep             SleepFunc
}

// Orchestrator coordinates one logical generation request across the durable
// store, the budget ledger, and the provider adapters.
type Orchestrator struct {
	catalog     domain.Catalog
	tasks       domain.TaskRepository
	credits     domain.CreditLedger
	quota       domain.QuotaChecker
	providers   providers.Registry
	callbackURL string
	logger      zerolog.Logger

	reconcileAttempts int
	reconcileDelay    time.Duration
	sleep             SleepFunc
}

// New wires an orchestrator from its collaborators.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		catalog:           opts.Catalog,
		tasks:             opts.Tasks,
		credits:           opts.Credits,
		quota:             opts.Quota,
		providers:         opts.Providers,
		callbackURL:       opts.CallbackURL,
		logger:            opts.Logger,
		reconcileAttempts: opts.ReconcileAttempts,
		reconcileDelay:    opts.ReconcileDelay,
		sleep:             opts.Sleep,
	}
	if o.reconcileAttempts <= 0 {
		o.reconcileAttempts = defaultReconcileAttempts
	}
	if o.reconcileDelay <= 0 {
		o.reconcileDelay = defaultReconcileDelay
	}
	if o.sleep == nil {
		o.sleep = defaultSleep
	}
	return o
}

// GetTask loads a task owned by the given user.
func (o *Orchestrator) GetTask(ctx context.Context, userID, taskID string) (*domain.GenerationTask, error) {
	task, err := o.tasks.GetByTaskID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return task, nil
}
