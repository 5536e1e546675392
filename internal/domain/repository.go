package domain

import "context"

// CreateOutcome is the tagged result of a placeholder insert. The store's
// create function enforces a server-side rate limit by declining to return a
// row without raising an error; that case must never be conflated with a
// plain write failure, so it is surfaced as its own flag.
type CreateOutcome struct {
	Created     bool
	RateLimited bool
}

// TaskRepository defines persistence for generation tasks.
type TaskRepository interface {
	// CreatePlaceholder atomically inserts the placeholder row, applying
	// the store-side rate limit. err != nil means the write failed;
	// RateLimited means the store refused the row without an error.
	CreatePlaceholder(ctx context.Context, task *GenerationTask) (CreateOutcome, error)

	// UpdateTaskID rewrites the row's task_id and reports how many rows
	// matched; zero is a retryable miss, not success.
	UpdateTaskID(ctx context.Context, oldID, newID string) (int64, error)

	DeleteByTaskID(ctx context.Context, taskID string) error

	GetByTaskID(ctx context.Context, taskID string) (*GenerationTask, error)

	// SumInFlightCost totals the cost of the user's PENDING and PROCESSING
	// tasks for the soft budget reservation.
	SumInFlightCost(ctx context.Context, userID string) (float64, error)

	// RewriteForFallback rewrites the row identified by originalTaskID in
	// place with the fallback task's identity, preserving lineage through
	// previous_task_id. It never inserts.
	RewriteForFallback(ctx context.Context, originalTaskID string, task *GenerationTask) error
}

// CreditLedger answers whether a user can spend the given amount.
type CreditLedger interface {
	CanConsume(ctx context.Context, userID string, amount float64) (bool, error)
}

// QuotaChecker enforces per-category generation limits. Implementations that
// cannot evaluate the check must report false.
type QuotaChecker interface {
	Allow(ctx context.Context, userID string, taskType TaskType) (bool, error)
}
