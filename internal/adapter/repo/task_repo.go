package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// TaskRepositoryPG implements domain.TaskRepository.
type TaskRepositoryPG struct {
	db infra.SQLExecutor
}

// NewTaskRepository creates a task repository backed by PostgreSQL.
func NewTaskRepository(db infra.SQLExecutor) *TaskRepositoryPG {
	return &TaskRepositoryPG{db: db}
}

// CreatePlaceholder inserts the placeholder row through the store-side
// create function, which atomically applies the per-user creation limit. The
// function returns the created task_id, or NULL without error when the
// limit rejected the row; the two cases must stay distinguishable.
func (r *TaskRepositoryPG) CreatePlaceholder(ctx context.Context, task *domain.GenerationTask) (domain.CreateOutcome, error) {
	var created *string
	err := r.db.QueryRow(ctx, sqlinline.QCreateGenerationTask,
		task.UserID,
		task.TaskID,
		task.Cost,
		task.ModelName,
		task.Platform,
		task.Type,
		task.ModelID,
		task.Payload,
		task.Tool,
	).Scan(&created)
	if err != nil {
		return domain.CreateOutcome{}, err
	}
	if created == nil {
		return domain.CreateOutcome{RateLimited: true}, nil
	}
	return domain.CreateOutcome{Created: true}, nil
}

// UpdateTaskID swaps a placeholder id for the provider-issued id and reports
// how many rows matched.
func (r *TaskRepositoryPG) UpdateTaskID(ctx context.Context, oldID, newID string) (int64, error) {
	tag, err := r.db.Exec(ctx, sqlinline.QUpdateTaskID, oldID, newID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteByTaskID removes a task row; used only as a compensating action.
func (r *TaskRepositoryPG) DeleteByTaskID(ctx context.Context, taskID string) error {
	_, err := r.db.Exec(ctx, sqlinline.QDeleteTask, taskID)
	return err
}

// GetByTaskID fetches a task by its current task_id.
func (r *TaskRepositoryPG) GetByTaskID(ctx context.Context, taskID string) (*domain.GenerationTask, error) {
	row := r.db.QueryRow(ctx, sqlinline.QSelectTask, taskID)
	var task domain.GenerationTask
	if err := row.Scan(
		&task.TaskID,
		&task.PreviousTaskID,
		&task.UserID,
		&task.ModelID,
		&task.ModelName,
		&task.Platform,
		&task.Type,
		&task.Cost,
		&task.Payload,
		&task.Tool,
		&task.Status,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// SumInFlightCost totals the cost of the user's unfinished tasks for the
// soft budget reservation.
func (r *TaskRepositoryPG) SumInFlightCost(ctx context.Context, userID string) (float64, error) {
	var total float64
	if err := r.db.QueryRow(ctx, sqlinline.QSumInFlightCost, userID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// RewriteForFallback rewrites the row identified by originalTaskID with the
// fallback task's identity, recording lineage in previous_task_id. The row
// count never changes.
func (r *TaskRepositoryPG) RewriteForFallback(ctx context.Context, originalTaskID string, task *domain.GenerationTask) error {
	tag, err := r.db.Exec(ctx, sqlinline.QRewriteTaskForFallback,
		originalTaskID,
		task.TaskID,
		task.ModelID,
		task.ModelName,
		task.Platform,
		task.Status,
		task.Payload,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.TaskRepository = (*TaskRepositoryPG)(nil)
