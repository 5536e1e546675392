package repo

import (
	"context"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// QuotaCheckerPG implements domain.QuotaChecker through the store-side
// check_generation_limit function.
type QuotaCheckerPG struct {
	db     infra.SQLExecutor
	logger zerolog.Logger
}

// NewQuotaChecker creates a quota checker backed by PostgreSQL.
func NewQuotaChecker(db infra.SQLExecutor, logger zerolog.Logger) *QuotaCheckerPG {
	return &QuotaCheckerPG{db: db, logger: logger}
}

// Allow reports whether the user may start another generation of the given
// category. A check that cannot be evaluated denies; it never fails open.
func (q *QuotaCheckerPG) Allow(ctx context.Context, userID string, taskType domain.TaskType) (bool, error) {
	var allowed bool
	if err := q.db.QueryRow(ctx, sqlinline.QCheckGenerationLimit, userID, taskType).Scan(&allowed); err != nil {
		q.logger.Error().Err(err).Str("user_id", userID).Str("type", string(taskType)).Msg("failed to check generation limit")
		return false, err
	}
	return allowed, nil
}

var _ domain.QuotaChecker = (*QuotaCheckerPG)(nil)
