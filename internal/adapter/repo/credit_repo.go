package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// CreditLedgerPG implements domain.CreditLedger against the user credit
// balance table. The ledger's own consistency model lives elsewhere; this
// side only asks whether a spend would fit.
type CreditLedgerPG struct {
	db infra.SQLExecutor
}

// NewCreditLedger creates a credit ledger backed by PostgreSQL.
func NewCreditLedger(db infra.SQLExecutor) *CreditLedgerPG {
	return &CreditLedgerPG{db: db}
}

// CanConsume reports whether the user's balance covers the amount. A missing
// balance row reads as zero credits, not as an error.
func (l *CreditLedgerPG) CanConsume(ctx context.Context, userID string, amount float64) (bool, error) {
	var balance float64
	if err := l.db.QueryRow(ctx, sqlinline.QSelectCreditBalance, userID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return amount <= 0, nil
		}
		return false, err
	}
	return balance >= amount, nil
}

var _ domain.CreditLedger = (*CreditLedgerPG)(nil)
