// Package credentials stores per-platform API tokens in the database so keys
// can be rotated without a redeploy; environment variables remain the
// fallback when no row exists.
package credentials

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

type Store struct {
	db infra.SQLExecutor
}

func NewStore(db infra.SQLExecutor) *Store {
	return &Store{db: db}
}

// Token returns the stored API token for a platform, or "" when none is
// configured in the database.
func (s *Store) Token(ctx context.Context, platform domain.Platform) (string, error) {
	var token string
	if err := s.db.QueryRow(ctx, sqlinline.QSelectIntegrationToken, platform).Scan(&token); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// SetToken upserts the API token for a platform.
func (s *Store) SetToken(ctx context.Context, platform domain.Platform, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("credentials: token is required")
	}
	_, err := s.db.Exec(ctx, sqlinline.QUpsertIntegrationToken, platform, token)
	return err
}

// Override replaces fallback with the stored token when one exists. Lookup
// failures keep the fallback so startup does not depend on the table.
func (s *Store) Override(ctx context.Context, platform domain.Platform, fallback string) string {
	token, err := s.Token(ctx, platform)
	if err != nil || token == "" {
		return fallback
	}
	return token
}
