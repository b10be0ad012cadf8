package postgres

import (
	"context"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type UserDirectory struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewUserDirectory(db *sqlx.DB, log *slog.Logger) *UserDirectory {
	return &UserDirectory{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *UserDirectory) CountActiveUsers(ctx context.Context, ext sqlx.ExtContext, userIDs []string) (int, error) {
	const op = "internal.repository.postgres.CountActiveUsers"

	query, args, err := r.sq.Select("COUNT(*)").
		From("users").
		Where(sq.Eq{"id": userIDs, "is_active": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var count int
	if err := sqlx.GetContext(ctx, ext, &count, query, args...); err != nil {
		return 0, fmt.Errorf("%s: failed to count users: %w", op, err)
	}

	return count, nil
}
