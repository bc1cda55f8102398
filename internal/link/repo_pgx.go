package link

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sundayezeilo/tinylink/internal/errx"
)

// Schema creates the links table. Applied by migrations in deployment and
// executed directly by integration tests.
const Schema = `
CREATE TABLE IF NOT EXISTS links (
    id          text PRIMARY KEY,
    target_url  text NOT NULL,
    expires_at  timestamptz,
    created_at  timestamptz NOT NULL DEFAULT now(),
    updated_at  timestamptz NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS links_expires_at_idx ON links (expires_at)
    WHERE expires_at IS NOT NULL;
`

// PgxQuerier is the subset of pool behavior the repository needs. It is
// satisfied by *pgxpool.Pool and pgx.Tx.
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgxRepo implements Repository against PostgreSQL.
type pgxRepo struct {
	db PgxQuerier
}

// NewPgxRepository creates a Repository backed by the given pgx pool or
// transaction.
func NewPgxRepository(db PgxQuerier) Repository {
	return &pgxRepo{db: db}
}

func mapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return errx.E(op, errx.NotFound, err)

	case isIDUniqueViolation(err):
		return errx.E(op, errx.Conflict, err)

	default:
		return errx.E(op, errx.Unavailable, err)
	}
}

func (r *pgxRepo) Exists(ctx context.Context, id string) (bool, error) {
	const op = "link.repo.Exists"

	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM links WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, mapRepoError(op, err)
	}
	return exists, nil
}

func (r *pgxRepo) Create(ctx context.Context, link Link) (Link, error) {
	const op = "link.repo.Create"

	row := r.db.QueryRow(ctx, `
		INSERT INTO links (id, target_url, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, target_url, expires_at, created_at, updated_at`,
		link.ID, link.TargetURL, link.ExpiresAt,
	)

	created, err := scanLink(row)
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}
	return created, nil
}

func (r *pgxRepo) GetByID(ctx context.Context, id string) (Link, error) {
	const op = "link.repo.GetByID"

	row := r.db.QueryRow(ctx, `
		SELECT id, target_url, expires_at, created_at, updated_at
		FROM links
		WHERE id = $1`,
		id,
	)

	found, err := scanLink(row)
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}
	return found, nil
}

func (r *pgxRepo) Delete(ctx context.Context, id string) error {
	const op = "link.repo.Delete"

	var deleted string
	err := r.db.QueryRow(ctx,
		`DELETE FROM links WHERE id = $1 RETURNING id`, id,
	).Scan(&deleted)
	if err != nil {
		return mapRepoError(op, err)
	}
	return nil
}

func (r *pgxRepo) ListExpiredBefore(ctx context.Context, t time.Time) ([]Link, error) {
	const op = "link.repo.ListExpiredBefore"

	rows, err := r.db.Query(ctx, `
		SELECT id, target_url, expires_at, created_at, updated_at
		FROM links
		WHERE expires_at IS NOT NULL AND expires_at <= $1
		ORDER BY expires_at`,
		t,
	)
	if err != nil {
		return nil, mapRepoError(op, err)
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		found, err := scanLink(rows)
		if err != nil {
			return nil, mapRepoError(op, err)
		}
		links = append(links, found)
	}
	if err := rows.Err(); err != nil {
		return nil, mapRepoError(op, err)
	}
	return links, nil
}

func scanLink(row pgx.Row) (Link, error) {
	var l Link
	err := row.Scan(&l.ID, &l.TargetURL, &l.ExpiresAt, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return Link{}, err
	}
	return l, nil
}
