package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ChielvanV/BugBeheer/internal/config"
	"github.com/ChielvanV/BugBeheer/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type DB struct {
	Pool *pgxpool.Pool
	log  zerolog.Logger
}

func MustOpen(ctx context.Context, cfg config.Config, log zerolog.Logger) *DB {
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	ctx2, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(ctx2); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}
	return &DB{Pool: pool, log: log}
}

func (d *DB) Close() { d.Pool.Close() }

type Repository struct {
	db  *DB
	log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

// storeErr classifies a collaborator failure so callers can match on
// domain.ErrStorage without losing the underlying cause in logs.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStorage, op, err)
}

const bugColumns = `id, COALESCE(ticket,''), description, COALESCE(jira_link,''),
	impact, likelihood, COALESCE(label,''), reference, created_at, completed_at`

func scanBug(row pgx.Row) (*domain.BugRecord, error) {
	var b domain.BugRecord
	err := row.Scan(&b.ID, &b.Ticket, &b.Description, &b.JiraLink,
		&b.Impact, &b.Likelihood, &b.Label, &b.Reference, &b.CreatedAt, &b.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// nullable maps "absent" optional text to NULL so empty strings never reach
// the table.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ListBugs returns every record ordered by creation time ascending.
func (r *Repository) ListBugs(ctx context.Context) ([]domain.BugRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+bugColumns+` FROM bugs ORDER BY created_at, id`)
	if err != nil {
		return nil, storeErr("list bugs", err)
	}
	defer rows.Close()
	out := make([]domain.BugRecord, 0)
	for rows.Next() {
		b, err := scanBug(rows)
		if err != nil {
			return nil, storeErr("scan bug", err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list bugs", err)
	}
	return out, nil
}

func (r *Repository) GetBug(ctx context.Context, id string) (*domain.BugRecord, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+bugColumns+` FROM bugs WHERE id=$1`, id)
	b, err := scanBug(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: bug %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, storeErr("get bug", err)
	}
	return b, nil
}

func (r *Repository) InsertBug(ctx context.Context, b domain.BugRecord) error {
	const q = `
		INSERT INTO bugs(id, ticket, description, jira_link, impact, likelihood,
			label, reference, created_at, completed_at)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := r.db.Pool.Exec(ctx, q, b.ID, nullable(b.Ticket), b.Description, nullable(b.JiraLink),
		b.Impact, b.Likelihood, nullable(string(b.Label)), b.Reference, b.CreatedAt, b.CompletedAt)
	if err != nil {
		return storeErr("insert bug", err)
	}
	return nil
}

func (r *Repository) UpdateBug(ctx context.Context, b domain.BugRecord) error {
	const q = `
		UPDATE bugs SET ticket=$2, description=$3, jira_link=$4, impact=$5,
			likelihood=$6, label=$7, reference=$8, completed_at=$9
		WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, b.ID, nullable(b.Ticket), b.Description, nullable(b.JiraLink),
		b.Impact, b.Likelihood, nullable(string(b.Label)), b.Reference, b.CompletedAt)
	if err != nil {
		return storeErr("update bug", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: bug %s", domain.ErrNotFound, b.ID)
	}
	return nil
}

func (r *Repository) DeleteBug(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM bugs WHERE id=$1`, id)
	if err != nil {
		return storeErr("delete bug", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: bug %s", domain.ErrNotFound, id)
	}
	return nil
}

// DeleteNonReference removes every row with reference=false and returns the
// number of rows removed.
func (r *Repository) DeleteNonReference(ctx context.Context) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM bugs WHERE reference=false`)
	if err != nil {
		return 0, storeErr("delete non-reference bugs", err)
	}
	return tag.RowsAffected(), nil
}

// CountBugs returns the total row count and how many of them are reference
// records.
func (r *Repository) CountBugs(ctx context.Context) (total, reference int64, err error) {
	const q = `SELECT COUNT(*), COUNT(*) FILTER (WHERE reference) FROM bugs`
	if err := r.db.Pool.QueryRow(ctx, q).Scan(&total, &reference); err != nil {
		return 0, 0, storeErr("count bugs", err)
	}
	return total, reference, nil
}
