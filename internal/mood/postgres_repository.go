package mood

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgxpool.Pool used by the repository.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores moods in the relational database.
type PostgresRepository struct {
	db  Querier
	now func() time.Time
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(db Querier) *PostgresRepository {
	if db == nil {
		panic("mood: pgx pool required")
	}
	return &PostgresRepository{db: db, now: time.Now}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, userID string, req *CreateRequest) (*Entry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	date := entryDate(req.Date, r.now())
	day, _ := ParseDate(date)
	query := `
		INSERT INTO moods (id, user_id, entry_date, score, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query, id, userID, day, req.Score, req.Category).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("mood: insert failed: %w", err)
	}

	return &Entry{
		ID:       id.String(),
		Date:     date,
		Score:    req.Score,
		Category: req.Category,
	}, nil
}

// List returns the user's entries in insertion order.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]Entry, error) {
	query := `
		SELECT id, entry_date, score, category
		FROM moods
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("mood: select failed: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			id    uuid.UUID
			day   time.Time
			entry Entry
		)
		if err := rows.Scan(&id, &day, &entry.Score, &entry.Category); err != nil {
			return nil, fmt.Errorf("mood: scan failed: %w", err)
		}
		entry.ID = id.String()
		entry.Date = FormatDate(day)
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mood: rows failed: %w", err)
	}
	return out, nil
}
