package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"brandpost/autoposter/internal/database"
	"brandpost/autoposter/internal/models"
	"brandpost/autoposter/internal/server/pagination"
)

// PostedLinkRepository defines read access to the publish history.
type PostedLinkRepository interface {
	FetchPostedLinks(ctx context.Context, limit int, tenantID *int64, since *time.Time, cursor *pagination.Cursor) ([]models.PostedLink, error)
}

// sqlxRepository implements PostedLinkRepository using sqlx.
type sqlxRepository struct {
	db *database.DB
}

// NewRepository creates a new repository instance.
func NewRepository(db *database.DB) PostedLinkRepository {
	return &sqlxRepository{db: db}
}

// FetchPostedLinks retrieves publish history entries after the given time or
// cursor, oldest first, so clients can page through with stable ordering.
func (r *sqlxRepository) FetchPostedLinks(ctx context.Context, limit int, tenantID *int64, since *time.Time, cursor *pagination.Cursor) ([]models.PostedLink, error) {
	var items []models.PostedLink
	var query string
	var args []any

	const baseQuery = `SELECT * FROM posted_links `
	const orderBy = ` ORDER BY processed_at ASC, id ASC LIMIT ?`

	switch {
	case cursor != nil:
		query = baseQuery + `WHERE ((processed_at > ?) OR (processed_at = ? AND id > ?))`
		args = append(args, cursor.ProcessedAt.UTC(), cursor.ProcessedAt.UTC(), cursor.ID)
	case since != nil:
		query = baseQuery + `WHERE processed_at > ?`
		args = append(args, since.UTC())
	default:
		return nil, fmt.Errorf("either 'since' or cursor parameters must be provided")
	}

	if tenantID != nil {
		query += ` AND tenant_id = ?`
		args = append(args, *tenantID)
	}
	query += orderBy
	args = append(args, limit)

	err := r.db.SelectContext(ctx, &items, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []models.PostedLink{}, nil
		}
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	return items, nil
}
