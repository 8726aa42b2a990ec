// Package ledger tracks which source links have already been published so a
// pipeline cycle never posts the same item twice, even across restarts.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brandpost/autoposter/internal/database"
)

// ErrAlreadySeen is returned by Commit when the (tenant, link) pair was
// committed previously, by this process or an earlier one.
var ErrAlreadySeen = errors.New("link already committed for tenant")

// Ledger is the durable set of already-published links. Commit is an atomic
// insert-if-absent: under concurrent callers at most one succeeds per key.
type Ledger interface {
	Contains(ctx context.Context, tenantID int64, link string) (bool, error)
	Commit(ctx context.Context, tenantID int64, link string) error
}

// sqliteLedger implements Ledger over the posted_links table.
type sqliteLedger struct {
	db *database.DB
}

// New creates a Ledger backed by the given database.
func New(db *database.DB) Ledger {
	return &sqliteLedger{db: db}
}

func (l *sqliteLedger) Contains(ctx context.Context, tenantID int64, link string) (bool, error) {
	var n int
	err := l.db.GetContext(ctx, &n,
		"SELECT COUNT(1) FROM posted_links WHERE tenant_id = ? AND url = ?",
		tenantID, link)
	if err != nil {
		return false, fmt.Errorf("ledger lookup failed: %w", err)
	}
	return n > 0, nil
}

func (l *sqliteLedger) Commit(ctx context.Context, tenantID int64, link string) error {
	res, err := l.db.ExecContext(ctx, `
		INSERT INTO posted_links (tenant_id, url, processed_at)
		VALUES (?, ?, ?)
		ON CONFLICT(tenant_id, url) DO NOTHING`,
		tenantID, link, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("ledger commit failed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ledger commit result unavailable: %w", err)
	}
	if affected == 0 {
		return ErrAlreadySeen
	}
	return nil
}
