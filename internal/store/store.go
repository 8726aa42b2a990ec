// Package store exposes tenant configuration to the pipeline. The pipeline
// reads a snapshot per cycle and never mutates tenant or feed rows, with the
// single exception of feed health bookkeeping via StatusRecorder.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"brandpost/autoposter/internal/database"
	"brandpost/autoposter/internal/models"
)

// Store is the read-only configuration boundary for one pipeline cycle.
type Store interface {
	ListTenants(ctx context.Context) ([]models.Tenant, error)
	GetConfig(ctx context.Context, tenantID int64) (*models.RenderConfig, error)
	ListFeeds(ctx context.Context, tenantID int64) ([]models.Feed, error)
}

// StatusRecorder records per-feed fetch outcomes so repeatedly failing feeds
// can be spotted (and eventually disabled) from the dashboard side.
type StatusRecorder interface {
	RecordFeedResult(ctx context.Context, feedID int64, fetchErr error)
}

const maxFeedFailures = 10

type sqlStore struct {
	db *database.DB
}

// New creates a Store backed by the given database.
func New(db *database.DB) *sqlStore {
	return &sqlStore{db: db}
}

func (s *sqlStore) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := s.db.SelectContext(ctx, &tenants, `
		SELECT * FROM tenants
		WHERE status = 'active' AND deleted_at IS NULL
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}

func (s *sqlStore) GetConfig(ctx context.Context, tenantID int64) (*models.RenderConfig, error) {
	var tenant models.Tenant
	err := s.db.GetContext(ctx, &tenant,
		"SELECT * FROM tenants WHERE id = ? AND deleted_at IS NULL", tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant %d: %w", tenantID, err)
	}

	cfg, err := tenant.RenderConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid config for tenant %d: %w", tenantID, err)
	}
	if cfg.Name == "" {
		cfg.Name = tenant.Name
	}
	return cfg, nil
}

func (s *sqlStore) ListFeeds(ctx context.Context, tenantID int64) ([]models.Feed, error) {
	var feeds []models.Feed
	err := s.db.SelectContext(ctx, &feeds, `
		SELECT * FROM feeds
		WHERE tenant_id = ? AND status IN ('active', 'failing') AND deleted_at IS NULL
		ORDER BY id ASC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds for tenant %d: %w", tenantID, err)
	}
	return feeds, nil
}

// RecordFeedResult updates the feed's failure counters. A nil fetchErr resets
// them; repeated failures move the feed through 'failing' to 'failed'.
func (s *sqlStore) RecordFeedResult(ctx context.Context, feedID int64, fetchErr error) {
	now := time.Now()

	if fetchErr == nil {
		s.db.ExecContext(ctx, `
			UPDATE feeds
			SET status = 'active', failures_count = 0, last_error = NULL, updated_at = ?
			WHERE id = ?`, now, feedID)
		return
	}

	s.db.ExecContext(ctx, `
		UPDATE feeds
		SET failures_count = failures_count + 1,
		    last_error = ?,
		    status = CASE WHEN failures_count + 1 > ? THEN 'failed' ELSE 'failing' END,
		    updated_at = ?
		WHERE id = ?`,
		sql.NullString{String: fetchErr.Error(), Valid: true}, maxFeedFailures, now, feedID)
}
