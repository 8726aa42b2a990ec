package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Tenant represents a row in the 'tenants' table. The render configuration
// is stored as a JSON document in the 'config' column and decoded on read.
type Tenant struct {
	ID        int64          `db:"id"`
	Name      string         `db:"name"`
	Config    []byte         `db:"config"`
	Status    string         `db:"status"`
	LastError sql.NullString `db:"last_error"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
	DeletedAt sql.NullTime   `db:"deleted_at"`
}

// NewTenant creates a new Tenant with default values
func NewTenant() *Tenant {
	now := time.Now()
	return &Tenant{
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RenderConfig decodes the tenant's stored configuration document.
func (t *Tenant) RenderConfig() (*RenderConfig, error) {
	cfg := DefaultRenderConfig()
	if len(t.Config) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(t.Config, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
