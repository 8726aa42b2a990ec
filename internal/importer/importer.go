// Package importer seeds tenants, their render configuration, and their
// feeds from a JSON file into a fresh database. It exists so a deployment
// can be bootstrapped before the dashboard has written anything.
package importer

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"brandpost/autoposter/internal/database"
	"brandpost/autoposter/internal/models"
)

// seedFeed is one feed entry in the seed file.
type seedFeed struct {
	URL      string `json:"url"`
	Format   string `json:"format"`
	Category string `json:"category"`
}

// seedTenant is one tenant entry in the seed file. Config is merged over
// the render defaults, so a seed only needs to set what differs.
type seedTenant struct {
	Name   string          `json:"name"`
	Config json.RawMessage `json:"config"`
	Feeds  []seedFeed      `json:"feeds"`
}

// Importer handles the tenant seed process
type Importer struct {
	db *database.DB
}

// NewImporter creates a new tenant importer
func NewImporter(db *database.DB) *Importer {
	return &Importer{db: db}
}

// ImportSeed imports tenants and feeds from a JSON seed file.
func (i *Importer) ImportSeed(path string) error {
	log.Info().Str("seed", path).Msg("Starting tenant import")

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seeds []seedTenant
	if err := json.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	successCount := 0
	feedCount := 0
	var importErrors []string

	for idx, seed := range seeds {
		logger := log.With().Int("entry", idx).Str("name", seed.Name).Logger()

		if seed.Name == "" {
			logger.Warn().Msg("Skipping tenant entry with empty name")
			importErrors = append(importErrors, fmt.Sprintf("entry %d: empty name", idx))
			continue
		}

		configJSON, err := mergedConfig(seed)
		if err != nil {
			logger.Warn().Err(err).Msg("Skipping tenant with invalid config")
			importErrors = append(importErrors, fmt.Sprintf("entry %d (%s): %v", idx, seed.Name, err))
			continue
		}

		tenant := models.NewTenant()
		tenant.Name = seed.Name
		tenant.Config = configJSON

		tenantID, err := i.db.InsertTenant(tenant)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				logger.Warn().Msg("Duplicate tenant name")
				importErrors = append(importErrors, fmt.Sprintf("entry %d: duplicate tenant: %s", idx, seed.Name))
			} else {
				logger.Error().Err(err).Msg("Failed to insert tenant")
				importErrors = append(importErrors, fmt.Sprintf("entry %d (%s): %v", idx, seed.Name, err))
			}
			continue
		}
		successCount++

		for _, sf := range seed.Feeds {
			if sf.URL == "" {
				importErrors = append(importErrors, fmt.Sprintf("entry %d (%s): feed with empty URL", idx, seed.Name))
				continue
			}

			feed := models.NewFeed()
			feed.TenantID = tenantID
			feed.URL = sf.URL
			if sf.Format != "" {
				feed.Format = sf.Format
			}
			if feed.Format != models.FeedFormatRSS && feed.Format != models.FeedFormatJSON {
				importErrors = append(importErrors, fmt.Sprintf("entry %d (%s): feed %s has unknown format %q", idx, seed.Name, sf.URL, sf.Format))
				continue
			}
			if sf.Category != "" {
				feed.Category = sql.NullString{String: sf.Category, Valid: true}
			}

			if err := i.db.InsertFeed(feed); err != nil {
				logger.Error().Err(err).Str("url", sf.URL).Msg("Failed to insert feed")
				importErrors = append(importErrors, fmt.Sprintf("entry %d (%s): feed %s: %v", idx, seed.Name, sf.URL, err))
				continue
			}
			feedCount++
		}

		logger.Debug().Int("feeds", len(seed.Feeds)).Msg("Tenant imported")
	}

	log.Info().
		Int("tenants", successCount).
		Int("feeds", feedCount).
		Int("errors", len(importErrors)).
		Msg("Import summary")

	fmt.Printf("Imported %d tenants and %d feeds\n", successCount, feedCount)
	if len(importErrors) > 0 {
		fmt.Printf("Encountered %d errors:\n", len(importErrors))
		for _, e := range importErrors {
			fmt.Printf("  - %s\n", e)
		}
	}

	return nil
}

// mergedConfig decodes the seed's config over the render defaults and
// re-serializes the result for storage.
func mergedConfig(seed seedTenant) ([]byte, error) {
	cfg := models.DefaultRenderConfig()
	if len(seed.Config) > 0 {
		if err := json.Unmarshal(seed.Config, cfg); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}
	if cfg.Name == "" {
		cfg.Name = seed.Name
	}
	return json.Marshal(cfg)
}
