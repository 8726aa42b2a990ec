// Package publish delivers rendered artifacts to the configured channels.
// The hosting upload must succeed first: social endpoints consume a public
// URL, not raw bytes, so without a hosted copy there is nothing to post.
package publish

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"brandpost/autoposter/internal/models"
)

const defaultGraphURL = "https://graph.facebook.com/v19.0"

// Transport accepts one rendered artifact and fans it out to every channel
// the tenant has enabled. A non-nil error means the hosting upload failed and
// the item must not be committed to the ledger; per-channel social failures
// are reported in the results instead.
type Transport interface {
	Publish(ctx context.Context, artifact models.Artifact, cfg *models.RenderConfig) ([]models.PublishResult, error)
}

// Publisher is the production Transport over HTTP.
type Publisher struct {
	client    *http.Client
	userAgent string

	// GraphURL is the Meta Graph API base, overridable in tests.
	GraphURL string
}

// NewPublisher creates a Publisher with the given per-request timeout.
func NewPublisher(timeout time.Duration, userAgent string) *Publisher {
	return &Publisher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		GraphURL:  defaultGraphURL,
	}
}

// Publish uploads the artifact to hosting, then posts the hosted URL to each
// enabled social channel.
func (p *Publisher) Publish(ctx context.Context, artifact models.Artifact, cfg *models.RenderConfig) ([]models.PublishResult, error) {
	hostedURL, err := p.uploadHosting(ctx, artifact.Image, cfg)
	if err != nil {
		return nil, fmt.Errorf("hosting upload failed: %w", err)
	}

	results := []models.PublishResult{{Channel: "hosting", OK: true, URL: hostedURL}}

	if cfg.WordPressEnabled {
		results = append(results, p.publishWordPress(ctx, artifact.Image, cfg))
	}
	if cfg.InstagramEnabled {
		results = append(results, p.publishInstagram(ctx, hostedURL, artifact.Caption, cfg))
	}
	if cfg.FacebookEnabled {
		results = append(results, p.publishFacebook(ctx, hostedURL, artifact.Caption, cfg))
	}

	for _, r := range results {
		if !r.OK {
			log.Warn().Str("channel", r.Channel).Str("detail", r.Detail).Msg("Channel publish failed")
		}
	}
	return results, nil
}

// Caption assembles the post text from the item and the tenant's default
// hashtags.
func Caption(item models.NewsItem, cfg *models.RenderConfig) string {
	parts := []string{item.Title}
	if item.Summary != "" {
		parts = append(parts, item.Summary)
	}
	if cfg.DefaultHashtags != "" {
		parts = append(parts, cfg.DefaultHashtags)
	}
	return strings.Join(parts, "\n\n")
}

func failure(channel string, err error) models.PublishResult {
	return models.PublishResult{Channel: channel, OK: false, Detail: err.Error()}
}
