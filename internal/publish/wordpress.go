package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"brandpost/autoposter/internal/models"
)

// publishWordPress uploads the rendered image to the tenant's WordPress
// media library over the REST API with basic auth.
func (p *Publisher) publishWordPress(ctx context.Context, image []byte, cfg *models.RenderConfig) models.PublishResult {
	if cfg.WordPressURL == "" || cfg.WordPressUser == "" || cfg.WordPressPassword == "" {
		return failure("wordpress", fmt.Errorf("incomplete wordpress credentials"))
	}

	endpoint := strings.TrimRight(cfg.WordPressURL, "/") + "/wp-json/wp/v2/media"
	filename := fmt.Sprintf("post_social_%d.jpg", time.Now().Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(image))
	if err != nil {
		return failure("wordpress", fmt.Errorf("invalid media endpoint: %w", err))
	}
	req.SetBasicAuth(cfg.WordPressUser, cfg.WordPressPassword)
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return failure("wordpress", fmt.Errorf("media upload failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return failure("wordpress", fmt.Errorf("media endpoint returned HTTP %d: %s", resp.StatusCode, detail))
	}

	var payload struct {
		SourceURL string `json:"source_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return failure("wordpress", fmt.Errorf("failed to decode media response: %w", err))
	}

	return models.PublishResult{Channel: "wordpress", OK: true, URL: payload.SourceURL}
}
