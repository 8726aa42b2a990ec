package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"brandpost/autoposter/internal/models"
)

// publishInstagram posts the hosted image through the Graph API's two-step
// flow: create a media container, then publish it.
func (p *Publisher) publishInstagram(ctx context.Context, hostedURL, caption string, cfg *models.RenderConfig) models.PublishResult {
	if cfg.MetaToken == "" || cfg.InstagramID == "" {
		return failure("instagram", fmt.Errorf("incomplete instagram credentials"))
	}

	container, err := p.graphPost(ctx, fmt.Sprintf("%s/%s/media", p.GraphURL, cfg.InstagramID), url.Values{
		"image_url":    {hostedURL},
		"caption":      {caption},
		"access_token": {cfg.MetaToken},
	})
	if err != nil {
		return failure("instagram", fmt.Errorf("media container creation failed: %w", err))
	}

	_, err = p.graphPost(ctx, fmt.Sprintf("%s/%s/media_publish", p.GraphURL, cfg.InstagramID), url.Values{
		"creation_id":  {container},
		"access_token": {cfg.MetaToken},
	})
	if err != nil {
		return failure("instagram", fmt.Errorf("media publish failed: %w", err))
	}

	return models.PublishResult{Channel: "instagram", OK: true}
}

// publishFacebook posts the hosted image to the tenant's page.
func (p *Publisher) publishFacebook(ctx context.Context, hostedURL, caption string, cfg *models.RenderConfig) models.PublishResult {
	if cfg.MetaToken == "" || cfg.FacebookPageID == "" {
		return failure("facebook", fmt.Errorf("incomplete facebook credentials"))
	}

	_, err := p.graphPost(ctx, fmt.Sprintf("%s/%s/photos", p.GraphURL, cfg.FacebookPageID), url.Values{
		"url":          {hostedURL},
		"message":      {caption},
		"access_token": {cfg.MetaToken},
	})
	if err != nil {
		return failure("facebook", fmt.Errorf("photo post failed: %w", err))
	}

	return models.PublishResult{Channel: "facebook", OK: true}
}

// graphPost sends a form POST to a Graph API endpoint and returns the id
// field of the response, when present.
func (p *Publisher) graphPost(ctx context.Context, endpoint string, params url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, detail)
	}

	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return payload.ID, nil
}
