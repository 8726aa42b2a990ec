package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"brandpost/autoposter/internal/models"
)

// uploadHosting POSTs the JPEG to the tenant's image-hosting endpoint as a
// multipart form (Cloudinary-style unsigned upload) and returns the public
// URL of the hosted copy.
func (p *Publisher) uploadHosting(ctx context.Context, image []byte, cfg *models.RenderConfig) (string, error) {
	if cfg.UploadURL == "" {
		return "", fmt.Errorf("no upload endpoint configured")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "post.jpg")
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", fmt.Errorf("failed to write upload body: %w", err)
	}

	if cfg.UploadPreset != "" {
		writer.WriteField("upload_preset", cfg.UploadPreset)
	}
	if cfg.UploadFolder != "" {
		writer.WriteField("folder", cfg.UploadFolder)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.UploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("invalid upload URL: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload endpoint returned HTTP %d: %s", resp.StatusCode, detail)
	}

	var payload struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}

	hostedURL := payload.SecureURL
	if hostedURL == "" {
		hostedURL = payload.URL
	}
	if hostedURL == "" {
		return "", fmt.Errorf("upload response missing hosted URL")
	}
	return hostedURL, nil
}
