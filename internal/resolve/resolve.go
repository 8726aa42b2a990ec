// Package resolve downloads the binary resources a composition needs (photo,
// logo, font bytes) ahead of rendering. Resolution fails fast on anything it
// cannot fetch or decode; the compositor never receives a questionable input
// and never performs network I/O itself.
package resolve

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/golang/freetype/truetype"

	"brandpost/autoposter/internal/models"
)

const (
	maxImageBytes = 20 << 20
	maxFontBytes  = 10 << 20
)

// TenantResources are the tenant-wide resources shared by every item in one
// cycle. If any of these cannot be resolved the whole tenant cycle is
// aborted, since every item would fail identically.
type TenantResources struct {
	Logo       image.Image
	TitleFont  []byte
	FooterFont []byte
}

// Resolver fetches and validates remote resources.
type Resolver struct {
	client    *http.Client
	userAgent string
}

// NewResolver creates a Resolver with the given download timeout.
func NewResolver(timeout time.Duration, userAgent string) *Resolver {
	return &Resolver{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// TenantResources resolves the logo and both fonts for a tenant.
func (r *Resolver) TenantResources(ctx context.Context, cfg *models.RenderConfig) (*TenantResources, error) {
	logo, err := r.Image(ctx, cfg.LogoURL)
	if err != nil {
		return nil, fmt.Errorf("logo: %w", err)
	}

	titleFont, err := r.Font(ctx, cfg.TitleFontURL)
	if err != nil {
		return nil, fmt.Errorf("title font: %w", err)
	}

	footerFont, err := r.Font(ctx, cfg.FooterFontURL)
	if err != nil {
		return nil, fmt.Errorf("footer font: %w", err)
	}

	return &TenantResources{
		Logo:       logo,
		TitleFont:  titleFont,
		FooterFont: footerFont,
	}, nil
}

// Image downloads and decodes a remote image.
func (r *Resolver) Image(ctx context.Context, url string) (image.Image, error) {
	data, err := r.downloadBytes(ctx, url, maxImageBytes)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", url, err)
	}
	return img, nil
}

// Font downloads a TrueType font and verifies it parses.
func (r *Resolver) Font(ctx context.Context, url string) ([]byte, error) {
	data, err := r.downloadBytes(ctx, url, maxFontBytes)
	if err != nil {
		return nil, err
	}

	if _, err := truetype.Parse(data); err != nil {
		return nil, fmt.Errorf("font %s is not a valid TrueType font: %w", url, err)
	}
	return data, nil
}

func (r *Resolver) downloadBytes(ctx context.Context, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid resource URL %s: %w", url, err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resource %s returned HTTP %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	return data, nil
}
