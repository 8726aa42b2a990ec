package models

// RenderConfig is a tenant's design and publishing configuration. It is
// loaded once per cycle and treated as an immutable snapshot from then on.
type RenderConfig struct {
	Name string `json:"name"`

	// Design
	BackgroundColor string `json:"background_color"`
	TitleColor      string `json:"title_color"`
	HighlightColor  string `json:"highlight_color"`
	BorderColor     string `json:"border_color"`
	CategoryColor   string `json:"category_color"`
	BorderWidth     int    `json:"border_width"`
	CornerRadius    int    `json:"corner_radius"`

	// Resources (resolved to bytes by the orchestrator, never by the compositor)
	LogoURL       string `json:"logo_url"`
	TitleFontURL  string `json:"title_font_url"`
	FooterFontURL string `json:"footer_font_url"`

	TitleFontSize  float64 `json:"title_font_size"`
	FooterFontSize float64 `json:"footer_font_size"`

	FooterText      string `json:"footer_text"`
	DefaultHashtags string `json:"default_hashtags"`

	// Publishing channels
	UploadURL    string `json:"upload_url"`
	UploadPreset string `json:"upload_preset"`
	UploadFolder string `json:"upload_folder"`

	WordPressEnabled  bool   `json:"wordpress_enabled"`
	WordPressURL      string `json:"wordpress_url"`
	WordPressUser     string `json:"wordpress_user"`
	WordPressPassword string `json:"wordpress_password"`

	MetaToken        string `json:"meta_token"`
	InstagramEnabled bool   `json:"instagram_enabled"`
	InstagramID      string `json:"instagram_id"`
	FacebookEnabled  bool   `json:"facebook_enabled"`
	FacebookPageID   string `json:"facebook_page_id"`
}

// DefaultRenderConfig returns the design defaults applied to new tenants.
func DefaultRenderConfig() *RenderConfig {
	return &RenderConfig{
		BackgroundColor: "#ffffff",
		TitleColor:      "#000000",
		HighlightColor:  "#d90429",
		BorderColor:     "#000000",
		CategoryColor:   "#d90429",
		BorderWidth:     5,
		CornerRadius:    20,
		TitleFontSize:   50,
		FooterFontSize:  30,
		FooterText:      "@YOURBRAND",
		DefaultHashtags: "#news",
	}
}

// Complete reports whether the configuration carries everything rendering
// needs. Incomplete tenants are skipped, not failed.
func (c *RenderConfig) Complete() bool {
	return c.Name != "" && c.LogoURL != "" && c.TitleFontURL != "" && c.FooterFontURL != ""
}
