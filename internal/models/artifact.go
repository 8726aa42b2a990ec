package models

// Artifact is a rendered, JPEG-encoded image plus the caption text to post
// with it. It is owned by the pipeline pass that produced it and released
// after publishing.
type Artifact struct {
	Image   []byte
	Caption string
}

// PublishResult records the outcome of one publishing channel.
type PublishResult struct {
	Channel string `json:"channel"`
	OK      bool   `json:"ok"`
	Detail  string `json:"detail,omitempty"`
	URL     string `json:"url,omitempty"`
}
