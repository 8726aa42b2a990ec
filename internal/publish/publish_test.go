package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"brandpost/autoposter/internal/models"
)

func newTestPublisher() *Publisher {
	return NewPublisher(5*time.Second, "test-agent")
}

func hostingHandler(t *testing.T, hostedURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("upload is not multipart: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file field: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"secure_url": hostedURL})
	}
}

func TestPublishHostingOnly(t *testing.T) {
	server := httptest.NewServer(hostingHandler(t, "https://cdn.example.com/hosted.jpg"))
	defer server.Close()

	cfg := models.DefaultRenderConfig()
	cfg.UploadURL = server.URL
	cfg.UploadPreset = "unsigned"

	artifact := models.Artifact{Image: []byte("jpeg-bytes"), Caption: "caption"}
	results, err := newTestPublisher().Publish(context.Background(), artifact, cfg)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 (hosting only)", len(results))
	}
	if results[0].Channel != "hosting" || !results[0].OK {
		t.Errorf("hosting result = %+v", results[0])
	}
	if results[0].URL != "https://cdn.example.com/hosted.jpg" {
		t.Errorf("hosted URL = %q", results[0].URL)
	}
}

func TestPublishHostingFailureReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := models.DefaultRenderConfig()
	cfg.UploadURL = server.URL
	// Social channels must never be attempted when hosting fails.
	cfg.FacebookEnabled = true
	cfg.MetaToken = "token"
	cfg.FacebookPageID = "page"

	results, err := newTestPublisher().Publish(context.Background(), models.Artifact{Image: []byte("x")}, cfg)
	if err == nil {
		t.Fatal("expected error when hosting upload fails")
	}
	if results != nil {
		t.Errorf("got results %v despite hosting failure", results)
	}
}

func TestPublishNoUploadEndpoint(t *testing.T) {
	cfg := models.DefaultRenderConfig()
	if _, err := newTestPublisher().Publish(context.Background(), models.Artifact{Image: []byte("x")}, cfg); err == nil {
		t.Error("expected error without an upload endpoint")
	}
}

func TestPublishFansOutToMeta(t *testing.T) {
	var graphCalls []string
	graph := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		graphCalls = append(graphCalls, r.URL.Path)

		switch {
		case r.URL.Path == "/ig-account/media":
			if r.FormValue("image_url") == "" || r.FormValue("access_token") != "token" {
				t.Errorf("container call missing fields: %v", r.Form)
			}
			fmt.Fprint(w, `{"id": "container-1"}`)
		case r.URL.Path == "/ig-account/media_publish":
			if r.FormValue("creation_id") != "container-1" {
				t.Errorf("publish call creation_id = %q", r.FormValue("creation_id"))
			}
			fmt.Fprint(w, `{"id": "post-1"}`)
		case r.URL.Path == "/page-1/photos":
			if r.FormValue("url") == "" || r.FormValue("message") == "" {
				t.Errorf("photo call missing fields: %v", r.Form)
			}
			fmt.Fprint(w, `{"id": "photo-1"}`)
		default:
			t.Errorf("unexpected graph call %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer graph.Close()

	hosting := httptest.NewServer(hostingHandler(t, "https://cdn.example.com/hosted.jpg"))
	defer hosting.Close()

	cfg := models.DefaultRenderConfig()
	cfg.UploadURL = hosting.URL
	cfg.MetaToken = "token"
	cfg.InstagramEnabled = true
	cfg.InstagramID = "ig-account"
	cfg.FacebookEnabled = true
	cfg.FacebookPageID = "page-1"

	p := newTestPublisher()
	p.GraphURL = graph.URL

	artifact := models.Artifact{Image: []byte("jpeg"), Caption: "headline\n\nsummary"}
	results, err := p.Publish(context.Background(), artifact, cfg)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("got %d results %v, want hosting+instagram+facebook", len(results), results)
	}
	for _, r := range results {
		if !r.OK {
			t.Errorf("channel %s failed: %s", r.Channel, r.Detail)
		}
	}
	if len(graphCalls) != 3 {
		t.Errorf("graph calls = %v, want container, publish, photos", graphCalls)
	}
}

func TestPublishSocialFailureDoesNotFailPublish(t *testing.T) {
	graph := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "token expired"}`, http.StatusUnauthorized)
	}))
	defer graph.Close()

	hosting := httptest.NewServer(hostingHandler(t, "https://cdn.example.com/hosted.jpg"))
	defer hosting.Close()

	cfg := models.DefaultRenderConfig()
	cfg.UploadURL = hosting.URL
	cfg.MetaToken = "token"
	cfg.FacebookEnabled = true
	cfg.FacebookPageID = "page-1"

	p := newTestPublisher()
	p.GraphURL = graph.URL

	results, err := p.Publish(context.Background(), models.Artifact{Image: []byte("jpeg")}, cfg)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if !results[0].OK {
		t.Errorf("hosting result not OK: %+v", results[0])
	}
	if results[1].OK || results[1].Channel != "facebook" {
		t.Errorf("facebook result = %+v, want reported failure", results[1])
	}
}

func TestPublishWordPressMediaUpload(t *testing.T) {
	wp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wp/v2/media" {
			t.Errorf("path = %q", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "editor" || pass != "secret" {
			t.Errorf("basic auth = %q/%q/%v", user, pass, ok)
		}
		if ct := r.Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("Content-Type = %q", ct)
		}
		json.NewEncoder(w).Encode(map[string]string{"source_url": "https://blog.example.com/media/1.jpg"})
	}))
	defer wp.Close()

	hosting := httptest.NewServer(hostingHandler(t, "https://cdn.example.com/hosted.jpg"))
	defer hosting.Close()

	cfg := models.DefaultRenderConfig()
	cfg.UploadURL = hosting.URL
	cfg.WordPressEnabled = true
	cfg.WordPressURL = wp.URL
	cfg.WordPressUser = "editor"
	cfg.WordPressPassword = "secret"

	results, err := newTestPublisher().Publish(context.Background(), models.Artifact{Image: []byte("jpeg")}, cfg)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if !results[1].OK || results[1].URL != "https://blog.example.com/media/1.jpg" {
		t.Errorf("wordpress result = %+v", results[1])
	}
}

func TestCaption(t *testing.T) {
	cfg := models.DefaultRenderConfig()
	cfg.DefaultHashtags = "#news #local"

	item := models.NewsItem{Title: "Headline", Summary: "Short summary."}
	if got := Caption(item, cfg); got != "Headline\n\nShort summary.\n\n#news #local" {
		t.Errorf("Caption = %q", got)
	}

	cfg.DefaultHashtags = ""
	item.Summary = ""
	if got := Caption(item, cfg); got != "Headline" {
		t.Errorf("Caption without extras = %q", got)
	}
}
