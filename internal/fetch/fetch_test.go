package fetch

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"brandpost/autoposter/internal/models"
)

func jsonFeed(tenantURL string) models.Feed {
	f := models.NewFeed()
	f.URL = tenantURL
	f.Format = models.FeedFormatJSON
	return *f
}

func TestFetchDispatchesByFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"link": "https://example.com/a", "title": "A", "summary": "s", "image": "https://example.com/a.jpg"}]`)
	}))
	defer server.Close()

	items, err := newTestFetcher().Fetch(context.Background(), jsonFeed(server.URL))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 1 || items[0].Title != "A" {
		t.Fatalf("got %v, want one item titled A", items)
	}
}

func TestFetchSendsUserAgent(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	if _, err := newTestFetcher().Fetch(context.Background(), jsonFeed(server.URL)); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotAgent != "test-agent" {
		t.Errorf("User-Agent = %q, want %q", gotAgent, "test-agent")
	}
}

func TestFetchNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := newTestFetcher().Fetch(context.Background(), jsonFeed(server.URL)); err == nil {
		t.Error("expected error for HTTP 404")
	}
}

func TestFetchUnsupportedFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	feed := jsonFeed(server.URL)
	feed.Format = "atomish"

	if _, err := newTestFetcher().Fetch(context.Background(), feed); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestFetchCapsItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[`)
		for i := 0; i < 5; i++ {
			if i > 0 {
				fmt.Fprint(w, `,`)
			}
			fmt.Fprintf(w, `{"link": "https://example.com/%d", "title": "T%d", "summary": "s", "image": "https://example.com/%d.jpg"}`, i, i, i)
		}
		fmt.Fprint(w, `]`)
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "test-agent", 2)
	items, err := fetcher.Fetch(context.Background(), jsonFeed(server.URL))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want cap of 2", len(items))
	}
	// The cap keeps the head of the feed, which is the newest content.
	if items[0].Title != "T0" {
		t.Errorf("first item = %q, want T0", items[0].Title)
	}
}

func TestFetchPassesFeedCategory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"link": "https://example.com/a", "title": "A", "summary": "s", "image": "https://example.com/a.jpg"}]`)
	}))
	defer server.Close()

	feed := jsonFeed(server.URL)
	feed.Category = sql.NullString{String: "economy", Valid: true}

	items, err := newTestFetcher().Fetch(context.Background(), feed)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if items[0].Category != "economy" {
		t.Errorf("Category = %q, want %q", items[0].Category, "economy")
	}
}
