package fetch

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"brandpost/autoposter/internal/models"
)

// ParseJSON normalizes a JSON feed. The payload may be a top-level array or
// an object exposing an "items" or "articles" array. Entries missing any
// required field are dropped individually.
func ParseJSON(data []byte, category string) ([]models.NewsItem, error) {
	entries, err := jsonEntries(data)
	if err != nil {
		return nil, err
	}

	items := make([]models.NewsItem, 0, len(entries))
	for _, entry := range entries {
		item := models.NewsItem{
			SourceLink:  firstString(entry, "link", "url"),
			Title:       strings.TrimSpace(firstString(entry, "title")),
			Summary:     stripHTML(firstString(entry, "summary", "description", "content", "content_text")),
			ImageURL:    firstString(entry, "image", "image_url", "thumbnail"),
			Category:    category,
			PublishedAt: parseEntryTime(entry),
		}

		if err := checkItem(item); err != nil {
			log.Debug().Err(err).Msg("Skipping JSON entry")
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func jsonEntries(data []byte) ([]map[string]any, error) {
	var asArray []map[string]any
	if err := json.Unmarshal(data, &asArray); err == nil {
		return asArray, nil
	}

	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(data, &asObject); err != nil {
		return nil, fmt.Errorf("payload is not valid JSON: %w", err)
	}

	for _, key := range []string{"items", "articles"} {
		raw, ok := asObject[key]
		if !ok {
			continue
		}
		var entries []map[string]any
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("field %q is not an array of objects: %w", key, err)
		}
		return entries, nil
	}

	return nil, fmt.Errorf("payload does not contain an item list")
}

func firstString(entry map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := entry[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func parseEntryTime(entry map[string]any) time.Time {
	for _, key := range []string{"published_at", "date_published", "pub_date", "date"} {
		v, ok := entry[key].(string)
		if !ok || v == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339, time.RFC1123Z, time.RFC1123, "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
