package fetch

import (
	"fmt"

	"brandpost/autoposter/internal/models"
)

// MalformedItemError explains why one feed entry was dropped during
// normalization. Dropping is per-entry; the rest of the feed still succeeds.
type MalformedItemError struct {
	Link   string
	Reason string
}

func (e *MalformedItemError) Error() string {
	if e.Link == "" {
		return fmt.Sprintf("malformed item: %s", e.Reason)
	}
	return fmt.Sprintf("malformed item %s: %s", e.Link, e.Reason)
}

// checkItem returns a MalformedItemError when the item lacks a field
// rendering requires, nil otherwise.
func checkItem(item models.NewsItem) error {
	var reason string
	switch {
	case item.SourceLink == "":
		reason = "missing link"
	case item.Title == "":
		reason = "missing title"
	case item.Summary == "":
		reason = "missing summary"
	case item.ImageURL == "":
		reason = "missing image"
	default:
		return nil
	}
	return &MalformedItemError{Link: item.SourceLink, Reason: reason}
}
