// Package pagination implements opaque keyset cursors over
// (processed_at, id) pairs for stable paging of the posted-links feed.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const separator = "|"
const timeFormat = time.RFC3339Nano // Nano precision keeps ordering stable

// Cursor points just past one posted link.
type Cursor struct {
	ProcessedAt time.Time
	ID          int64
}

// Encode returns the opaque string form of the cursor.
func (c Cursor) Encode() string {
	key := c.ProcessedAt.UTC().Format(timeFormat) + separator + strconv.FormatInt(c.ID, 10)
	return base64.URLEncoding.EncodeToString([]byte(key))
}

// Decode parses an opaque cursor string.
func Decode(encoded string) (Cursor, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid cursor encoding: %w", err)
	}

	parts := strings.SplitN(string(raw), separator, 2)
	if len(parts) != 2 {
		return Cursor{}, fmt.Errorf("invalid cursor format")
	}

	ts, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid timestamp in cursor: %w", err)
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid id in cursor: %w", err)
	}

	return Cursor{ProcessedAt: ts.UTC(), ID: id}, nil
}
