package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/hlog"

	"brandpost/autoposter/internal/models"
	"brandpost/autoposter/internal/server/pagination"
	"brandpost/autoposter/internal/server/storage"
)

const defaultLimit = 100
const maxLimit = 1000
const iso8601Format = time.RFC3339

// Response structure for the posted links endpoint
type Response struct {
	Items      []models.PostedLink `json:"items"`
	NextCursor *string             `json:"next_cursor,omitempty"`
}

// PostedLinksHandler serves the publish history.
type PostedLinksHandler struct {
	repo storage.PostedLinkRepository
}

// NewPostedLinksHandler creates a new handler instance.
func NewPostedLinksHandler(repo storage.PostedLinkRepository) *PostedLinksHandler {
	return &PostedLinksHandler{
		repo: repo,
	}
}

// GetPostedLinks handles requests to fetch the publish history.
func (h *PostedLinksHandler) GetPostedLinks(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)
	log.Debug().Msg("Processing posted links request")

	ctx := r.Context()
	query := r.URL.Query()

	limit := defaultLimit
	if limitStr := query.Get("limit"); limitStr != "" {
		parsedLimit, err := strconv.Atoi(limitStr)
		if err != nil || parsedLimit <= 0 || parsedLimit > maxLimit {
			log.Warn().Err(err).Str("limit", limitStr).Msg("Invalid 'limit' parameter value")
			http.Error(w, fmt.Sprintf("Invalid 'limit' parameter: must be between 1 and %d", maxLimit), http.StatusBadRequest)
			return
		}
		limit = parsedLimit
	}

	var tenantID *int64
	if tenantStr := query.Get("tenant_id"); tenantStr != "" {
		id, err := strconv.ParseInt(tenantStr, 10, 64)
		if err != nil {
			log.Warn().Err(err).Str("tenant_id", tenantStr).Msg("Invalid 'tenant_id' parameter")
			http.Error(w, "Invalid 'tenant_id' parameter", http.StatusBadRequest)
			return
		}
		tenantID = &id
	}

	var since *time.Time
	var cursor *pagination.Cursor

	switch {
	case query.Get("cursor") != "":
		decoded, err := pagination.Decode(query.Get("cursor"))
		if err != nil {
			log.Warn().Err(err).Str("cursor", query.Get("cursor")).Msg("Invalid 'cursor' parameter")
			http.Error(w, "Invalid 'cursor' parameter", http.StatusBadRequest)
			return
		}
		cursor = &decoded
	case query.Get("since") != "":
		parsedSince, err := time.Parse(iso8601Format, query.Get("since"))
		if err != nil {
			log.Warn().Err(err).Str("since", query.Get("since")).Msg("Invalid 'since' parameter format")
			http.Error(w, "Invalid 'since' parameter: use RFC3339 format (e.g., 2025-03-28T15:00:00Z)", http.StatusBadRequest)
			return
		}
		utcSince := parsedSince.UTC()
		since = &utcSince
	default:
		log.Warn().Msg("Missing required parameter: 'since' or 'cursor'")
		http.Error(w, "Missing required parameter: 'since' or 'cursor'", http.StatusBadRequest)
		return
	}

	items, err := h.repo.FetchPostedLinks(ctx, limit+1, tenantID, since, cursor) // Fetch one extra
	if err != nil {
		log.Error().Err(err).Msg("Error fetching posted links from repository")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var nextCursorStr *string
	hasNextPage := len(items) > limit
	actualItems := items
	if hasNextPage {
		actualItems = items[:limit]
		if len(actualItems) > 0 {
			last := actualItems[len(actualItems)-1]
			encoded := pagination.Cursor{ProcessedAt: last.ProcessedAt.UTC(), ID: last.ID}.Encode()
			nextCursorStr = &encoded
		}
	}

	writeJSON(w, r, Response{Items: actualItems, NextCursor: nextCursorStr})
}

func writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	log := hlog.FromRequest(r)

	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Error marshaling JSON response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(jsonBytes); err != nil {
		log.Error().Err(err).Msg("Error writing JSON response body to client")
	}
	log.Debug().Int("bytes_written", len(jsonBytes)).Msg("Response completed")
}
