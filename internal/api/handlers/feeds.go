// Package handlers contains the HTTP handler implementations for the
// GridPulse API: the per-feed proxy endpoints and the aggregated snapshot
// endpoint.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gridpulse/internal/core"
	"gridpulse/internal/feeds"
	"gridpulse/internal/types"
)

// FeedHandler proxies the four upstream feeds. On success the upstream
// payload is returned verbatim with its content type; on any Source Client
// failure the client receives a structured error envelope with a generic
// message, never the internal error detail.
type FeedHandler struct {
	sources map[string]feeds.RawSource
	logger  *slog.Logger
}

// NewFeedHandler creates a FeedHandler over the four raw feed sources.
func NewFeedHandler(mix, emissions, pricing, demand feeds.RawSource, logger *slog.Logger) *FeedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedHandler{
		sources: map[string]feeds.RawSource{
			"mix":       mix,
			"emissions": emissions,
			"pricing":   pricing,
			"demand":    demand,
		},
		logger: logger,
	}
}

// RegisterRoutes mounts the proxy endpoints under the given router group.
func (h *FeedHandler) RegisterRoutes(r chi.Router) {
	r.Get("/feeds/{feed}", h.HandleProxy)
}

// HandleProxy serves GET /v1/feeds/{feed}.
func (h *FeedHandler) HandleProxy(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "feed")

	source, ok := h.sources[name]
	if !ok {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidFeed,
			"unknown feed; expected one of mix, emissions, pricing, demand", nil))
		return
	}

	body, contentType, err := source.Raw(r.Context())
	if err != nil {
		code, _ := types.FeedErrorCode(err)
		h.logger.WarnContext(r.Context(), "feed proxy fetch failed",
			"feed", name,
			"code", string(code),
			"error", err,
		)
		core.Error(w, r, err)
		return
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
