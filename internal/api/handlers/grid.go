package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gridpulse/internal/aggregate"
	"gridpulse/internal/core"
	"gridpulse/internal/types"
)

// gridResponse is the snapshot payload served to consumers. Categories are a
// pure projection recomputed on every read, never stored with the snapshot.
type gridResponse struct {
	types.GridState
	Categories types.CategoryBreakdown `json:"categories"`
}

// GridHandler serves the latest aggregated snapshot.
type GridHandler struct {
	store *aggregate.Store
}

// NewGridHandler creates a GridHandler over the snapshot store.
func NewGridHandler(store *aggregate.Store) *GridHandler {
	return &GridHandler{store: store}
}

// RegisterRoutes mounts the snapshot endpoint under the given router group.
func (h *GridHandler) RegisterRoutes(r chi.Router) {
	r.Get("/grid", h.HandleLatest)
}

// HandleLatest serves GET /v1/grid. Until the first refresh cycle completes
// there is nothing to serve and the endpoint returns 404.
func (h *GridHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	state, ok := h.store.Latest()
	if !ok {
		core.Error(w, r, types.NewAppError(types.ErrCodeNotFoundSnapshot,
			"no snapshot available yet; the first refresh cycle has not completed", nil))
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: gridResponse{
		GridState:  state,
		Categories: state.Categories(),
	}})
}
