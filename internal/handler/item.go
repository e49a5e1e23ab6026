package handler

import (
	"log/slog"
	"net/http"

	"github.com/arefin/crud-backend/internal/auth"
	"github.com/arefin/crud-backend/internal/service"
)

// ItemHandler exposes CRUD endpoints for owned items. All routes require
// authentication.
type ItemHandler struct {
	items  *service.ItemService
	logger *slog.Logger
}

func NewItemHandler(items *service.ItemService, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{items: items, logger: logger}
}

// HandleList returns the caller's items.
//
// HTTP: GET /api/v1/items?skip=&limit=
func (h *ItemHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	items, err := h.items.List(r.Context(), actor, listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleGet returns a single item.
//
// HTTP: GET /api/v1/items/{id}
func (h *ItemHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	item, err := h.items.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// HandleCreate stores a new item owned by the caller.
//
// HTTP: POST /api/v1/items
func (h *ItemHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	var params service.ItemParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.items.Create(r.Context(), actor, params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// HandleUpdate applies a partial update to an item.
//
// HTTP: PUT /api/v1/items/{id}
func (h *ItemHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	var params service.UpdateItemParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.items.Update(r.Context(), actor, r.PathValue("id"), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// HandleDelete removes an item.
//
// HTTP: DELETE /api/v1/items/{id}
func (h *ItemHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	if err := h.items.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
