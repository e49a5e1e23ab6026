package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/arefin/crud-backend/internal/auth"
	"github.com/arefin/crud-backend/internal/service"
)

// NoteHandler exposes CRUD and search endpoints for notes. All routes
// require authentication; results are always scoped to the caller.
type NoteHandler struct {
	notes  *service.NoteService
	logger *slog.Logger
}

func NewNoteHandler(notes *service.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, logger: logger}
}

// HandleList returns the caller's notes, optionally filtered by archived
// state.
//
// HTTP: GET /api/v1/notes?skip=&limit=&archived=
func (h *NoteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	var archived *bool
	if v := r.URL.Query().Get("archived"); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			archived = &b
		}
	}

	notes, err := h.notes.List(r.Context(), actor, archived, listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// HandleSearch finds notes matching the q parameter in title or content.
//
// HTTP: GET /api/v1/notes/search?q=&skip=&limit=
func (h *NoteHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	notes, err := h.notes.Search(r.Context(), actor, r.URL.Query().Get("q"), listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// HandleGet returns a single note.
//
// HTTP: GET /api/v1/notes/{id}
func (h *NoteHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	note, err := h.notes.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// HandleCreate stores a new note owned by the caller.
//
// HTTP: POST /api/v1/notes
func (h *NoteHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	var params service.NoteParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, err)
		return
	}

	note, err := h.notes.Create(r.Context(), actor, params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, note)
}

// HandleUpdate applies a partial update to a note.
//
// HTTP: PUT /api/v1/notes/{id}
func (h *NoteHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	var params service.UpdateNoteParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, err)
		return
	}

	note, err := h.notes.Update(r.Context(), actor, r.PathValue("id"), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

// HandleDelete removes a note.
//
// HTTP: DELETE /api/v1/notes/{id}
func (h *NoteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	if err := h.notes.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
