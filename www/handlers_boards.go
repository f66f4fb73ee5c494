package www

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"bracket/board"
	"bracket/reorder"

	"github.com/go-chi/chi/v5"
)

// loadBoard resolves the {list} board for the current user, writing the
// error response itself when it fails.
func (h *Handlers) loadBoard(w http.ResponseWriter, r *http.Request) (*board.Board, bool) {
	b, err := h.engine.Board(r.Context(), currentUser(r).ID, chi.URLParam(r, "list"))
	if errors.Is(err, board.ErrUnknownList) {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	if err != nil {
		log.Printf("load board: %v", err)
		writeError(w, http.StatusInternalServerError, "could not load board")
		return nil, false
	}
	return b, true
}

func (h *Handlers) handleBoardPage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	b, err := h.engine.Board(r.Context(), user.ID, chi.URLParam(r, "list"))
	if errors.Is(err, board.ErrUnknownList) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("load board: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.renderTemplate(w, "board.html", map[string]any{
		"Page":  "board",
		"User":  user,
		"View":  b.View(),
		"Lists": h.engine.Boards().Lists(),
	})
}

func (h *Handlers) apiBoardView(w http.ResponseWriter, r *http.Request) {
	b, ok := h.loadBoard(w, r)
	if !ok {
		return
	}
	writeJSON(w, b.View())
}

type itemRequest struct {
	ID string `json:"id"`
}

func decodeItem(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return "", false
	}
	return req.ID, true
}

// respondGesture replies with the board's view. An unknown id gets a 404
// carrying the view so the client can resync its rendering.
func respondGesture(w http.ResponseWriter, b *board.Board, err error) {
	if errors.Is(err, reorder.ErrNotFound) {
		writeJSONStatus(w, http.StatusNotFound, map[string]any{
			"error": err.Error(),
			"view":  b.View(),
		})
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, b.View())
}

func (h *Handlers) apiDragStart(w http.ResponseWriter, r *http.Request) {
	b, ok := h.loadBoard(w, r)
	if !ok {
		return
	}
	id, ok := decodeItem(w, r)
	if !ok {
		return
	}
	respondGesture(w, b, b.DragStart(id))
}

func (h *Handlers) apiHover(w http.ResponseWriter, r *http.Request) {
	b, ok := h.loadBoard(w, r)
	if !ok {
		return
	}
	id, ok := decodeItem(w, r)
	if !ok {
		return
	}
	respondGesture(w, b, b.HoverOver(id))
}

func (h *Handlers) apiDrop(w http.ResponseWriter, r *http.Request) {
	b, ok := h.loadBoard(w, r)
	if !ok {
		return
	}
	b.Drop()
	writeJSON(w, b.View())
}

func (h *Handlers) apiCancel(w http.ResponseWriter, r *http.Request) {
	b, ok := h.loadBoard(w, r)
	if !ok {
		return
	}
	b.Cancel()
	writeJSON(w, b.View())
}

func (h *Handlers) apiDragEnd(w http.ResponseWriter, r *http.Request) {
	b, ok := h.loadBoard(w, r)
	if !ok {
		return
	}
	var req struct {
		SourceIndex      *int `json:"source_index"`
		DestinationIndex *int `json:"destination_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SourceIndex == nil {
		writeError(w, http.StatusBadRequest, "source_index is required")
		return
	}
	_, err := b.DragEnd(req.SourceIndex, req.DestinationIndex)
	respondGesture(w, b, err)
}
