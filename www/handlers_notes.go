package www

import (
	"errors"
	"log"
	"net/http"

	"bracket/engine"
	"bracket/store"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) handleNotes(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	notes, err := h.engine.Notes(user.ID)
	if err != nil {
		log.Printf("list notes for %s: %v", user.ID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.renderTemplate(w, "notes.html", map[string]any{
		"Page":  "notes",
		"User":  user,
		"Notes": notes,
	})
}

func (h *Handlers) handleNewNotePage(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, "note_new.html", map[string]any{
		"Page":   "notes",
		"User":   currentUser(r),
		"Title":  "",
		"Body":   "",
		"Errors": map[string]string{},
	})
}

func (h *Handlers) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	title, body := r.FormValue("title"), r.FormValue("body")

	note, err := h.engine.CreateNote(user.ID, title, body)
	var verr *engine.ValidationError
	if errors.As(err, &verr) {
		h.renderStatus(w, http.StatusBadRequest, "note_new.html", map[string]any{
			"Page":   "notes",
			"User":   user,
			"Title":  title,
			"Body":   body,
			"Errors": verr.Fields,
		})
		return
	}
	if err != nil {
		log.Printf("create note for %s: %v", user.ID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/notes/"+note.ID, http.StatusSeeOther)
}

func (h *Handlers) handleNote(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	note, err := h.engine.Note(user.ID, chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("get note: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.renderTemplate(w, "note.html", map[string]any{
		"Page": "notes",
		"User": user,
		"Note": note,
	})
}

func (h *Handlers) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	err := h.engine.DeleteNote(user.ID, chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("delete note: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}
