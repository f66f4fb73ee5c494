package www

import (
	"errors"
	"log"
	"net/http"

	"bracket/magiclink"
	"bracket/metrics"
)

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.getUserID(r); ok {
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/join", http.StatusSeeOther)
}

func (h *Handlers) handleJoinPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.getUserID(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderTemplate(w, "join.html", map[string]any{
		"Page":       "join",
		"Email":      "",
		"RedirectTo": r.URL.Query().Get("redirectTo"),
	})
}

func (h *Handlers) handleJoin(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	data := map[string]any{
		"Page":       "join",
		"Email":      email,
		"RedirectTo": r.FormValue("redirectTo"),
	}

	if !validateEmail(email) {
		metrics.LoginLinksTotal.WithLabelValues("invalid").Inc()
		data["EmailError"] = "Email is invalid"
		h.renderStatus(w, http.StatusBadRequest, "join.html", data)
		return
	}

	_, err := h.engine.Join(r.Context(), email, r.FormValue("redirectTo"))
	switch {
	case err == nil:
		data["OK"] = true
		h.renderTemplate(w, "join.html", data)
	case errors.Is(err, magiclink.ErrInvalidEmail):
		metrics.LoginLinksTotal.WithLabelValues("invalid").Inc()
		data["EmailError"] = "Email is invalid"
		h.renderStatus(w, http.StatusBadRequest, "join.html", data)
	case errors.Is(err, magiclink.ErrRateLimited):
		metrics.LoginLinksTotal.WithLabelValues("rate_limited").Inc()
		data["EmailError"] = "Too many login links requested. Try again later."
		h.renderStatus(w, http.StatusTooManyRequests, "join.html", data)
	default:
		log.Printf("join %s: %v", email, err)
		data["EmailError"] = "Something went wrong. Please try again."
		h.renderStatus(w, http.StatusInternalServerError, "join.html", data)
	}
}

// handleLogin redeems the token from an emailed link.
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Redirect(w, r, "/join", http.StatusSeeOther)
		return
	}
	user, err := h.engine.Login(r.Context(), token)
	if err != nil {
		log.Printf("login: %v", err)
		http.Redirect(w, r, "/join", http.StatusSeeOther)
		return
	}
	if err := h.sessions.setUser(w, r, user.ID, true); err != nil {
		log.Printf("login: save session: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, safeRedirect(r.URL.Query().Get("redirectTo"), "/notes"), http.StatusSeeOther)
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if id, ok := h.sessions.getUserID(r); ok {
		h.engine.Logout(id)
	}
	h.sessions.clear(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
