package www

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"bracket/store"

	"github.com/gorilla/sessions"
)

const (
	sessionName    = "bracket_session"
	sessionUserKey = "user_id"
	rememberMaxAge = 7 * 24 * 60 * 60 // 7 days
)

type sessionStore struct {
	store *sessions.CookieStore
}

// newSessionStore builds the cookie store. secret is base64; a missing or
// short secret gets a random key, which logs everyone out on restart.
func newSessionStore(secret string, secure bool) *sessionStore {
	var key []byte
	if secret != "" {
		key, _ = base64.StdEncoding.DecodeString(secret)
	}
	if len(key) < 32 {
		key = make([]byte, 32)
		rand.Read(key)
	}
	cs := sessions.NewCookieStore(key)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   rememberMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &sessionStore{store: cs}
}

func (s *sessionStore) get(r *http.Request) *sessions.Session {
	sess, _ := s.store.Get(r, sessionName)
	return sess
}

func (s *sessionStore) getUserID(r *http.Request) (string, bool) {
	id, ok := s.get(r).Values[sessionUserKey].(string)
	return id, ok && id != ""
}

// setUser starts a session. Without remember the cookie ends with the browser.
func (s *sessionStore) setUser(w http.ResponseWriter, r *http.Request, userID string, remember bool) error {
	sess := s.get(r)
	sess.Values[sessionUserKey] = userID
	if !remember {
		sess.Options.MaxAge = 0
	}
	return sess.Save(r, w)
}

func (s *sessionStore) clear(w http.ResponseWriter, r *http.Request) {
	sess := s.get(r)
	delete(sess.Values, sessionUserKey)
	sess.Options.MaxAge = -1
	sess.Save(r, w)
}

type ctxKey int

const userKey ctxKey = iota

func withUser(ctx context.Context, u *store.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// currentUser returns the user set by requireUser.
func currentUser(r *http.Request) *store.User {
	u, _ := r.Context().Value(userKey).(*store.User)
	return u
}

// requireUser loads the session's user or sends the visitor to /join.
// API requests get a 401 instead of a redirect.
func (h *Handlers) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var user *store.User
		if id, ok := h.sessions.getUserID(r); ok {
			user, _ = h.engine.User(id)
		}
		if user == nil {
			if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/events" {
				writeError(w, http.StatusUnauthorized, "login required")
				return
			}
			http.Redirect(w, r, "/join?redirectTo="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}
