package www

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"
)

const defaultRedirect = "/"

// safeRedirect returns to when it is a same-site absolute path, otherwise
// fallback. It keeps login redirects from leaving the site.
func safeRedirect(to, fallback string) string {
	if fallback == "" {
		fallback = defaultRedirect
	}
	if to == "" || !strings.HasPrefix(to, "/") || strings.HasPrefix(to, "//") || strings.HasPrefix(to, "/\\") {
		return fallback
	}
	return to
}

// validateEmail is the cheap form check done before the address is parsed.
func validateEmail(email string) bool {
	return len(email) > 3 && strings.Contains(email, "@")
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSONStatus(w, status, map[string]string{"error": msg})
}
