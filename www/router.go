package www

import (
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bracket/engine"
	"bracket/metrics"
	"bracket/reorder"
	"bracket/store"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildVer busts static asset caches once per restart.
var buildVer = time.Now().Format("20060102150405")

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	engine   *engine.Engine
	sessions *sessionStore
	tmpl     *template.Template
	eventHub *EventHub
}

// NewRouter creates the chi router and returns it along with a stop function.
func NewRouter(eng *engine.Engine) (http.Handler, func()) {
	web := eng.AppConfig().Web
	h := &Handlers{
		engine:   eng,
		sessions: newSessionStore(web.SessionSecret, web.SecureCookie),
		eventHub: NewEventHub(),
	}

	funcMap := template.FuncMap{
		"ago":      humanize.Time,
		"buildVer": func() string { return buildVer },
		"ordinal":  reorder.RankLabel,
		"title":    listTitle,
		"lines":    func(s string) []string { return strings.Split(s, "\n") },
		"truncate": truncate,

		"asContestant": func(v any) *store.Contestant {
			if c, ok := v.(store.Contestant); ok {
				return &c
			}
			return nil
		},
		"asNote": func(v any) *store.Note {
			if n, ok := v.(store.Note); ok {
				return &n
			}
			return nil
		},
	}
	h.tmpl = template.Must(template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html", "templates/partials/*.html"))

	h.eventHub.Start()
	h.eventHub.SetupEngineListeners(eng)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(StaticFS()))))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.handleIndex)
	r.Get("/join", h.handleJoinPage)
	r.Post("/join", h.handleJoin)
	r.Get("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(h.requireUser)

		r.Get("/events", h.eventHub.HandleSSE)

		r.Get("/notes", h.handleNotes)
		r.Get("/notes/new", h.handleNewNotePage)
		r.Post("/notes/new", h.handleCreateNote)
		r.Get("/notes/{id}", h.handleNote)
		r.Post("/notes/{id}/delete", h.handleDeleteNote)

		r.Get("/boards/{list}", h.handleBoardPage)

		r.Route("/api/boards/{list}", func(r chi.Router) {
			r.Get("/", h.apiBoardView)
			r.Post("/drag-start", h.apiDragStart)
			r.Post("/hover", h.apiHover)
			r.Post("/drop", h.apiDrop)
			r.Post("/cancel", h.apiCancel)
			r.Post("/drag-end", h.apiDragEnd)
		})
	})

	return r, func() {
		h.eventHub.Stop()
	}
}

// requestLogger logs method, path, status and latency per request and
// records the latency by route pattern.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		if r.URL.Path == "/events" || strings.HasPrefix(r.URL.Path, "/static/") {
			return
		}
		elapsed := time.Since(start)
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Observe(elapsed.Seconds())
		log.Printf("http: %s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(),
			elapsed.Round(time.Microsecond), middleware.GetReqID(r.Context()))
	})
}

func (h *Handlers) renderTemplate(w http.ResponseWriter, name string, data any) {
	h.renderStatus(w, http.StatusOK, name, data)
}

func (h *Handlers) renderStatus(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
	}
}

func listTitle(list string) string {
	switch list {
	case engine.ListCast:
		return "Cast bracket"
	case engine.ListNotes:
		return "Note board"
	default:
		return list
	}
}
