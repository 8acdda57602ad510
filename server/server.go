// Package server exposes the whiteboard service over HTTP: account and
// document management as JSON endpoints, live drawing as a websocket
// upgrade per document.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/adroste/nowte/auth"
	"github.com/adroste/nowte/config"
	"github.com/adroste/nowte/idgen"
	"github.com/adroste/nowte/observability"
	"github.com/adroste/nowte/realtime"
	"github.com/adroste/nowte/safe"
	"github.com/adroste/nowte/shield"
	"github.com/adroste/nowte/store"
)

// Server holds the wiring shared by all handlers.
type Server struct {
	cfg     *config.Config
	store   *store.Store
	manager *realtime.Manager
	events  *observability.EventLogger
	log     *slog.Logger
	secret  []byte
	limiter *shield.RateLimiter

	newUserID idgen.Generator
	newDirID  idgen.Generator
	newDocID  idgen.Generator
	newConnID idgen.Generator
}

// New assembles a server. events may be nil to disable event recording.
func New(cfg *config.Config, st *store.Store, manager *realtime.Manager, events *observability.EventLogger, secret []byte, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cfg:       cfg,
		store:     st,
		manager:   manager,
		events:    events,
		log:       log,
		secret:    secret,
		limiter:   shield.NewRateLimiter(st.DB, "/healthz"),
		newUserID: idgen.Prefixed("usr_", idgen.UUIDv7()),
		newDirID:  idgen.Prefixed("dir_", idgen.UUIDv7()),
		newDocID:  idgen.Prefixed("doc_", idgen.UUIDv7()),
		newConnID: idgen.Prefixed("conn_", idgen.UUIDv7()),
	}
}

// StartRateLimitReloader begins periodic refresh of rate limit rules
// from the database. Stops when done is closed.
func (s *Server) StartRateLimitReloader(done <-chan struct{}) {
	s.limiter.StartReloader(done)
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(shield.SecurityHeaders(shield.DefaultHeaders()))
	r.Use(shield.MaxJSONBody(safe.MaxRequestBody))
	r.Use(s.limiter.Middleware)
	r.Use(auth.Middleware(s.secret))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)

			r.Get("/auth/me", s.handleMe)

			r.Get("/folders", s.handleListFolders)
			r.Post("/folders", s.handleCreateFolder)
			r.Patch("/folders/{folderID}", s.handleUpdateFolder)
			r.Delete("/folders/{folderID}", s.handleDeleteFolder)

			r.Get("/documents", s.handleListDocuments)
			r.Post("/documents", s.handleCreateDocument)
			r.Get("/documents/{documentID}", s.handleGetDocument)
			r.Patch("/documents/{documentID}", s.handleUpdateDocument)
			r.Delete("/documents/{documentID}", s.handleDeleteDocument)

			r.Get("/documents/{documentID}/ws", s.handleDocumentWS)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

// recordEvent writes a domain event if an event logger is configured.
func (s *Server) recordEvent(r *http.Request, ev observability.Event) {
	if s.events == nil {
		return
	}
	if ev.UserID == "" {
		if claims := auth.GetClaims(r.Context()); claims != nil {
			ev.UserID = claims.UserID
		}
	}
	s.events.LogEvent(r.Context(), ev)
}
