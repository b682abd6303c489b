// Package api serves the catalog, filtering and favorites over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abelbrown/herbal/internal/catalog"
	"github.com/abelbrown/herbal/internal/filter"
	"github.com/abelbrown/herbal/internal/otel"
	"github.com/abelbrown/herbal/internal/session"
	"github.com/abelbrown/herbal/internal/store"
)

// UserHeader names the requesting user. The "user" query parameter is
// accepted as well.
const UserHeader = "X-Herbal-User"

// DefaultSessionLimit bounds how many per-user sessions stay cached.
const DefaultSessionLimit = 1024

// Server keeps recently used per-user sessions over a shared catalog. Every
// request runs under one mutex, so each mutation completes before the next
// starts. Anonymous requests get a fresh session that is never cached.
type Server struct {
	plants  []catalog.Plant
	kv      store.KV
	log     *otel.Logger
	opts    session.Options
	metrics *metrics

	mu       sync.Mutex
	sessions *lru.Cache[string, *session.Session]
}

// New builds a Server. opts.Log, if set, also receives request events.
func New(plants []catalog.Plant, kv store.KV, opts session.Options) *Server {
	return newServer(plants, kv, opts, DefaultSessionLimit)
}

func newServer(plants []catalog.Plant, kv store.KV, opts session.Options, limit int) *Server {
	if limit <= 0 {
		limit = DefaultSessionLimit
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, *session.Session](limit)
	s := &Server{
		plants:   plants,
		kv:       kv,
		log:      opts.Log,
		opts:     opts,
		metrics:  newMetrics(),
		sessions: cache,
	}
	s.metrics.catalogSize.Set(float64(len(plants)))
	return s
}

// Registry exposes the metrics registry (for tests and embedding).
func (s *Server) Registry() *prometheus.Registry { return s.metrics.reg }

// Handler returns the HTTP handler with CORS and request logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/plants", s.handlePlants)
	mux.HandleFunc("GET /api/plants/{name}", s.handlePlant)
	mux.HandleFunc("GET /api/systems", s.handleSystems)
	mux.HandleFunc("GET /api/favorites", s.handleFavorites)
	mux.HandleFunc("POST /api/favorites/{name}", s.handleToggle)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": true, "plants": len(s.plants)})
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.reg, promhttp.HandlerOpts{}))
	return withCommonHeaders(s.withLogging(mux))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// sessionFor returns user's session, creating it on first use. An evicted
// session is rebuilt from the store. Callers hold s.mu.
func (s *Server) sessionFor(user string) *session.Session {
	if user == "" {
		return session.New(s.plants, s.kv, "", s.opts)
	}
	if sess, ok := s.sessions.Get(user); ok {
		return sess
	}
	sess := session.New(s.plants, s.kv, user, s.opts)
	s.sessions.Add(user, sess)
	return sess
}

func userOf(r *http.Request) string {
	if u := strings.TrimSpace(r.Header.Get(UserHeader)); u != "" {
		return u
	}
	return strings.TrimSpace(r.URL.Query().Get("user"))
}

type plantsResp struct {
	Mode    filter.Mode    `json:"mode"`
	Query   string         `json:"query"`
	System  string         `json:"system"`
	Count   int            `json:"count"`
	Results []session.Card `json:"results"`
}

func (s *Server) handlePlants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := filter.ModeDisease
	if raw := q.Get("mode"); raw != "" {
		m, err := filter.ParseMode(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mode = m
	}

	s.mu.Lock()
	sess := s.sessionFor(userOf(r))
	sess.SetMode(mode)
	sess.SetQuery(q.Get("q"))
	sess.SetSystem(q.Get("system"))
	state := sess.State()
	cards := sess.Cards()
	s.mu.Unlock()

	s.metrics.filterRequests.WithLabelValues(string(mode)).Inc()
	writeJSON(w, plantsResp{
		Mode:    state.Mode,
		Query:   state.Query,
		System:  state.System,
		Count:   len(cards),
		Results: cards,
	})
}

type plantResp struct {
	catalog.DetailView
	Favorite bool `json:"favorite"`
}

func (s *Server) handlePlant(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	s.mu.Lock()
	sess := s.sessionFor(userOf(r))
	d, ok := sess.Details(name)
	fav := ok && sess.IsFavorite(name)
	s.mu.Unlock()

	if !ok {
		http.Error(w, fmt.Sprintf("no plant named %q", name), http.StatusNotFound)
		return
	}
	writeJSON(w, plantResp{DetailView: d, Favorite: fav})
}

func (s *Server) handleSystems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, catalog.Systems(s.plants))
}

type favoritesResp struct {
	User      string   `json:"user"`
	Favorites []string `json:"favorites"`
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	user := userOf(r)
	if user == "" {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}

	s.mu.Lock()
	names := s.sessionFor(user).Favorites()
	s.mu.Unlock()

	writeJSON(w, favoritesResp{User: user, Favorites: names})
}

type toggleResp struct {
	Name      string `json:"name"`
	Favorite  bool   `json:"favorite"`
	Persisted bool   `json:"persisted"`
	Error     string `json:"error,omitempty"`
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	user := userOf(r)
	if user == "" {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}
	name := r.PathValue("name")
	if _, ok := catalog.Find(s.plants, name); !ok {
		http.Error(w, fmt.Sprintf("no plant named %q", name), http.StatusNotFound)
		return
	}

	s.mu.Lock()
	on, err := s.sessionFor(user).ToggleFavorite(name)
	s.mu.Unlock()

	resp := toggleResp{Name: name, Favorite: on, Persisted: err == nil}
	switch {
	case err != nil:
		resp.Error = err.Error()
		s.metrics.favoriteToggles.WithLabelValues("error").Inc()
	case on:
		s.metrics.favoriteToggles.WithLabelValues("added").Inc()
	default:
		s.metrics.favoriteToggles.WithLabelValues("removed").Inc()
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}

func withCommonHeaders(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+UserHeader)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)

		dur := time.Since(start)
		s.metrics.requestDuration.WithLabelValues(r.Method, fmt.Sprintf("%d", rec.status)).Observe(dur.Seconds())

		level := otel.LevelInfo
		if rec.status >= 500 {
			level = otel.LevelError
		}
		s.log.Emit(otel.Event{
			Level: level,
			Kind:  otel.KindRequest,
			Comp:  "api",
			User:  userOf(r),
			Msg:   r.Method + " " + r.URL.Path,
			Count: rec.status,
			Dur:   dur,
		})
	})
}
