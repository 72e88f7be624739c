// internal/httpserver/server.go
//
// HTTP server wiring for the Wordle backend.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, panic recovery, timeouts,
//     zerolog access log, JSON, CORS).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Game endpoints (optional auth): mounted under /game.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token
//     is present; routes still run for guests.

package httpserver

import (
	"database/sql"
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/internal/cryptorand"
	"github.com/robalobadob/wordle/internal/live"
	"github.com/robalobadob/wordle/internal/store"
	"github.com/robalobadob/wordle/internal/words"
)

// Options configures a Server. Zero values fall back to development defaults.
type Options struct {
	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	ClientOrigin   string
	Production     bool
	DailySalt      string
	RequestTimeout time.Duration

	// Cookies signs the anonymous player cookie; random keys when nil.
	Cookies *securecookie.SecureCookie
	// Rand picks random targets; crypto-backed when nil.
	Rand *rand.Rand
	// Now is the clock for daily puzzles; time.Now when nil.
	Now func() time.Time
}

func (o *Options) setDefaults() {
	if o.JWTSecret == "" {
		o.JWTSecret = "dev_secret_change_me"
	}
	if o.JWTExpiresDays <= 0 {
		o.JWTExpiresDays = 14
	}
	if o.CookieName == "" {
		o.CookieName = "wordle_token"
	}
	if o.ClientOrigin == "" {
		o.ClientOrigin = "http://localhost:5173"
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 10 * time.Second
	}
	if o.Cookies == nil {
		o.Cookies = securecookie.New(securecookie.GenerateRandomKey(32), nil)
	}
	if o.Rand == nil {
		o.Rand = cryptorand.New()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Server bundles router, session store, DB handle, lexicon and live hub.
type Server struct {
	r     *chi.Mux
	store store.Store
	db    *sql.DB
	lex   *words.Lexicon
	hub   *live.Hub
	opts  Options
	daily *dailyServer

	randMu sync.Mutex
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, db *sql.DB, lex *words.Lexicon, hub *live.Hub, opts Options) *Server {
	opts.setDefaults()
	s := &Server{r: chi.NewRouter(), store: st, db: db, lex: lex, hub: hub, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                    // add X-Request-ID
	s.r.Use(chimw.RealIP)                       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                      // zerolog access log
	s.r.Use(chimw.Recoverer)                    // recover from panics
	s.r.Use(chimw.Timeout(opts.RequestTimeout)) // bound handler time
	s.r.Use(jsonContentType)                    // default JSON responses
	s.r.Use(cors(opts.ClientOrigin))            // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "wordle-go",
			"endpoints": []string{"/health", "POST /game/new", "POST /game/guess", "/daily/*", "/auth/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": s.store.Len()})
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		answers, allowed := s.lex.Stats()
		writeJSON(w, http.StatusOK, map[string]any{"answers": answers, "allowed": allowed, "lengths": s.lex.Lengths()})
	})

	// Game + daily: optional auth, guests can play.
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		s.mountGame(r)
		s.mountDaily(r)
	})

	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs method, path, status, bytes and duration per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("dur", time.Since(start)).
			Msg("http")
	})
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// errorRes is the body of every non-2xx JSON response.
type errorRes struct {
	Error  string `json:"error"`
	Render any    `json:"render,omitempty"`
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorRes{Error: msg})
}

// randomAnswer picks a target of length n. *rand.Rand is not safe for
// concurrent use, hence the mutex.
func (s *Server) randomAnswer(n int) (string, error) {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.lex.RandomAnswer(n, s.opts.Rand)
}

func (s *Server) now() time.Time { return s.opts.Now() }
