// cmd/wordle-server/main.go
//
// Entry point for the Wordle HTTP server.
// Responsibilities:
//   - Load .env, flags and environment into config.
//   - Configure zerolog (level, optional pretty console output).
//   - Load word lists, open + migrate SQLite.
//   - Wire the session store, live hub and HTTP server, then serve until
//     SIGINT/SIGTERM.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/internal/config"
	"github.com/robalobadob/wordle/internal/cryptorand"
	"github.com/robalobadob/wordle/internal/db"
	"github.com/robalobadob/wordle/internal/httpserver"
	"github.com/robalobadob/wordle/internal/live"
	"github.com/robalobadob/wordle/internal/store"
	"github.com/robalobadob/wordle/internal/words"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Args[0], os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	zerolog.SetGlobalLevel(cfg.Level())
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	if cfg.Production && cfg.JWTSecret == config.DevJWTSecret {
		log.Fatal().Msg("JWT_SECRET must be set in production")
	}

	lex, err := words.Load(cfg.WordsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}

	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open db")
	}
	defer sqlDB.Close()
	if err := db.Migrate(sqlDB); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	hub := live.New()
	defer hub.Close()

	srv := httpserver.New(store.NewMemoryStore(), sqlDB, lex, hub, httpserver.Options{
		JWTSecret:      cfg.JWTSecret,
		JWTExpiresDays: cfg.JWTExpiresDays,
		CookieName:     cfg.CookieName,
		ClientOrigin:   cfg.ClientOrigin,
		Production:     cfg.Production,
		DailySalt:      cfg.DailySalt,
		RequestTimeout: cfg.RequestTimeout,
		Cookies:        cookieCodec(cfg),
		Rand:           cryptorand.New(),
	})

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", cfg.Port).Str("db", cfg.DBPath).Msg("starting wordle-server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// cookieCodec builds the anonymous-cookie codec. Without a configured hash
// key, cookies only survive until restart.
func cookieCodec(cfg *config.Config) *securecookie.SecureCookie {
	hashKey := []byte(cfg.CookieHashKey)
	if len(hashKey) == 0 {
		log.Warn().Msg("COOKIE_HASH_KEY not set; anonymous cookies reset on restart")
		hashKey = securecookie.GenerateRandomKey(32)
	}
	var blockKey []byte
	if cfg.CookieBlockKey != "" {
		blockKey = []byte(cfg.CookieBlockKey)
	}
	return securecookie.New(hashKey, blockKey)
}
