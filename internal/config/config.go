// internal/config/config.go
//
// Server configuration.
// Every option is a command-line flag that falls back to an environment
// variable of the upper-cased name (db-path → DB_PATH), then to its default.
// Call godotenv.Load before Load to pick up a local .env file.

package config

import (
	"time"

	"github.com/namsral/flag"
	"github.com/rs/zerolog"
)

// Config holds everything the server reads at startup.
type Config struct {
	Port           string
	DBPath         string
	LogLevel       string
	LogPretty      bool
	WordsDir       string
	DailySalt      string
	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	CookieHashKey  string
	CookieBlockKey string
	ClientOrigin   string
	Production     bool
	RequestTimeout time.Duration
}

// DevJWTSecret is used when no secret is configured outside production.
const DevJWTSecret = "dev_secret_change_me"

// Load parses args (without the program name) and the environment.
func Load(name string, args []string) (*Config, error) {
	c := &Config{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&c.Port, "port", "5175", "HTTP port")
	fs.StringVar(&c.DBPath, "db-path", "./data/app.db", "SQLite database file")
	fs.StringVar(&c.LogLevel, "log-level", "info", "zerolog level (debug, info, warn, error)")
	fs.BoolVar(&c.LogPretty, "log-pretty", false, "human-readable console logs")
	fs.StringVar(&c.WordsDir, "words-dir", "", "directory with answers_<n>.txt and dictionary.txt; embedded lists when empty")
	fs.StringVar(&c.DailySalt, "daily-salt", "", "HMAC salt for the daily word; empty walks the pool by date")
	fs.StringVar(&c.JWTSecret, "jwt-secret", DevJWTSecret, "HS256 signing secret")
	fs.IntVar(&c.JWTExpiresDays, "jwt-expires-days", 14, "token lifetime in days")
	fs.StringVar(&c.CookieName, "cookie-name", "wordle_token", "auth cookie name")
	fs.StringVar(&c.CookieHashKey, "cookie-hash-key", "", "securecookie hash key; random per process when empty")
	fs.StringVar(&c.CookieBlockKey, "cookie-block-key", "", "securecookie block key (16, 24 or 32 bytes); optional")
	fs.StringVar(&c.ClientOrigin, "client-origin", "http://localhost:5173", "allowed CORS origin")
	fs.BoolVar(&c.Production, "production", false, "secure cookies and SameSite=None")
	fs.DurationVar(&c.RequestTimeout, "request-timeout", 10*time.Second, "per-request handler timeout")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

// Level returns the parsed log level, defaulting to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
