// internal/httpserver/auth.go
//
// Accounts, sessions and per-user stats.
// Responsibilities:
//   - Signup / login / logout with bcrypt passwords and HS256 JWTs
//     (cookie or Authorization: Bearer).
//   - Optional and required auth middleware.
//   - Signed anonymous cookie so guests keep a stable identity, and
//     claiming guest history on signup/login.
//   - Stats bookkeeping when a signed-in player finishes a game.

package httpserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/wordle/internal/game"
	"github.com/robalobadob/wordle/internal/store"
)

const (
	anonCookieName = "wordle_anon"
	anonCookieTTL  = 180 * 24 * time.Hour
	recentGames    = 50
)

var (
	errUsernameTaken = errors.New("username taken")
	errBadUsername   = errors.New("username must be 3-24 letters, numbers or underscores")
	errBadPassword   = errors.New("password must be 8-100 chars")
)

// Request payloads for signup/login.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authUser is placed into request context by auth middleware.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ctxUserKey is the context key type for storing authUser.
type ctxUserKey struct{}

func currentUser(r *http.Request) *authUser {
	u, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	return u
}

// mountAuthRoutes registers authentication + gated routes (/auth/*, /stats/me, /games/mine).
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)

	s.r.Group(func(r chi.Router) {
		r.Use(s.requireAuth())
		r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, currentUser(r))
		})
		r.Get("/stats/me", s.handleStats)
		r.Get("/games/mine", s.handleMyGames)
	})
}

// handleSignup creates a new user, signs a JWT, sets auth cookie, and claims anon history.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := decodeOptional(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.createUser(r.Context(), body.Username, body.Password)
	switch {
	case errors.Is(err, errUsernameTaken):
		writeErr(w, http.StatusConflict, "Username taken")
		return
	case errors.Is(err, errBadUsername), errors.Is(err, errBadPassword):
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("create user")
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	if !s.startSession(w, r, u) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "username": u.Username, "createdAt": u.CreatedAt})
}

// handleLogin authenticates user, sets cookie, and claims anon history.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := decodeOptional(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.findUserByUsername(r.Context(), strings.TrimSpace(body.Username))
	if err != nil || !checkPassword(u.PasswordHash, body.Password) {
		writeErr(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if !s.startSession(w, r, u) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "username": u.Username})
}

// startSession signs a token, sets the cookie and adopts guest history.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, u *userRow) bool {
	tok, exp, err := s.signJWT(u.ID, u.Username)
	if err != nil {
		log.Error().Err(err).Msg("sign jwt")
		writeErr(w, http.StatusInternalServerError, "sign_failed")
		return false
	}
	s.setCookie(w, s.opts.CookieName, tok, exp)
	s.claimAnonGames(r.Context(), s.ensureAnonID(w, r), u.ID)
	return true
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setCookie(w, s.opts.CookieName, "", time.Time{})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// statsRes is returned by /stats/me. Distribution maps word length to
// guess count to wins.
type statsRes struct {
	ID           string              `json:"id"`
	GamesPlayed  int                 `json:"gamesPlayed"`
	Wins         int                 `json:"wins"`
	Streak       int                 `json:"streak"`
	MaxStreak    int                 `json:"maxStreak"`
	Distribution map[int]map[int]int `json:"distribution"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	u, err := s.findUserByID(r.Context(), me.ID)
	if err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	dist, err := s.distribution(r.Context(), me.ID)
	if err != nil {
		log.Error().Err(err).Msg("guess distribution")
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, statsRes{
		ID:           u.ID,
		GamesPlayed:  u.GamesPlayed,
		Wins:         u.Wins,
		Streak:       u.Streak,
		MaxStreak:    u.MaxStreak,
		Distribution: dist,
	})
}

func (s *Server) distribution(ctx context.Context, userID string) (map[int]map[int]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word_length, guesses, wins FROM guess_distribution WHERE user_id=?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int]map[int]int)
	for rows.Next() {
		var length, guesses, wins int
		if err := rows.Scan(&length, &guesses, &wins); err != nil {
			return nil, err
		}
		if out[length] == nil {
			out[length] = make(map[int]int)
		}
		out[length][guesses] = wins
	}
	return out, rows.Err()
}

// gameRow is one entry of /games/mine.
type gameRow struct {
	ID         string `json:"id"`
	Round      int    `json:"round"`
	Mode       string `json:"mode"`
	WordLength int    `json:"wordLength"`
	Status     string `json:"status"`
	Guesses    int    `json:"guesses"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt,omitempty"`
}

func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	rows, err := s.db.QueryContext(r.Context(),
		`SELECT id, round, mode, word_length, status, guesses, started_at, COALESCE(finished_at,'')
		 FROM games WHERE user_id=? ORDER BY started_at DESC, round DESC LIMIT ?`, me.ID, recentGames)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	defer rows.Close()

	out := []gameRow{}
	for rows.Next() {
		var gr gameRow
		if err := rows.Scan(&gr.ID, &gr.Round, &gr.Mode, &gr.WordLength, &gr.Status,
			&gr.Guesses, &gr.StartedAt, &gr.FinishedAt); err != nil {
			log.Warn().Err(err).Msg("scan game row")
			continue
		}
		out = append(out, gr)
	}
	writeJSON(w, http.StatusOK, out)
}

// --------------------------- auth middleware -------------------------------

// parseToken validates an HS256 token and returns the user it names.
func (s *Server) parseToken(ctx context.Context, tok string) (*authUser, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return nil, errors.New("invalid token: no id")
	}
	// Ensure user still exists
	u, err := s.findUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &authUser{ID: u.ID, Username: u.Username}, nil
}

// withOptionalAuth decorates requests with user context if a valid JWT is present.
// It never 401s; used for routes where guests are allowed.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := s.bearerOrCookie(r); tok != "" {
				if u, err := s.parseToken(r.Context(), tok); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth enforces a valid JWT and injects authUser into request context.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := s.bearerOrCookie(r)
			if tok == "" {
				writeErr(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			u, err := s.parseToken(r.Context(), tok)
			if err != nil {
				writeErr(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u)))
		})
	}
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.opts.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// ------------------------------ JWT & cookies ------------------------------

// signJWT creates an HS256 JWT with id/username, valid for JWTExpiresDays.
func (s *Server) signJWT(id, username string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(time.Duration(s.opts.JWTExpiresDays) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.opts.JWTSecret))
	return ss, exp, err
}

// setCookie writes an HttpOnly cookie; a zero exp deletes it.
func (s *Server) setCookie(w http.ResponseWriter, name, value string, exp time.Time) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Production,
		SameSite: http.SameSiteLaxMode,
	}
	if s.opts.Production {
		c.SameSite = http.SameSiteNoneMode // cross-site frontends need None+Secure
	}
	if exp.IsZero() {
		c.MaxAge = -1
	} else {
		c.Expires = exp
	}
	http.SetCookie(w, c)
}

// ensureAnonID returns the ID from a valid signed anon cookie or sets a new one.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		var id string
		if err := s.opts.Cookies.Decode(anonCookieName, c.Value, &id); err == nil && id != "" {
			return id
		}
	}
	id := "anon_" + uuid.NewString()
	enc, err := s.opts.Cookies.Encode(anonCookieName, id)
	if err != nil {
		log.Warn().Err(err).Msg("encode anon cookie")
		return id
	}
	s.setCookie(w, anonCookieName, enc, time.Now().Add(anonCookieTTL))
	return id
}

// claimAnonGames transfers anonymous games, daily results and unfinished
// daily sessions to a user account after auth.
func (s *Server) claimAnonGames(ctx context.Context, anonID, userID string) {
	if anonID == "" || userID == "" {
		return
	}
	ids, err := s.anonGameIDs(ctx, anonID)
	if err != nil {
		log.Warn().Err(err).Msg("list anon games")
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID); err != nil {
		log.Warn().Err(err).Msg("claim anon games")
	}
	for _, id := range ids {
		err := s.store.Update(ctx, id, func(sess *game.Session) error {
			if sess.Owner == anonID {
				sess.Owner = userID
			}
			return nil
		})
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Str("gameId", id).Msg("claim anon session")
		}
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE OR IGNORE daily_results SET user_id=? WHERE user_id=?`, userID, anonID); err != nil {
		log.Warn().Err(err).Msg("claim anon daily results")
	}
	if s.daily != nil {
		s.daily.claim(anonID, userID)
	}
}

// anonGameIDs lists the sessions anonID has a games row for.
func (s *Server) anonGameIDs(ctx context.Context, anonID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT id FROM games WHERE anonymous_id=?`, anonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ------------------------------ users --------------------------------------

// userRow matches the users table shape.
type userRow struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	GamesPlayed  int
	Wins         int
	Streak       int
	MaxStreak    int
}

// createUser validates input, checks uniqueness, hashes password, and inserts a new user.
func (s *Server) createUser(ctx context.Context, username, pw string) (*userRow, error) {
	username = strings.TrimSpace(username)
	if err := validateSignup(username, pw); err != nil {
		return nil, err
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username=?`, username).Scan(&exists)
	if err == nil {
		return nil, errUsernameTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &userRow{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(h),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.Format(time.RFC3339)); err != nil {
		return nil, err
	}
	return u, nil
}

const userColumns = `id, username, password_hash, created_at, games_played, wins, streak, max_streak`

// findUserByUsername/ID load a user row or return an error if missing.
// username compares case-insensitively (COLLATE NOCASE).
func (s *Server) findUserByUsername(ctx context.Context, username string) (*userRow, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username=?`, username))
}

func (s *Server) findUserByID(ctx context.Context, id string) (*userRow, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=?`, id))
}

func scanUser(row *sql.Row) (*userRow, error) {
	var u userRow
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created,
		&u.GamesPlayed, &u.Wins, &u.Streak, &u.MaxStreak); err != nil {
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}

func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// validateSignup enforces basic username/password rules.
func validateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return errBadUsername
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errBadUsername
		}
	}
	if len(p) < 8 || len(p) > 100 {
		return errBadPassword
	}
	return nil
}

// bumpStats records a finished game for userID within tx: games played,
// wins, current and best streak, and the guess distribution on a win.
func bumpStats(ctx context.Context, tx *sql.Tx, userID string, won bool, wordLength, guesses int) error {
	var gp, wins, streak, maxStreak int
	if err := tx.QueryRowContext(ctx,
		`SELECT games_played, wins, streak, max_streak FROM users WHERE id=?`, userID,
	).Scan(&gp, &wins, &streak, &maxStreak); err != nil {
		return err
	}
	gp++
	if won {
		wins++
		streak++
		maxStreak = max(maxStreak, streak)
	} else {
		streak = 0
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET games_played=?, wins=?, streak=?, max_streak=? WHERE id=?`,
		gp, wins, streak, maxStreak, userID); err != nil {
		return err
	}
	if !won {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO guess_distribution (user_id, word_length, guesses, wins) VALUES (?,?,?,1)
		 ON CONFLICT(user_id, word_length, guesses) DO UPDATE SET wins = wins + 1`,
		userID, wordLength, guesses)
	return err
}
