// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start a daily game (creates or reuses session)
//   - POST /daily/guess       → submit a guess for today's daily game
//   - GET  /daily/leaderboard → fetch top results for today (or a given date)
//
// Each player can play once per day (enforced by DB + in-memory session).
// Sessions are held in the game store for active play; the result is
// persisted once the game is won or exhausted.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/internal/daily"
	"github.com/robalobadob/wordle/internal/game"
)

// maxLeaderboardLimit caps ?limit= on /daily/leaderboard.
const maxLeaderboardLimit = 100

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	sessions map[string]dailySession // keyed by playerID|date
	mu       sync.Mutex              // guards sessions
}

// dailySession links a player's day to a session in the game store.
type dailySession struct {
	GameID    string
	WordIndex int
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     s.opts.DailySalt,
		sessions: make(map[string]dailySession),
	}
	s.daily = dd
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/guess", dd.handleGuess)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// today returns today's date key, word index and answer.
func (d *dailyServer) today() (date string, idx int, answer string) {
	now := d.srv.now().UTC()
	date = daily.DateKey(now)
	answer, idx = daily.Answer(now, d.salt, d.srv.lex.Answers(game.DefaultLevel.WordLength))
	return date, idx, answer
}

// sessionKey keys d.sessions.
func sessionKey(playerID, date string) string { return playerID + "|" + date }

// claim hands anonID's unfinished daily sessions to userID. A session the
// user already holds for the same day wins.
func (d *dailyServer) claim(anonID, userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prefix := anonID + "|"
	for k, ds := range d.sessions {
		date, ok := strings.CutPrefix(k, prefix)
		if !ok {
			continue
		}
		delete(d.sessions, k)
		if _, taken := d.sessions[sessionKey(userID, date)]; !taken {
			d.sessions[sessionKey(userID, date)] = ds
		}
	}
}

// prune drops sessions from days other than date. Callers hold d.mu.
func (d *dailyServer) prune(date string) {
	suffix := "|" + date
	for k := range d.sessions {
		if !strings.HasSuffix(k, suffix) {
			delete(d.sessions, k)
		}
	}
}

// -----------------------------------------------------------------------------
// /daily/new

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	GameID     string `json:"gameId"`
	Date       string `json:"date"`
	Played     bool   `json:"played"`
	WordLength int    `json:"wordLength"`
	MaxGuesses int    `json:"maxGuesses"`
}

// handleNew creates or reuses a daily session for the current date.
// - If the player already has a DB row for today → Played=true.
// - Otherwise create/reuse a session and return its GameID.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	o := d.srv.ownerOf(w, r)
	date, idx, answer := d.today()
	if answer == "" {
		writeErr(w, http.StatusInternalServerError, "no_answers")
		return
	}
	res := dailyNewRes{
		Date:       date,
		WordLength: game.DefaultLevel.WordLength,
		MaxGuesses: game.DefaultLevel.MaxGuesses,
	}

	played, err := d.store.AlreadyPlayed(r.Context(), o.id, date)
	if err != nil {
		log.Warn().Err(err).Msg("daily already played")
	}
	if played {
		res.Played = true
		writeJSON(w, http.StatusOK, res)
		return
	}

	key := sessionKey(o.id, date)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prune(date)
	if ds, ok := d.sessions[key]; ok {
		if _, err := d.srv.store.Get(r.Context(), ds.GameID); err == nil {
			res.GameID = ds.GameID
			writeJSON(w, http.StatusOK, res)
			return
		}
	}

	sess := game.NewSession(d.srv.lex, game.ModeDaily, answer, game.DefaultLevel.MaxGuesses)
	sess.Owner = o.id
	if err := d.srv.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save daily game")
		writeErr(w, http.StatusInternalServerError, "save_failed")
		return
	}
	d.sessions[key] = dailySession{GameID: sess.ID, WordIndex: idx}
	d.srv.insertGameRow(r.Context(), o, viewOf(sess))

	res.GameID = sess.ID
	writeJSON(w, http.StatusOK, res)
}

// -----------------------------------------------------------------------------
// /daily/guess

// handleGuess applies a guess to today's daily session and records the
// result once the game ends.
func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	o := d.srv.ownerOf(w, r)
	date, _, _ := d.today()

	d.mu.Lock()
	ds, ok := d.sessions[sessionKey(o.id, date)]
	d.mu.Unlock()
	if !ok || ds.GameID != req.GameID {
		writeErr(w, http.StatusConflict, "no_session")
		return
	}

	out, ok := d.srv.applyGuess(w, r, o, req.GameID, req.Guess, game.ModeDaily)
	if !ok {
		return
	}
	if out.view.Status.Finished() {
		err := d.store.InsertResult(r.Context(), daily.Result{
			UserID:    o.id,
			Date:      date,
			WordIndex: ds.WordIndex,
			Guesses:   len(out.view.Attempts),
			ElapsedMs: int(out.elapsed.Milliseconds()),
			Won:       out.view.Status == game.Won,
		})
		if err != nil {
			log.Warn().Err(err).Str("player", o.id).Msg("insert daily result")
		}
	}
	writeJSON(w, http.StatusOK, out.res)
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.srv.now().UTC())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_date")
		return
	}
	limit := daily.DefaultLeaderboardLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeErr(w, http.StatusBadRequest, "bad_limit")
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}
	rows, err := d.store.Leaderboard(r.Context(), date, limit)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("leaderboard")
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	if rows == nil {
		rows = []daily.LBRow{}
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
