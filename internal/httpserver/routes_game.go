// internal/httpserver/routes_game.go
//
// HTTP routes for free-play games.
//   - POST /game/new          → start a session (level, length or fixed answer)
//   - POST /game/guess        → submit a guess, returns verdicts + render commands
//   - GET  /game/{id}         → session snapshot (answer only once finished)
//   - POST /game/{id}/restart → same session, next round, fresh target
//   - GET  /game/{id}/live    → websocket stream of guess/restart events
//
// Sessions live in the in-memory store; the games table keeps one row per
// (id, round) for history and stats.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/internal/game"
	"github.com/robalobadob/wordle/internal/render"
	"github.com/robalobadob/wordle/internal/store"
	"github.com/robalobadob/wordle/internal/words"
)

var (
	errWrongMode = errors.New("httpserver: wrong game mode")
	errNotOwner  = errors.New("httpserver: not the session owner")
)

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Post("/guess", s.handleGuess)
		r.Get("/{id}", s.handleGetGame)
		r.Post("/{id}/restart", s.handleRestart)
		r.Get("/{id}/live", s.handleLive)
	})
}

// gameView is the public snapshot of a session.
type gameView struct {
	ID         string                  `json:"id"`
	Mode       game.Mode               `json:"mode"`
	Round      int                     `json:"round"`
	WordLength int                     `json:"wordLength"`
	MaxGuesses int                     `json:"maxGuesses"`
	Attempts   []game.Attempt          `json:"attempts"`
	Keys       map[string]game.Verdict `json:"keys"`
	Status     game.Status             `json:"status"`
	Remaining  int                     `json:"remaining"`
	StartedAt  time.Time               `json:"startedAt"`
	Answer     string                  `json:"answer,omitempty"`
	Practice   bool                    `json:"practice,omitempty"`
	Watchers   int                     `json:"watchers,omitempty"`
}

// viewOf copies s so the snapshot can leave the store lock.
func viewOf(s *game.Session) gameView {
	v := gameView{
		ID:         s.ID,
		Mode:       s.Mode,
		Round:      s.Round,
		WordLength: s.WordLength,
		MaxGuesses: s.MaxGuesses,
		Attempts:   append([]game.Attempt(nil), s.Attempts...),
		Keys:       make(map[string]game.Verdict, len(s.Keys)),
		Status:     s.Status,
		Remaining:  s.Remaining(),
		StartedAt:  s.StartedAt,
		Practice:   s.Practice,
	}
	if v.Attempts == nil {
		v.Attempts = []game.Attempt{}
	}
	for k, verdict := range s.Keys {
		v.Keys[k] = verdict
	}
	if s.Status.Finished() {
		v.Answer = s.Target
	}
	return v
}

// liveEvent is pushed to websocket watchers of a game.
type liveEvent struct {
	Type   string           `json:"type"` // hello | guess | restart
	Game   gameView         `json:"game"`
	Render []render.Command `json:"render,omitempty"`
}

// ------------------------------ /game/new ----------------------------------

type newGameReq struct {
	Level  string `json:"level"`  // easy | medium | hard
	Length int    `json:"length"` // alternative to level
	Answer string `json:"answer"` // optional fixed answer; practice, no stats
}

type newGameRes struct {
	GameID     string `json:"gameId"`
	Level      string `json:"level"`
	WordLength int    `json:"wordLength"`
	MaxGuesses int    `json:"maxGuesses"`
}

// decodeOptional decodes a JSON body, treating an empty body as zero value.
func decodeOptional(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// pickLevel resolves the requested level; length wins over name.
func pickLevel(name string, length int) (game.Level, error) {
	switch {
	case length > 0:
		return game.LevelForLength(length)
	case strings.TrimSpace(name) != "":
		return game.LevelByName(name)
	default:
		return game.DefaultLevel, nil
	}
}

// handleNewGame creates a new in-memory game and persists a DB "owner" row
// (either user_id or anonymous_id) for history/stats. A fixed answer makes
// the round a practice game.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeOptional(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}

	var (
		target string
		level  game.Level
		err    error
	)
	if answer := strings.ToLower(strings.TrimSpace(req.Answer)); answer != "" {
		level, err = game.LevelForLength(len(answer))
		if err == nil {
			err = s.lex.Validate(answer, len(answer))
		}
		if err != nil {
			writeErr(w, http.StatusBadRequest, "invalid_answer")
			return
		}
		target = answer
	} else {
		level, err = pickLevel(req.Level, req.Length)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "unknown_level")
			return
		}
		target, err = s.randomAnswer(level.WordLength)
		if err != nil {
			log.Error().Err(err).Int("length", level.WordLength).Msg("pick answer")
			writeErr(w, http.StatusInternalServerError, "no_answers")
			return
		}
	}

	o := s.ownerOf(w, r)
	sess := game.NewSession(s.lex, game.ModeRandom, target, level.MaxGuesses)
	sess.Practice = strings.TrimSpace(req.Answer) != ""
	sess.Owner = o.id
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save game")
		writeErr(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.insertGameRow(r.Context(), o, viewOf(sess))

	writeJSON(w, http.StatusOK, newGameRes{
		GameID:     sess.ID,
		Level:      level.Name,
		WordLength: sess.WordLength,
		MaxGuesses: sess.MaxGuesses,
	})
}

// ----------------------------- /game/guess ---------------------------------

type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}

type guessRes struct {
	GameID    string                  `json:"gameId"`
	Guess     string                  `json:"guess"`
	Verdicts  []game.Verdict          `json:"verdicts"`
	Status    game.Status             `json:"status"`
	Remaining int                     `json:"remaining"`
	Keys      map[string]game.Verdict `json:"keys"`
	Answer    string                  `json:"answer,omitempty"`
	Render    []render.Command        `json:"render"`
}

// guessOutcome is what applyGuess hands back to the route.
type guessOutcome struct {
	res     guessRes
	view    gameView
	elapsed time.Duration
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	out, ok := s.applyGuess(w, r, s.ownerOf(w, r), req.GameID, req.Guess, game.ModeRandom)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out.res)
}

// rejectionCode maps validation errors to API error codes.
func rejectionCode(err error) (string, bool) {
	switch {
	case errors.Is(err, words.ErrWrongLength):
		return "wrong_length", true
	case errors.Is(err, words.ErrInvalidCharacters):
		return "invalid_characters", true
	case errors.Is(err, words.ErrNotInLexicon):
		return "not_in_word_list", true
	}
	return "", false
}

// applyGuess submits guess to the session id, which must be in mode and
// belong to o.
// Error responses are written here; on success the attempt is persisted
// for o and broadcast, and the caller writes the response.
func (s *Server) applyGuess(w http.ResponseWriter, r *http.Request, o owner, id, guess string, mode game.Mode) (*guessOutcome, bool) {
	var (
		out       guessOutcome
		row, cols int
	)
	err := s.store.Update(r.Context(), id, func(sess *game.Session) error {
		if !o.owns(sess) {
			return errNotOwner
		}
		if sess.Mode != mode {
			return errWrongMode
		}
		row, cols = len(sess.Attempts), sess.WordLength
		a, err := sess.SubmitGuess(guess)
		if err != nil {
			return err
		}
		out.view = viewOf(sess)
		out.elapsed = sess.Elapsed()
		out.res = guessRes{
			GameID:    sess.ID,
			Guess:     a.Guess,
			Verdicts:  a.Verdicts,
			Status:    sess.Status,
			Remaining: out.view.Remaining,
			Keys:      out.view.Keys,
			Answer:    out.view.Answer,
			Render:    render.ForGuess(sess),
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeErr(w, http.StatusNotFound, "not_found")
		case errors.Is(err, errNotOwner):
			writeErr(w, http.StatusForbidden, "forbidden")
		case errors.Is(err, game.ErrGameOver):
			writeErr(w, http.StatusConflict, "game_over")
		case errors.Is(err, errWrongMode):
			writeErr(w, http.StatusConflict, "wrong_mode")
		default:
			if code, ok := rejectionCode(err); ok {
				writeJSON(w, http.StatusBadRequest, errorRes{Error: code, Render: render.ForRejection(row, guess, cols, err)})
				return nil, false
			}
			log.Warn().Err(err).Str("gameId", id).Msg("guess")
			writeErr(w, http.StatusBadRequest, "invalid_guess")
		}
		return nil, false
	}

	s.persistGuess(r.Context(), o, out.view)
	s.publish(id, liveEvent{Type: "guess", Game: out.view, Render: out.res.Render})
	return &out, true
}

// publish pushes ev to live watchers; failures are logged only.
func (s *Server) publish(id string, ev liveEvent) {
	if s.hub == nil {
		return
	}
	if err := s.hub.ToGame(id, ev); err != nil {
		log.Debug().Err(err).Str("gameId", id).Msg("live publish")
	}
}

// ----------------------------- /game/{id} ----------------------------------

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	var v gameView
	err := s.store.View(r.Context(), chi.URLParam(r, "id"), func(sess *game.Session) error {
		v = viewOf(sess)
		return nil
	})
	if err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	if s.hub != nil {
		v.Watchers = s.hub.Watchers(v.ID)
	}
	writeJSON(w, http.StatusOK, v)
}

// -------------------------- /game/{id}/restart -----------------------------

type restartReq struct {
	Level  string `json:"level"`
	Length int    `json:"length"`
}

// handleRestart starts the next round of a free-play session. Without a
// level or length the word length carries over.
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	var req restartReq
	if err := decodeOptional(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	id := chi.URLParam(r, "id")
	o := s.ownerOf(w, r)

	var v gameView
	err := s.store.Update(r.Context(), id, func(sess *game.Session) error {
		if !o.owns(sess) {
			return errNotOwner
		}
		if sess.Mode != game.ModeRandom {
			return errWrongMode
		}
		length := sess.WordLength
		if req.Level != "" || req.Length > 0 {
			l, err := pickLevel(req.Level, req.Length)
			if err != nil {
				return err
			}
			length = l.WordLength
		}
		target, err := s.randomAnswer(length)
		if err != nil {
			return err
		}
		sess.StartNewGame(target)
		v = viewOf(sess)
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not_found")
		return
	case errors.Is(err, errNotOwner):
		writeErr(w, http.StatusForbidden, "forbidden")
		return
	case errors.Is(err, errWrongMode):
		writeErr(w, http.StatusConflict, "wrong_mode")
		return
	case errors.Is(err, game.ErrUnknownLevel):
		writeErr(w, http.StatusBadRequest, "unknown_level")
		return
	default:
		log.Error().Err(err).Str("gameId", id).Msg("restart")
		writeErr(w, http.StatusInternalServerError, "no_answers")
		return
	}

	s.insertGameRow(r.Context(), o, v)
	s.publish(id, liveEvent{Type: "restart", Game: v})
	writeJSON(w, http.StatusOK, v)
}

// --------------------------- /game/{id}/live -------------------------------

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || origin == s.opts.ClientOrigin {
				return true
			}
			u, err := url.Parse(origin)
			return err == nil && u.Host == r.Host
		},
	}
}

// handleLive upgrades to a websocket and registers it with the hub. The
// first frame is a hello carrying the current snapshot.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeErr(w, http.StatusNotFound, "live_disabled")
		return
	}
	id := chi.URLParam(r, "id")
	var v gameView
	if err := s.store.View(r.Context(), id, func(sess *game.Session) error {
		v = viewOf(sess)
		return nil
	}); err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}

	ws, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied.
		log.Debug().Err(err).Str("gameId", id).Msg("websocket upgrade")
		return
	}
	if err := s.hub.Register(ws, id, liveEvent{Type: "hello", Game: v}); err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("register watcher")
		ws.Close()
	}
}

// ---------------------------- persistence ----------------------------------

// owner identifies who a games row belongs to.
type owner struct {
	column string // user_id | anonymous_id
	id     string
	userID string // set for signed-in players
}

// ownerOf resolves the signed-in user or the anonymous cookie ID.
func (s *Server) ownerOf(w http.ResponseWriter, r *http.Request) owner {
	if me := currentUser(r); me != nil {
		return owner{column: "user_id", id: me.ID, userID: me.ID}
	}
	return owner{column: "anonymous_id", id: s.ensureAnonID(w, r)}
}

// owns reports whether o may guess on or restart sess.
func (o owner) owns(sess *game.Session) bool { return sess.OwnedBy(o.id) }

func (s *Server) insertGameRow(ctx context.Context, o owner, v gameView) {
	if s.db == nil {
		return
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (id, round, `+o.column+`, mode, word_length, status, guesses, started_at)
		 VALUES (?,?,?,?,?,?,0,?)`,
		v.ID, v.Round, o.id, string(v.Mode), v.WordLength, string(v.Status), v.StartedAt.UTC().Format(time.RFC3339))
	if err != nil {
		log.Warn().Err(err).Str("gameId", v.ID).Int("round", v.Round).Msg("insert game row")
	}
}

// persistGuess updates the games row and, once finished, the player's
// stats in one transaction. Best effort: failures are logged.
func (s *Server) persistGuess(ctx context.Context, o owner, v gameView) {
	if s.db == nil {
		return
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin guess tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	where := ` WHERE id=? AND round=? AND ` + o.column + `=?`
	res, err := tx.ExecContext(ctx, `UPDATE games SET guesses=?, status=?`+where,
		len(v.Attempts), string(v.Status), v.ID, v.Round, o.id)
	if err != nil {
		log.Warn().Err(err).Str("gameId", v.ID).Msg("update guesses")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Not this player's row (or never recorded); nothing to count.
		return
	}

	if v.Status.Finished() {
		if _, err := tx.ExecContext(ctx, `UPDATE games SET finished_at=?`+where,
			s.now().UTC().Format(time.RFC3339), v.ID, v.Round, o.id); err != nil {
			log.Warn().Err(err).Str("gameId", v.ID).Msg("finish game")
			return
		}
		if o.userID != "" && !v.Practice {
			if err := bumpStats(ctx, tx, o.userID, v.Status == game.Won, v.WordLength, len(v.Attempts)); err != nil {
				log.Warn().Err(err).Str("user", o.userID).Msg("bump stats")
				return
			}
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit guess tx")
	}
}
