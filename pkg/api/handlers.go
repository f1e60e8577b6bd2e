package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/yourusername/heartsgammon/internal/dicestats"
	"github.com/yourusername/heartsgammon/internal/positionid"
	"github.com/yourusername/heartsgammon/pkg/engine"
	"github.com/yourusername/heartsgammon/pkg/game"
)

const (
	defaultAuditRolls = 3600
	maxAuditRolls     = 1000000
	maxSimGames       = 100000
)

// Handlers holds the HTTP handlers and the session store.
type Handlers struct {
	store   *SessionStore
	version string
	pool    *WorkerPool
	moves   *positionid.MoveCache
}

// NewHandlers creates a new Handlers instance without a worker pool.
func NewHandlers(store *SessionStore, version string) *Handlers {
	return &Handlers{
		store:   store,
		version: version,
		pool:    nil,
		moves:   positionid.NewMoveCache(positionid.DefaultCacheSize),
	}
}

// NewHandlersWithPool creates a new Handlers instance with a worker pool.
func NewHandlersWithPool(store *SessionStore, version string, pool *WorkerPool) *Handlers {
	return &Handlers{
		store:   store,
		version: version,
		pool:    pool,
		moves:   positionid.NewMoveCache(positionid.DefaultCacheSize),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, msg string, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

// errorStatus maps domain errors to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	var rej engine.Rejection
	switch {
	case errors.As(err, &rej):
		return http.StatusUnprocessableEntity, "ILLEGAL_MOVE"
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, game.ErrNotRolled),
		errors.Is(err, game.ErrAlreadyRolled),
		errors.Is(err, game.ErrCannotSwap):
		return http.StatusConflict, "WRONG_PHASE"
	case errors.Is(err, positionid.ErrInvalidPositionID):
		return http.StatusBadRequest, "INVALID_POSITION"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

func writeDomainError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	writeError(w, status, err.Error(), code)
}

// decodeBody decodes a JSON request body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// parsePosition decodes a required position ID.
func parsePosition(id string) (engine.State, error) {
	if id == "" {
		return engine.State{}, fmt.Errorf("%w: position is required", positionid.ErrInvalidPositionID)
	}
	return positionid.StateFromPositionID(id)
}

// acquireFast takes a fast pool slot, writing a busy response on failure.
func (h *Handlers) acquireFast(w http.ResponseWriter, r *http.Request) bool {
	if h.pool == nil {
		return true
	}
	if err := h.pool.AcquireFast(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
		return false
	}
	return true
}

func (h *Handlers) releaseFast() {
	if h.pool != nil {
		h.pool.ReleaseFast()
	}
}

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
		Ready:   h.store != nil,
	}
	if h.store != nil {
		resp.Sessions = h.store.Len()
	}

	// Include pool stats if available
	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}
	if h.moves != nil {
		stats := h.moves.Stats()
		resp.MoveCache = &stats
	}

	writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// Sessions
// ============================================================================

// CreateGame handles POST /api/games
func (h *Handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req NewGameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	e := h.store.create(req.Seed)
	writeJSON(w, http.StatusCreated, SessionResponse{ID: e.id, Game: e.snapshot()})
}

// GetGame handles GET /api/games/{id}
func (h *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	e, err := h.store.get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{ID: e.id, Game: e.snapshot()})
}

// DeleteGame handles DELETE /api/games/{id}
func (h *Handlers) DeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RollGame handles POST /api/games/{id}/roll
func (h *Handlers) RollGame(w http.ResponseWriter, r *http.Request) {
	e, err := h.store.get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var roll game.RollResult
	snap, err := e.do(func(s *game.Session) error {
		var err error
		roll, err = s.Roll()
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RollResponse{
		SessionResponse: SessionResponse{ID: e.id, Game: snap},
		Roll:            roll,
	})
}

// SwapGame handles POST /api/games/{id}/swap
func (h *Handlers) SwapGame(w http.ResponseWriter, r *http.Request) {
	e, err := h.store.get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	snap, err := e.do(func(s *game.Session) error { return s.Swap() })
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{ID: e.id, Game: snap})
}

// PlayGame handles POST /api/games/{id}/play
func (h *Handlers) PlayGame(w http.ResponseWriter, r *http.Request) {
	e, err := h.store.get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var req PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	var play game.PlayResult
	snap, err := e.do(func(s *game.Session) error {
		var err error
		play, err = s.Play(req.From)
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := PlayResponse{
		SessionResponse: SessionResponse{ID: e.id, Game: snap},
		Play:            play,
		Notation:        play.Move.String(),
	}
	if play.Outcome != nil {
		resp.Announcement = game.Announce(*play.Outcome)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// Stateless engine calls
// ============================================================================

// NewBoard handles GET /api/new-board
func (h *Handlers) NewBoard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toPositionResponse(engine.NewBoard()))
}

// LegalMoves handles POST /api/legal-moves
func (h *Handlers) LegalMoves(w http.ResponseWriter, r *http.Request) {
	if !h.acquireFast(w, r) {
		return
	}
	defer h.releaseFast()

	var req LegalMovesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	resp, status, code, err := legalMoves(h.moves, req)
	if err != nil {
		writeError(w, status, err.Error(), code)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func legalMoves(cache *positionid.MoveCache, req LegalMovesRequest) (LegalMovesResponse, int, string, error) {
	s, err := parsePosition(req.Position)
	if err != nil {
		return LegalMovesResponse{}, http.StatusBadRequest, "INVALID_POSITION", err
	}
	p, err := engine.ParsePlayer(req.Player)
	if err != nil {
		return LegalMovesResponse{}, http.StatusBadRequest, "INVALID_PLAYER", err
	}
	if len(req.Dice) == 0 {
		return LegalMovesResponse{}, http.StatusBadRequest, "INVALID_DICE", errors.New("dice are required")
	}
	for _, d := range req.Dice {
		if d < 1 || d > 6 {
			return LegalMovesResponse{}, http.StatusBadRequest, "INVALID_DICE", fmt.Errorf("invalid die %d", d)
		}
	}
	return LegalMovesResponse{
		Position: req.Position,
		Player:   p,
		Dice:     req.Dice,
		Moves:    toMoveResponses(cache.LegalMoves(s, p, req.Dice)),
	}, http.StatusOK, "", nil
}

// Apply handles POST /api/apply
func (h *Handlers) Apply(w http.ResponseWriter, r *http.Request) {
	if !h.acquireFast(w, r) {
		return
	}
	defer h.releaseFast()

	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	resp, status, code, err := applyMove(req)
	if err != nil {
		writeError(w, status, err.Error(), code)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func applyMove(req ApplyRequest) (ApplyResponse, int, string, error) {
	s, err := parsePosition(req.Position)
	if err != nil {
		return ApplyResponse{}, http.StatusBadRequest, "INVALID_POSITION", err
	}
	p, err := engine.ParsePlayer(req.Player)
	if err != nil {
		return ApplyResponse{}, http.StatusBadRequest, "INVALID_PLAYER", err
	}
	next, err := engine.Apply(s, p, req.Move)
	if err != nil {
		status, code := errorStatus(err)
		return ApplyResponse{}, status, code, err
	}

	m := req.Move
	m.Hit = next.Bar[p.Opponent()] > s.Bar[p.Opponent()]
	switch {
	case m.From == engine.Bar:
		m.To = engine.EntryPoint(p, m.Die)
	case m.To != engine.Off:
		m.To = engine.Destination(p, m.From, m.Die)
	}
	return ApplyResponse{
		PositionResponse: toPositionResponse(next),
		Move:             MoveResponse{Move: m, Notation: m.String()},
	}, http.StatusOK, "", nil
}

// GameOver handles POST /api/game-over
func (h *Handlers) GameOver(w http.ResponseWriter, r *http.Request) {
	var req GameOverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	resp, status, code, err := gameOver(req)
	if err != nil {
		writeError(w, status, err.Error(), code)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func gameOver(req GameOverRequest) (GameOverResponse, int, string, error) {
	s, err := parsePosition(req.Position)
	if err != nil {
		return GameOverResponse{}, http.StatusBadRequest, "INVALID_POSITION", err
	}
	hearts := engine.PerPlayer{game.StartingHearts, game.StartingHearts}
	if req.Hearts != nil {
		hearts = *req.Hearts
	}
	out, over := engine.CheckGameOver(s, hearts[engine.Mario], hearts[engine.Goomba])
	if !over {
		return GameOverResponse{}, http.StatusOK, "", nil
	}
	return GameOverResponse{Over: true, Outcome: &out, Announcement: game.Announce(out)}, http.StatusOK, "", nil
}

// ============================================================================
// Slow operations
// ============================================================================

// DiceAudit handles GET /api/dice/audit?n=...
func (h *Handlers) DiceAudit(w http.ResponseWriter, r *http.Request) {
	// Audits roll many dice; they share the slow pool.
	if h.pool != nil {
		if err := h.pool.AcquireSlow(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
			return
		}
		defer h.pool.ReleaseSlow()
	}

	n := parseIntParam(r.URL.Query().Get("n"), defaultAuditRolls)
	if n <= 0 || n > maxAuditRolls {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("n must be between 1 and %d", maxAuditRolls), "INVALID_COUNT")
		return
	}
	seed := int64(parseIntParam(r.URL.Query().Get("seed"), 0))
	if seed == 0 {
		seed = h.store.nextSeed()
	}

	report, err := dicestats.Audit(engine.NewRoller(seed), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "AUDIT_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Simulate handles POST /api/simulate
func (h *Handlers) Simulate(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		if err := h.pool.AcquireSlow(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
			return
		}
		defer h.pool.ReleaseSlow()
	}

	opts := game.DefaultSimulationOptions()
	if err := decodeBody(r, &opts); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	if opts.Games <= 0 || opts.Games > maxSimGames {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("games must be between 1 and %d", maxSimGames), "INVALID_COUNT")
		return
	}
	if opts.Seed == 0 {
		opts.Seed = h.store.nextSeed()
	}
	writeJSON(w, http.StatusOK, game.Simulate(opts))
}
