// Package api provides an HTTP/JSON API for heartsgammon: hot-seat game
// sessions, stateless engine calls and a WebSocket command channel.
package api

import (
	"encoding/json"

	"github.com/yourusername/heartsgammon/internal/positionid"
	"github.com/yourusername/heartsgammon/pkg/engine"
	"github.com/yourusername/heartsgammon/pkg/game"
)

// ============================================================================
// Request Types
// ============================================================================

// NewGameRequest is the request body for starting a session.
type NewGameRequest struct {
	Seed int64 `json:"seed,omitempty"` // Dice seed (0 = server chooses)
}

// PlayRequest is the request body for moving a checker in a session.
type PlayRequest struct {
	From int `json:"from"` // Point index 0..23; ignored while on the bar
}

// LegalMovesRequest is the request body for listing legal moves.
type LegalMovesRequest struct {
	Position string `json:"position"` // Position ID
	Player   string `json:"player"`   // "mario" or "goomba"
	Dice     []int  `json:"dice"`     // Dice to consider
}

// ApplyRequest is the request body for applying one move.
type ApplyRequest struct {
	Position string      `json:"position"` // Position ID
	Player   string      `json:"player"`   // "mario" or "goomba"
	Move     engine.Move `json:"move"`     // from may be "bar", to may be "borne_off"
}

// GameOverRequest is the request body for a game-over check.
type GameOverRequest struct {
	Position string            `json:"position"`         // Position ID
	Hearts   *engine.PerPlayer `json:"hearts,omitempty"` // Hearts left per player (default full)
}

// ============================================================================
// Response Types
// ============================================================================

// MoveResponse is a single legal move. It encodes as the move's own fields
// plus "notation".
type MoveResponse struct {
	engine.Move
	Notation string `json:"notation"` // e.g. "bar/20*" or "3/off"
}

func (m MoveResponse) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(m.Move)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	notation, err := json.Marshal(m.Notation)
	if err != nil {
		return nil, err
	}
	fields["notation"] = notation
	return json.Marshal(fields)
}

func (m *MoveResponse) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &m.Move); err != nil {
		return err
	}
	var rest struct {
		Notation string `json:"notation"`
	}
	if err := json.Unmarshal(data, &rest); err != nil {
		return err
	}
	m.Notation = rest.Notation
	return nil
}

// PositionResponse describes a position.
type PositionResponse struct {
	Position string           `json:"position"`
	State    engine.State     `json:"state"`
	Pips     engine.PerPlayer `json:"pips"`
}

// LegalMovesResponse lists the legal moves for a player.
type LegalMovesResponse struct {
	Position string         `json:"position"`
	Player   engine.Player  `json:"player"`
	Dice     []int          `json:"dice"`
	Moves    []MoveResponse `json:"moves"`
}

// ApplyResponse is the position after a move.
type ApplyResponse struct {
	PositionResponse
	Move MoveResponse `json:"move"`
}

// GameOverResponse reports whether a game has ended.
type GameOverResponse struct {
	Over         bool            `json:"over"`
	Outcome      *engine.Outcome `json:"outcome,omitempty"`
	Announcement string          `json:"announcement,omitempty"`
}

// SessionResponse is a session with its current snapshot.
type SessionResponse struct {
	ID   string        `json:"id"`
	Game game.Snapshot `json:"game"`
}

// RollResponse is the result of rolling in a session.
type RollResponse struct {
	SessionResponse
	Roll game.RollResult `json:"roll"`
}

// PlayResponse is the result of a move in a session.
type PlayResponse struct {
	SessionResponse
	Play         game.PlayResult `json:"play"`
	Notation     string          `json:"notation"`
	Announcement string          `json:"announcement,omitempty"`
}

// ErrorResponse is returned when an error occurs.
type ErrorResponse struct {
	Error string `json:"error"`          // Error message
	Code  string `json:"code,omitempty"` // Error code
}

// HealthResponse is the response for health check.
type HealthResponse struct {
	Status   string     `json:"status"`
	Version  string     `json:"version"`
	Ready    bool       `json:"ready"`
	Sessions int        `json:"sessions"`
	Pool     *PoolStats `json:"pool,omitempty"`

	MoveCache *positionid.CacheStats `json:"move_cache,omitempty"`
}

// toMoveResponses attaches notation to engine moves. The result is never nil.
func toMoveResponses(moves []engine.Move) []MoveResponse {
	out := make([]MoveResponse, len(moves))
	for i, m := range moves {
		out[i] = MoveResponse{Move: m, Notation: m.String()}
	}
	return out
}

// toPositionResponse describes s.
func toPositionResponse(s engine.State) PositionResponse {
	return PositionResponse{
		Position: positionid.PositionID(s),
		State:    s,
		Pips: engine.PerPlayer{
			engine.PipCount(s.Board, engine.Mario),
			engine.PipCount(s.Board, engine.Goomba),
		},
	}
}
