// Package engine provides the rules engine for heartsgammon: a two-player
// backgammon variant with one permanently blocked point (the pipe).
//
// Every function is pure. Mutators take a State by value and return a new
// State or a Rejection; the input is never modified.
package engine

import (
	"encoding/json"
	"fmt"
)

const (
	// NumPoints is the number of points on the board.
	NumPoints = 24
	// NumCheckers is the number of checkers each player owns.
	NumCheckers = 15
	// PipeIndex is the point permanently occupied by the pipe.
	PipeIndex = 9
	// HomeSize is the number of points in each player's home board.
	HomeSize = 6
)

// Player identifies one side. Mario moves toward index 0, Goomba toward 23.
type Player int

const (
	Mario Player = iota
	Goomba
)

// Players lists both sides in a fixed order.
var Players = [2]Player{Mario, Goomba}

func (p Player) String() string {
	switch p {
	case Mario:
		return "mario"
	case Goomba:
		return "goomba"
	default:
		return fmt.Sprintf("player(%d)", int(p))
	}
}

// Valid reports whether p is Mario or Goomba.
func (p Player) Valid() bool {
	return p == Mario || p == Goomba
}

// Opponent returns the other side.
func (p Player) Opponent() Player {
	if p == Mario {
		return Goomba
	}
	return Mario
}

// ParsePlayer converts "mario" or "goomba" to a Player.
func ParsePlayer(s string) (Player, error) {
	switch s {
	case "mario":
		return Mario, nil
	case "goomba":
		return Goomba, nil
	}
	return 0, fmt.Errorf("unknown player %q", s)
}

func (p Player) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("unknown player %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Player) UnmarshalText(text []byte) error {
	v, err := ParsePlayer(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// PointKind tags the variant held by a Point.
type PointKind uint8

const (
	EmptyKind PointKind = iota
	OwnedKind
	PipeKind
)

// Point is one board slot: empty, a stack of one player's checkers, or the pipe.
type Point struct {
	Kind  PointKind
	Owner Player
	Count int
}

// Empty returns an empty point.
func Empty() Point { return Point{} }

// Pipe returns the immovable pipe marker.
func Pipe() Point { return Point{Kind: PipeKind} }

// Checkers returns a point holding n checkers of p. n <= 0 yields an empty point.
func Checkers(p Player, n int) Point {
	if n <= 0 {
		return Point{}
	}
	return Point{Kind: OwnedKind, Owner: p, Count: n}
}

// IsPipe reports whether the point is the pipe.
func (pt Point) IsPipe() bool { return pt.Kind == PipeKind }

// IsEmpty reports whether the point holds no checkers and is not the pipe.
func (pt Point) IsEmpty() bool { return pt.Kind == EmptyKind }

// Holds returns how many of p's checkers sit on the point.
func (pt Point) Holds(p Player) int {
	if pt.Kind == OwnedKind && pt.Owner == p {
		return pt.Count
	}
	return 0
}

// Value returns the signed count: positive for Mario, negative for Goomba.
// The pipe reports 0.
func (pt Point) Value() int {
	if pt.Kind != OwnedKind {
		return 0
	}
	if pt.Owner == Goomba {
		return -pt.Count
	}
	return pt.Count
}

// PointFromValue builds a point from a signed count.
func PointFromValue(v int) Point {
	switch {
	case v > 0:
		return Checkers(Mario, v)
	case v < 0:
		return Checkers(Goomba, -v)
	}
	return Empty()
}

// MarshalJSON encodes the pipe as "pipe" and anything else as its signed count.
func (pt Point) MarshalJSON() ([]byte, error) {
	if pt.IsPipe() {
		return []byte(`"pipe"`), nil
	}
	return json.Marshal(pt.Value())
}

func (pt *Point) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "pipe" {
			return fmt.Errorf("unknown point marker %q", s)
		}
		*pt = Pipe()
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("point must be a number or \"pipe\": %w", err)
	}
	*pt = PointFromValue(v)
	return nil
}

// Board is the 24 points, indexed 0..23.
type Board [NumPoints]Point

// PerPlayer holds one counter per side, indexed by Player.
type PerPlayer [2]int

func (pp PerPlayer) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]int{
		Mario.String():  pp[Mario],
		Goomba.String(): pp[Goomba],
	})
}

func (pp *PerPlayer) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*pp = PerPlayer{m[Mario.String()], m[Goomba.String()]}
	return nil
}

// State is a complete position: the board, checkers on the bar and checkers
// borne off.
type State struct {
	Board    Board     `json:"board"`
	Bar      PerPlayer `json:"bar"`
	BorneOff PerPlayer `json:"borne_off"`
}

// NewBoard returns the starting position.
func NewBoard() State {
	var s State
	s.Board[23] = Checkers(Mario, 2)
	s.Board[12] = Checkers(Mario, 5)
	s.Board[7] = Checkers(Mario, 3)
	s.Board[5] = Checkers(Mario, 5)

	s.Board[0] = Checkers(Goomba, 2)
	s.Board[11] = Checkers(Goomba, 5)
	s.Board[16] = Checkers(Goomba, 3)
	s.Board[18] = Checkers(Goomba, 5)

	s.Board[PipeIndex] = Pipe()
	return s
}

// EmptyState returns a state with no checkers anywhere and the pipe in place.
// Useful for building test positions.
func EmptyState() State {
	var s State
	s.Board[PipeIndex] = Pipe()
	return s
}

// OnBoard counts p's checkers on the 24 points.
func (s State) OnBoard(p Player) int {
	n := 0
	for _, pt := range s.Board {
		n += pt.Holds(p)
	}
	return n
}

// Count returns p's checkers on the board, on the bar and borne off.
func (s State) Count(p Player) int {
	return s.OnBoard(p) + s.Bar[p] + s.BorneOff[p]
}

// Validate checks the state invariants and returns the first violation.
func (s State) Validate() error {
	for i, pt := range s.Board {
		switch {
		case i == PipeIndex && !pt.IsPipe():
			return fmt.Errorf("point %d must hold the pipe", i)
		case i != PipeIndex && pt.IsPipe():
			return fmt.Errorf("pipe found on point %d", i)
		case pt.Kind == OwnedKind && (pt.Count <= 0 || !pt.Owner.Valid()):
			return fmt.Errorf("point %d has malformed stack %+v", i, pt)
		case pt.Kind > PipeKind:
			return fmt.Errorf("point %d has unknown kind %d", i, pt.Kind)
		}
	}
	for _, p := range Players {
		if s.Bar[p] < 0 || s.BorneOff[p] < 0 {
			return fmt.Errorf("%s has a negative bar or borne-off count", p)
		}
		if n := s.Count(p); n != NumCheckers {
			return fmt.Errorf("%s has %d checkers, want %d", p, n, NumCheckers)
		}
	}
	return nil
}

// PipCount returns the total pips p needs to bear off every checker on the
// board. Checkers on the bar are not counted.
func PipCount(b Board, p Player) int {
	if !p.Valid() {
		return 0
	}
	l := laneOf(p)
	total := 0
	for i, pt := range b {
		total += pt.Holds(p) * l.distance(i)
	}
	return total
}

// AllInHome reports whether p has nothing on the bar and every on-board
// checker inside p's home board.
func AllInHome(s State, p Player) bool {
	if !p.Valid() || s.Bar[p] > 0 {
		return false
	}
	l := laneOf(p)
	for i, pt := range s.Board {
		if pt.Holds(p) > 0 && !l.inHome(i) {
			return false
		}
	}
	return true
}
