package engine

import (
	"encoding/json"
	"fmt"
)

// Rejection is returned by the mutators when an action is illegal. The
// state returned alongside it is the unchanged input.
type Rejection string

func (r Rejection) Error() string { return string(r) }

const (
	ErrBarFirst       Rejection = "checkers on the bar must re-enter first"
	ErrEmptyBar       Rejection = "no checker on the bar"
	ErrNotYourChecker Rejection = "no checker of the moving player on that point"
	ErrPipe           Rejection = "the pipe cannot be entered or left"
	ErrOffBoard       Rejection = "destination is off the board"
	ErrBlocked        Rejection = "destination is held by two or more opposing checkers"
	ErrNotAllHome     Rejection = "all checkers must be home before bearing off"
	ErrNoBearOff      Rejection = "die cannot bear off from that point"
	ErrBadDie         Rejection = "die must be between 1 and 6"
	ErrBadPoint       Rejection = "point index out of range"
	ErrBadPlayer      Rejection = "unknown player"
)

const (
	// Bar is the Move.From value for a re-entry.
	Bar = NumPoints
	// Off is the Move.To value for a bear-off.
	Off = -1
)

// JSON markers for Bar and Off.
const (
	barMarker = "bar"
	offMarker = "borne_off"
)

// Move describes a single-die action.
type Move struct {
	From int  `json:"from"`
	To   int  `json:"to"`
	Die  int  `json:"die"`
	Hit  bool `json:"hit,omitempty"`
}

// String formats the move with 1-based point numbers, e.g. "bar/20*" or "3/off".
func (m Move) String() string {
	from := "bar"
	if m.From != Bar {
		from = fmt.Sprintf("%d", m.From+1)
	}
	to := "off"
	if m.To != Off {
		to = fmt.Sprintf("%d", m.To+1)
	}
	s := from + "/" + to
	if m.Hit {
		s += "*"
	}
	return s
}

type moveJSON struct {
	From json.RawMessage `json:"from"`
	To   json.RawMessage `json:"to"`
	Die  int             `json:"die"`
	Hit  bool            `json:"hit,omitempty"`
}

func encodeEnd(i, sentinel int, marker string) json.RawMessage {
	if i == sentinel {
		return json.RawMessage(`"` + marker + `"`)
	}
	return json.RawMessage(fmt.Sprint(i))
}

// decodeEnd accepts a point index or the marker. A missing field is 0.
func decodeEnd(data json.RawMessage, sentinel int, marker string) (int, error) {
	if len(data) == 0 || string(data) == "null" {
		return 0, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != marker {
			return 0, fmt.Errorf("unknown move marker %q", s)
		}
		return sentinel, nil
	}
	var i int
	if err := json.Unmarshal(data, &i); err != nil {
		return 0, fmt.Errorf("move end must be a point index or %q: %w", marker, err)
	}
	return i, nil
}

// MarshalJSON writes Bar as "bar" and Off as "borne_off"; points stay
// numeric.
func (m Move) MarshalJSON() ([]byte, error) {
	return json.Marshal(moveJSON{
		From: encodeEnd(m.From, Bar, barMarker),
		To:   encodeEnd(m.To, Off, offMarker),
		Die:  m.Die,
		Hit:  m.Hit,
	})
}

func (m *Move) UnmarshalJSON(data []byte) error {
	var raw moveJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	from, err := decodeEnd(raw.From, Bar, barMarker)
	if err != nil {
		return err
	}
	to, err := decodeEnd(raw.To, Off, offMarker)
	if err != nil {
		return err
	}
	*m = Move{From: from, To: to, Die: raw.Die, Hit: raw.Hit}
	return nil
}

// land places one of p's checkers on point i, hitting a lone opposing
// checker. The caller has already checked that i is reachable.
func land(s *State, i int, p Player) {
	pt := s.Board[i]
	if pt.Holds(p.Opponent()) == 1 {
		s.Board[i] = Empty()
		s.Bar[p.Opponent()]++
	}
	s.Board[i] = Checkers(p, s.Board[i].Holds(p)+1)
}

// lift removes one of p's checkers from point i.
func lift(s *State, i int, p Player) {
	s.Board[i] = Checkers(p, s.Board[i].Holds(p)-1)
}

// open reports why p may not land on point i, or nil.
func open(s State, i int, p Player) error {
	if !onBoard(i) {
		return ErrOffBoard
	}
	pt := s.Board[i]
	if pt.IsPipe() {
		return ErrPipe
	}
	if pt.Holds(p.Opponent()) >= 2 {
		return ErrBlocked
	}
	return nil
}

func checkArgs(p Player, die int) error {
	if !p.Valid() {
		return ErrBadPlayer
	}
	if !validDie(die) {
		return ErrBadDie
	}
	return nil
}

// source checks that p can pick a checker up from point from.
func source(s State, from int, p Player) error {
	if !onBoard(from) {
		return ErrBadPoint
	}
	if s.Board[from].IsPipe() {
		return ErrPipe
	}
	if s.Board[from].Holds(p) == 0 {
		return ErrNotYourChecker
	}
	return nil
}

// MoveChecker moves one of p's checkers die pips from point from.
func MoveChecker(s State, from, die int, p Player) (State, error) {
	if err := checkArgs(p, die); err != nil {
		return s, err
	}
	if s.Bar[p] > 0 {
		return s, ErrBarFirst
	}
	if err := source(s, from, p); err != nil {
		return s, err
	}
	to := laneOf(p).target(from, die)
	if err := open(s, to, p); err != nil {
		return s, err
	}

	next := s
	lift(&next, from, p)
	land(&next, to, p)
	return next, nil
}

// ReenterFromBar brings one of p's bar checkers onto the board using die.
func ReenterFromBar(s State, p Player, die int) (State, error) {
	if err := checkArgs(p, die); err != nil {
		return s, err
	}
	if s.Bar[p] <= 0 {
		return s, ErrEmptyBar
	}
	to := laneOf(p).entry(die)
	if err := open(s, to, p); err != nil {
		return s, err
	}

	next := s
	next.Bar[p]--
	land(&next, to, p)
	return next, nil
}

// RemoveChecker bears one of p's checkers off from point from. The die must
// match the checker's distance to the exit, or exceed it when no checker of p
// sits farther out.
func RemoveChecker(s State, from, die int, p Player) (State, error) {
	if err := checkArgs(p, die); err != nil {
		return s, err
	}
	if !AllInHome(s, p) {
		return s, ErrNotAllHome
	}
	if err := source(s, from, p); err != nil {
		return s, err
	}
	l := laneOf(p)
	dist := l.distance(from)
	if die < dist {
		return s, ErrNoBearOff
	}
	if die > dist {
		for i := l.target(from, -1); onBoard(i); i = l.target(i, -1) {
			if s.Board[i].Holds(p) > 0 {
				return s, ErrNoBearOff
			}
		}
	}

	next := s
	lift(&next, from, p)
	next.BorneOff[p]++
	return next, nil
}

// Apply performs m for p, routing to the matching mutator.
func Apply(s State, p Player, m Move) (State, error) {
	switch {
	case m.From == Bar:
		return ReenterFromBar(s, p, m.Die)
	case m.To == Off:
		return RemoveChecker(s, m.From, m.Die, p)
	default:
		return MoveChecker(s, m.From, m.Die, p)
	}
}

// LegalMovesForPlayer lists every action p can take with one die from dice.
// Repeated die values are considered once. While p has checkers on the bar
// only re-entries are returned.
func LegalMovesForPlayer(s State, p Player, dice []int) []Move {
	if !p.Valid() {
		return nil
	}
	var moves []Move
	seen := [7]bool{}
	l := laneOf(p)
	for _, die := range dice {
		if !validDie(die) || seen[die] {
			continue
		}
		seen[die] = true

		if s.Bar[p] > 0 {
			if _, err := ReenterFromBar(s, p, die); err == nil {
				to := l.entry(die)
				moves = append(moves, Move{From: Bar, To: to, Die: die, Hit: s.Board[to].Holds(p.Opponent()) == 1})
			}
			continue
		}

		home := AllInHome(s, p)
		for from, pt := range s.Board {
			if pt.Holds(p) == 0 {
				continue
			}
			if _, err := MoveChecker(s, from, die, p); err == nil {
				to := l.target(from, die)
				moves = append(moves, Move{From: from, To: to, Die: die, Hit: s.Board[to].Holds(p.Opponent()) == 1})
			}
			if !home {
				continue
			}
			if _, err := RemoveChecker(s, from, die, p); err == nil {
				moves = append(moves, Move{From: from, To: Off, Die: die})
			}
		}
	}
	return moves
}

// CanPlay reports whether p has any legal action with one of dice.
func CanPlay(s State, p Player, dice ...int) bool {
	return len(LegalMovesForPlayer(s, p, dice)) > 0
}

// CheckRemainingDicePlayability returns how many of the moves left in the
// turn can still be played after used was consumed. remaining is the count
// already decremented for the move just made. The result drops to zero when
// the die still owed has no legal action on s.
func CheckRemainingDicePlayability(d1, d2, used, remaining int, s State, p Player) int {
	if remaining <= 0 {
		return 0
	}
	next := d1
	if d1 != d2 && used == d1 {
		next = d2
	}
	if !CanPlay(s, p, next) {
		return 0
	}
	return remaining
}
