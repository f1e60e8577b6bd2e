// Package game drives heartsgammon turns on top of the pure engine.
//
// A Session owns everything that changes between engine calls: the current
// state, whose turn it is, the dice, the moves left in the turn, hearts and
// the running match score. It is not safe for concurrent use.
package game

import (
	"errors"
	"fmt"

	"github.com/yourusername/heartsgammon/internal/positionid"
	"github.com/yourusername/heartsgammon/pkg/engine"
)

// StartingHearts is the number of hearts each player starts a game with.
const StartingHearts = 5

// Phase is the turn state.
type Phase int

const (
	AwaitingRoll Phase = iota
	Moving
)

func (p Phase) String() string {
	switch p {
	case AwaitingRoll:
		return "awaiting_roll"
	case Moving:
		return "moving"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "awaiting_roll":
		*p = AwaitingRoll
	case "moving":
		*p = Moving
	default:
		return fmt.Errorf("unknown phase %q", text)
	}
	return nil
}

var (
	ErrNotRolled     = errors.New("roll the dice first")
	ErrAlreadyRolled = errors.New("dice already rolled this turn")
	ErrCannotSwap    = errors.New("dice can only be swapped before the first move and when they differ")
)

// Session is one match between the two players, played one game at a time.
type Session struct {
	State          engine.State
	Turn           engine.Player
	Phase          Phase
	Dice           [2]int
	MovesRemaining int

	// Committed is set once a checker has moved this turn; the dice can no
	// longer be swapped.
	Committed bool
	Started   bool
	Hearts    engine.PerPlayer

	// Flags counts checkers borne off this game, one flag raised per checker.
	Flags       engine.PerPlayer
	Score       engine.PerPlayer
	Games       int
	LastOutcome *engine.Outcome

	roller *engine.Roller
}

// New starts a match. A nil roller uses the global generator.
func New(roller *engine.Roller) *Session {
	if roller == nil {
		roller = engine.NewRollerFrom(nil)
	}
	s := &Session{roller: roller}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.State = engine.NewBoard()
	s.Phase = AwaitingRoll
	s.Dice = [2]int{}
	s.MovesRemaining = 0
	s.Committed = false
	s.Started = false
	s.Hearts = engine.PerPlayer{StartingHearts, StartingHearts}
	s.Flags = engine.PerPlayer{}
}

// RollResult reports what a roll did.
type RollResult struct {
	Player   engine.Player `json:"player"`
	Dice     [2]int        `json:"dice"`
	Opening  bool          `json:"opening"`
	Moves    int           `json:"moves"`
	Skipped  bool          `json:"skipped"`
	Playable [2]bool       `json:"playable"`
}

// Roll rolls for the player on turn. The first roll of a game decides who
// starts and is played as that player's roll. A roll with no legal action
// passes the turn immediately.
func (s *Session) Roll() (RollResult, error) {
	if s.Phase != AwaitingRoll {
		return RollResult{}, ErrAlreadyRolled
	}

	res := RollResult{}
	if !s.Started {
		fr := s.roller.DetermineFirstPlayer()
		s.Dice = fr.Dice
		s.Turn = fr.First
		s.Started = true
		res.Opening = true
	} else {
		d1, d2 := s.roller.RollTwo()
		s.Dice = [2]int{d1, d2}
	}
	d1, d2 := s.Dice[0], s.Dice[1]

	s.MovesRemaining = engine.DoubleRoll(d1, d2)
	s.Committed = false
	s.Phase = Moving

	res.Player = s.Turn
	res.Dice = s.Dice
	res.Moves = s.MovesRemaining

	if !engine.CanPlay(s.State, s.Turn, engine.DiceList(d1, d2)...) {
		res.Skipped = true
		res.Moves = 0
		s.endTurn()
		return res, nil
	}
	res.Playable = [2]bool{
		engine.CanPlay(s.State, s.Turn, d1),
		engine.CanPlay(s.State, s.Turn, d2),
	}
	return res, nil
}

// CanSwap reports whether Swap would succeed.
func (s *Session) CanSwap() bool {
	return s.Phase == Moving && !s.Committed && s.Dice[0] != s.Dice[1]
}

// Swap exchanges the dice so the other value is played first.
func (s *Session) Swap() error {
	if !s.CanSwap() {
		return ErrCannotSwap
	}
	s.Dice[0], s.Dice[1] = engine.SwapDice(s.Dice[0], s.Dice[1])
	return nil
}

// CurrentDie is the die the next move consumes: the first die while an even
// number of moves remain, the second otherwise. It is 0 outside a turn.
func (s *Session) CurrentDie() int {
	if s.Phase != Moving {
		return 0
	}
	if s.Dice[0] == s.Dice[1] || s.MovesRemaining%2 == 0 {
		return s.Dice[0]
	}
	return s.Dice[1]
}

// LegalMoves lists the actions available with the current die.
func (s *Session) LegalMoves() []engine.Move {
	die := s.CurrentDie()
	if die == 0 {
		return nil
	}
	return engine.LegalMovesForPlayer(s.State, s.Turn, []int{die})
}

// PlayResult reports what a move did.
type PlayResult struct {
	Player    engine.Player   `json:"player"`
	Move      engine.Move     `json:"move"`
	Hit       bool            `json:"hit"`
	Remaining int             `json:"remaining"`
	TurnOver  bool            `json:"turn_over"`
	Outcome   *engine.Outcome `json:"outcome,omitempty"`
}

// Play moves a checker of the player on turn from point from with the
// current die. A checker on the bar is re-entered regardless of from. When
// every checker is home a bear-off is tried before an ordinary move.
// An illegal move returns an engine.Rejection and changes nothing.
func (s *Session) Play(from int) (PlayResult, error) {
	if s.Phase != Moving {
		return PlayResult{}, ErrNotRolled
	}
	p := s.Turn
	die := s.CurrentDie()

	next, m, err := s.resolve(from, die)
	if err != nil {
		return PlayResult{}, err
	}

	opp := p.Opponent()
	res := PlayResult{Player: p, Move: m}
	if next.Bar[opp] > s.State.Bar[opp] {
		res.Hit = true
		res.Move.Hit = true
		s.Hearts[opp]--
	}
	if m.To == engine.Off {
		s.Flags[p]++
	}
	s.State = next
	s.Committed = true

	if out, over := engine.CheckGameOver(s.State, s.Hearts[engine.Mario], s.Hearts[engine.Goomba]); over {
		s.finish(out)
		res.Outcome = &out
		res.TurnOver = true
		return res, nil
	}

	s.MovesRemaining = engine.CheckRemainingDicePlayability(
		s.Dice[0], s.Dice[1], die, s.MovesRemaining-1, s.State, p)
	res.Remaining = s.MovesRemaining
	if s.MovesRemaining == 0 {
		s.endTurn()
		res.TurnOver = true
	}
	return res, nil
}

func (s *Session) resolve(from, die int) (engine.State, engine.Move, error) {
	p := s.Turn
	if s.State.Bar[p] > 0 {
		next, err := engine.ReenterFromBar(s.State, p, die)
		if err != nil {
			return s.State, engine.Move{}, err
		}
		return next, engine.Move{From: engine.Bar, To: engine.EntryPoint(p, die), Die: die}, nil
	}
	if engine.AllInHome(s.State, p) {
		if next, err := engine.RemoveChecker(s.State, from, die, p); err == nil {
			return next, engine.Move{From: from, To: engine.Off, Die: die}, nil
		}
	}
	next, err := engine.MoveChecker(s.State, from, die, p)
	if err != nil {
		return s.State, engine.Move{}, err
	}
	return next, engine.Move{From: from, To: engine.Destination(p, from, die), Die: die}, nil
}

func (s *Session) endTurn() {
	s.Phase = AwaitingRoll
	s.MovesRemaining = 0
	s.Committed = false
	s.Turn = s.Turn.Opponent()
}

func (s *Session) finish(out engine.Outcome) {
	s.Score[out.Winner] += out.Score
	s.Games++
	s.LastOutcome = &out
	s.reset()
}

// Snapshot is a read-only view of a session for clients.
type Snapshot struct {
	Position       string           `json:"position"`
	State          engine.State     `json:"state"`
	Turn           engine.Player    `json:"turn"`
	Phase          Phase            `json:"phase"`
	Started        bool             `json:"started"`
	Dice           [2]int           `json:"dice"`
	MovesRemaining int              `json:"moves_remaining"`
	CurrentDie     int              `json:"current_die"`
	CanSwap        bool             `json:"can_swap"`
	Hearts         engine.PerPlayer `json:"hearts"`
	Flags          engine.PerPlayer `json:"flags"`
	Pips           engine.PerPlayer `json:"pips"`
	Score          engine.PerPlayer `json:"score"`
	Games          int              `json:"games"`
	LegalMoves     []engine.Move    `json:"legal_moves"`
	LastOutcome    *engine.Outcome  `json:"last_outcome,omitempty"`
}

// Snapshot captures the session.
func (s *Session) Snapshot() Snapshot {
	moves := s.LegalMoves()
	if moves == nil {
		moves = []engine.Move{}
	}
	return Snapshot{
		Position:       positionid.PositionID(s.State),
		State:          s.State,
		Turn:           s.Turn,
		Phase:          s.Phase,
		Started:        s.Started,
		Dice:           s.Dice,
		MovesRemaining: s.MovesRemaining,
		CurrentDie:     s.CurrentDie(),
		CanSwap:        s.CanSwap(),
		Hearts:         s.Hearts,
		Flags:          s.Flags,
		Pips: engine.PerPlayer{
			engine.PipCount(s.State.Board, engine.Mario),
			engine.PipCount(s.State.Board, engine.Goomba),
		},
		Score:       s.Score,
		Games:       s.Games,
		LegalMoves:  moves,
		LastOutcome: s.LastOutcome,
	}
}
