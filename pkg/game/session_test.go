package game

import (
	"errors"
	"testing"

	"github.com/yourusername/heartsgammon/pkg/engine"
)

// scripted returns the queued die faces in order, then repeats the last one.
type scripted struct {
	faces []int
	i     int
}

func (s *scripted) Intn(n int) int {
	f := s.faces[len(s.faces)-1]
	if s.i < len(s.faces) {
		f = s.faces[s.i]
	}
	s.i++
	return f - 1
}

func newScripted(faces ...int) *Session {
	return New(engine.NewRollerFrom(&scripted{faces: faces}))
}

// midTurn puts sess in the moving phase for p with the given dice and state.
func midTurn(sess *Session, s engine.State, p engine.Player, d1, d2 int) {
	sess.State = s
	sess.Turn = p
	sess.Started = true
	sess.Phase = Moving
	sess.Dice = [2]int{d1, d2}
	sess.MovesRemaining = engine.DoubleRoll(d1, d2)
	sess.Committed = false
}

func TestNewSession(t *testing.T) {
	sess := New(nil)
	if sess.State != engine.NewBoard() {
		t.Error("new session does not start from the opening position")
	}
	if sess.Phase != AwaitingRoll || sess.Started {
		t.Errorf("phase = %s, started = %v", sess.Phase, sess.Started)
	}
	want := engine.PerPlayer{StartingHearts, StartingHearts}
	if sess.Hearts != want {
		t.Errorf("hearts = %v, want %v", sess.Hearts, want)
	}
}

func TestOpeningRoll(t *testing.T) {
	tests := []struct {
		name  string
		faces []int
		first engine.Player
		dice  [2]int
	}{
		{"goomba higher", []int{3, 5}, engine.Goomba, [2]int{3, 5}},
		{"mario higher", []int{6, 2}, engine.Mario, [2]int{6, 2}},
		{"tie re-rolled", []int{4, 4, 1, 2}, engine.Goomba, [2]int{1, 2}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sess := newScripted(tc.faces...)
			res, err := sess.Roll()
			if err != nil {
				t.Fatalf("Roll: %v", err)
			}
			if !res.Opening || res.Player != tc.first || res.Dice != tc.dice {
				t.Errorf("result = %+v, want opening roll %v for %s", res, tc.dice, tc.first)
			}
			if sess.Turn != tc.first || sess.Phase != Moving || sess.MovesRemaining != 2 {
				t.Errorf("turn = %s, phase = %s, moves = %d", sess.Turn, sess.Phase, sess.MovesRemaining)
			}
			if !res.Playable[0] || !res.Playable[1] {
				t.Errorf("playable = %v, both dice should be playable from the start", res.Playable)
			}
		})
	}
}

func TestRollPhaseErrors(t *testing.T) {
	sess := newScripted(6, 2)
	if _, err := sess.Play(12); !errors.Is(err, ErrNotRolled) {
		t.Errorf("Play before roll err = %v, want ErrNotRolled", err)
	}
	if _, err := sess.Roll(); err != nil {
		t.Fatalf("Roll: %v", err)
	}
	if _, err := sess.Roll(); !errors.Is(err, ErrAlreadyRolled) {
		t.Errorf("second Roll err = %v, want ErrAlreadyRolled", err)
	}
}

func TestRollDoubles(t *testing.T) {
	sess := newScripted(6, 2, 3, 3)
	sess.Started = true
	res, err := sess.Roll()
	if err != nil {
		t.Fatalf("Roll: %v", err)
	}
	if res.Opening {
		t.Error("roll after the game started reported as opening")
	}
	if res.Dice != [2]int{6, 2} {
		t.Fatalf("dice = %v", res.Dice)
	}

	sess.endTurn()
	res, err = sess.Roll()
	if err != nil {
		t.Fatalf("Roll: %v", err)
	}
	if res.Moves != 4 || sess.MovesRemaining != 4 {
		t.Errorf("doubles granted %d moves, want 4", res.Moves)
	}
	if sess.CanSwap() {
		t.Error("doubles should not be swappable")
	}
	if err := sess.Swap(); !errors.Is(err, ErrCannotSwap) {
		t.Errorf("Swap on doubles err = %v, want ErrCannotSwap", err)
	}
}

func TestRollSkipsBlockedTurn(t *testing.T) {
	// Mario is on the bar and every entry point is closed.
	s := engine.EmptyState()
	for i := 18; i < 24; i++ {
		s.Board[i] = engine.Checkers(engine.Goomba, 2)
	}
	s.Board[0] = engine.Checkers(engine.Goomba, 3)
	s.Board[5] = engine.Checkers(engine.Mario, 14)
	s.Bar[engine.Mario] = 1

	sess := newScripted(2, 5)
	sess.State = s
	sess.Started = true
	sess.Turn = engine.Mario

	res, err := sess.Roll()
	if err != nil {
		t.Fatalf("Roll: %v", err)
	}
	if !res.Skipped || res.Moves != 0 {
		t.Errorf("result = %+v, want a skipped roll", res)
	}
	if sess.Turn != engine.Goomba || sess.Phase != AwaitingRoll {
		t.Errorf("turn = %s, phase = %s, want goomba awaiting roll", sess.Turn, sess.Phase)
	}
	if sess.State != s {
		t.Error("a skipped roll changed the board")
	}
}

func TestSwapAndCurrentDie(t *testing.T) {
	sess := New(nil)
	midTurn(sess, engine.NewBoard(), engine.Mario, 6, 2)

	if got := sess.CurrentDie(); got != 6 {
		t.Fatalf("CurrentDie = %d, want 6", got)
	}
	if err := sess.Swap(); err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if sess.Dice != [2]int{2, 6} || sess.CurrentDie() != 2 {
		t.Errorf("after swap dice = %v current = %d", sess.Dice, sess.CurrentDie())
	}

	if _, err := sess.Play(12); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if sess.CanSwap() {
		t.Error("swap allowed after a checker moved")
	}
	if got := sess.CurrentDie(); got != 6 {
		t.Errorf("second die = %d, want 6", got)
	}
}

func TestPlayFullTurn(t *testing.T) {
	sess := New(nil)
	midTurn(sess, engine.NewBoard(), engine.Mario, 6, 2)

	res, err := sess.Play(12)
	if err != nil {
		t.Fatalf("Play(12): %v", err)
	}
	want := engine.Move{From: 12, To: 6, Die: 6}
	if res.Move != want || res.Remaining != 1 || res.TurnOver {
		t.Errorf("first move = %+v, want %v with one move left", res, want)
	}

	res, err = sess.Play(7)
	if err != nil {
		t.Fatalf("Play(7): %v", err)
	}
	if res.Move.To != 5 || !res.TurnOver {
		t.Errorf("second move = %+v, want 8/6 ending the turn", res)
	}
	if sess.Turn != engine.Goomba || sess.Phase != AwaitingRoll {
		t.Errorf("turn = %s, phase = %s", sess.Turn, sess.Phase)
	}
	if sess.State.Board[6].Holds(engine.Mario) != 1 || sess.State.Board[5].Holds(engine.Mario) != 6 {
		t.Errorf("board after turn: 6=%+v 5=%+v", sess.State.Board[6], sess.State.Board[5])
	}
}

func TestPlayRejectionLeavesSessionAlone(t *testing.T) {
	sess := New(nil)
	midTurn(sess, engine.NewBoard(), engine.Mario, 6, 2)
	before := *sess

	_, err := sess.Play(0)
	var rej engine.Rejection
	if !errors.As(err, &rej) || rej != engine.ErrNotYourChecker {
		t.Fatalf("Play(0) err = %v, want ErrNotYourChecker", err)
	}
	if sess.State != before.State || sess.MovesRemaining != before.MovesRemaining || sess.Committed {
		t.Error("rejected move changed the session")
	}
}

// hitFixture has a lone goomba on 10 within reach of mario's checker on 12.
func hitFixture() engine.State {
	s := engine.EmptyState()
	s.Board[12] = engine.Checkers(engine.Mario, 1)
	s.Board[5] = engine.Checkers(engine.Mario, 14)
	s.Board[10] = engine.Checkers(engine.Goomba, 1)
	s.Board[18] = engine.Checkers(engine.Goomba, 14)
	return s
}

func TestPlayHitCostsAHeart(t *testing.T) {
	sess := New(nil)
	midTurn(sess, hitFixture(), engine.Mario, 2, 5)

	res, err := sess.Play(12)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !res.Hit || !res.Move.Hit {
		t.Errorf("result = %+v, want a hit", res)
	}
	if sess.Hearts[engine.Goomba] != StartingHearts-1 {
		t.Errorf("goomba hearts = %d, want %d", sess.Hearts[engine.Goomba], StartingHearts-1)
	}
	if sess.Hearts[engine.Mario] != StartingHearts {
		t.Errorf("mario hearts = %d, want unchanged", sess.Hearts[engine.Mario])
	}
	if sess.State.Bar[engine.Goomba] != 1 {
		t.Errorf("goomba bar = %d, want 1", sess.State.Bar[engine.Goomba])
	}
}

func TestPlayKOEndsGame(t *testing.T) {
	sess := New(nil)
	midTurn(sess, hitFixture(), engine.Mario, 2, 5)
	sess.Hearts[engine.Goomba] = 1

	res, err := sess.Play(12)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	want := engine.Outcome{Winner: engine.Mario, Reason: engine.ReasonKO, Score: 1}
	if res.Outcome == nil || *res.Outcome != want {
		t.Fatalf("outcome = %v, want %+v", res.Outcome, want)
	}
	if !res.TurnOver {
		t.Error("game over should end the turn")
	}
	if sess.Score[engine.Mario] != 1 || sess.Games != 1 {
		t.Errorf("score = %v games = %d", sess.Score, sess.Games)
	}
	if sess.State != engine.NewBoard() || sess.Started || sess.Phase != AwaitingRoll {
		t.Error("session not reset for the next game")
	}
	if sess.Hearts != (engine.PerPlayer{StartingHearts, StartingHearts}) {
		t.Errorf("hearts = %v, want refilled", sess.Hearts)
	}
	if sess.LastOutcome == nil || *sess.LastOutcome != want {
		t.Errorf("LastOutcome = %v", sess.LastOutcome)
	}
}

func TestPlayReentersFromBar(t *testing.T) {
	s := engine.NewBoard()
	s.Board[23] = engine.Checkers(engine.Mario, 1)
	s.Bar[engine.Mario] = 1

	sess := New(nil)
	midTurn(sess, s, engine.Mario, 3, 4)

	// The point passed is ignored while a checker waits on the bar.
	res, err := sess.Play(12)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	want := engine.Move{From: engine.Bar, To: 21, Die: 3}
	if res.Move != want {
		t.Errorf("move = %+v, want %+v", res.Move, want)
	}
	if sess.State.Bar[engine.Mario] != 0 || sess.State.Board[21].Holds(engine.Mario) != 1 {
		t.Error("checker did not re-enter on 21")
	}
}

func TestPlayBearsOffAndScores(t *testing.T) {
	s := engine.EmptyState()
	s.Board[2] = engine.Checkers(engine.Mario, 1)
	s.BorneOff[engine.Mario] = 14
	s.Board[18] = engine.Checkers(engine.Goomba, 15)

	sess := New(nil)
	midTurn(sess, s, engine.Mario, 3, 1)

	res, err := sess.Play(2)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if res.Move.To != engine.Off {
		t.Errorf("move = %+v, want a bear-off", res.Move)
	}
	want := engine.Outcome{Winner: engine.Mario, Reason: engine.ReasonBearOff, Score: 2}
	if res.Outcome == nil || *res.Outcome != want {
		t.Fatalf("outcome = %v, want %+v", res.Outcome, want)
	}
	if sess.Score[engine.Mario] != 2 {
		t.Errorf("score = %v", sess.Score)
	}
}

func TestPlayMovesInsideHome(t *testing.T) {
	// All home but the die is too small to bear off from 4: the checker moves.
	s := engine.EmptyState()
	s.Board[4] = engine.Checkers(engine.Mario, 15)
	s.Board[18] = engine.Checkers(engine.Goomba, 15)

	sess := New(nil)
	midTurn(sess, s, engine.Mario, 2, 1)

	res, err := sess.Play(4)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if res.Move.To != 2 {
		t.Errorf("move = %+v, want 5/3", res.Move)
	}
}

func TestSnapshot(t *testing.T) {
	sess := New(nil)
	snap := sess.Snapshot()
	if snap.LegalMoves == nil || len(snap.LegalMoves) != 0 {
		t.Errorf("legal moves before a roll = %v, want empty", snap.LegalMoves)
	}
	if snap.Pips != (engine.PerPlayer{167, 167}) {
		t.Errorf("pips = %v", snap.Pips)
	}
	if len(snap.Position) != 38 {
		t.Errorf("position = %q", snap.Position)
	}

	midTurn(sess, engine.NewBoard(), engine.Goomba, 4, 1)
	snap = sess.Snapshot()
	if snap.CurrentDie != 4 || !snap.CanSwap || len(snap.LegalMoves) == 0 {
		t.Errorf("snapshot mid turn = %+v", snap)
	}
	for _, m := range snap.LegalMoves {
		if m.Die != 4 {
			t.Errorf("legal move %v uses die %d, want 4", m, m.Die)
		}
	}
}

func TestAnnounce(t *testing.T) {
	tests := []struct {
		out  engine.Outcome
		want string
	}{
		{engine.Outcome{Winner: engine.Mario, Reason: engine.ReasonKO, Score: 1}, "Mario wins the game! Score: 1 point by KO."},
		{engine.Outcome{Winner: engine.Goomba, Reason: engine.ReasonBearOff, Score: 3}, "Goomba wins the game! Score: 3 points by bear-off."},
	}
	for _, tc := range tests {
		if got := Announce(tc.out); got != tc.want {
			t.Errorf("Announce(%+v) = %q, want %q", tc.out, got, tc.want)
		}
	}
}

func TestBearOffRaisesFlag(t *testing.T) {
	s := engine.EmptyState()
	s.Board[0] = engine.Checkers(engine.Mario, 15)
	s.Board[18] = engine.Checkers(engine.Goomba, 15)

	sess := New(nil)
	midTurn(sess, s, engine.Mario, 1, 2)

	if _, err := sess.Play(0); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if sess.Flags[engine.Mario] != 1 || sess.State.BorneOff[engine.Mario] != 1 {
		t.Errorf("flags = %v borne off = %v", sess.Flags, sess.State.BorneOff)
	}
	if sess.Snapshot().Flags != sess.Flags {
		t.Error("snapshot flags out of sync")
	}
}
