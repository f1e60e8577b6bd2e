package positionid

import (
	"errors"
	"strings"
	"testing"

	"github.com/yourusername/heartsgammon/pkg/engine"
)

func TestPositionIDLength(t *testing.T) {
	id := PositionID(engine.NewBoard())
	if len(id) != PositionIDLength {
		t.Errorf("len(PositionID) = %d, want %d (%s)", len(id), PositionIDLength, id)
	}
	if strings.ContainsAny(id, "+/=") {
		t.Errorf("PositionID %q is not URL safe", id)
	}
}

func TestPositionIDRoundTrip(t *testing.T) {
	start := engine.NewBoard()

	hit := start
	hit.Board[23] = engine.Checkers(engine.Mario, 1)
	hit.Bar[engine.Mario] = 1
	hit.Board[18] = engine.Checkers(engine.Goomba, 3)
	hit.BorneOff[engine.Goomba] = 2

	for name, s := range map[string]engine.State{"start": start, "bar and off": hit} {
		t.Run(name, func(t *testing.T) {
			if err := s.Validate(); err != nil {
				t.Fatalf("fixture invalid: %v", err)
			}
			id := PositionID(s)
			got, err := StateFromPositionID(id)
			if err != nil {
				t.Fatalf("StateFromPositionID(%s): %v", id, err)
			}
			if got != s {
				t.Errorf("round trip mismatch\noriginal: %+v\nresult:   %+v", s, got)
			}
		})
	}
}

func TestKeyDistinguishesPositions(t *testing.T) {
	a := engine.NewBoard()

	hit := engine.EmptyState()
	hit.Board[23] = engine.Checkers(engine.Mario, 15)
	hit.Board[1] = engine.Checkers(engine.Goomba, 14)
	hit.Board[19] = engine.Checkers(engine.Goomba, 1)

	tests := []struct {
		name string
		base engine.State
		move func(engine.State) (engine.State, error)
	}{
		{"12/10", a, func(s engine.State) (engine.State, error) { return engine.MoveChecker(s, 12, 2, engine.Mario) }},
		{"24/23", a, func(s engine.State) (engine.State, error) { return engine.MoveChecker(s, 23, 1, engine.Mario) }},
		{"goomba 1/3", a, func(s engine.State) (engine.State, error) { return engine.MoveChecker(s, 0, 2, engine.Goomba) }},
		{"hit to bar", hit, func(s engine.State) (engine.State, error) { return engine.MoveChecker(s, 23, 4, engine.Mario) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := tc.move(tc.base)
			if err != nil {
				t.Fatalf("move: %v", err)
			}
			if MakeKey(tc.base) == MakeKey(b) {
				t.Error("different positions produced the same key")
			}
			if PositionID(tc.base) == PositionID(b) {
				t.Error("different positions produced the same ID")
			}
		})
	}

	if PositionID(a) != PositionID(engine.NewBoard()) {
		t.Error("PositionID is not deterministic")
	}
}

func TestStateFromPositionIDErrors(t *testing.T) {
	valid := PositionID(engine.NewBoard())

	// A key for an empty board decodes but fails validation.
	var empty Key
	emptyID := encoding.EncodeToString(empty[:])

	tests := []struct {
		name string
		id   string
	}{
		{"empty", ""},
		{"too short", valid[:20]},
		{"bad alphabet", strings.Repeat("!", PositionIDLength)},
		{"no checkers", emptyID},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := StateFromPositionID(tc.id)
			if !errors.Is(err, ErrInvalidPositionID) {
				t.Errorf("err = %v, want ErrInvalidPositionID", err)
			}
		})
	}
}
