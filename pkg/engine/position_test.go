package engine

import (
	"encoding/json"
	"testing"
)

func TestNewBoardPipCount(t *testing.T) {
	s := NewBoard()
	for _, p := range Players {
		if got := PipCount(s.Board, p); got != 167 {
			t.Errorf("PipCount(%s) = %d, want 167", p, got)
		}
	}
}

func TestNewBoardInvariants(t *testing.T) {
	s := NewBoard()
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if !s.Board[PipeIndex].IsPipe() {
		t.Errorf("point %d = %+v, want pipe", PipeIndex, s.Board[PipeIndex])
	}
	for _, p := range Players {
		if s.Bar[p] != 0 || s.BorneOff[p] != 0 {
			t.Errorf("%s starts with bar=%d off=%d", p, s.Bar[p], s.BorneOff[p])
		}
		if n := s.OnBoard(p); n != NumCheckers {
			t.Errorf("%s has %d checkers on board, want %d", p, n, NumCheckers)
		}
	}
}

func TestValidateRejectsBrokenStates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*State)
	}{
		{"pipe removed", func(s *State) { s.Board[PipeIndex] = Empty() }},
		{"second pipe", func(s *State) { s.Board[3] = Pipe() }},
		{"extra checker", func(s *State) { s.Bar[Mario]++ }},
		{"missing checker", func(s *State) { s.Board[0] = Checkers(Goomba, 1) }},
		{"negative bar", func(s *State) { s.Bar[Goomba] = -1; s.BorneOff[Goomba] = 1 }},
		{"zero count stack", func(s *State) { s.Board[2] = Point{Kind: OwnedKind, Owner: Mario} }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewBoard()
			tc.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestAllInHome(t *testing.T) {
	s := EmptyState()
	s.Board[0] = Checkers(Mario, 15)
	if !AllInHome(s, Mario) {
		t.Error("AllInHome(mario) = false with 15 checkers on point 0")
	}

	s.Board[0] = Checkers(Mario, 14)
	s.Board[6] = Checkers(Mario, 1)
	if AllInHome(s, Mario) {
		t.Error("AllInHome(mario) = true with a checker on point 6")
	}

	s.Board[6] = Empty()
	s.Bar[Mario] = 1
	if AllInHome(s, Mario) {
		t.Error("AllInHome(mario) = true with a checker on the bar")
	}

	g := EmptyState()
	g.Board[18] = Checkers(Goomba, 10)
	g.Board[23] = Checkers(Goomba, 5)
	if !AllInHome(g, Goomba) {
		t.Error("AllInHome(goomba) = false with checkers on 18 and 23")
	}
	g.Board[17] = Checkers(Goomba, 1)
	if AllInHome(g, Goomba) {
		t.Error("AllInHome(goomba) = true with a checker on point 17")
	}
}

func TestPipCountDistances(t *testing.T) {
	b := EmptyState().Board
	b[0] = Checkers(Mario, 2)   // 1 pip each
	b[23] = Checkers(Goomba, 3) // 1 pip each
	b[5] = Checkers(Goomba, 1)  // 19 pips

	if got := PipCount(b, Mario); got != 2 {
		t.Errorf("PipCount(mario) = %d, want 2", got)
	}
	if got := PipCount(b, Goomba); got != 22 {
		t.Errorf("PipCount(goomba) = %d, want 22", got)
	}
}

func TestPointJSON(t *testing.T) {
	s := NewBoard()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var raw struct {
		Board    []any          `json:"board"`
		Bar      map[string]int `json:"bar"`
		BorneOff map[string]int `json:"borne_off"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal raw: %v", err)
	}
	if raw.Board[PipeIndex] != "pipe" {
		t.Errorf("board[%d] = %v, want \"pipe\"", PipeIndex, raw.Board[PipeIndex])
	}
	if raw.Board[23] != float64(2) || raw.Board[0] != float64(-2) {
		t.Errorf("board[23], board[0] = %v, %v, want 2, -2", raw.Board[23], raw.Board[0])
	}
	if _, ok := raw.Bar["goomba"]; !ok {
		t.Errorf("bar = %v, want a goomba key", raw.Bar)
	}

	var back State
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != s {
		t.Errorf("JSON round trip changed the state")
	}
}

func TestPointUnmarshalRejectsUnknownMarker(t *testing.T) {
	var pt Point
	if err := json.Unmarshal([]byte(`"star"`), &pt); err == nil {
		t.Error("Unmarshal(\"star\") = nil, want error")
	}
}

func TestParsePlayer(t *testing.T) {
	for _, p := range Players {
		got, err := ParsePlayer(p.String())
		if err != nil || got != p {
			t.Errorf("ParsePlayer(%q) = %v, %v", p.String(), got, err)
		}
	}
	if _, err := ParsePlayer("luigi"); err == nil {
		t.Error("ParsePlayer(luigi) = nil error")
	}
	if Mario.Opponent() != Goomba || Goomba.Opponent() != Mario {
		t.Error("Opponent is not symmetric")
	}
}
