package positionid

import (
	"reflect"
	"sync"
	"testing"

	"github.com/yourusername/heartsgammon/pkg/engine"
)

func TestMoveCacheMatchesGenerator(t *testing.T) {
	c := NewMoveCache(64)
	s := engine.NewBoard()

	for _, p := range []engine.Player{engine.Mario, engine.Goomba} {
		for d1 := 1; d1 <= 6; d1++ {
			for d2 := 1; d2 <= 6; d2++ {
				dice := []int{d1, d2}
				want := engine.LegalMovesForPlayer(s, p, dice)
				first := c.LegalMoves(s, p, dice)
				second := c.LegalMoves(s, p, dice)
				if len(want) != len(first) || (len(want) > 0 && !reflect.DeepEqual(want, first)) {
					t.Fatalf("%v %v: first = %v, want %v", p, dice, first, want)
				}
				if len(want) != len(second) || (len(want) > 0 && !reflect.DeepEqual(want, second)) {
					t.Fatalf("%v %v: cached = %v, want %v", p, dice, second, want)
				}
			}
		}
	}

	st := c.Stats()
	if st.Lookups != 144 {
		t.Errorf("lookups = %d, want 144", st.Lookups)
	}
	if st.Hits == 0 {
		t.Error("no cache hits on repeated lookups")
	}
}

func TestMoveCacheKeysOnPlayerAndDiceOrder(t *testing.T) {
	c := NewMoveCache(16)
	s := engine.NewBoard()
	marker := []engine.Move{{From: 12, Die: 3}}

	c.Add(s, engine.Mario, []int{3, 5}, marker)

	if _, ok := c.Lookup(s, engine.Goomba, []int{3, 5}); ok {
		t.Error("hit for the other player")
	}
	if _, ok := c.Lookup(s, engine.Mario, []int{5, 3}); ok {
		t.Error("hit for reversed dice")
	}
	got, ok := c.Lookup(s, engine.Mario, []int{3, 5})
	if !ok || !reflect.DeepEqual(got, marker) {
		t.Errorf("Lookup = %v, %v; want %v, true", got, ok, marker)
	}
}

func TestMoveCacheReturnsCopies(t *testing.T) {
	c := NewMoveCache(16)
	s := engine.NewBoard()
	c.Add(s, engine.Mario, []int{2}, []engine.Move{{From: 5, Die: 2}})

	got, _ := c.Lookup(s, engine.Mario, []int{2})
	got[0].From = 99

	again, _ := c.Lookup(s, engine.Mario, []int{2})
	if again[0].From != 5 {
		t.Errorf("cached entry mutated through returned slice: %v", again)
	}
}

func TestMoveCacheSkipsUncacheableDice(t *testing.T) {
	c := NewMoveCache(16)
	s := engine.NewBoard()

	c.Add(s, engine.Mario, []int{2, 2, 2, 2, 2}, nil)
	c.Add(s, engine.Mario, nil, nil)
	if st := c.Stats(); st.Adds != 0 {
		t.Errorf("adds = %d, want 0", st.Adds)
	}
}

func TestMoveCacheFlush(t *testing.T) {
	c := NewMoveCache(16)
	s := engine.NewBoard()
	c.LegalMoves(s, engine.Goomba, []int{4, 1})
	c.LegalMoves(s, engine.Goomba, []int{4, 1})

	c.Flush()
	if st := c.Stats(); st.Lookups != 0 || st.Hits != 0 || st.Adds != 0 {
		t.Errorf("stats after flush = %+v", st)
	}
	if _, ok := c.Lookup(s, engine.Goomba, []int{4, 1}); ok {
		t.Error("hit after flush")
	}
}

func TestMoveCacheSizeRoundsUp(t *testing.T) {
	if got := NewMoveCache(100).Stats().Size; got != 128 {
		t.Errorf("size = %d, want 128", got)
	}
	if got := NewMoveCache(0).Stats().Size; got != 2 {
		t.Errorf("size = %d, want 2", got)
	}
}

func TestMoveCacheConcurrent(t *testing.T) {
	c := NewMoveCache(32)
	s := engine.NewBoard()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				d := (i+j)%6 + 1
				c.LegalMoves(s, engine.Player(j%2), []int{d, 7 - d})
			}
		}(i)
	}
	wg.Wait()
	if st := c.Stats(); st.Lookups != 1600 {
		t.Errorf("lookups = %d, want 1600", st.Lookups)
	}
}
