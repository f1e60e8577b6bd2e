package engine

import (
	"math/rand"
)

// Source supplies uniform integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

type globalSource struct{}

func (globalSource) Intn(n int) int { return rand.Intn(n) }

// Roller rolls dice from a Source. A Roller built with NewRoller is
// reproducible and must not be shared between goroutines.
type Roller struct {
	src Source
}

// NewRoller returns a Roller seeded with seed.
func NewRoller(seed int64) *Roller {
	return &Roller{src: rand.New(rand.NewSource(seed))}
}

// NewRollerFrom wraps an existing source. A nil source uses the global
// math/rand generator.
func NewRollerFrom(src Source) *Roller {
	if src == nil {
		src = globalSource{}
	}
	return &Roller{src: src}
}

var defaultRoller = NewRollerFrom(nil)

// FirstRoll is the opening roll that decides who moves first.
// Dice[0] is Mario's die and Dice[1] is Goomba's.
type FirstRoll struct {
	First Player `json:"first_player"`
	Dice  [2]int `json:"dice"`
}

func (r *Roller) die() int {
	return r.src.Intn(6) + 1
}

// RollTwo rolls two independent dice.
func (r *Roller) RollTwo() (int, int) {
	return r.die(), r.die()
}

// DetermineFirstPlayer rolls one die per player until they differ. The
// higher die moves first and the opening roll is played as that player's
// first move.
func (r *Roller) DetermineFirstPlayer() FirstRoll {
	for {
		m, g := r.RollTwo()
		if m == g {
			continue
		}
		first := Mario
		if g > m {
			first = Goomba
		}
		return FirstRoll{First: first, Dice: [2]int{m, g}}
	}
}

// RollTwo rolls two dice from the global generator.
func RollTwo() (int, int) {
	return defaultRoller.RollTwo()
}

// DetermineFirstPlayer decides the opening player using the global generator.
func DetermineFirstPlayer() FirstRoll {
	return defaultRoller.DetermineFirstPlayer()
}

// SwapDice returns the dice in the other order.
func SwapDice(d1, d2 int) (int, int) {
	return d2, d1
}

// DoubleRoll returns the number of moves a roll grants: 4 for doubles, else 2.
func DoubleRoll(d1, d2 int) int {
	if d1 == d2 {
		return 4
	}
	return 2
}

// DiceList expands a roll into the die values it lets the player use.
func DiceList(d1, d2 int) []int {
	if d1 == d2 {
		return []int{d1, d1, d1, d1}
	}
	return []int{d1, d2}
}
