package engine

// lane is a player's movement vector, resolved once from identity.
// Checkers travel from origin toward exit in steps of step; origin and exit are
// the virtual points just off either end of the board.
type lane struct {
	step   int
	origin int
	exit   int
}

var lanes = [2]lane{
	Mario:  {step: -1, origin: NumPoints, exit: -1},
	Goomba: {step: 1, origin: -1, exit: NumPoints},
}

func laneOf(p Player) lane {
	return lanes[p]
}

// target is the point reached by moving die pips from from.
func (l lane) target(from, die int) int {
	return from + l.step*die
}

// entry is the point a bar checker enters on with die.
func (l lane) entry(die int) int {
	return l.target(l.origin, die)
}

// distance is the pips from point i to the exit, 1 for the last home point.
func (l lane) distance(i int) int {
	return (l.exit - i) * l.step
}

func (l lane) inHome(i int) bool {
	d := l.distance(i)
	return d >= 1 && d <= HomeSize
}

// home returns the index range of the home board, lowest first.
func (l lane) home() (lo, hi int) {
	if l.step < 0 {
		return 0, HomeSize - 1
	}
	return NumPoints - HomeSize, NumPoints - 1
}

func onBoard(i int) bool {
	return i >= 0 && i < NumPoints
}

func validDie(d int) bool {
	return d >= 1 && d <= 6
}

// EntryPoint returns the point p enters on from the bar with die.
func EntryPoint(p Player, die int) int {
	return laneOf(p).entry(die)
}

// Destination returns the point p reaches moving die pips from from. The
// result is outside 0..23 when the move would leave the board.
func Destination(p Player, from, die int) int {
	return laneOf(p).target(from, die)
}
