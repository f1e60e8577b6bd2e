package engine

// Reason names how a game was won.
type Reason string

const (
	ReasonKO      Reason = "KO"
	ReasonBearOff Reason = "bear-off"
)

// Outcome is a finished game.
type Outcome struct {
	Winner Player `json:"winner"`
	Reason Reason `json:"reason"`
	Score  int    `json:"score"`
}

// CheckGameOver reports whether the game has ended. Running out of hearts
// ends the game before any bear-off race is considered; if both sides are out,
// Mario's hearts are checked first and Goomba wins.
func CheckGameOver(s State, heartsMario, heartsGoomba int) (Outcome, bool) {
	if heartsMario <= 0 {
		return Outcome{Winner: Goomba, Reason: ReasonKO, Score: 1}, true
	}
	if heartsGoomba <= 0 {
		return Outcome{Winner: Mario, Reason: ReasonKO, Score: 1}, true
	}
	for _, p := range Players {
		if s.BorneOff[p] >= NumCheckers {
			return Outcome{Winner: p, Reason: ReasonBearOff, Score: bearOffScore(s, p)}, true
		}
	}
	return Outcome{}, false
}

// bearOffScore values a bear-off win by winner: 1 if the loser has borne
// anything off, 3 if the loser still has a checker on the bar or in the
// winner's home board, 2 otherwise.
func bearOffScore(s State, winner Player) int {
	loser := winner.Opponent()
	if s.BorneOff[loser] > 0 {
		return 1
	}
	if s.Bar[loser] > 0 {
		return 3
	}
	lo, hi := laneOf(winner).home()
	for i := lo; i <= hi; i++ {
		if s.Board[i].Holds(loser) > 0 {
			return 3
		}
	}
	return 2
}
