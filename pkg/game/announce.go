package game

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yourusername/heartsgammon/pkg/engine"
)

// Announce formats a finished game for display, e.g.
// "Mario wins the game! Score: 1 point by KO."
func Announce(o engine.Outcome) string {
	unit := "points"
	if o.Score == 1 {
		unit = "point"
	}
	return fmt.Sprintf("%s wins the game! Score: %d %s by %s.",
		cases.Title(language.English).String(o.Winner.String()), o.Score, unit, o.Reason)
}
