// Package dicestats checks a dice roller for bias.
//
// Audit rolls pairs of dice, counts faces and runs a chi-square goodness of
// fit test against the uniform distribution. It also reports the mean pips
// per roll (doubles count four times), which is 49/6 for fair dice.
package dicestats

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/yourusername/heartsgammon/pkg/engine"
)

// ExpectedPipsPerRoll is the mean pips granted by one roll of fair dice.
const ExpectedPipsPerRoll = 49.0 / 6.0

// DefaultAlpha is the significance level below which dice are reported unfair.
const DefaultAlpha = 0.001

// ErrNoRolls is returned when Audit is asked for fewer than one roll.
var ErrNoRolls = errors.New("audit needs at least one roll")

// Report summarises an audit.
type Report struct {
	Rolls       int     `json:"rolls"`
	Faces       [6]int  `json:"faces"`
	Doubles     int     `json:"doubles"`
	DoublesRate float64 `json:"doubles_rate"`
	MeanPips    float64 `json:"mean_pips"`
	PipsStdDev  float64 `json:"pips_std_dev"`
	ChiSquare   float64 `json:"chi_square"`
	PValue      float64 `json:"p_value"`
	Fair        bool    `json:"fair"`
}

// Audit rolls n pairs from r and tests the face distribution.
func Audit(r *engine.Roller, n int) (Report, error) {
	if n < 1 {
		return Report{}, ErrNoRolls
	}
	rep := Report{Rolls: n}
	pips := make([]float64, n)
	for i := 0; i < n; i++ {
		d1, d2 := r.RollTwo()
		rep.Faces[d1-1]++
		rep.Faces[d2-1]++
		moves := engine.DoubleRoll(d1, d2)
		if moves == 4 {
			rep.Doubles++
		}
		pips[i] = float64((d1 + d2) * moves / 2)
	}

	obs := make([]float64, 6)
	for i, c := range rep.Faces {
		obs[i] = float64(c)
	}
	exp := make([]float64, 6)
	floats.AddConst(floats.Sum(obs)/6, exp)

	rep.ChiSquare = stat.ChiSquare(obs, exp)
	rep.PValue = distuv.ChiSquared{K: 5}.Survival(rep.ChiSquare)
	rep.Fair = rep.PValue >= DefaultAlpha
	rep.DoublesRate = float64(rep.Doubles) / float64(n)
	rep.MeanPips, rep.PipsStdDev = stat.MeanStdDev(pips, nil)
	return rep, nil
}
