package game

import (
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/heartsgammon/pkg/engine"
)

// SimulationOptions configures Simulate.
type SimulationOptions struct {
	Games    int   `json:"games"`     // Number of games to play (default 1000)
	Seed     int64 `json:"seed"`      // Random seed, 0 for a random one
	Workers  int   `json:"workers"`   // Parallel workers, 0 for GOMAXPROCS
	MaxTurns int   `json:"max_turns"` // Turn limit per game before it is abandoned (default 2000)
}

// DefaultSimulationOptions returns sensible defaults
func DefaultSimulationOptions() SimulationOptions {
	return SimulationOptions{
		Games:    1000,
		Seed:     0,
		Workers:  0,
		MaxTurns: 2000,
	}
}

// SimulationReport summarizes random self-play.
type SimulationReport struct {
	Games      int              `json:"games"`
	Wins       engine.PerPlayer `json:"wins"`
	KOs        int              `json:"kos"`
	BearOffs   int              `json:"bear_offs"`
	ScoreTiers [4]int           `json:"score_tiers"` // indexed by points scored
	Points     engine.PerPlayer `json:"points"`
	Hits       int              `json:"hits"`
	Unfinished int              `json:"unfinished"`
	MeanTurns  float64          `json:"mean_turns"`
	StdTurns   float64          `json:"std_turns"`
}

// simResult holds the tallies from a single worker
type simResult struct {
	report SimulationReport
	turns  []float64
}

// Simulate plays games between two players that pick uniformly among the
// legal moves, spreading games across workers.
func Simulate(opts SimulationOptions) SimulationReport {
	if opts.Games <= 0 {
		opts.Games = 1000
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Workers > opts.Games {
		opts.Workers = opts.Games
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = 2000
	}
	if opts.Seed == 0 {
		opts.Seed = rand.Int63()
	}

	perWorker := opts.Games / opts.Workers
	extra := opts.Games % opts.Workers

	results := make(chan simResult, opts.Workers)
	var wg sync.WaitGroup

	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		games := perWorker
		if i < extra {
			games++
		}
		seed := opts.Seed + int64(i)*1000000

		go func(games int, seed int64) {
			defer wg.Done()
			results <- simulateWorker(games, seed, opts.MaxTurns)
		}(games, seed)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return aggregateSimulation(results)
}

func simulateWorker(games int, seed int64, maxTurns int) simResult {
	rng := rand.New(rand.NewSource(seed))
	roller := engine.NewRollerFrom(rng)

	var res simResult
	for g := 0; g < games; g++ {
		sess := New(roller)
		out, turns, hits := playOut(sess, rng, maxTurns)
		r := &res.report
		r.Games++
		r.Hits += hits
		if out == nil {
			r.Unfinished++
			continue
		}
		res.turns = append(res.turns, float64(turns))
		r.Wins[out.Winner]++
		r.Points[out.Winner] += out.Score
		if out.Score >= 0 && out.Score < len(r.ScoreTiers) {
			r.ScoreTiers[out.Score]++
		}
		switch out.Reason {
		case engine.ReasonKO:
			r.KOs++
		case engine.ReasonBearOff:
			r.BearOffs++
		}
	}
	return res
}

// playOut plays one game to completion or until maxTurns rolls. It returns a
// nil outcome for an abandoned game.
func playOut(sess *Session, rng *rand.Rand, maxTurns int) (*engine.Outcome, int, int) {
	hits := 0
	for turns := 1; turns <= maxTurns; turns++ {
		if _, err := sess.Roll(); err != nil {
			return nil, turns, hits
		}
		for sess.Phase == Moving {
			moves := sess.LegalMoves()
			if len(moves) == 0 {
				// Only the second die plays; play it first.
				if sess.Swap() != nil {
					return nil, turns, hits
				}
				continue
			}
			m := moves[rng.Intn(len(moves))]
			res, err := sess.Play(m.From)
			if err != nil {
				return nil, turns, hits
			}
			if res.Hit {
				hits++
			}
			if res.Outcome != nil {
				return res.Outcome, turns, hits
			}
		}
	}
	return nil, maxTurns, hits
}

func aggregateSimulation(results chan simResult) SimulationReport {
	var (
		report SimulationReport
		turns  []float64
	)
	for pr := range results {
		r := pr.report
		report.Games += r.Games
		report.KOs += r.KOs
		report.BearOffs += r.BearOffs
		report.Hits += r.Hits
		report.Unfinished += r.Unfinished
		for _, p := range engine.Players {
			report.Wins[p] += r.Wins[p]
			report.Points[p] += r.Points[p]
		}
		for i := range report.ScoreTiers {
			report.ScoreTiers[i] += r.ScoreTiers[i]
		}
		turns = append(turns, pr.turns...)
	}

	// Workers finish in any order.
	sort.Float64s(turns)
	switch {
	case len(turns) > 1:
		report.MeanTurns, report.StdTurns = stat.MeanStdDev(turns, nil)
	case len(turns) == 1:
		report.MeanTurns = turns[0]
	}
	return report
}
