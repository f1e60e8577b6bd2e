// heartsgammon - command line access to the heartsgammon rules engine
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/heartsgammon/internal/config"
	"github.com/yourusername/heartsgammon/internal/dicestats"
	"github.com/yourusername/heartsgammon/internal/positionid"
	"github.com/yourusername/heartsgammon/pkg/engine"
	"github.com/yourusername/heartsgammon/pkg/game"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "new":
		cmdNew(args)
	case "moves":
		cmdMoves(args)
	case "move":
		cmdMove(args)
	case "enter":
		cmdEnter(args)
	case "bearoff":
		cmdBearOff(args)
	case "pips":
		cmdPips(args)
	case "roll":
		cmdRoll(args)
	case "first":
		cmdFirst(args)
	case "gameover":
		cmdGameOver(args)
	case "dice-audit":
		cmdDiceAudit(args)
	case "simulate":
		cmdSimulate(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`heartsgammon - Mario vs Goomba backgammon rules engine

Usage: heartsgammon <command> [options]

Commands:
  new         Print the starting position
  moves       List legal moves for a player and dice
  move        Move a checker
  enter       Re-enter a checker from the bar
  bearoff     Bear a checker off
  pips        Show pip counts
  roll        Roll two dice
  first       Decide who moves first
  gameover    Check whether a position ends the game
  dice-audit  Chi-square fairness audit of the dice
  simulate    Random self-play statistics

Use "heartsgammon <command> -h" for command-specific help.

Positions are position IDs as printed by "heartsgammon new"; the starting
position is used when -p is omitted. Points are indexed 0-23; Mario moves
toward 0 and Goomba toward 23.`)
}

func fail(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", a...)
	os.Exit(1)
}

func parsePosition(id string) engine.State {
	if id == "" {
		return engine.NewBoard()
	}
	s, err := positionid.StateFromPositionID(id)
	if err != nil {
		fail("%v", err)
	}
	return s
}

func parsePlayer(name string) engine.Player {
	p, err := engine.ParsePlayer(strings.ToLower(name))
	if err != nil {
		fail("%v (want mario or goomba)", err)
	}
	return p
}

func parsePair(s, what string, lo, hi int) [2]int {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		parts = strings.Split(s, "-")
	}
	if len(parts) != 2 {
		fail("%s should be in format '3,1' or '3-1'", what)
	}
	var out [2]int
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < lo || v > hi {
			fail("%s values must be %d-%d", what, lo, hi)
		}
		out[i] = v
	}
	return out
}

func newRoller(seed int64) *engine.Roller {
	if seed == 0 {
		var err error
		if seed, err = config.NewSeed(); err != nil {
			fail("%v", err)
		}
	}
	return engine.NewRoller(seed)
}

func printState(s engine.State) {
	fmt.Printf("Position: %s\n", positionid.PositionID(s))
	fmt.Println("  idx  point")
	for i := engine.NumPoints - 1; i >= 0; i-- {
		pt := s.Board[i]
		var desc string
		switch {
		case pt.IsPipe():
			desc = "pipe"
		case pt.IsEmpty():
			desc = "."
		default:
			desc = fmt.Sprintf("%s x%d", pt.Owner, pt.Count)
		}
		fmt.Printf("  %3d  %s\n", i, desc)
	}
	fmt.Printf("  Bar:      mario %d, goomba %d\n", s.Bar[engine.Mario], s.Bar[engine.Goomba])
	fmt.Printf("  Borne off: mario %d, goomba %d\n", s.BorneOff[engine.Mario], s.BorneOff[engine.Goomba])
}

// printResult reports the outcome of a mutator.
func printResult(before, after engine.State, p engine.Player, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Illegal move: %v\n", err)
		os.Exit(1)
	}
	if after.Bar[p.Opponent()] > before.Bar[p.Opponent()] {
		fmt.Printf("Hit! %s loses a heart.\n", p.Opponent())
	}
	printState(after)
}

func cmdNew(args []string) {
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	fs.Parse(args)
	printState(engine.NewBoard())
}

func cmdMoves(args []string) {
	fs := flag.NewFlagSet("moves", flag.ExitOnError)
	pos := fs.String("p", "", "Position ID (default: starting position)")
	player := fs.String("player", "mario", "Player to move")
	dice := fs.String("d", "", "Dice roll (e.g., 3,1 or 3-1)")
	fs.Parse(args)

	if *dice == "" {
		fail("dice required\nUsage: heartsgammon moves -d <roll> [-p <position>] [-player mario|goomba]")
	}
	s := parsePosition(*pos)
	p := parsePlayer(*player)
	d := parsePair(*dice, "dice", 1, 6)

	moves := engine.LegalMovesForPlayer(s, p, engine.DiceList(d[0], d[1]))
	if len(moves) == 0 {
		fmt.Println("No legal moves (forced to pass)")
		return
	}
	fmt.Printf("Legal moves for %s with %d-%d:\n", p, d[0], d[1])
	for _, m := range moves {
		fmt.Printf("  die %d  %s\n", m.Die, m)
	}
}

func cmdMove(args []string) {
	fs := flag.NewFlagSet("move", flag.ExitOnError)
	pos := fs.String("p", "", "Position ID (default: starting position)")
	player := fs.String("player", "mario", "Player to move")
	from := fs.Int("from", -1, "Point index to move from (0-23)")
	die := fs.Int("die", 0, "Die value (1-6)")
	fs.Parse(args)

	s := parsePosition(*pos)
	p := parsePlayer(*player)
	next, err := engine.MoveChecker(s, *from, *die, p)
	printResult(s, next, p, err)
}

func cmdEnter(args []string) {
	fs := flag.NewFlagSet("enter", flag.ExitOnError)
	pos := fs.String("p", "", "Position ID")
	player := fs.String("player", "mario", "Player to move")
	die := fs.Int("die", 0, "Die value (1-6)")
	fs.Parse(args)

	s := parsePosition(*pos)
	p := parsePlayer(*player)
	next, err := engine.ReenterFromBar(s, p, *die)
	printResult(s, next, p, err)
}

func cmdBearOff(args []string) {
	fs := flag.NewFlagSet("bearoff", flag.ExitOnError)
	pos := fs.String("p", "", "Position ID")
	player := fs.String("player", "mario", "Player to move")
	from := fs.Int("from", -1, "Point index to bear off from (0-23)")
	die := fs.Int("die", 0, "Die value (1-6)")
	fs.Parse(args)

	s := parsePosition(*pos)
	p := parsePlayer(*player)
	next, err := engine.RemoveChecker(s, *from, *die, p)
	printResult(s, next, p, err)
}

func cmdPips(args []string) {
	fs := flag.NewFlagSet("pips", flag.ExitOnError)
	pos := fs.String("p", "", "Position ID (default: starting position)")
	fs.Parse(args)

	s := parsePosition(*pos)
	for _, p := range engine.Players {
		home := ""
		if engine.AllInHome(s, p) {
			home = " (all home)"
		}
		fmt.Printf("%-7s %3d pips%s\n", p, engine.PipCount(s.Board, p), home)
	}
}

func cmdRoll(args []string) {
	fs := flag.NewFlagSet("roll", flag.ExitOnError)
	seed := fs.Int64("seed", 0, "Random seed (0 = random)")
	fs.Parse(args)

	d1, d2 := newRoller(*seed).RollTwo()
	fmt.Printf("Rolled %d-%d (%d moves)\n", d1, d2, engine.DoubleRoll(d1, d2))
}

func cmdFirst(args []string) {
	fs := flag.NewFlagSet("first", flag.ExitOnError)
	seed := fs.Int64("seed", 0, "Random seed (0 = random)")
	fs.Parse(args)

	fr := newRoller(*seed).DetermineFirstPlayer()
	fmt.Printf("Mario rolled %d, Goomba rolled %d: %s moves first\n",
		fr.Dice[engine.Mario], fr.Dice[engine.Goomba], fr.First)
}

func cmdGameOver(args []string) {
	fs := flag.NewFlagSet("gameover", flag.ExitOnError)
	pos := fs.String("p", "", "Position ID (default: starting position)")
	hearts := fs.String("hearts", "5,5", "Hearts left as mario,goomba")
	fs.Parse(args)

	s := parsePosition(*pos)
	h := parsePair(*hearts, "hearts", 0, game.StartingHearts)
	out, over := engine.CheckGameOver(s, h[0], h[1])
	if !over {
		fmt.Println("Game continues")
		return
	}
	fmt.Println(game.Announce(out))
}

func cmdDiceAudit(args []string) {
	fs := flag.NewFlagSet("dice-audit", flag.ExitOnError)
	n := fs.Int("n", 36000, "Number of rolls")
	seed := fs.Int64("seed", 0, "Random seed (0 = random)")
	fs.Parse(args)

	rep, err := dicestats.Audit(newRoller(*seed), *n)
	if err != nil {
		fail("%v", err)
	}

	fmt.Printf("Dice audit (%d rolls):\n", rep.Rolls)
	for i, c := range rep.Faces {
		fmt.Printf("  %d: %d\n", i+1, c)
	}
	fmt.Printf("  Doubles:    %.2f%% (expected %.2f%%)\n", rep.DoublesRate*100, 100.0/6)
	fmt.Printf("  Pips/roll:  %.3f ± %.3f (expected %.3f)\n", rep.MeanPips, rep.PipsStdDev, dicestats.ExpectedPipsPerRoll)
	fmt.Printf("  Chi-square: %.3f (p = %.4f)\n", rep.ChiSquare, rep.PValue)
	if rep.Fair {
		fmt.Println("  Verdict:    fair")
	} else {
		fmt.Println("  Verdict:    NOT fair")
	}
}

func cmdSimulate(args []string) {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	opts := game.DefaultSimulationOptions()
	fs.IntVar(&opts.Games, "games", opts.Games, "Number of games")
	fs.IntVar(&opts.Workers, "workers", opts.Workers, "Number of worker goroutines (0 = auto)")
	fs.IntVar(&opts.MaxTurns, "max-turns", opts.MaxTurns, "Abandon games after N turns")
	fs.Int64Var(&opts.Seed, "seed", opts.Seed, "Random seed (0 = random)")
	asJSON := fs.Bool("json", false, "Print the report as JSON")
	fs.Parse(args)

	start := time.Now()
	r := game.Simulate(opts)
	elapsed := time.Since(start)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(r)
		return
	}

	fmt.Printf("Simulation (%d games, %.1fs):\n", r.Games, elapsed.Seconds())
	fmt.Printf("  Wins:      mario %d, goomba %d\n", r.Wins[engine.Mario], r.Wins[engine.Goomba])
	fmt.Printf("  By KO:     %d\n", r.KOs)
	fmt.Printf("  Bear-off:  %d\n", r.BearOffs)
	fmt.Printf("  Scores:    1pt %d, 2pt %d, 3pt %d\n", r.ScoreTiers[1], r.ScoreTiers[2], r.ScoreTiers[3])
	fmt.Printf("  Hits:      %d\n", r.Hits)
	fmt.Printf("  Turns:     %.1f ± %.1f\n", r.MeanTurns, r.StdTurns)
	if r.Unfinished > 0 {
		fmt.Printf("  Abandoned: %d\n", r.Unfinished)
	}
}
