package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Garsondee/Crater/internal/config"
	"github.com/Garsondee/Crater/internal/logging"
	"github.com/Garsondee/Crater/internal/sim"
	"github.com/Garsondee/Crater/internal/store"
	"github.com/rs/zerolog"
)

type runStats struct {
	runIndex int
	seed     int64
	report   sim.MatchReport
	storedID string
}

type aggregate struct {
	runs         int
	finished     int
	wins         map[string]int
	totalTicks   int
	totalTurns   int
	totalShots   int
	totalDeaths  int
	totalBounces int
	totalJumps   int
	endTicks     []int
	descriptions map[string]int
}

func main() {
	var runs int
	var maxTicks int
	var seedBase int64
	var seedStep int64
	var dbPath string
	var cfgPath string
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless matches")
	flag.IntVar(&maxTicks, "max-ticks", 36000, "tick limit per match")
	flag.Int64Var(&seedBase, "seed-base", 42, "seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&dbPath, "db", "", "SQLite file to record results in (optional)")
	flag.StringVar(&cfgPath, "config", "", "config file (json, yaml or toml)")
	flag.BoolVar(&verbose, "verbose", false, "print the per-combatant log summary for each run")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if maxTicks <= 0 {
		fmt.Println("error: -max-ticks must be > 0")
		return
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, os.Stderr)

	var db *store.Store
	if dbPath == "" {
		dbPath = cfg.Store.Path
	}
	if dbPath != "" {
		db, err = store.Open(dbPath)
		if err != nil {
			log.Fatal().Err(err).Msg("result store unavailable")
		}
		defer db.Close()
	}

	fmt.Printf("=== Headless Match Report ===\n")
	fmt.Printf("runs=%d max_ticks=%d seed_base=%d seed_step=%d\n\n", runs, maxTicks, seedBase, seedStep)

	ctx := context.Background()
	scripted := cfg.Scripted()
	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		rs := runMatch(scripted, i+1, seed, maxTicks, verbose, log, os.Stdout)
		if db != nil {
			id, err := db.SaveResult(ctx, rs.report)
			if err != nil {
				log.Error().Err(err).Int64("seed", seed).Msg("failed to record result")
			} else {
				rs.storedID = id
			}
		}
		all = append(all, rs)
		printRun(os.Stdout, rs)
	}

	printAggregate(os.Stdout, tally(all))

	if db != nil {
		counts, err := db.WinCounts(ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to read stored totals")
			return
		}
		fmt.Printf("\n=== Stored Results (%s) ===\n", dbPath)
		fmt.Printf("winners: %s\n", formatCounts(counts))
	}
}

// runMatch plays one AI-versus-AI match. Human teams in the config are
// handed to the AI, and so is the default roster.
func runMatch(cfg config.Config, runIndex int, seed int64, maxTicks int, verbose bool, log zerolog.Logger, w io.Writer) runStats {
	cfg.Seed = seed
	m := sim.NewMatch(cfg.MatchOptions(
		sim.WithDefaultRoster(sim.ControlScripted, sim.ControlScripted),
		sim.WithLogger(log),
		sim.WithSimLog(verbose),
	)...)
	report := m.RunToCompletion(maxTicks)
	log.Debug().Int64("seed", seed).Int("ticks", report.Ticks).Str("winner", report.WinnerName()).Msg("run complete")
	if verbose {
		fmt.Fprint(w, m.SimLog().Summary(m.Tick(), m.Entities()))
		fmt.Fprintln(w, "final turn:")
		fmt.Fprint(w, m.SimLog().FormatLastTurn())
	}
	return runStats{runIndex: runIndex, seed: seed, report: report}
}

func printRun(w io.Writer, rs runStats) {
	fmt.Fprintf(w, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprint(w, rs.report.Format())
	if rs.storedID != "" {
		fmt.Fprintf(w, "stored as %s\n", rs.storedID)
	}
	fmt.Fprintln(w)
}

func tally(all []runStats) aggregate {
	agg := aggregate{
		runs:         len(all),
		wins:         map[string]int{},
		descriptions: map[string]int{},
	}
	for _, rs := range all {
		r := rs.report
		agg.wins[r.WinnerName()]++
		agg.descriptions[r.Outcome.Description]++
		agg.totalTicks += r.Ticks
		agg.totalTurns += r.Turns
		agg.totalShots += r.Shots
		agg.totalDeaths += r.Deaths
		agg.totalBounces += r.Bounces
		agg.totalJumps += r.Jumps
		if r.Finished {
			agg.finished++
			agg.endTicks = append(agg.endTicks, r.Ticks)
		}
	}
	return agg
}

func printAggregate(w io.Writer, agg aggregate) {
	fmt.Fprintln(w, "=== Aggregate ===")
	fmt.Fprintf(w, "runs=%d finished=%d unfinished=%d\n", agg.runs, agg.finished, agg.runs-agg.finished)
	fmt.Fprintf(w, "winners: %s\n", formatCounts(agg.wins))
	fmt.Fprintf(w, "outcomes: %s\n", formatCounts(agg.descriptions))
	fmt.Fprintf(w, "avg_per_run: ticks=%.1f turns=%.1f shots=%.1f deaths=%.1f bounces=%.1f jumps=%.1f\n",
		avg(agg.totalTicks, agg.runs), avg(agg.totalTurns, agg.runs), avg(agg.totalShots, agg.runs),
		avg(agg.totalDeaths, agg.runs), avg(agg.totalBounces, agg.runs), avg(agg.totalJumps, agg.runs))
	fmt.Fprintf(w, "avg_finish_tick=%s\n", avgTickString(agg.endTicks))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

// formatCounts renders name=count pairs, most frequent first.
func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	names := make([]string, 0, len(counts))
	for k := range counts {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s=%d", n, counts[n])
	}
	return strings.Join(parts, " ")
}
