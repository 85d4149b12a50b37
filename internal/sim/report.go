package sim

import (
	"fmt"
	"strings"
)

// MatchReport is the end-of-run summary used by the headless runner, the
// clipboard export and the result store.
type MatchReport struct {
	Seed       int64
	Ticks      int
	Seconds    float64
	Finished   bool
	Outcome    OutcomeReason
	Turns      int
	Shots      int
	Explosions int
	Bounces    int
	Jumps      int
	Deaths     int
	Dealt      map[Team]int
	Taken      map[Team]int
}

// Report summarises the match as it stands.
func (m *Match) Report() MatchReport {
	stats := m.Stats()
	return MatchReport{
		Seed:       m.seed,
		Ticks:      m.tick,
		Seconds:    m.elapsed,
		Finished:   m.state == StateGameOver,
		Outcome:    DetermineOutcome(m.entities),
		Turns:      stats.Turns,
		Shots:      stats.Shots,
		Explosions: stats.Explosions,
		Bounces:    stats.Bounces,
		Jumps:      stats.Jumps,
		Deaths:     stats.Deaths,
		Dealt:      stats.DamageDealt,
		Taken:      stats.DamageTaken,
	}
}

// WinnerName is the winning team's name, "draw", or "none".
func (r MatchReport) WinnerName() string {
	switch r.Outcome.Outcome {
	case OutcomeVictory:
		return r.Outcome.Winner.String()
	case OutcomeDraw:
		return "draw"
	default:
		return "none"
	}
}

// Format renders the report as plain text.
func (r MatchReport) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Match seed=%d ===\n", r.Seed)
	status := "unfinished"
	if r.Finished {
		status = "finished"
	}
	fmt.Fprintf(&sb, "Status: %s after %d ticks (%.1fs)\n", status, r.Ticks, r.Seconds)
	fmt.Fprintf(&sb, "Outcome: %s (%s) winner=%s\n", r.Outcome.Outcome, r.Outcome.Description, r.WinnerName())
	fmt.Fprintf(&sb, "Turns: %d  Shots: %d  Explosions: %d  Bounces: %d  Jumps: %d  Deaths: %d\n",
		r.Turns, r.Shots, r.Explosions, r.Bounces, r.Jumps, r.Deaths)
	for _, t := range r.Outcome.Teams {
		fmt.Fprintf(&sb, "  %-5s survivors=%d/%d hp=%d dealt=%d taken=%d\n",
			t.Team, t.Survivors, t.Total, t.Health, r.Dealt[t.Team], r.Taken[t.Team])
	}
	return sb.String()
}
