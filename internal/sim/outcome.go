package sim

import (
	"fmt"
	"sort"
)

type Outcome int

const (
	OutcomeInconclusive Outcome = iota
	OutcomeVictory
	OutcomeDraw
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDraw:
		return "draw"
	case OutcomeInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

// TeamTally is the survivor count for one team.
type TeamTally struct {
	Team      Team
	Survivors int
	Total     int
	Health    int // summed over survivors
}

func (t TeamTally) casualtyRate() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Total-t.Survivors) / float64(t.Total)
}

type OutcomeReason struct {
	Outcome     Outcome
	Winner      Team // valid when Outcome is OutcomeVictory
	Teams       []TeamTally
	Description string
}

// DetermineOutcome judges a roster. A sole surviving team wins outright and
// no survivors is a draw. With several teams still standing (a match cut off
// by a tick limit) a clear casualty advantage is reported as a marginal
// victory.
func DetermineOutcome(entities []*Entity) OutcomeReason {
	byTeam := map[Team]*TeamTally{}
	var order []Team
	for _, e := range entities {
		tally, ok := byTeam[e.team]
		if !ok {
			tally = &TeamTally{Team: e.team}
			byTeam[e.team] = tally
			order = append(order, e.team)
		}
		tally.Total++
		if !e.dead {
			tally.Survivors++
			tally.Health += e.health
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	reason := OutcomeReason{Outcome: OutcomeInconclusive}
	var standing []TeamTally
	for _, t := range order {
		tally := *byTeam[t]
		reason.Teams = append(reason.Teams, tally)
		if tally.Survivors > 0 {
			standing = append(standing, tally)
		}
	}

	switch {
	case len(reason.Teams) == 0:
		reason.Description = "inconclusive_empty_roster"
		return reason
	case len(standing) == 0:
		reason.Outcome = OutcomeDraw
		reason.Description = "mutual_annihilation"
		return reason
	case len(standing) == 1:
		reason.Outcome = OutcomeVictory
		reason.Winner = standing[0].Team
		reason.Description = fmt.Sprintf("decisive_%s_victory", standing[0].Team)
		return reason
	}

	// Several teams standing: compare the two with the lowest casualty rates.
	sort.SliceStable(standing, func(i, j int) bool {
		return standing[i].casualtyRate() < standing[j].casualtyRate()
	})
	best, next := standing[0], standing[1]
	diff := next.casualtyRate() - best.casualtyRate()
	switch {
	case diff > 0.30 && best.casualtyRate() < 0.50:
		reason.Outcome = OutcomeVictory
		reason.Winner = best.Team
		reason.Description = fmt.Sprintf("marginal_%s_victory_casualty_advantage", best.Team)
	case diff <= 0.20 && (best.casualtyRate() > 0.30 || next.casualtyRate() > 0.30):
		reason.Outcome = OutcomeDraw
		reason.Description = "draw_similar_casualties"
	default:
		reason.Description = "inconclusive_insufficient_resolution"
	}
	return reason
}

// Survivors returns the number of survivors for team.
func (r OutcomeReason) Survivors(team Team) int {
	for _, t := range r.Teams {
		if t.Team == team {
			return t.Survivors
		}
	}
	return 0
}
