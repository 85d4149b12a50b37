package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Garsondee/Crater/internal/sim"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func victoryReport(seed int64, winner sim.Team) sim.MatchReport {
	loser := sim.TeamBlue
	if winner == sim.TeamBlue {
		loser = sim.TeamRed
	}
	return sim.MatchReport{
		Seed:       seed,
		Ticks:      5400,
		Seconds:    90,
		Finished:   true,
		Turns:      7,
		Shots:      6,
		Explosions: 6,
		Deaths:     2,
		Outcome: sim.OutcomeReason{
			Outcome:     sim.OutcomeVictory,
			Winner:      winner,
			Description: "decisive_" + winner.String() + "_victory",
			Teams: []sim.TeamTally{
				{Team: sim.TeamRed, Total: 2},
				{Team: sim.TeamBlue, Total: 2},
			},
		},
		Dealt: map[sim.Team]int{winner: 200},
		Taken: map[sim.Team]int{loser: 200},
	}
}

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestFromReport(t *testing.T) {
	res := FromReport(victoryReport(3, sim.TeamRed))

	assert.Equal(t, int64(3), res.Seed)
	assert.Equal(t, "victory", res.Outcome)
	assert.Equal(t, "red", res.Winner)
	assert.Equal(t, "decisive_red_victory", res.Description)
	assert.Empty(t, res.ID)
	require.Len(t, res.Teams, 2)
	assert.Equal(t, "red", res.Teams[0].Team)
	assert.Equal(t, 200, res.Teams[0].Dealt)
	assert.Equal(t, 200, res.Teams[1].Taken)
}

func TestSaveResult_RoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	id, err := s.SaveResult(ctx, victoryReport(11, sim.TeamBlue))
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err, "IDs are UUIDs")

	got, err := s.Result(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, int64(11), got.Seed)
	assert.Equal(t, "blue", got.Winner)
	assert.True(t, got.Finished)
	assert.False(t, got.CreatedAt.IsZero())
	require.Len(t, got.Teams, 2)
	for _, team := range got.Teams {
		assert.Equal(t, id, team.MatchID)
	}
	assert.Equal(t, 200, got.Teams[1].Dealt)
}

func TestResults_ListsEverySavedMatch(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	for seed := int64(1); seed <= 3; seed++ {
		_, err := s.SaveResult(ctx, victoryReport(seed, sim.TeamRed))
		require.NoError(t, err)
	}

	all, err := s.Results(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	seeds := []int64{all[0].Seed, all[1].Seed, all[2].Seed}
	assert.ElementsMatch(t, []int64{1, 2, 3}, seeds)
	for _, r := range all {
		assert.Len(t, r.Teams, 2)
	}
}

func TestWinCounts(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_, err := s.SaveResult(ctx, victoryReport(1, sim.TeamRed))
	require.NoError(t, err)
	_, err = s.SaveResult(ctx, victoryReport(2, sim.TeamRed))
	require.NoError(t, err)
	_, err = s.SaveResult(ctx, victoryReport(3, sim.TeamBlue))
	require.NoError(t, err)
	_, err = s.SaveResult(ctx, sim.MatchReport{Seed: 4, Outcome: sim.OutcomeReason{Outcome: sim.OutcomeDraw}})
	require.NoError(t, err)

	counts, err := s.WinCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"red": 2, "blue": 1, "draw": 1}, counts)
}

func TestResult_UnknownID(t *testing.T) {
	s := openTemp(t)
	_, err := s.Result(context.Background(), uuid.NewString())
	assert.Error(t, err)
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	_, err = s.SaveResult(ctx, victoryReport(8, sim.TeamRed))
	require.NoError(t, err)
	all, err := s.Results(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.SaveResult(ctx, victoryReport(21, sim.TeamRed))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Result(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(21), got.Seed)
}
