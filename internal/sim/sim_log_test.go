package sim

import (
	"strings"
	"testing"
)

func TestSimLog_LastTurnStartsAtMostRecentTurn(t *testing.T) {
	sl := NewSimLog(false)
	sl.Add(1, "R0", "red", "turn", "start", "R0 human", 0)
	sl.Add(5, "R0", "red", "fire", "bazooka", "", 0)
	sl.Add(40, "B0", "blue", "turn", "start", "B0 scripted", 0)
	sl.Add(52, "B0", "blue", "fire", "grenade", "", 0)

	last := sl.LastTurn()
	if len(last) != 2 || last[0].Tick != 40 || last[1].Key != "grenade" {
		t.Fatalf("expected the blue turn only, got %+v", last)
	}
	out := sl.FormatLastTurn()
	if strings.Contains(out, "bazooka") || !strings.Contains(out, "grenade") {
		t.Fatalf("formatted last turn leaked the earlier turn:\n%s", out)
	}
}

func TestSimLog_LastTurnWithoutTurnReturnsAll(t *testing.T) {
	sl := NewSimLog(false)
	sl.Add(1, "--", "--", "state", "change", "input → firing", 0)
	if len(sl.LastTurn()) != 1 {
		t.Fatal("with no turn start every entry belongs to the last turn")
	}
}

func TestSimLog_ForCombatant(t *testing.T) {
	sl := NewSimLog(false)
	sl.Add(1, "R0", "red", "fire", "bazooka", "", 0)
	sl.Add(2, "B0", "blue", "damage", "hit", "-25 hp=75", 25)
	sl.Add(3, "R0", "red", "damage", "hit", "-10 hp=90", 10)

	got := sl.ForCombatant("R0")
	if len(got) != 2 || got[0].Tick != 1 || got[1].Tick != 3 {
		t.Fatalf("expected R0's two entries, got %+v", got)
	}
	if len(sl.ForCombatant("B1")) != 0 {
		t.Fatal("unknown label should match nothing")
	}
}

func TestSimLog_SummaryListsCombatants(t *testing.T) {
	red := NewEntity(0, "R0", 0, 0, TeamRed, ControlHuman)
	blue := NewEntity(1, "B0", 0, 0, TeamBlue, ControlScripted)
	blue.kill()

	sl := NewSimLog(false)
	sl.Add(1, "R0", "red", "fire", "bazooka", "", 0)
	sl.Add(2, "B0", "blue", "damage", "hit", "-25 hp=75", 25)

	out := sl.Summary(9, []*Entity{red, blue})
	for _, want := range []string{"R0 hp=100 shots=1 hits_taken=0", "B0 dead shots=0 hits_taken=1", "blue: alive=0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}
