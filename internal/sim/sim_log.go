package sim

import (
	"fmt"
	"strings"
)

// SimLogEntry is one structured record written by the match.
type SimLogEntry struct {
	Tick     int
	Entity   string  // label e.g. "R0", "B1", or "--" for match-wide events
	Team     string  // "red", "blue", or "--"
	Category string  // turn, state, fire, explosion, damage, death, ai, move, game
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=0142] B0   ai        phase            think → aim
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%04d] %-4s %-9s %-16s %s",
		e.Tick, e.Entity, e.Category, e.Key, e.Value)
}

// SimLog collects structured events for tests and headless reports. It is
// unbounded and machine-readable.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-tick position entries
// are also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Add records a new entry.
func (sl *SimLog) Add(tick int, entity, team, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Entity:   entity,
		Team:     team,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, entity, team, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, entity, team, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ForCombatant returns the entries recorded against one combatant label.
func (sl *SimLog) ForCombatant(label string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Entity == label {
			out = append(out, e)
		}
	}
	return out
}

// LastTurn returns the entries from the most recent turn start onward. With
// no turn recorded yet it returns everything.
func (sl *SimLog) LastTurn() []SimLogEntry {
	for i := len(sl.entries) - 1; i >= 0; i-- {
		if e := sl.entries[i]; e.Category == "turn" && e.Key == "start" {
			return sl.entries[i:]
		}
	}
	return sl.entries
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	return formatEntries(sl.entries)
}

// FormatLastTurn renders LastTurn one entry per line.
func (sl *SimLog) FormatLastTurn() string {
	return formatEntries(sl.LastTurn())
}

func formatEntries(entries []SimLogEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable state summary for the roster.
func (sl *SimLog) Summary(tick int, entities []*Entity) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%04d ---\n", tick)

	alive := map[Team]int{}
	hp := map[Team]int{}
	var teams []Team
	for _, e := range entities {
		if _, ok := hp[e.team]; !ok {
			teams = append(teams, e.team)
			hp[e.team] = 0
		}
		if !e.dead {
			alive[e.team]++
			hp[e.team] += e.health
		}
	}
	for _, t := range teams {
		fmt.Fprintf(&sb, "%s: alive=%d hp=%d\n", t, alive[t], hp[t])
	}
	for _, e := range entities {
		shots, hits := 0, 0
		for _, le := range sl.ForCombatant(e.label) {
			switch le.Category {
			case "fire":
				shots++
			case "damage":
				hits++
			}
		}
		status := fmt.Sprintf("hp=%d", e.health)
		if e.dead {
			status = "dead"
		}
		fmt.Fprintf(&sb, "  %s %s shots=%d hits_taken=%d\n", e.label, status, shots, hits)
	}

	fmt.Fprintf(&sb, "Shots: %d  Explosions: %d  Deaths: %d\n",
		sl.CountCategory("fire", ""), sl.CountCategory("explosion", ""), sl.CountCategory("death", ""))
	return sb.String()
}
