package sim

// RunTicks advances the match n fixed steps with no input and returns every
// event produced.
func (m *Match) RunTicks(n int) []Event {
	return m.RunTicksWith(n, Input{})
}

// RunTicksWith advances the match n fixed steps, feeding the same input each
// step.
func (m *Match) RunTicksWith(n int, in Input) []Event {
	var out []Event
	for i := 0; i < n; i++ {
		out = append(out, m.Step(DefaultStep, in)...)
	}
	return out
}

// RunUntil advances the match up to maxTicks fixed steps, stopping early if
// predicate returns true. Returns the tick at which the predicate was
// satisfied, or -1.
func (m *Match) RunUntil(predicate func(*Match) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		m.Step(DefaultStep, Input{})
		if predicate(m) {
			return m.tick
		}
	}
	return -1
}

// RunToCompletion plays until GAMEOVER or maxTicks and returns the report.
func (m *Match) RunToCompletion(maxTicks int) MatchReport {
	m.RunUntil(func(m *Match) bool { return m.Over() }, maxTicks)
	return m.Report()
}
