package hoot

// DefaultMaxDepth is the number of capability executions allowed for a single query.
const DefaultMaxDepth = 10

// RecursionState tracks capability executions for one query. It is passed by value
// down the continuation chain.
type RecursionState struct {
	Depth  int
	Halted bool
}

// AllowCapabilities reports whether capabilities may be offered and executed.
func AllowCapabilities(depth int, halted bool, maxDepth int) bool {
	return !halted && depth < maxDepth
}

// Allow reports whether the next continuation may offer capabilities.
func (s RecursionState) Allow(maxDepth int) bool {
	return AllowCapabilities(s.Depth, s.Halted, maxDepth)
}

// Advance records one capability execution. Reaching maxDepth halts the query for good.
func (s RecursionState) Advance(maxDepth int) RecursionState {
	s.Depth++
	if s.Depth >= maxDepth {
		s.Halted = true
	}
	return s
}
