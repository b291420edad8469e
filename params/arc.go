package params

// ArcMatrix holds the additive round constants, one row per round, one
// column per state element. Row r is injected into the state before the
// S-box layer of round r.
type ArcMatrix struct {
	Matrix
}

// OptimizedArcMatrix holds the same constants rearranged for the optimized
// schedule: full-round rows are untouched, while inside the partial window
// the constants of each round are propagated backward through the mixing
// matrix so that every middle partial round injects a single constant into
// state element 0.
type OptimizedArcMatrix struct {
	Matrix
}
