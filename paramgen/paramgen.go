package paramgen

import (
	"github.com/Zondax/poseidon377/params"
)

// Generate derives a complete, validated parameter set from an instance
// description: alpha, round numbers, mixing matrix, round constants, and the
// optimized forms of both. Deterministic; equal inputs produce bit-identical
// sets.
func Generate(input params.InputParameters) (*params.Parameters, error) {
	alpha := ChooseAlpha(input.P)

	rounds, err := ChooseRoundNumbers(input, alpha)
	if err != nil {
		return nil, err
	}

	mds, err := GenerateMdsMatrix(input)
	if err != nil {
		return nil, err
	}

	arc := GenerateArcMatrix(input, rounds, alpha)

	optimizedArc, err := OptimizeArcMatrix(arc, mds, rounds)
	if err != nil {
		return nil, err
	}

	optimizedMds, err := ComputeOptimizedMdsMatrices(mds, rounds)
	if err != nil {
		return nil, err
	}

	set := &params.Parameters{
		Input:        input,
		Rounds:       rounds,
		Alpha:        alpha,
		MDS:          mds,
		Arc:          arc,
		OptimizedArc: optimizedArc,
		OptimizedMDS: optimizedMds,
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}
