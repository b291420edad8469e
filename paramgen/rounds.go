package paramgen

import (
	"fmt"
	"math"

	"github.com/Zondax/poseidon377/params"
)

// ChooseRoundNumbers searches for the round numbers with the fewest S-boxes
// that resist the statistical, interpolation and Groebner-basis attacks at
// the requested security level, then applies the security margin from the
// Poseidon paper (two extra full rounds, 7.5% extra partial rounds).
//
// Only even full-round counts are considered, since the schedule splits
// them into two equal halves around the partial window.
func ChooseRoundNumbers(input params.InputParameters, alpha params.Alpha) (params.RoundNumbers, error) {
	if alpha.Inverse {
		return params.RoundNumbers{}, fmt.Errorf("poseidon377: round-number selection requires an exponent alpha")
	}

	var best params.RoundNumbers
	bestCost := 0
	found := false
	for partial := 1; partial < 400; partial++ {
		for full := 4; full < 100; full += 2 {
			candidate := params.RoundNumbers{Full: full, Partial: partial}
			if !isSecure(candidate, input, alpha) {
				continue
			}
			candidate = applySecurityMargin(candidate)
			cost := input.T*candidate.Full + candidate.Partial
			if !found || cost < bestCost {
				best = candidate
				bestCost = cost
				found = true
			}
		}
	}
	if !found {
		return params.RoundNumbers{}, fmt.Errorf("poseidon377: no secure round numbers for t=%d at %d bits", input.T, input.M)
	}
	return best, nil
}

func applySecurityMargin(r params.RoundNumbers) params.RoundNumbers {
	return params.RoundNumbers{
		Full:    r.Full + 2,
		Partial: int(math.Ceil(1.075 * float64(r.Partial))),
	}
}

func isSecure(r params.RoundNumbers, input params.InputParameters, alpha params.Alpha) bool {
	if r.Full < fullRoundsStatistical(input, alpha) {
		return false
	}
	if r.Total() <= totalRoundsInterpolation(input, alpha) {
		return false
	}
	if r.Total() <= totalRoundsGroebner(input, alpha) {
		return false
	}
	return true
}

// fullRoundsStatistical returns the minimum number of full rounds against
// statistical (differential/linear) attacks for an x^alpha S-box.
func fullRoundsStatistical(input params.InputParameters, alpha params.Alpha) int {
	c := math.Log2(float64(alpha.Exponent) - 1)
	if float64(input.M) <= (math.Floor(input.Log2P)-c)*float64(input.T+1) {
		return 6
	}
	return 10
}

// totalRoundsInterpolation returns the total-round bound from the
// interpolation attack. A candidate is secure only strictly above it.
func totalRoundsInterpolation(input params.InputParameters, alpha params.Alpha) int {
	a := float64(alpha.Exponent)
	logAlpha2 := 1 / math.Log2(a)
	minMP := math.Min(float64(input.M), input.Log2P)
	logAlphaT := math.Log(float64(input.T)) / math.Log(a)
	return int(math.Ceil(logAlpha2*minMP)) + int(math.Ceil(logAlphaT))
}

// totalRoundsGroebner returns the total-round bound from the two
// Groebner-basis attack strategies; the attacker picks the cheaper one.
func totalRoundsGroebner(input params.InputParameters, alpha params.Alpha) int {
	a := float64(alpha.Exponent)
	logAlpha2 := 1 / math.Log2(a)
	logAlphaT := math.Log(float64(input.T)) / math.Log(a)

	first := int(math.Ceil(logAlpha2 * math.Min(float64(input.M)/3, input.Log2P/2)))
	second := int(math.Ceil(logAlpha2*float64(input.M)/float64(input.T+1))) + int(math.Ceil(logAlphaT))
	if first < second {
		return first
	}
	return second
}
