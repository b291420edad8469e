package params

import (
	"math"
	"math/big"
)

// Alpha captures the Poseidon S-box exponent.
type Alpha struct {
	Exponent uint32
	Inverse  bool
}

// RoundNumbers holds the number of full and partial rounds of a permutation.
type RoundNumbers struct {
	Full    int
	Partial int
}

// Total returns the combined round count.
func (r RoundNumbers) Total() int {
	return r.Full + r.Partial
}

// InputParameters pins down a Poseidon instance before any constants are
// derived: the target security level M in bits, the state width T (rate plus
// one capacity element) and the field modulus P. Log2P caches the base-2
// logarithm of the modulus for the round-number bounds.
type InputParameters struct {
	M     int
	T     int
	P     *big.Int
	Log2P float64
}

// NewInputParameters copies the modulus and precomputes its base-2 logarithm.
func NewInputParameters(m, t int, p *big.Int) InputParameters {
	modulus := new(big.Int).Set(p)
	approx, _ := new(big.Float).SetInt(modulus).Float64()
	return InputParameters{
		M:     m,
		T:     t,
		P:     modulus,
		Log2P: math.Log2(approx),
	}
}
