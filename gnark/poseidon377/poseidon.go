// Package poseidon377 provides the in-circuit counterpart of the native hash.
// Constants come from the same derived parameter sets, so proofs about
// native digests verify against circuits built here.
package poseidon377

import (
	"fmt"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/gnark/frontend"

	poseidon "github.com/Zondax/poseidon377"
	"github.com/Zondax/poseidon377/params"
)

// circuitPermutation mirrors the native permutation but emits gnark constraints.
type circuitPermutation struct {
	t        int
	halfFull int
	partial  int
	alpha    params.Alpha
	arc      []fr.Element
	mds      []fr.Element
	mi       []fr.Element
	m00      fr.Element
	vColl    [][]fr.Element
	wHatColl [][]fr.Element
}

// newCircuitPermutation builds a circuit gadget for the provided rate.
func newCircuitPermutation(rate int) (*circuitPermutation, error) {
	set, err := poseidon.Parameters(rate)
	if err != nil {
		return nil, err
	}
	opt := set.OptimizedMDS
	gadget := &circuitPermutation{
		t:        set.Input.T,
		halfFull: set.Rounds.Full / 2,
		partial:  set.Rounds.Partial,
		alpha:    set.Alpha,
		arc:      set.OptimizedArc.Elements(),
		mds:      set.MDS.Elements(),
		mi:       opt.MI.Elements(),
		m00:      opt.M00,
	}
	gadget.vColl = make([][]fr.Element, len(opt.VCollection))
	for i, col := range opt.VCollection {
		gadget.vColl[i] = col.Elements()
	}
	gadget.wHatColl = make([][]fr.Element, len(opt.WHatCollection))
	for i, row := range opt.WHatCollection {
		gadget.wHatColl[i] = row.Elements()
	}
	return gadget, nil
}

// Hash computes H(domain, inputs...) inside a gnark circuit.
func Hash(api frontend.API, domain frontend.Variable, inputs ...frontend.Variable) (frontend.Variable, error) {
	rate := len(inputs)
	if rate < 1 {
		var zero frontend.Variable
		return zero, fmt.Errorf("poseidon377: need at least 1 limb")
	}
	gadget, err := newCircuitPermutation(rate)
	if err != nil {
		var zero frontend.Variable
		return zero, err
	}
	state := make([]frontend.Variable, gadget.t)
	state[0] = domain
	copy(state[1:], inputs)
	state = gadget.permute(api, state)
	return state[1], nil
}

func (p *circuitPermutation) permute(api frontend.API, state []frontend.Variable) []frontend.Variable {
	t := p.t

	for r := 0; r < p.halfFull; r++ {
		circuitAddArcRow(api, state, p.arc, r, t)
		p.fullSBox(api, state)
		state = circuitMix(api, state, p.mds, t)
	}
	round := p.halfFull

	circuitAddArcRow(api, state, p.arc, round, t)
	state = circuitMix(api, state, p.mi, t)

	for r := 0; r < p.partial-1; r++ {
		state[0] = p.sbox(api, state[0])
		round++
		state[0] = api.Add(state[0], p.arc[round*t])
		state = p.sparse(api, state, p.partial-r-1)
	}

	state[0] = p.sbox(api, state[0])
	state = p.sparse(api, state, 0)
	round++

	for r := 0; r < p.halfFull; r++ {
		circuitAddArcRow(api, state, p.arc, round, t)
		p.fullSBox(api, state)
		state = circuitMix(api, state, p.mds, t)
		round++
	}

	return state
}

func circuitAddArcRow(api frontend.API, state []frontend.Variable, arc []fr.Element, row, width int) {
	offset := row * width
	for i := 0; i < width; i++ {
		state[i] = api.Add(state[i], arc[offset+i])
	}
}

func circuitMix(api frontend.API, state []frontend.Variable, matrix []fr.Element, width int) []frontend.Variable {
	out := make([]frontend.Variable, width)
	for i := 0; i < width; i++ {
		offset := i * width
		sum := api.Mul(state[0], matrix[offset])
		for j := 1; j < width; j++ {
			sum = api.Add(sum, api.Mul(state[j], matrix[offset+j]))
		}
		out[i] = sum
	}
	return out
}

func (p *circuitPermutation) sparse(api frontend.API, state []frontend.Variable, round int) []frontend.Variable {
	v := p.vColl[round]
	wHat := p.wHatColl[round]

	out := make([]frontend.Variable, p.t)
	newZero := api.Mul(state[0], p.m00)
	for i := 0; i < p.t-1; i++ {
		out[i+1] = api.Add(api.Mul(state[0], v[i]), state[i+1])
		newZero = api.Add(newZero, api.Mul(state[i+1], wHat[i]))
	}
	out[0] = newZero
	return out
}

func (p *circuitPermutation) fullSBox(api frontend.API, state []frontend.Variable) {
	for i := range state {
		state[i] = p.sbox(api, state[i])
	}
}

func (p *circuitPermutation) sbox(api frontend.API, v frontend.Variable) frontend.Variable {
	if p.alpha.Inverse {
		panic("poseidon377: inverse alpha not supported in circuits")
	}
	if p.alpha.Exponent == 17 {
		return circuitExp17(api, v)
	}
	// Square-and-multiply from the most significant exponent bit.
	exp := p.alpha.Exponent
	acc := v
	for i := 30 - bits.LeadingZeros32(exp); i >= 0; i-- {
		acc = api.Mul(acc, acc)
		if exp&(1<<uint(i)) != 0 {
			acc = api.Mul(acc, v)
		}
	}
	return acc
}

func circuitExp17(api frontend.API, v frontend.Variable) frontend.Variable {
	v2 := api.Mul(v, v)
	v4 := api.Mul(v2, v2)
	v8 := api.Mul(v4, v4)
	v16 := api.Mul(v8, v8)
	return api.Mul(v16, v)
}
