package poseidon377

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/Zondax/poseidon377/paramgen"
	"github.com/Zondax/poseidon377/params"
)

const (
	maxRate            = 7
	MaxMultiHashInputs = 256

	// securityLevel is the bit strength the default instances target.
	securityLevel = 128
)

// Instance runs the Poseidon permutation over bls12-377 for one validated
// parameter set. Construction flattens the matrices into row-major slices so
// the round loops allocate nothing beyond the state.
type Instance struct {
	params *params.Parameters

	t        int
	alpha    params.Alpha
	alphaBig *big.Int
	arc      []fr.Element
	optArc   []fr.Element
	mds      []fr.Element
	mi       []fr.Element
	m00      fr.Element
	vColl    []fr.Element
	wHatColl []fr.Element
}

// NewInstance validates the parameter set and prepares a permutation for it.
func NewInstance(p *params.Parameters) (*Instance, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	sub := p.Input.T - 1
	in := &Instance{
		params:   p,
		t:        p.Input.T,
		alpha:    p.Alpha,
		alphaBig: big.NewInt(int64(p.Alpha.Exponent)),
		arc:      flatten(p.Arc.Matrix),
		optArc:   flatten(p.OptimizedArc.Matrix),
		mds:      flatten(p.MDS.Matrix),
		mi:       flatten(p.OptimizedMDS.MI.Matrix),
		m00:      p.OptimizedMDS.M00,
	}
	in.vColl = make([]fr.Element, 0, p.Rounds.Partial*sub)
	for _, col := range p.OptimizedMDS.VCollection {
		in.vColl = append(in.vColl, col.Elements()...)
	}
	in.wHatColl = make([]fr.Element, 0, p.Rounds.Partial*sub)
	for _, row := range p.OptimizedMDS.WHatCollection {
		in.wHatColl = append(in.wHatColl, row.Elements()...)
	}
	return in, nil
}

func flatten(m params.Matrix) []fr.Element {
	return append([]fr.Element(nil), m.Elements()...)
}

// Parameters exposes the parameter set this instance runs on.
func (in *Instance) Parameters() *params.Parameters {
	return in.params
}

// Permute applies the optimized permutation and returns the new state. The
// input slice is left unmodified.
func (in *Instance) Permute(state []fr.Element) ([]fr.Element, error) {
	if len(state) != in.t {
		return nil, fmt.Errorf("poseidon377: state has %d elements, want %d", len(state), in.t)
	}
	out := make([]fr.Element, in.t)
	copy(out, state)
	in.permute(out)
	return out, nil
}

// UnoptimizedPermute applies the plain schedule (constants, S-box layer,
// dense mix, every round) with the unoptimized constants. Permute computes
// the same function with fewer multiplications; this form is kept for
// auditing and differential tests.
func (in *Instance) UnoptimizedPermute(state []fr.Element) ([]fr.Element, error) {
	if len(state) != in.t {
		return nil, fmt.Errorf("poseidon377: state has %d elements, want %d", len(state), in.t)
	}
	out := make([]fr.Element, in.t)
	copy(out, state)
	in.unoptimizedPermute(out)
	return out, nil
}

// Shared per-rate instances at the default security level.
var defaultInstances [maxRate + 1]struct {
	once sync.Once
	inst *Instance
	err  error
}

// InstanceForRate returns the cached permutation instance for the given rate
// (state width rate+1), deriving and validating its parameter set on first
// use. Safe for concurrent use.
func InstanceForRate(rate int) (*Instance, error) {
	if rate < 1 || rate > maxRate {
		return nil, fmt.Errorf("poseidon377: unsupported rate %d", rate)
	}
	slot := &defaultInstances[rate]
	slot.once.Do(func() {
		input := params.NewInputParameters(securityLevel, rate+1, fr.Modulus())
		set, err := paramgen.Generate(input)
		if err != nil {
			slot.err = err
			return
		}
		slot.inst, slot.err = NewInstance(set)
	})
	return slot.inst, slot.err
}

// Parameters returns the derived parameter set for the given rate.
func Parameters(rate int) (*params.Parameters, error) {
	inst, err := InstanceForRate(rate)
	if err != nil {
		return nil, err
	}
	return inst.params, nil
}

// Hash absorbs [domain, inputs...] into a fresh sponge state and returns
// state element 1 after one permutation. The rate is the number of inputs;
// rates 1 through 7 are supported.
func Hash(domain fr.Element, inputs ...fr.Element) (fr.Element, error) {
	if len(inputs) < 1 {
		return fr.Element{}, fmt.Errorf("poseidon377: need at least 1 limb")
	}
	return hashChunk(domain, inputs)
}

// DomainFromLEBytes mirrors decaf377::Fq::from_le_bytes_mod_order.
func DomainFromLEBytes(data []byte) fr.Element {
	reversed := make([]byte, len(data))
	for i := range data {
		reversed[len(data)-1-i] = data[i]
	}
	bi := new(big.Int).SetBytes(reversed)
	var out fr.Element
	out.SetBigInt(bi)
	return out
}

// MultiHash hashes an arbitrary-length list of field elements by chunking
// with the highest available rate (7). Domain is placed in the capacity slot
// on every chunk. Supports up to MaxMultiHashInputs inputs.
func MultiHash(domain fr.Element, inputs ...fr.Element) (fr.Element, error) {
	if len(inputs) == 0 {
		return fr.Element{}, fmt.Errorf("poseidon377: need at least 1 limb")
	}
	if len(inputs) > MaxMultiHashInputs {
		return fr.Element{}, fmt.Errorf("poseidon377: too many inputs (%d > %d)", len(inputs), MaxMultiHashInputs)
	}

	current := make([]fr.Element, len(inputs))
	copy(current, inputs)

	for len(current) > maxRate {
		next := make([]fr.Element, 0, (len(current)+maxRate-1)/maxRate)
		for i := 0; i < len(current); i += maxRate {
			end := i + maxRate
			if end > len(current) {
				end = len(current)
			}
			h, err := hashChunk(domain, current[i:end])
			if err != nil {
				return fr.Element{}, err
			}
			next = append(next, h)
		}
		current = next
	}

	return hashChunk(domain, current)
}

func hashChunk(domain fr.Element, chunk []fr.Element) (fr.Element, error) {
	inst, err := InstanceForRate(len(chunk))
	if err != nil {
		return fr.Element{}, err
	}
	state := make([]fr.Element, inst.t)
	state[0] = domain
	copy(state[1:], chunk)
	inst.permute(state)
	return state[1], nil
}

// permute mutates the state in place using the optimized schedule.
func (in *Instance) permute(state []fr.Element) {
	t := in.t
	halfFull := in.params.Rounds.Full / 2
	arc := in.optArc

	// First half of full rounds.
	for r := 0; r < halfFull; r++ {
		addArcRow(state, arc, r, t)
		in.fullSBox(state)
		in.mixDense(state, in.mds)
	}
	round := halfFull

	// Dense constants plus M_i mix entering the partial window.
	addArcRow(state, arc, round, t)
	in.mixDense(state, in.mi)

	// Middle partial rounds: one constant into element 0, sparse mix.
	partial := in.params.Rounds.Partial
	for r := 0; r < partial-1; r++ {
		in.partialSBox(state)
		round++
		state[0].Add(&state[0], &arc[round*t])
		in.mixSparse(state, partial-r-1)
	}

	// Final partial round.
	in.partialSBox(state)
	in.mixSparse(state, 0)
	round++

	// Second half of full rounds.
	for r := 0; r < halfFull; r++ {
		addArcRow(state, arc, round, t)
		in.fullSBox(state)
		in.mixDense(state, in.mds)
		round++
	}
}

// unoptimizedPermute mutates the state in place using the plain schedule.
func (in *Instance) unoptimizedPermute(state []fr.Element) {
	t := in.t
	halfFull := in.params.Rounds.Full / 2
	partial := in.params.Rounds.Partial
	total := in.params.Rounds.Total()

	for r := 0; r < total; r++ {
		addArcRow(state, in.arc, r, t)
		if r < halfFull || r >= halfFull+partial {
			in.fullSBox(state)
		} else {
			in.partialSBox(state)
		}
		in.mixDense(state, in.mds)
	}
}

func (in *Instance) mixDense(state []fr.Element, matrix []fr.Element) {
	t := in.t
	newState := make([]fr.Element, t)
	for i := 0; i < t; i++ {
		var sum fr.Element
		rowOffset := i * t
		for j := 0; j < t; j++ {
			var prod fr.Element
			prod.Mul(&matrix[rowOffset+j], &state[j])
			sum.Add(&sum, &prod)
		}
		newState[i] = sum
	}
	copy(state, newState)
}

func (in *Instance) mixSparse(state []fr.Element, round int) {
	t := in.t
	sub := t - 1
	v := in.vColl[round*sub : (round+1)*sub]
	wHat := in.wHatColl[round*sub : (round+1)*sub]

	newState := make([]fr.Element, t)
	var newZero fr.Element
	for i := 0; i < sub; i++ {
		var term fr.Element
		term.Mul(&v[i], &state[0])
		term.Add(&term, &state[i+1])
		newState[i+1] = term

		var contrib fr.Element
		contrib.Mul(&wHat[i], &state[i+1])
		newZero.Add(&newZero, &contrib)
	}

	var lead fr.Element
	lead.Mul(&in.m00, &state[0])
	newZero.Add(&newZero, &lead)

	newState[0] = newZero
	copy(state, newState)
}

func addArcRow(state, arc []fr.Element, row, width int) {
	offset := row * width
	for i := 0; i < width; i++ {
		state[i].Add(&state[i], &arc[offset+i])
	}
}

func (in *Instance) fullSBox(state []fr.Element) {
	for i := range state {
		in.sbox(&state[i])
	}
}

func (in *Instance) partialSBox(state []fr.Element) {
	in.sbox(&state[0])
}

// sbox raises in place to the alpha power, using the squaring chain when the
// exponent is the default 17.
func (in *Instance) sbox(x *fr.Element) {
	if in.alpha.Exponent == 17 {
		exp17(x)
		return
	}
	x.Exp(*x, in.alphaBig)
}

func exp17(x *fr.Element) {
	var x2, x4, x8, x16 fr.Element
	x2.Mul(x, x)
	x4.Mul(&x2, &x2)
	x8.Mul(&x4, &x4)
	x16.Mul(&x8, &x8)
	x.Mul(&x16, x)
}
