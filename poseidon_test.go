package poseidon377_test

import (
	"math/big"
	"sync"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/test"

	poseidon "github.com/Zondax/poseidon377"
	gposeidon "github.com/Zondax/poseidon377/gnark/poseidon377"
	"github.com/Zondax/poseidon377/paramgen"
	"github.com/Zondax/poseidon377/params"
)

func mustElement(t *testing.T, s string) fr.Element {
	t.Helper()
	var e fr.Element
	if _, err := e.SetString(s); err != nil {
		t.Fatalf("parse element: %v", err)
	}
	return e
}

func testState(width int, seed uint64) []fr.Element {
	state := make([]fr.Element, width)
	for i := range state {
		state[i].SetUint64(seed + uint64(i)*uint64(i) + 1)
	}
	return state
}

func TestOptimizedMatchesUnoptimized(t *testing.T) {
	for rate := 1; rate <= 7; rate++ {
		inst, err := poseidon.InstanceForRate(rate)
		if err != nil {
			t.Fatalf("rate %d: %v", rate, err)
		}
		for _, seed := range []uint64{0, 7, 1 << 40} {
			state := testState(rate+1, seed)

			fast, err := inst.Permute(state)
			if err != nil {
				t.Fatalf("rate %d: permute: %v", rate, err)
			}
			slow, err := inst.UnoptimizedPermute(state)
			if err != nil {
				t.Fatalf("rate %d: unoptimized permute: %v", rate, err)
			}

			for i := range fast {
				if !fast[i].Equal(&slow[i]) {
					t.Fatalf("rate %d seed %d: schedules disagree at element %d\noptimized   %s\nunoptimized %s",
						rate, seed, i, fast[i].String(), slow[i].String())
				}
			}
		}
	}
}

func TestOptimizedMatchesUnoptimizedCustomRounds(t *testing.T) {
	cases := []struct {
		width, full, partial int
	}{
		{2, 2, 1},
		{2, 2, 3},
		{3, 4, 5},
		{5, 6, 2},
		{8, 8, 31},
	}
	for _, tc := range cases {
		input := params.NewInputParameters(128, tc.width, fr.Modulus())
		rounds := params.RoundNumbers{Full: tc.full, Partial: tc.partial}
		alpha := params.Alpha{Exponent: 17}

		mds, err := paramgen.GenerateMdsMatrix(input)
		if err != nil {
			t.Fatalf("width %d: %v", tc.width, err)
		}
		arc := paramgen.GenerateArcMatrix(input, rounds, alpha)
		optArc, err := paramgen.OptimizeArcMatrix(arc, mds, rounds)
		if err != nil {
			t.Fatalf("width %d rounds (%d,%d): %v", tc.width, tc.full, tc.partial, err)
		}
		optMds, err := paramgen.ComputeOptimizedMdsMatrices(mds, rounds)
		if err != nil {
			t.Fatalf("width %d rounds (%d,%d): %v", tc.width, tc.full, tc.partial, err)
		}

		inst, err := poseidon.NewInstance(&params.Parameters{
			Input:        input,
			Rounds:       rounds,
			Alpha:        alpha,
			MDS:          mds,
			Arc:          arc,
			OptimizedArc: optArc,
			OptimizedMDS: optMds,
		})
		if err != nil {
			t.Fatalf("width %d rounds (%d,%d): %v", tc.width, tc.full, tc.partial, err)
		}

		for _, seed := range []uint64{0, 5} {
			state := testState(tc.width, seed)
			fast, err := inst.Permute(state)
			if err != nil {
				t.Fatal(err)
			}
			slow, err := inst.UnoptimizedPermute(state)
			if err != nil {
				t.Fatal(err)
			}
			for i := range fast {
				if !fast[i].Equal(&slow[i]) {
					t.Fatalf("width %d rounds (%d,%d) seed %d: schedules disagree at element %d",
						tc.width, tc.full, tc.partial, seed, i)
				}
			}
		}
	}
}

func TestPermuteRejectsWrongWidth(t *testing.T) {
	inst, err := poseidon.InstanceForRate(2)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := inst.Permute(testState(2, 0)); err == nil {
		t.Fatal("expected error for short state")
	}
	if _, err := inst.UnoptimizedPermute(testState(5, 0)); err == nil {
		t.Fatal("expected error for long state")
	}
}

func TestPermuteLeavesInputIntact(t *testing.T) {
	inst, err := poseidon.InstanceForRate(3)
	if err != nil {
		t.Fatal(err)
	}
	state := testState(4, 11)
	before := make([]fr.Element, len(state))
	copy(before, state)

	if _, err := inst.Permute(state); err != nil {
		t.Fatal(err)
	}
	for i := range state {
		if !state[i].Equal(&before[i]) {
			t.Fatalf("input state mutated at element %d", i)
		}
	}
}

func TestHashDeterminismAndSensitivity(t *testing.T) {
	domain := poseidon.DomainFromLEBytes([]byte("poseidon377_test"))
	a := mustElement(t, "1234567890123456789012345678901234567890")
	b := mustElement(t, "9876543210987654321098765432109876543210")

	h1, err := poseidon.Hash(domain, a, b)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := poseidon.Hash(domain, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !h1.Equal(&h2) {
		t.Fatal("hash is not deterministic")
	}

	otherDomain := poseidon.DomainFromLEBytes([]byte("poseidon377_other"))
	h3, err := poseidon.Hash(otherDomain, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if h1.Equal(&h3) {
		t.Fatal("hash ignores the domain separator")
	}

	h4, err := poseidon.Hash(domain, b, a)
	if err != nil {
		t.Fatal(err)
	}
	if h1.Equal(&h4) {
		t.Fatal("hash ignores input order")
	}

	if _, err := poseidon.Hash(domain); err == nil {
		t.Fatal("expected error for zero inputs")
	}
}

func TestFixedArityWrappersMatchHash(t *testing.T) {
	domain := poseidon.DomainFromLEBytes([]byte("poseidon377_test"))
	inputs := testState(7, 3)

	for rate := 1; rate <= 7; rate++ {
		want, err := poseidon.Hash(domain, inputs[:rate]...)
		if err != nil {
			t.Fatalf("rate %d: %v", rate, err)
		}
		var got fr.Element
		switch rate {
		case 1:
			got, err = poseidon.Hash1(domain, inputs[0])
		case 2:
			got, err = poseidon.Hash2(domain, inputs[0], inputs[1])
		case 3:
			got, err = poseidon.Hash3(domain, inputs[0], inputs[1], inputs[2])
		case 4:
			got, err = poseidon.Hash4(domain, inputs[0], inputs[1], inputs[2], inputs[3])
		case 5:
			got, err = poseidon.Hash5(domain, inputs[0], inputs[1], inputs[2], inputs[3], inputs[4])
		case 6:
			got, err = poseidon.Hash6(domain, inputs[0], inputs[1], inputs[2], inputs[3], inputs[4], inputs[5])
		case 7:
			got, err = poseidon.Hash7(domain, inputs[0], inputs[1], inputs[2], inputs[3], inputs[4], inputs[5], inputs[6])
		}
		if err != nil {
			t.Fatalf("rate %d wrapper: %v", rate, err)
		}
		if !got.Equal(&want) {
			t.Fatalf("rate %d wrapper disagrees with Hash", rate)
		}
	}
}

func TestMultiHashFolding(t *testing.T) {
	domain := poseidon.DomainFromLEBytes([]byte("poseidon377_test"))
	inputs := testState(8, 21)

	// At rate or below, MultiHash is a single sponge call.
	direct, err := poseidon.Hash(domain, inputs[:7]...)
	if err != nil {
		t.Fatal(err)
	}
	multi, err := poseidon.MultiHash(domain, inputs[:7]...)
	if err != nil {
		t.Fatal(err)
	}
	if !multi.Equal(&direct) {
		t.Fatal("multihash of 7 inputs should equal Hash7")
	}

	// Eight inputs fold as Hash2(H(first seven), H(last)).
	left, err := poseidon.Hash(domain, inputs[:7]...)
	if err != nil {
		t.Fatal(err)
	}
	right, err := poseidon.Hash(domain, inputs[7])
	if err != nil {
		t.Fatal(err)
	}
	want, err := poseidon.Hash(domain, left, right)
	if err != nil {
		t.Fatal(err)
	}
	got, err := poseidon.MultiHash(domain, inputs...)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(&want) {
		t.Fatal("eight-input folding mismatch")
	}

	if _, err := poseidon.MultiHash(domain); err == nil {
		t.Fatal("expected error for zero inputs")
	}
	tooMany := make([]fr.Element, poseidon.MaxMultiHashInputs+1)
	if _, err := poseidon.MultiHash(domain, tooMany...); err == nil {
		t.Fatal("expected error above MaxMultiHashInputs")
	}
}

func TestDomainFromLEBytes(t *testing.T) {
	one := poseidon.DomainFromLEBytes([]byte{1})
	var wantOne fr.Element
	wantOne.SetUint64(1)
	if !one.Equal(&wantOne) {
		t.Fatalf("LE {1} should be 1, got %s", one.String())
	}

	v := poseidon.DomainFromLEBytes([]byte{0, 1})
	var want256 fr.Element
	want256.SetUint64(256)
	if !v.Equal(&want256) {
		t.Fatalf("LE {0,1} should be 256, got %s", v.String())
	}

	// 48 bytes of 0xff exceeds the modulus and must reduce.
	wide := make([]byte, 48)
	for i := range wide {
		wide[i] = 0xff
	}
	got := poseidon.DomainFromLEBytes(wide)

	bi := new(big.Int)
	for i := len(wide) - 1; i >= 0; i-- {
		bi.Lsh(bi, 8)
		bi.Or(bi, big.NewInt(int64(wide[i])))
	}
	bi.Mod(bi, fr.Modulus())
	var want fr.Element
	want.SetBigInt(bi)
	if !got.Equal(&want) {
		t.Fatalf("48-byte reduction mismatch\nexpected %s\ngot      %s", want.String(), got.String())
	}
}

func TestParametersByRate(t *testing.T) {
	if _, err := poseidon.Parameters(0); err == nil {
		t.Fatal("expected error for rate 0")
	}
	if _, err := poseidon.Parameters(8); err == nil {
		t.Fatal("expected error for rate 8")
	}

	set, err := poseidon.Parameters(2)
	if err != nil {
		t.Fatal(err)
	}
	if set.Input.T != 3 {
		t.Fatalf("rate 2 should have width 3, got %d", set.Input.T)
	}
	if set.Alpha.Exponent != 17 || set.Alpha.Inverse {
		t.Fatalf("unexpected alpha %+v", set.Alpha)
	}
	if set.Rounds.Full != 8 || set.Rounds.Partial != 31 {
		t.Fatalf("unexpected round numbers %+v", set.Rounds)
	}
	if err := set.Validate(); err != nil {
		t.Fatalf("derived set should validate: %v", err)
	}

	again, err := poseidon.Parameters(2)
	if err != nil {
		t.Fatal(err)
	}
	if set.Fingerprint() != again.Fingerprint() {
		t.Fatal("fingerprint not stable across lookups")
	}
}

func TestConcurrentHashing(t *testing.T) {
	domain := poseidon.DomainFromLEBytes([]byte("poseidon377_test"))
	a := mustElement(t, "31337")
	b := mustElement(t, "1729")

	want, err := poseidon.Hash2(domain, a, b)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := poseidon.Hash2(domain, a, b)
			if err != nil {
				t.Errorf("concurrent hash: %v", err)
				return
			}
			if !got.Equal(&want) {
				t.Error("concurrent hash mismatch")
			}
		}()
	}
	wg.Wait()
}

// Circuit that hashes three limbs and checks against an expected native result.
type poseidonCircuit struct {
	Domain   frontend.Variable
	Inputs   [3]frontend.Variable
	Expected frontend.Variable `gnark:",public"`
}

func (c *poseidonCircuit) Define(api frontend.API) error {
	out, err := gposeidon.Hash(api, c.Domain, c.Inputs[0], c.Inputs[1], c.Inputs[2])
	if err != nil {
		return err
	}
	api.AssertIsEqual(out, c.Expected)
	return nil
}

func TestCircuitMatchesNative(t *testing.T) {
	assert := test.NewAssert(t)

	domain := poseidon.DomainFromLEBytes([]byte("poseidon377_test"))
	i1 := mustElement(t, "3511954021869481804701037474716752826176378111455906155428883308637212471412")
	i2 := mustElement(t, "612961971974863895193536874934037929378739333829288432520431337152952918508")
	i3 := mustElement(t, "8004805965635097953717418115847261478655058805272705457610466730843771325983")

	native, err := poseidon.Hash3(domain, i1, i2, i3)
	if err != nil {
		t.Fatal(err)
	}

	witness := poseidonCircuit{
		Domain:   domain,
		Inputs:   [3]frontend.Variable{i1, i2, i3},
		Expected: native,
	}

	assert.ProverSucceeded(
		&poseidonCircuit{},
		&witness,
		test.WithCurves(ecc.BLS12_377),
		test.WithBackends(backend.GROTH16),
	)
}

func TestConstraintCounts(t *testing.T) {
	ccs1, err := frontend.Compile(ecc.BLS12_377.ScalarField(), r1cs.NewBuilder, &countCircuit1{})
	if err != nil {
		t.Fatalf("compile rate1: %v", err)
	}
	ccs2, err := frontend.Compile(ecc.BLS12_377.ScalarField(), r1cs.NewBuilder, &countCircuit2{})
	if err != nil {
		t.Fatalf("compile rate2: %v", err)
	}
	ccs3, err := frontend.Compile(ecc.BLS12_377.ScalarField(), r1cs.NewBuilder, &countCircuit3{})
	if err != nil {
		t.Fatalf("compile rate3: %v", err)
	}
	ccs6, err := frontend.Compile(ecc.BLS12_377.ScalarField(), r1cs.NewBuilder, &countCircuit6{})
	if err != nil {
		t.Fatalf("compile rate6: %v", err)
	}
	ccs7, err := frontend.Compile(ecc.BLS12_377.ScalarField(), r1cs.NewBuilder, &countCircuit7{})
	if err != nil {
		t.Fatalf("compile rate7: %v", err)
	}

	t.Logf("rate-1 constraints: %d", ccs1.GetNbConstraints())
	t.Logf("rate-2 constraints: %d", ccs2.GetNbConstraints())
	t.Logf("rate-3 constraints: %d", ccs3.GetNbConstraints())
	t.Logf("rate-6 constraints: %d", ccs6.GetNbConstraints())
	t.Logf("rate-7 constraints: %d", ccs7.GetNbConstraints())
}

type countCircuit1 struct {
	Domain frontend.Variable
	A      frontend.Variable
}

func (c *countCircuit1) Define(api frontend.API) error {
	out, err := gposeidon.Hash(api, c.Domain, c.A)
	if err != nil {
		return err
	}
	api.AssertIsEqual(out, out)
	return nil
}

type countCircuit2 struct {
	Domain frontend.Variable
	A      frontend.Variable
	B      frontend.Variable
}

func (c *countCircuit2) Define(api frontend.API) error {
	out, err := gposeidon.Hash(api, c.Domain, c.A, c.B)
	if err != nil {
		return err
	}
	api.AssertIsEqual(out, out)
	return nil
}

type countCircuit3 struct {
	Domain frontend.Variable
	A      frontend.Variable
	B      frontend.Variable
	C      frontend.Variable
}

func (c *countCircuit3) Define(api frontend.API) error {
	out, err := gposeidon.Hash(api, c.Domain, c.A, c.B, c.C)
	if err != nil {
		return err
	}
	api.AssertIsEqual(out, out)
	return nil
}

type countCircuit6 struct {
	Domain frontend.Variable
	Inputs [6]frontend.Variable
}

func (c *countCircuit6) Define(api frontend.API) error {
	out, err := gposeidon.Hash(api,
		c.Domain,
		c.Inputs[0], c.Inputs[1], c.Inputs[2],
		c.Inputs[3], c.Inputs[4], c.Inputs[5],
	)
	if err != nil {
		return err
	}
	api.AssertIsEqual(out, out)
	return nil
}

type countCircuit7 struct {
	Domain frontend.Variable
	Inputs [7]frontend.Variable
}

func (c *countCircuit7) Define(api frontend.API) error {
	out, err := gposeidon.Hash(api,
		c.Domain,
		c.Inputs[0], c.Inputs[1], c.Inputs[2],
		c.Inputs[3], c.Inputs[4], c.Inputs[5],
		c.Inputs[6],
	)
	if err != nil {
		return err
	}
	api.AssertIsEqual(out, out)
	return nil
}

// Multi-hash large input tests ------------------------------------------------

type multiCircuit16 struct {
	Domain   frontend.Variable
	Inputs   [16]frontend.Variable
	Expected frontend.Variable `gnark:",public"`
}

func (c *multiCircuit16) Define(api frontend.API) error {
	out, err := gposeidon.MultiHash(api, c.Domain, c.Inputs[:]...)
	if err != nil {
		return err
	}
	api.AssertIsEqual(out, c.Expected)
	return nil
}

type multiCircuit32 struct {
	Domain   frontend.Variable
	Inputs   [32]frontend.Variable
	Expected frontend.Variable `gnark:",public"`
}

func (c *multiCircuit32) Define(api frontend.API) error {
	out, err := gposeidon.MultiHash(api, c.Domain, c.Inputs[:]...)
	if err != nil {
		return err
	}
	api.AssertIsEqual(out, c.Expected)
	return nil
}

type multiCircuit64 struct {
	Domain   frontend.Variable
	Inputs   [64]frontend.Variable
	Expected frontend.Variable `gnark:",public"`
}

func (c *multiCircuit64) Define(api frontend.API) error {
	out, err := gposeidon.MultiHash(api, c.Domain, c.Inputs[:]...)
	if err != nil {
		return err
	}
	api.AssertIsEqual(out, c.Expected)
	return nil
}

type multiCircuit128 struct {
	Domain   frontend.Variable
	Inputs   [128]frontend.Variable
	Expected frontend.Variable `gnark:",public"`
}

func (c *multiCircuit128) Define(api frontend.API) error {
	out, err := gposeidon.MultiHash(api, c.Domain, c.Inputs[:]...)
	if err != nil {
		return err
	}
	api.AssertIsEqual(out, c.Expected)
	return nil
}

type multiCircuit256 struct {
	Domain   frontend.Variable
	Inputs   [256]frontend.Variable
	Expected frontend.Variable `gnark:",public"`
}

func (c *multiCircuit256) Define(api frontend.API) error {
	out, err := gposeidon.MultiHash(api, c.Domain, c.Inputs[:]...)
	if err != nil {
		return err
	}
	api.AssertIsEqual(out, c.Expected)
	return nil
}

func TestMultiHashLargeMatchesCircuit(t *testing.T) {
	assert := test.NewAssert(t)
	domain := poseidon.DomainFromLEBytes([]byte("poseidon377_test"))

	cases := []struct {
		name    string
		size    int
		builder func() (frontend.Circuit, frontend.Circuit)
	}{
		{
			name: "16",
			size: 16,
			builder: func() (frontend.Circuit, frontend.Circuit) {
				return &multiCircuit16{}, &multiCircuit16{}
			},
		},
		{
			name: "32",
			size: 32,
			builder: func() (frontend.Circuit, frontend.Circuit) {
				return &multiCircuit32{}, &multiCircuit32{}
			},
		},
		{
			name: "64",
			size: 64,
			builder: func() (frontend.Circuit, frontend.Circuit) {
				return &multiCircuit64{}, &multiCircuit64{}
			},
		},
		{
			name: "128",
			size: 128,
			builder: func() (frontend.Circuit, frontend.Circuit) {
				return &multiCircuit128{}, &multiCircuit128{}
			},
		},
		{
			name: "256",
			size: 256,
			builder: func() (frontend.Circuit, frontend.Circuit) {
				return &multiCircuit256{}, &multiCircuit256{}
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			inputs := make([]fr.Element, tc.size)
			for i := range inputs {
				inputs[i].SetUint64(uint64(i + 1))
			}

			native, err := poseidon.MultiHash(domain, inputs...)
			if err != nil {
				t.Fatalf("native multihash %s: %v", tc.name, err)
			}

			var witness frontend.Circuit
			empty, wit := tc.builder()

			switch w := wit.(type) {
			case *multiCircuit16:
				w.Domain = domain
				for i := range inputs {
					w.Inputs[i] = inputs[i]
				}
				w.Expected = native
				witness = w
			case *multiCircuit32:
				w.Domain = domain
				for i := range inputs {
					w.Inputs[i] = inputs[i]
				}
				w.Expected = native
				witness = w
			case *multiCircuit64:
				w.Domain = domain
				for i := range inputs {
					w.Inputs[i] = inputs[i]
				}
				w.Expected = native
				witness = w
			case *multiCircuit128:
				w.Domain = domain
				for i := range inputs {
					w.Inputs[i] = inputs[i]
				}
				w.Expected = native
				witness = w
			case *multiCircuit256:
				w.Domain = domain
				for i := range inputs {
					w.Inputs[i] = inputs[i]
				}
				w.Expected = native
				witness = w
			default:
				t.Fatalf("unsupported circuit type")
			}

			ccs, err := frontend.Compile(ecc.BLS12_377.ScalarField(), r1cs.NewBuilder, empty)
			if err != nil {
				t.Fatalf("compile %s: %v", tc.name, err)
			}
			t.Logf("multihash-%s constraints: %d", tc.name, ccs.GetNbConstraints())

			assert.ProverSucceeded(
				empty,
				witness,
				test.WithCurves(ecc.BLS12_377),
				test.WithBackends(backend.GROTH16),
			)
		})
	}
}
