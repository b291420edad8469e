package paramgen

import (
	"math/big"

	"github.com/Zondax/poseidon377/params"
)

// ChooseAlpha returns the smallest S-box exponent of the form 2^k + 1 that
// is coprime to p-1, so x^alpha permutes the field and costs k squarings
// plus one multiplication. For the bls12-377 scalar field this is 17.
func ChooseAlpha(p *big.Int) params.Alpha {
	one := big.NewInt(1)
	pMinusOne := new(big.Int).Sub(p, one)
	for k := uint(1); k < 32; k++ {
		alpha := new(big.Int).Lsh(one, k)
		alpha.Add(alpha, one)
		if new(big.Int).GCD(nil, nil, alpha, pMinusOne).Cmp(one) == 0 {
			return params.Alpha{Exponent: uint32(alpha.Uint64())}
		}
	}
	panic("poseidon377: no exponent of form 2^k+1 coprime to p-1")
}
