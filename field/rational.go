package field

import "math/big"

// Rational is the exact field over math/big rationals.
type Rational struct{}

var _ Field[*big.Rat] = Rational{}

func NewRational() Rational {
	return Rational{}
}

func (Rational) Zero() *big.Rat { return new(big.Rat) }

func (Rational) One() *big.Rat { return big.NewRat(1, 1) }

func (Rational) FromInt(n int64) *big.Rat { return big.NewRat(n, 1) }

func (Rational) FromRat(r *big.Rat) *big.Rat { return new(big.Rat).Set(r) }

func (Rational) Add(a, b *big.Rat) *big.Rat { return new(big.Rat).Add(a, b) }

func (Rational) Sub(a, b *big.Rat) *big.Rat { return new(big.Rat).Sub(a, b) }

func (Rational) Mul(a, b *big.Rat) *big.Rat { return new(big.Rat).Mul(a, b) }

// Div panics when b is zero, like big.Rat.Quo.
func (Rational) Div(a, b *big.Rat) *big.Rat { return new(big.Rat).Quo(a, b) }

func (Rational) Neg(a *big.Rat) *big.Rat { return new(big.Rat).Neg(a) }

func (Rational) Abs(a *big.Rat) *big.Rat { return new(big.Rat).Abs(a) }

func (Rational) Compare(a, b *big.Rat) int { return a.Cmp(b) }

func (Rational) Sign(a *big.Rat) int { return a.Sign() }

func (Rational) Epsilon() *big.Rat { return new(big.Rat) }

func (Rational) Float64(a *big.Rat) float64 {
	f, _ := a.Float64()
	return f
}

func (Rational) Format(a *big.Rat) string { return a.RatString() }
