package field

import (
	"math"
	"math/big"
	"strconv"

	"gonum.org/v1/gonum/floats/scalar"
)

// DefaultTolerance is used by NewFloat when no positive tolerance is given.
const DefaultTolerance = 1e-9

// Float is float64 arithmetic with an absolute comparison tolerance.
type Float struct {
	Tolerance float64
}

var _ Field[float64] = Float{}

func NewFloat(tolerance float64) Float {
	if tolerance <= 0 || math.IsNaN(tolerance) {
		tolerance = DefaultTolerance
	}
	return Float{Tolerance: tolerance}
}

func (Float) Zero() float64 { return 0 }

func (Float) One() float64 { return 1 }

func (Float) FromInt(n int64) float64 { return float64(n) }

func (Float) FromRat(r *big.Rat) float64 {
	f, _ := r.Float64()
	return f
}

func (Float) Add(a, b float64) float64 { return a + b }

func (Float) Sub(a, b float64) float64 { return a - b }

func (Float) Mul(a, b float64) float64 { return a * b }

func (f Float) Div(a, b float64) float64 {
	if f.Sign(b) == 0 {
		panic("field: division by a value within tolerance of zero")
	}
	return a / b
}

func (Float) Neg(a float64) float64 { return -a }

func (Float) Abs(a float64) float64 { return math.Abs(a) }

func (f Float) Compare(a, b float64) int {
	if scalar.EqualWithinAbs(a, b, f.Tolerance) {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

func (f Float) Sign(a float64) int { return f.Compare(a, 0) }

func (f Float) Epsilon() float64 { return f.Tolerance }

func (Float) Float64(a float64) float64 { return a }

func (Float) Format(a float64) string { return strconv.FormatFloat(a, 'g', -1, 64) }
