// Package ieee754 builds and parses IEEE-754 single and double precision bit
// patterns using only double arithmetic: no bit casts, no shifts wider than a
// byte. It mirrors the float helpers of the generated BrightScript runtime.
package ieee754

import (
	"math"

	"github.com/jptrs93/brsproto/internal/decimal"
)

const (
	two23 = 8388608.0
	two20 = 1048576.0
	two31 = 2147483648.0
	two32 = 4294967296.0
	two52 = 4503599627370496.0
)

// Pow2 computes 2^n by repeated doubling or halving, which is exact over the
// whole double range including subnormals.
func Pow2(n int) float64 {
	r := 1.0
	for ; n > 0; n-- {
		r *= 2
	}
	for ; n < 0; n++ {
		r /= 2
	}
	return r
}

// normalize returns m in [1, 2) and e with v = m * 2^e, for finite v > 0.
func normalize(v float64) (m float64, e int) {
	m = v
	for m >= 2 {
		m /= 2
		e++
	}
	for m < 1 {
		m *= 2
		e--
	}
	return m, e
}

func roundHalfEven(x float64) float64 {
	f := math.Trunc(x)
	rem := x - f
	if rem > 0.5 || (rem == 0.5 && math.Mod(f, 2) == 1) {
		f++
	}
	return f
}

// Float32Bits returns the single precision bit pattern of v, rounded to
// nearest even, as a number in [0, 2^32).
func Float32Bits(v float64) float64 {
	if v != v {
		return 0x7fc00000
	}
	sign := 0.0
	if math.Signbit(v) {
		sign = two31
		v = -v
	}
	if v == 0 {
		return sign
	}
	if v >= Pow2(128) {
		return sign + 0x7f800000
	}
	if v < Pow2(-126) {
		// a result of 2^23 is the smallest normal, which has the same bits
		return sign + roundHalfEven(v*Pow2(149))
	}
	m, e := normalize(v)
	f := roundHalfEven((m - 1) * two23)
	if f >= two23 {
		f = 0
		e++
	}
	if e > 127 {
		return sign + 0x7f800000
	}
	return sign + float64(e+127)*two23 + f
}

// Float32FromBits is the inverse of Float32Bits.
func Float32FromBits(bits float64) float64 {
	negative := bits >= two31
	if negative {
		bits -= two31
	}
	exp := math.Trunc(bits / two23)
	frac := bits - exp*two23
	var v float64
	switch {
	case exp == 255 && frac == 0:
		v = math.Inf(1)
	case exp == 255:
		return math.NaN()
	case exp == 0:
		v = frac * Pow2(-149)
	default:
		v = (1 + frac/two23) * Pow2(int(exp)-127)
	}
	if negative {
		return -v
	}
	return v
}

// Float64Bits splits the double precision bit pattern of v into its low and
// high 32-bit halves.
func Float64Bits(v float64) (lo, hi float64) {
	if v != v {
		return 0, 0x7ff80000
	}
	sign := 0.0
	if math.Signbit(v) {
		sign = two31
		v = -v
	}
	if math.IsInf(v, 0) {
		return 0, sign + 0x7ff00000
	}
	if v == 0 {
		return 0, sign
	}
	var exp, f float64
	if v < Pow2(-1022) {
		f = v * Pow2(1074)
	} else {
		m, e := normalize(v)
		exp = float64(e + 1023)
		f = (m - 1) * two52
	}
	top := math.Trunc(f / two32)
	lo = f - top*two32
	hi = sign + exp*two20 + top
	return lo, hi
}

func Float64FromBits(lo, hi float64) float64 {
	negative := hi >= two31
	if negative {
		hi -= two31
	}
	exp := math.Trunc(hi / two20)
	frac := (hi-exp*two20)*two32 + lo
	var v float64
	switch {
	case exp == 2047 && frac == 0:
		v = math.Inf(1)
	case exp == 2047:
		return math.NaN()
	case exp == 0:
		v = frac * Pow2(-1074)
	default:
		v = (1 + frac/two52) * Pow2(int(exp)-1023)
	}
	if negative {
		return -v
	}
	return v
}

func AppendFloat32(dst []byte, v float64) []byte {
	return decimal.AppendFixed32(dst, Float32Bits(v))
}

func Float32(b []byte) float64 {
	return Float32FromBits(decimal.Fixed32(b))
}

func AppendFloat64(dst []byte, v float64) []byte {
	lo, hi := Float64Bits(v)
	dst = decimal.AppendFixed32(dst, lo)
	return decimal.AppendFixed32(dst, hi)
}

func Float64(b []byte) float64 {
	return Float64FromBits(decimal.Fixed32(b[0:4]), decimal.Fixed32(b[4:8]))
}
