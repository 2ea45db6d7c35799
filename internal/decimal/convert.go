package decimal

import (
	"math"
	"strconv"
	"strings"
)

// ParseSigned splits an optionally signed decimal string into sign and
// canonical magnitude. Surrounding whitespace is ignored.
func ParseSigned(s string) (negative bool, magnitude string, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return false, "", false
	}
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	s = strings.TrimSpace(s)
	if !AllDigits(s) {
		return false, "", false
	}
	magnitude = TrimLeadingZeros(s)
	if magnitude == "0" {
		negative = false
	}
	return negative, magnitude, true
}

// ToUnsigned64 converts a signed decimal string to its 64-bit two's
// complement unsigned form. Malformed or out of range input becomes "0".
func ToUnsigned64(s string) string {
	negative, magnitude, ok := ParseSigned(s)
	if !ok {
		return "0"
	}
	if negative {
		return Subtract(TwoPow64, magnitude)
	}
	if Compare(magnitude, MaxUint64) > 0 {
		return "0"
	}
	return magnitude
}

// FromFloat renders the truncated magnitude of f as digits.
func FromFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	f = math.Abs(math.Trunc(f))
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', 0, 64)
}

// FromSignedFloat renders a truncated signed number as a decimal string.
func FromSignedFloat(f float64) string {
	mag := FromFloat(f)
	if f < 0 && mag != "0" {
		return "-" + mag
	}
	return mag
}

// ParseToDouble accumulates digits into a double. Precision is lost above
// 2^53, exactly as in the generated runtime.
func ParseToDouble(s string) float64 {
	negative, magnitude, ok := ParseSigned(s)
	if !ok {
		return 0
	}
	result := 0.0
	for i := 0; i < len(magnitude); i++ {
		result = result*10 + float64(magnitude[i]-'0')
	}
	if negative {
		return -result
	}
	return result
}

// ToSignedInt64String reinterprets an unsigned 64-bit decimal as signed.
func ToSignedInt64String(unsigned string) string {
	trimmed := TrimLeadingZeros(unsigned)
	if Compare(trimmed, MaxInt64) <= 0 {
		return trimmed
	}
	diff := Subtract(TwoPow64, trimmed)
	if diff == "0" {
		return "0"
	}
	return "-" + diff
}

// Low32 returns the low 32 bits of an unsigned decimal as a double.
func Low32(unsigned string) float64 {
	q, lo := DivMod(unsigned, 65536)
	_, hi := DivMod(q, 65536)
	return float64(hi)*65536 + float64(lo)
}

// Wrap32 reduces a truncated number into [0, 2^32).
func Wrap32(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	v = math.Trunc(v)
	v -= 4294967296 * math.Floor(v/4294967296)
	return v
}

func ToUnsigned32(v float64) float64 {
	if v < 0 {
		return v + 4294967296
	}
	return v
}

func ToSigned32(v float64) float64 {
	u := ToUnsigned32(v)
	if u >= 2147483648 {
		return u - 4294967296
	}
	return u
}

// ToSigned32FromString decodes an int32 read as a varint. Negative values
// arrive either sign-extended to 64 bits (10 bytes) or truncated to 32 bits
// (5 bytes); both reduce to the same low 32 bits.
func ToSigned32FromString(unsigned string) float64 {
	trimmed := TrimLeadingZeros(unsigned)
	if Compare(trimmed, MaxInt32) <= 0 {
		return ParseToDouble(trimmed)
	}
	return ToSigned32(Low32(trimmed))
}
