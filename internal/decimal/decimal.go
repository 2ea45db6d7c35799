// Package decimal implements unsigned arbitrary-precision arithmetic over
// base-10 digit strings.
//
// Generated BrightScript has no 64-bit integer type, so every 64-bit value
// travels as a decimal string and is manipulated with long arithmetic. This
// package is the executable model of that runtime: the generated helpers
// follow the same algorithms step for step, and the codec package uses these
// functions so the algorithms can be checked against a reference encoder.
package decimal

import (
	"strings"
)

const (
	TwoPow32  = "4294967296"
	TwoPow64  = "18446744073709551616"
	MaxInt32  = "2147483647"
	MaxInt64  = "9223372036854775807"
	MaxUint32 = "4294967295"
	MaxUint64 = "18446744073709551615"
)

// TrimLeadingZeros canonicalizes a digit string. "0" is the only zero.
func TrimLeadingZeros(s string) string {
	i := 0
	for i < len(s) && s[i] == '0' {
		i++
	}
	if i == len(s) {
		return "0"
	}
	return s[i:]
}

// AllDigits reports whether s is a non-empty run of ASCII digits.
func AllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Compare compares magnitudes, ignoring leading zeros.
func Compare(a, b string) int {
	a, b = TrimLeadingZeros(a), TrimLeadingZeros(b)
	if len(a) != len(b) {
		if len(a) > len(b) {
			return 1
		}
		return -1
	}
	return strings.Compare(a, b)
}

func Add(a, b string) string {
	a, b = TrimLeadingZeros(a), TrimLeadingZeros(b)
	out := make([]byte, 0, max(len(a), len(b))+1)
	carry := 0
	for i, j := len(a)-1, len(b)-1; i >= 0 || j >= 0 || carry > 0; i, j = i-1, j-1 {
		sum := carry
		if i >= 0 {
			sum += int(a[i] - '0')
		}
		if j >= 0 {
			sum += int(b[j] - '0')
		}
		out = append(out, byte('0'+sum%10))
		carry = sum / 10
	}
	return TrimLeadingZeros(reverse(out))
}

// Subtract returns a-b. It returns "0" when a < b; callers guarantee a >= b.
func Subtract(a, b string) string {
	if Compare(a, b) < 0 {
		return "0"
	}
	a, b = TrimLeadingZeros(a), TrimLeadingZeros(b)
	out := make([]byte, 0, len(a))
	borrow := 0
	for i, j := len(a)-1, len(b)-1; i >= 0; i, j = i-1, j-1 {
		d := int(a[i]-'0') - borrow
		if j >= 0 {
			d -= int(b[j] - '0')
		}
		borrow = 0
		if d < 0 {
			d += 10
			borrow = 1
		}
		out = append(out, byte('0'+d))
	}
	return TrimLeadingZeros(reverse(out))
}

// MultiplyBySmall multiplies by a factor of up to a few hundred, used for
// base-10, base-128 and base-256 shifts.
func MultiplyBySmall(value string, factor int) string {
	value = TrimLeadingZeros(value)
	if factor == 0 || value == "0" {
		return "0"
	}
	out := make([]byte, 0, len(value)+4)
	carry := 0
	for i := len(value) - 1; i >= 0; i-- {
		total := int(value[i]-'0')*factor + carry
		out = append(out, byte('0'+total%10))
		carry = total / 10
	}
	for carry > 0 {
		out = append(out, byte('0'+carry%10))
		carry /= 10
	}
	return TrimLeadingZeros(reverse(out))
}

// DivMod divides by a small positive divisor.
func DivMod(value string, divisor int) (quotient string, remainder int) {
	value = TrimLeadingZeros(value)
	q := make([]byte, 0, len(value))
	for i := 0; i < len(value); i++ {
		remainder = remainder*10 + int(value[i]-'0')
		digit := remainder / divisor
		remainder -= digit * divisor
		if len(q) > 0 || digit != 0 {
			q = append(q, byte('0'+digit))
		}
	}
	if len(q) == 0 {
		return "0", remainder
	}
	return string(q), remainder
}

func reverse(b []byte) string {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
