package decimal

// AppendVarint writes an unsigned decimal as a base-128 varint, least
// significant group first.
func AppendVarint(dst []byte, unsigned string) []byte {
	current := TrimLeadingZeros(unsigned)
	if current == "0" {
		return append(dst, 0)
	}
	var groups []byte
	for current != "0" {
		var r int
		current, r = DivMod(current, 128)
		groups = append(groups, byte(r))
	}
	for i := 0; i < len(groups)-1; i++ {
		groups[i] |= 0x80
	}
	return append(dst, groups...)
}

// AppendSignedVarint writes a signed decimal, sign-extending negatives to
// 64 bits.
func AppendSignedVarint(dst []byte, signed string) []byte {
	return AppendVarint(dst, ToUnsigned64(signed))
}

// ConsumeVarint reads a varint as an unsigned decimal string. n is negative
// when the input ends before the terminating byte. Bits beyond 64 are
// dropped.
func ConsumeVarint(b []byte) (value string, n int) {
	value = "0"
	multiplier := "1"
	for i := 0; i < len(b) && i < 10; i++ {
		c := b[i]
		chunk := int(c & 0x7f)
		if i == 9 {
			chunk &= 0x01
		}
		if chunk > 0 {
			value = Add(value, MultiplyBySmall(multiplier, chunk))
		}
		if c&0x80 == 0 {
			return value, i + 1
		}
		multiplier = MultiplyBySmall(multiplier, 128)
	}
	return value, -1
}

// ConsumeSmallVarint reads a varint into a double, which is exact for
// tags and lengths.
func ConsumeSmallVarint(b []byte) (value float64, n int) {
	scale := 1.0
	for i := 0; i < len(b) && i < 10; i++ {
		c := b[i]
		value += float64(c&0x7f) * scale
		if c&0x80 == 0 {
			return value, i + 1
		}
		scale *= 128
	}
	return value, -1
}

// EncodeZigZag64 maps a signed decimal to its ZigZag unsigned form.
func EncodeZigZag64(signed string) string {
	negative, magnitude, ok := ParseSigned(signed)
	if !ok {
		return "0"
	}
	twice := MultiplyBySmall(magnitude, 2)
	if negative {
		twice = Subtract(twice, "1")
	}
	if Compare(twice, MaxUint64) > 0 {
		return "0"
	}
	return twice
}

// DecodeZigZag64 maps a ZigZag unsigned decimal back to signed.
func DecodeZigZag64(unsigned string) string {
	trimmed := TrimLeadingZeros(unsigned)
	q, r := DivMod(trimmed, 2)
	if r == 0 {
		return q
	}
	return "-" + Add(q, "1")
}

// EncodeZigZag32 works on doubles; every int32 is exact in a double.
func EncodeZigZag32(v float64) float64 {
	if v >= 0 {
		return 2 * v
	}
	return -2*v - 1
}

func DecodeZigZag32(unsigned string) float64 {
	u := Low32(unsigned)
	half := u / 2
	if half == float64(int64(half)) {
		return half
	}
	return -(u + 1) / 2
}

// AppendFixed64 writes an unsigned decimal as 8 little-endian bytes.
func AppendFixed64(dst []byte, unsigned string) []byte {
	current := TrimLeadingZeros(unsigned)
	for i := 0; i < 8; i++ {
		var r int
		current, r = DivMod(current, 256)
		dst = append(dst, byte(r))
	}
	return dst
}

// Fixed64 reads 8 little-endian bytes as an unsigned decimal.
func Fixed64(b []byte) string {
	value := "0"
	multiplier := "1"
	for i := 0; i < 8; i++ {
		if b[i] > 0 {
			value = Add(value, MultiplyBySmall(multiplier, int(b[i])))
		}
		multiplier = MultiplyBySmall(multiplier, 256)
	}
	return value
}

// AppendFixed32 writes a number in [0, 2^32) as 4 little-endian bytes.
func AppendFixed32(dst []byte, v float64) []byte {
	v = Wrap32(v)
	for i := 0; i < 4; i++ {
		q := float64(int64(v / 256))
		dst = append(dst, byte(v-q*256))
		v = q
	}
	return dst
}

func Fixed32(b []byte) float64 {
	return float64(b[0]) + float64(b[1])*256 + float64(b[2])*65536 + float64(b[3])*16777216
}
