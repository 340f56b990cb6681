package iridium

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// ValidateBits checks that s only holds '0' and '1' characters.
func ValidateBits(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return &MalformedInputError{Line: s, Reason: fmt.Sprintf("invalid bit %q at %d", s[i], i)}
		}
	}
	return nil
}

// FormatUint formats v as a zero-padded binary string of exactly width bits.
func FormatUint[T constraints.Integer](v T, width int) (string, error) {
	if v < 0 {
		return "", fmt.Errorf("value %d is negative: %w", v, ErrMalformedInput)
	}
	u := uint64(v)
	if width < 64 && u>>width != 0 {
		return "", fmt.Errorf("value %d does not fit in %d bits: %w", v, width, ErrMalformedInput)
	}
	if width == 0 {
		return "", nil
	}
	s := strconv.FormatUint(u, 2)
	return strings.Repeat("0", width-len(s)) + s, nil
}

// FormatSigned formats v in width bits, mapping negative values to (1<<width)+v.
func FormatSigned[T constraints.Signed](v T, width int) (string, error) {
	x := int64(v)
	if x < 0 {
		x += 1 << width
		if x < 0 {
			return "", fmt.Errorf("value %d does not fit in %d bits: %w", v, width, ErrMalformedInput)
		}
	}
	return FormatUint(x, width)
}

// ParseBits converts a binary string of at most 64 bits to an integer.
func ParseBits(s string) (uint64, error) {
	if len(s) > 64 {
		return 0, fmt.Errorf("%d bits do not fit in 64: %w", len(s), ErrMalformedInput)
	}
	if err := ValidateBits(s); err != nil {
		return 0, err
	}
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 2, 64)
}

// PolyRemainder divides the length-bit polynomial dividend by divisor over
// GF(2) and returns the remainder.
func PolyRemainder(dividend, divisor uint64, length int) uint64 {
	deg := bits.Len64(divisor) - 1
	if deg < 0 {
		return dividend
	}
	for i := length - 1; i >= deg; i-- {
		if dividend&(1<<i) != 0 {
			dividend ^= divisor << (i - deg)
		}
	}
	return dividend
}

// PadBits appends zeros until len(s) is a multiple of block.
func PadBits(s string, block int) string {
	n := (block - len(s)%block) % block
	if n == 0 {
		return s
	}
	return s + strings.Repeat("0", n)
}

// FlipBits swaps every adjacent pair of bits. A trailing odd bit is kept.
func FlipBits(s string) string {
	b := []byte(s)
	for i := 0; i+1 < len(b); i += 2 {
		b[i], b[i+1] = b[i+1], b[i]
	}
	return string(b)
}

// HammingDistance counts differing positions over the common prefix of a and b.
func HammingDistance[T comparable](a, b []T) int {
	d := 0
	for i := 0; i < min(len(a), len(b)); i++ {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}

// Parity returns the number of ones in s modulo 2.
func Parity(s string) int {
	return strings.Count(s, "1") % 2
}

// packBits packs a bit string MSB first, zero-padding the final byte.
func packBits(s string) []byte {
	out := make([]byte, (len(s)+7)/8)
	for i := 0; i < len(s); i++ {
		if s[i] == '1' {
			out[i/8] |= 1 << (7 - i%8)
		}
	}
	return out
}
