package iridium

import (
	"strings"
)

const (
	window2 = 64
	window3 = 96
	lcwLen  = 46
)

// lcwTable gives, for each LCW bit in order, its 1-based position in the burst.
var lcwTable = [lcwLen]int{
	40, 39, 36, 35, 32, 31, 28, 27, 24, 23, 20, 19, 16, 15, 12, 11, 8, 7, 4, 3,
	41, 38, 37, 34, 33, 30, 29, 26, 25, 22, 21, 18, 17, 14, 13, 10, 9, 6, 5, 2,
	1, 46, 45, 44, 43, 42,
}

// Scramble2 interleaves bits[beginAt:] in 64-bit windows, padding the last
// window with zeros.
func Scramble2(bits string, beginAt int) string {
	if beginAt > len(bits) {
		beginAt = len(bits)
	}
	body := PadBits(bits[beginAt:], window2)
	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); i += window2 {
		w := body[i : i+window2]
		sb.WriteString(interleave2(w[:32], w[32:]))
	}
	return sb.String()
}

func interleave2(odd, even string) string {
	out := make([]byte, 0, len(odd)+len(even))
	for z := len(odd) - 2; z >= 0; z -= 2 {
		out = append(out, even[z], even[z+1], odd[z], odd[z+1])
	}
	return string(out)
}

// Unscramble2 undoes Scramble2 on transmit-order bits.
func Unscramble2(bits string) string {
	body := PadBits(bits, window2)
	var sb strings.Builder
	for i := 0; i < len(body); i += window2 {
		w := body[i : i+window2]
		odd := make([]byte, 32)
		even := make([]byte, 32)
		for s := 0; s < 16; s++ {
			z := 30 - 2*s
			even[z], even[z+1] = w[4*s], w[4*s+1]
			odd[z], odd[z+1] = w[4*s+2], w[4*s+3]
		}
		sb.Write(odd)
		sb.Write(even)
	}
	return sb.String()
}

// Scramble3 interleaves 96-bit windows of three 32-bit blocks. With once set
// only the first window is produced.
func Scramble3(bits string, once bool) string {
	if once {
		w := bits[:min(len(bits), window3)]
		w = PadBits(w, window3)
		return interleave3(w[:32], w[32:64], w[64:])
	}
	body := PadBits(bits, window3)
	var sb strings.Builder
	for i := 0; i < len(body); i += window3 {
		w := body[i : i+window3]
		sb.WriteString(interleave3(w[:32], w[32:64], w[64:]))
	}
	return sb.String()
}

func interleave3(first, second, third string) string {
	out := make([]byte, 0, 96)
	for i := 0; i < len(first); i += 2 {
		out = append(out, first[i+1], first[i], second[i+1], second[i], third[i+1], third[i])
	}
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return string(out)
}

// Unscramble3 undoes Scramble3 on transmit-order bits.
func Unscramble3(bits string) string {
	body := PadBits(bits, window3)
	var sb strings.Builder
	for i := 0; i < len(body); i += window3 {
		w := []byte(body[i : i+window3])
		for l, r := 0, len(w)-1; l < r; l, r = l+1, r-1 {
			w[l], w[r] = w[r], w[l]
		}
		blocks := [3][]byte{make([]byte, 32), make([]byte, 32), make([]byte, 32)}
		for k := 0; k < 48; k++ {
			b, z := k%3, 2*(k/3)
			blocks[b][z+1], blocks[b][z] = w[2*k], w[2*k+1]
		}
		for _, b := range blocks {
			sb.Write(b)
		}
	}
	return sb.String()
}

// rxSymbols splits a received window into 2-bit symbols, undoing the pair swap
// of the demodulator.
func rxSymbols(group string) []string {
	symbols := make([]string, 0, len(group)/2)
	for z := 0; z+1 < len(group); z += 2 {
		symbols = append(symbols, string([]byte{group[z+1], group[z]}))
	}
	return symbols
}

// DeInterleave splits a received 64-bit window into the odd and even 32-bit blocks.
func DeInterleave(group string) (odd, even string) {
	symbols := rxSymbols(group)
	var o, e strings.Builder
	for x := len(symbols) - 1; x >= 0; x -= 2 {
		o.WriteString(symbols[x])
	}
	for x := len(symbols) - 2; x >= 0; x -= 2 {
		e.WriteString(symbols[x])
	}
	return o.String(), e.String()
}

// DeInterleave3 splits a received 96-bit window into its three 32-bit blocks.
func DeInterleave3(group string) (first, second, third string) {
	symbols := rxSymbols(group)
	var f, s, t strings.Builder
	for x := len(symbols) - 1; x >= 2; x -= 3 {
		f.WriteString(symbols[x])
		s.WriteString(symbols[x-1])
		t.WriteString(symbols[x-2])
	}
	return f.String(), s.String(), t.String()
}

// InterleaveLCW permutes the three encoded link control words into burst order.
func InterleaveLCW(lcw1, lcw2, lcw3 string) (string, error) {
	if len(lcw1) != LCW1BCH.WireLen() || len(lcw2) != LCW2BCH.WireLen() || len(lcw3) != LCW3BCH.WireLen() {
		return "", malformed(lcw1+lcw2+lcw3, "lcw lengths %d/%d/%d", len(lcw1), len(lcw2), len(lcw3))
	}
	lcw := lcw1 + lcw2 + lcw3
	out := make([]byte, lcwLen)
	for i, t := range lcwTable {
		out[t-1] = lcw[i]
	}
	return FlipBits(string(out)), nil
}

// DeInterleaveLCW recovers the three link control words from the first 46
// received bits.
func DeInterleaveLCW(bits string) (lcw1, lcw2, lcw3 string, err error) {
	if len(bits) < lcwLen {
		return "", "", "", malformed(bits, "lcw needs %d bits, got %d", lcwLen, len(bits))
	}
	lcw := make([]byte, lcwLen)
	for i, t := range lcwTable {
		lcw[i] = bits[t-1]
	}
	n1, n2 := LCW1BCH.WireLen(), LCW2BCH.WireLen()
	return string(lcw[:n1]), string(lcw[n1 : n1+n2]), string(lcw[n1+n2:]), nil
}
