package iridium

import (
	"fmt"
	"math/bits"
	"strings"
	"sync"
)

// Uncorrectable is the error count reported when no codeword lies within the
// correction bound of a code.
const Uncorrectable = -1

// BCHCode is a shortened systematic binary cyclic code. A codeword is the
// DataLen data bits followed by GenLen-1 parity bits, of which the last
// Punctured are never transmitted.
type BCHCode struct {
	Name      string
	Generator uint64
	DataLen   int
	GenLen    int
	MaxErrors int // guaranteed correctable errors, (d-1)/2
	Punctured int

	once      sync.Once
	syndromes map[uint64]uint64
}

// Protocol constants. Generators and lengths must match the air interface exactly.
var (
	RingAlertBCH = &BCHCode{Name: "ra", Generator: 1207, DataLen: 21, GenLen: 11, MaxErrors: 2}
	LCW1BCH      = &BCHCode{Name: "lcw1", Generator: 29, DataLen: 3, GenLen: 5, MaxErrors: 1}
	LCW2BCH      = &BCHCode{Name: "lcw2", Generator: 465, DataLen: 6, GenLen: 9, MaxErrors: 2, Punctured: 1}
	LCW3BCH      = &BCHCode{Name: "lcw3", Generator: 41, DataLen: 21, GenLen: 6, MaxErrors: 1}
	HeaderBCH    = &BCHCode{Name: "hdr", Generator: 29, DataLen: 2, GenLen: 5, MaxErrors: 1}
)

// Repaired is the outcome of a BCH repair.
type Repaired struct {
	Errors int // corrected bits, or Uncorrectable
	Data   string
	Parity string
}

// BCHEncode treats data as an inputLen-bit polynomial, divides it (shifted by
// genLen-1) by generator and appends the remainder as parity.
func BCHEncode(data, generator uint64, inputLen, genLen int) uint64 {
	shifted := data << (genLen - 1)
	return shifted | PolyRemainder(shifted, generator, inputLen+genLen-1)
}

// Len is the length of an unpunctured codeword.
func (c *BCHCode) Len() int { return c.DataLen + c.GenLen - 1 }

// WireLen is the number of codeword bits actually transmitted.
func (c *BCHCode) WireLen() int { return c.Len() - c.Punctured }

// Encode returns the transmitted codeword for data as a bit string.
func (c *BCHCode) Encode(data uint64) (string, error) {
	if data>>c.DataLen != 0 {
		return "", fmt.Errorf("%s: data %d exceeds %d bits: %w", c.Name, data, c.DataLen, ErrMalformedInput)
	}
	s, err := FormatUint(BCHEncode(data, c.Generator, c.DataLen, c.GenLen), c.Len())
	if err != nil {
		return "", err
	}
	return s[:c.WireLen()], nil
}

// EncodeBits encodes a DataLen-bit string.
func (c *BCHCode) EncodeBits(data string) (string, error) {
	if len(data) != c.DataLen {
		return "", malformed(data, "%s: want %d data bits, got %d", c.Name, c.DataLen, len(data))
	}
	v, err := ParseBits(data)
	if err != nil {
		return "", err
	}
	return c.Encode(v)
}

// Repair finds the minimum weight error pattern, within MaxErrors bits, that
// turns word into a codeword. Missing punctured bits are guessed and never
// counted as errors.
func (c *BCHCode) Repair(word string) (Repaired, error) {
	if len(word) != c.WireLen() {
		return Repaired{Errors: Uncorrectable}, malformed(word, "%s: want %d bits, got %d", c.Name, c.WireLen(), len(word))
	}
	if err := ValidateBits(word); err != nil {
		return Repaired{Errors: Uncorrectable}, err
	}
	if c.Punctured == 0 {
		return c.repair(word)
	}

	var (
		r   Repaired
		err error
	)
	for guess := uint64(0); guess < 1<<c.Punctured; guess++ {
		tail, _ := FormatUint(guess, c.Punctured)
		r, err = c.repair(word + tail)
		if err != nil {
			continue
		}
		fixed := r.Data + r.Parity
		r.Errors = HammingDistance([]byte(fixed[:len(word)]), []byte(word))
		r.Parity = r.Parity[:len(r.Parity)-c.Punctured]
		return r, nil
	}
	r.Data, r.Parity = word[:c.DataLen], word[c.DataLen:]
	return r, err
}

func (c *BCHCode) repair(word string) (Repaired, error) {
	v, err := ParseBits(word)
	if err != nil {
		return Repaired{Errors: Uncorrectable}, err
	}
	n := c.Len()
	syndrome := PolyRemainder(v, c.Generator, n)
	if syndrome == 0 {
		return Repaired{Errors: 0, Data: word[:c.DataLen], Parity: word[c.DataLen:]}, nil
	}
	pattern, ok := c.table()[syndrome]
	if !ok {
		return Repaired{Errors: Uncorrectable, Data: word[:c.DataLen], Parity: word[c.DataLen:]},
			&UncorrectableBlockError{Code: c.Name}
	}
	fixed, _ := FormatUint(v^pattern, n)
	return Repaired{Errors: bits.OnesCount64(pattern), Data: fixed[:c.DataLen], Parity: fixed[c.DataLen:]}, nil
}

// table maps syndromes to error patterns of weight 1..MaxErrors. Lower weights
// and lower bit positions are inserted first, so the first pattern stored for
// a syndrome is the one used.
func (c *BCHCode) table() map[uint64]uint64 {
	c.once.Do(func() {
		n := c.Len()
		c.syndromes = make(map[uint64]uint64)
		var add func(pattern uint64, from, left int)
		add = func(pattern uint64, from, left int) {
			if left == 0 {
				s := PolyRemainder(pattern, c.Generator, n)
				if _, ok := c.syndromes[s]; !ok {
					c.syndromes[s] = pattern
				}
				return
			}
			for b := from; b < n; b++ {
				add(pattern|1<<b, b+1, left-1)
			}
		}
		for w := 1; w <= c.MaxErrors; w++ {
			add(0, 0, w)
		}
	})
	return c.syndromes
}

// RepairHeader repairs the 6-bit broadcast header and returns the number of
// corrected bits.
func RepairHeader(word string) (int, error) {
	r, err := HeaderBCH.Repair(word)
	return r.Errors, err
}

// headerBits is the encoded all-zero broadcast header.
var headerBits = strings.Repeat("0", HeaderBCH.Len())
