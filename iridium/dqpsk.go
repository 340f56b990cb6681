package iridium

import "fmt"

// Symbol is a DQPSK phase index in 0..3.
type Symbol byte

// DifferentialMode selects how DecodeDQPSK treats consecutive symbols.
type DifferentialMode int

const (
	// Accumulate sums consecutive symbols mod 4. Captured unique words are
	// matched against references decoded the same way.
	Accumulate DifferentialMode = iota
	// Difference takes the phase change between consecutive symbols.
	Difference
)

func (m DifferentialMode) String() string {
	switch m {
	case Accumulate:
		return "accumulate"
	case Difference:
		return "difference"
	}
	return fmt.Sprintf("DifferentialMode(%d)", int(m))
}

// ParseDifferentialMode is the inverse of String.
func ParseDifferentialMode(s string) (DifferentialMode, error) {
	switch s {
	case "accumulate", "":
		return Accumulate, nil
	case "difference":
		return Difference, nil
	}
	return 0, &UnknownFieldValueError{Field: "differential mode", Value: s}
}

// Gray mapping between bit pairs and phase steps. It is its own inverse.
var imap = [4]Symbol{0, 1, 3, 2}

func checkPairs(bits string) error {
	if err := ValidateBits(bits); err != nil {
		return err
	}
	if len(bits)%2 != 0 {
		return malformed(bits, "odd number of bits %d", len(bits))
	}
	return nil
}

// EncodeDQPSK maps transmit-order bit pairs to absolute phases.
func EncodeDQPSK(bits string) ([]Symbol, error) {
	if err := checkPairs(bits); err != nil {
		return nil, err
	}
	out := make([]Symbol, len(bits)/2)
	for i := range out {
		out[i] = imap[int(bits[2*i]-'0')+2*int(bits[2*i+1]-'0')]
		if i > 0 {
			out[i] = (out[i] + out[i-1]) % 4
		}
	}
	return out, nil
}

// DecodeDQPSK maps receive-order bit pairs to symbols and combines them per mode.
func DecodeDQPSK(bits string, mode DifferentialMode) ([]Symbol, error) {
	if err := checkPairs(bits); err != nil {
		return nil, err
	}
	raw := make([]Symbol, len(bits)/2)
	for i := range raw {
		raw[i] = imap[2*int(bits[2*i]-'0')+int(bits[2*i+1]-'0')]
	}
	switch mode {
	case Accumulate:
		for i := 1; i < len(raw); i++ {
			raw[i] = (raw[i] + raw[i-1]) % 4
		}
		return raw, nil
	case Difference:
		return Undifferentiate(raw), nil
	}
	return nil, &UnknownFieldValueError{Field: "differential mode", Value: mode.String()}
}

// Undifferentiate returns the phase change at each symbol. The first symbol is kept.
func Undifferentiate(symbols []Symbol) []Symbol {
	out := make([]Symbol, len(symbols))
	for i, s := range symbols {
		if i == 0 {
			out[i] = s
			continue
		}
		out[i] = (s + 4 - symbols[i-1]) % 4
	}
	return out
}

// SymbolsToBits maps phase steps back to transmit-order bit pairs.
func SymbolsToBits(steps []Symbol) string {
	out := make([]byte, 0, 2*len(steps))
	for _, s := range steps {
		v := imap[s%4]
		out = append(out, '0'+byte(v&1), '0'+byte(v>>1))
	}
	return string(out)
}

// DemodulateDQPSK is what a receiver reports for transmitted absolute phases.
// Its bit order is swapped within each pair relative to the transmitter.
func DemodulateDQPSK(symbols []Symbol) string {
	return FlipBits(SymbolsToBits(Undifferentiate(symbols)))
}
