package iridium

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	rawLineRE = regexp.MustCompile(`^(RAW): ([^ ]*) (\S+) (\d+) (?:N:([+-]?\d+(?:\.\d+)?)([+-]\d+(?:\.\d+)?)|A:(\w+)) ` +
		`[IL]:(\w+) +(\d+)% ([\d.]+|inf|nan) +(\d+) ([\[\]<> 01]+)(.*)`)
	rawNoiseRE = regexp.MustCompile(`[\[\]<> ]`)
)

// Broadcast framing on the receive side.
const (
	bcHeaderLen = 6
	bcMinLen    = bcHeaderLen + window2
	// A broadcast burst is at most 131 symbols after its longer preamble.
	bcMaxLen = 131 * 2
	// DefaultMaxUWDistance is the symbol distance from which a unique word is rejected.
	DefaultMaxUWDistance = 4
)

// RawBurst is one parsed RAW line.
type RawBurst struct {
	ID         string
	Offset     string
	Frequency  int
	SNR        float64
	Noise      float64
	HasSNR     bool
	Amplitude  string
	Info       string
	Confidence int
	Level      string
	Symbols    int
	Bits       string
	Trailer    string
	Timestamp  float64
}

// ParseRawLine parses a demodulator RAW line.
func ParseRawLine(line string) (*RawBurst, error) {
	line = strings.TrimRight(line, "\r\n")
	m := rawLineRE.FindStringSubmatch(line)
	if m == nil {
		return nil, malformed(line, "not a RAW line")
	}
	r := &RawBurst{
		ID:        m[2],
		Offset:    m[3],
		Amplitude: m[7],
		Info:      m[8],
		Level:     m[10],
		Bits:      rawNoiseRE.ReplaceAllString(m[12], ""),
		Trailer:   m[13],
	}
	var err error
	if r.Frequency, err = strconv.Atoi(m[4]); err != nil {
		return nil, malformed(line, "bad frequency %q", m[4])
	}
	if m[5] != "" {
		r.SNR, _ = strconv.ParseFloat(m[5], 64)
		r.Noise, _ = strconv.ParseFloat(m[6], 64)
		r.HasSNR = true
	}
	r.Confidence, _ = strconv.Atoi(m[9])
	r.Symbols, _ = strconv.Atoi(m[11])
	if t := phyTimeRE.FindStringSubmatch(r.ID); t != nil {
		base, _ := strconv.ParseInt(t[1], 10, 64)
		off, _ := strconv.ParseFloat(r.Offset, 64)
		r.Timestamp = float64(base) + off
	}
	return r, nil
}

// RepairOptions tunes receive side repair.
type RepairOptions struct {
	Mode          DifferentialMode
	MaxUWDistance int
}

// DefaultRepairOptions matches captured bursts against the accumulated unique
// word symbols and rejects four or more symbol errors.
func DefaultRepairOptions() RepairOptions {
	return RepairOptions{Mode: Accumulate, MaxUWDistance: DefaultMaxUWDistance}
}

// MatchUniqueWord finds the burst direction from its first 24 bits. An exact
// match costs nothing. Otherwise the word is compared symbol by symbol and
// every differing symbol counts as one error.
func MatchUniqueWord(bits string, opts RepairOptions) (Direction, int, error) {
	switch {
	case strings.HasPrefix(bits, UWDownlink):
		return Downlink, 0, nil
	case strings.HasPrefix(bits, UWUplink):
		return Uplink, 0, nil
	case len(bits) < len(UWDownlink):
		return DirectionUnknown, 0, fmt.Errorf("%d bits: %w", len(bits), ErrNoUniqueWord)
	}
	got, err := DecodeDQPSK(bits[:len(UWDownlink)], opts.Mode)
	if err != nil {
		return DirectionUnknown, 0, err
	}
	dlRef, _ := DecodeDQPSK(UWDownlink, opts.Mode)
	ulRef, _ := DecodeDQPSK(UWUplink, opts.Mode)
	dl, ul := HammingDistance(got, dlRef), HammingDistance(got, ulRef)

	dir, dist := Downlink, dl
	if ul < dl {
		dir, dist = Uplink, ul
	}
	if dist >= opts.MaxUWDistance {
		return DirectionUnknown, 0, fmt.Errorf("best distance %d: %w", dist, ErrNoUniqueWord)
	}
	return dir, dist, nil
}

// BurstReport is the repair outcome of one burst.
type BurstReport struct {
	Kind      Kind
	Direction Direction
	// Framed is set when the payload was recognised and repaired block by block.
	Framed      bool
	UWErrors    int
	BlockErrors []int
	BitErrors   int
	SNR         float64
	Noise       float64
	HasSNR      bool
	Length      int
	Data        string
	Extra       string
	Fingerprint uint16
	Timestamp   float64
}

// PRR is the packet reception rate estimate (1-e/n)^n of the burst.
func (r *BurstReport) PRR() float64 {
	if r.Length == 0 {
		return 0
	}
	n := float64(r.Length)
	return math.Pow(1-float64(r.BitErrors)/n, n)
}

// RepairBurst identifies the unique word of raw and repairs its payload as kind.
func RepairBurst(raw *RawBurst, kind Kind, opts RepairOptions) (*BurstReport, error) {
	dir, uwErrs, err := MatchUniqueWord(raw.Bits, opts)
	if err != nil {
		return nil, err
	}
	data := raw.Bits[len(UWDownlink):]
	rep := &BurstReport{
		Kind:        kind,
		Direction:   dir,
		UWErrors:    uwErrs,
		BitErrors:   uwErrs,
		SNR:         raw.SNR,
		Noise:       raw.Noise,
		HasSNR:      raw.HasSNR,
		Length:      len(raw.Bits),
		Fingerprint: Fingerprint(data),
		Timestamp:   raw.Timestamp,
	}
	switch kind {
	case KindBroadcast:
		err = repairBroadcast(rep, data)
	case KindRingAlert:
		err = repairRingAlert(rep, data)
	case KindSync:
		err = repairSync(rep, data)
	default:
		err = fmt.Errorf("%q: %w", kind, ErrUnsupported)
	}
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// CalculateBER parses a RAW line and repairs it as a broadcast burst.
func CalculateBER(line string) (*BurstReport, error) {
	raw, err := ParseRawLine(line)
	if err != nil {
		return nil, err
	}
	return RepairBurst(raw, KindBroadcast, DefaultRepairOptions())
}

// repairBlock repairs a 31-bit codeword plus parity bit. Odd parity after
// repair costs one more error.
func repairBlock(block string, index int) (Repaired, int, error) {
	r, err := RingAlertBCH.Repair(block[:RingAlertBCH.Len()])
	if err != nil {
		return r, Uncorrectable, atBlock(err, index)
	}
	errs := r.Errors
	if Parity(r.Data+r.Parity+block[RingAlertBCH.Len():]) == 1 {
		errs++
	}
	return r, errs, nil
}

func (rep *BurstReport) addBlocks(blocks ...string) error {
	for _, blk := range blocks {
		r, errs, err := repairBlock(blk, len(rep.BlockErrors))
		if err != nil {
			return err
		}
		rep.BlockErrors = append(rep.BlockErrors, errs)
		rep.BitErrors += errs
		rep.Data += r.Data
	}
	return nil
}

// repairBroadcast checks the header and first window to decide whether data
// is a broadcast frame, then repairs every complete window.
func repairBroadcast(rep *BurstReport, data string) error {
	if len(data) < bcMinLen || rep.Direction != Downlink {
		return nil
	}
	hdrErrs, err := RepairHeader(data[:bcHeaderLen])
	if err != nil {
		return err
	}
	odd, even := DeInterleave(data[bcHeaderLen:bcMinLen])
	framed := true
	for i, blk := range []string{odd, even} {
		r, err := RingAlertBCH.Repair(blk[:RingAlertBCH.Len()])
		if err != nil {
			return atBlock(err, i)
		}
		if Parity(r.Data+r.Parity+blk[RingAlertBCH.Len():]) != 0 {
			framed = false
		}
	}
	if !framed {
		return nil
	}

	rep.Framed = true
	rep.BitErrors += hdrErrs
	body := data[bcHeaderLen:min(len(data), bcMaxLen)]
	n := len(body) / window2 * window2
	for i := 0; i < n; i += window2 {
		odd, even := DeInterleave(body[i : i+window2])
		if err := rep.addBlocks(odd, even); err != nil {
			return err
		}
	}
	rep.Extra = body[n:] + data[min(len(data), bcMaxLen):]
	return nil
}

// repairRingAlert undoes the 96-bit first window and the 64-bit windows
// after it.
func repairRingAlert(rep *BurstReport, data string) error {
	if len(data) < window3 {
		return nil
	}
	first, second, third := DeInterleave3(data[:window3])
	if err := rep.addBlocks(first, second, third); err != nil {
		return err
	}
	rest := data[window3:]
	n := len(rest) / window2 * window2
	for i := 0; i < n; i += window2 {
		odd, even := DeInterleave(rest[i : i+window2])
		if err := rep.addBlocks(odd, even); err != nil {
			return err
		}
	}
	rep.Framed = true
	rep.Extra = rest[n:]
	return nil
}

// repairSync repairs the link control word of a sync burst.
func repairSync(rep *BurstReport, data string) error {
	if len(data) < lcwLen {
		return nil
	}
	r, err := RepairLCW(data)
	if err != nil {
		return err
	}
	rep.Framed = true
	rep.BlockErrors = []int{r.Errors}
	rep.BitErrors += r.Errors
	rep.Data = r.LCW1 + r.LCW2 + r.LCW3
	rep.Extra = data[lcwLen:]
	return nil
}
