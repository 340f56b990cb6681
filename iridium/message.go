package iridium

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/icza/gog"
)

// Kind is the frame type, named by its three letter line prefix.
type Kind string

const (
	KindRingAlert Kind = "IRA"
	KindBroadcast Kind = "IBC"
	KindSync      Kind = "ISY"
)

// Direction of a burst.
type Direction int

const (
	DirectionUnknown Direction = iota
	Downlink
	Uplink
)

func (d Direction) String() string {
	switch d {
	case Downlink:
		return "DL"
	case Uplink:
		return "UL"
	}
	return "unknown"
}

func parseDirection(s string) Direction {
	switch s {
	case "DL":
		return Downlink
	case "UL":
		return Uplink
	}
	return DirectionUnknown
}

// Unique words, transmit bit order.
const (
	UWDownlink = "001100000011000011110011"
	UWUplink   = "110011000011110011111100"
)

// Phy holds the physical layer columns of a parsed line.
type Phy struct {
	ID         string
	Offset     string
	Frequency  int
	Confidence string
	SNR        string
	Noise      string
	Length     string
	Timestamp  float64
}

var (
	phyTimeRE = regexp.MustCompile(`.*-(\d+)-.*`)
	phySNRRE  = regexp.MustCompile(`.*\|(.*)\|(.*)`)
)

// parsePhy reads the leading columns shared by all parsed frame lines:
// prefix, id, offset, frequency, confidence, levels, length and direction.
func parsePhy(line string) (Phy, Direction, error) {
	parts := strings.Fields(line)
	if len(parts) < 8 {
		return Phy{}, DirectionUnknown, malformed(line, "want at least 8 columns, got %d", len(parts))
	}
	freq, err := strconv.Atoi(parts[3])
	if err != nil {
		return Phy{}, DirectionUnknown, malformed(line, "bad frequency %q", parts[3])
	}
	p := Phy{
		ID:         parts[1],
		Offset:     parts[2],
		Frequency:  freq,
		Confidence: parts[4],
		Length:     parts[6],
	}
	if m := phyTimeRE.FindStringSubmatch(parts[1]); m != nil {
		base, _ := strconv.ParseInt(m[1], 10, 64)
		off, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return Phy{}, DirectionUnknown, malformed(line, "bad offset %q", parts[2])
		}
		p.Timestamp = float64(base) + off
	}
	if m := phySNRRE.FindStringSubmatch(parts[5]); m != nil {
		p.Noise, p.SNR = m[1], m[2]
	}
	return p, parseDirection(parts[7]), nil
}

// Details renders the physical columns in the RAW line layout.
func (p Phy) Details() string {
	return fmt.Sprintf("%s %s %d N:%s%s I:00000000000 %s 0.00000 %s",
		p.ID, p.Offset, p.Frequency, p.SNR, p.Noise, p.Confidence, p.Length)
}

// Message is one parsed and encoded frame.
type Message struct {
	Kind      Kind
	Direction Direction
	Phy       Phy
	Fields    Fields
	// Raw is the concatenated field bits before FEC.
	Raw string
	// Encoded is Raw after BCH encoding and fill.
	Encoded string
	// Interleaved is the scrambled payload.
	Interleaved string
	// Extra is appended after the scrambled payload as is.
	Extra string
	Line  string

	bitstream string
}

// Bitstream is the transmitted burst without the unique word.
func (m *Message) Bitstream() string {
	return m.bitstream
}

// UniqueWord returns the unique word for the message direction. Anything
// other than downlink gets the uplink word.
func (m *Message) UniqueWord() string {
	return gog.If(m.Direction == Downlink, UWDownlink, UWUplink)
}

// FullBitstream is the unique word followed by the bitstream.
func (m *Message) FullBitstream() string {
	return m.UniqueWord() + m.bitstream
}

// Pretty renders the message as a RAW line.
func (m *Message) Pretty() string {
	if m.Direction == DirectionUnknown {
		return fmt.Sprintf("No direction: RAW %s %s", m.Phy.Details(), m.bitstream)
	}
	return fmt.Sprintf("RAW: %s %s", m.Phy.Details(), m.FullBitstream())
}

// encodeBlocks splits bits into 21-bit blocks and emits each 31-bit
// codeword followed by its even parity bit. A short final block is taken as
// a binary value, so it is padded with leading zeros.
func encodeBlocks(bits string) (string, error) {
	n := RingAlertBCH.DataLen
	var sb strings.Builder
	for i := 0; i < len(bits); i += n {
		block := bits[i:min(i+n, len(bits))]
		if len(block) < n {
			block = strings.Repeat("0", n-len(block)) + block
		}
		cw, err := RingAlertBCH.EncodeBits(block)
		if err != nil {
			return "", err
		}
		sb.WriteString(cw)
		sb.WriteByte('0' + byte(Parity(cw)))
	}
	return sb.String(), nil
}
