package iridium

import (
	"regexp"
	"strings"
)

var syncPatternRE = regexp.MustCompile(`ISY: .* pattern=(\d+)`)

const (
	syncPatternBits     = 312
	syncPatternDownlink = "01"
)

// ParseISY parses a sync burst line: an LCW followed by a repeating pattern
// that carries no FEC.
func ParseISY(line string) (*Message, error) {
	phy, dir, err := parsePhy(line)
	if err != nil {
		return nil, err
	}
	lcw, err := ParseLCW(line)
	if err != nil {
		return nil, err
	}

	var pattern string
	switch dir {
	case Downlink:
		pattern = syncPatternDownlink
	case Uplink:
		m := syncPatternRE.FindStringSubmatch(line)
		if m == nil {
			return nil, malformed(line, "uplink sync without pattern")
		}
		pattern = m[1]
	default:
		return nil, malformed(line, "sync burst without direction")
	}
	if err := ValidateBits(pattern); err != nil {
		return nil, malformed(line, "pattern: %v", err)
	}

	enc1, enc2, enc3, err := lcw.EncodeWords()
	if err != nil {
		return nil, err
	}
	interleaved, err := InterleaveLCW(enc1, enc2, enc3)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		Kind:        KindSync,
		Direction:   dir,
		Phy:         phy,
		Fields:      lcw.Fields,
		Raw:         lcw.LCW1 + lcw.LCW2 + lcw.LCW3,
		Encoded:     enc1 + enc2 + enc3,
		Interleaved: interleaved,
		Extra:       strings.Repeat(pattern, syncPatternBits/2),
		Line:        line,
	}
	msg.bitstream = msg.Interleaved + msg.Extra
	return msg, nil
}
