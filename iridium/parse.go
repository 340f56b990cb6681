package iridium

import (
	"fmt"
	"strings"
)

// ParseLine dispatches a parsed frame line to its framer by prefix.
func ParseLine(line string) (*Message, error) {
	line = strings.TrimRight(line, "\r\n")
	prefix, _, _ := strings.Cut(line, ":")
	switch Kind(prefix) {
	case KindRingAlert:
		return ParseRingAlert(line)
	case KindBroadcast:
		return ParseBroadcast(line)
	case KindSync:
		return ParseISY(line)
	}
	return nil, fmt.Errorf("%q: %w", prefix, ErrUnsupported)
}
