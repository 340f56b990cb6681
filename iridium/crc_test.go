package iridium

import (
	"fmt"
	"strings"
	"testing"
)

func asciiBits(s string) string {
	var sb strings.Builder
	for _, c := range []byte(s) {
		fmt.Fprintf(&sb, "%08b", c)
	}
	return sb.String()
}

func TestFingerprint(t *testing.T) {
	if got := Fingerprint(asciiBits("123456789")); got != 0x29B1 {
		t.Errorf("Fingerprint() = %04x, want 29b1", got)
	}
	a := Fingerprint(UWDownlink + "0101")
	b := Fingerprint(UWDownlink + "0111")
	if a == b {
		t.Errorf("Fingerprint() collides for one bit: %04x", a)
	}
}
