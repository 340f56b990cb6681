package iridium

import (
	"errors"
	"testing"
)

func TestFormatUint(t *testing.T) {
	tests := []struct {
		name    string
		v       int64
		width   int
		want    string
		wantErr bool
	}{
		{"zero", 0, 5, "00000", false},
		{"exact", 21, 6, "010101", false},
		{"full", 127, 7, "1111111", false},
		{"overflow", 128, 7, "", true},
		{"negative", -1, 8, "", true},
		{"empty", 0, 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatUint(tt.v, tt.width)
			if (err != nil) != tt.wantErr {
				t.Errorf("FormatUint() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("FormatUint() = %q, want %q", got, tt.want)
			}
			if err != nil && !errors.Is(err, ErrMalformedInput) {
				t.Errorf("FormatUint() error %v is not malformed input", err)
			}
		})
	}
}

func TestFormatSigned(t *testing.T) {
	tests := []struct {
		v     int
		width int
		want  string
	}{
		{1428, 12, "010110010100"},
		{-2, 12, "111111111110"},
		{-512, 12, "111000000000"},
		{-5, 8, "11111011"},
		{1, 8, "00000001"},
	}
	for _, tt := range tests {
		got, err := FormatSigned(tt.v, tt.width)
		if err != nil {
			t.Fatalf("FormatSigned(%d, %d) error = %v", tt.v, tt.width, err)
		}
		if got != tt.want {
			t.Errorf("FormatSigned(%d, %d) = %q, want %q", tt.v, tt.width, got, tt.want)
		}
	}
	if _, err := FormatSigned(-300, 8); err == nil {
		t.Error("FormatSigned(-300, 8) should fail")
	}
}

func TestParseBits(t *testing.T) {
	if v, err := ParseBits("10010110111"); err != nil || v != 1207 {
		t.Errorf("ParseBits() = %d, %v", v, err)
	}
	if v, err := ParseBits(""); err != nil || v != 0 {
		t.Errorf("ParseBits(\"\") = %d, %v", v, err)
	}
	if _, err := ParseBits("10201"); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("ParseBits() error = %v, want malformed input", err)
	}
}

func TestPolyRemainder(t *testing.T) {
	// 1207 divides itself
	if r := PolyRemainder(1207, 1207, 11); r != 0 {
		t.Errorf("PolyRemainder(1207, 1207) = %d", r)
	}
	// x^10 mod g is g without its leading term
	if r := PolyRemainder(1<<10, 1207, 11); r != 1207^(1<<10) {
		t.Errorf("PolyRemainder(x^10, 1207) = %b", r)
	}
	if r := PolyRemainder(5, 0, 3); r != 5 {
		t.Errorf("PolyRemainder by zero = %d", r)
	}
}

func TestPadBits(t *testing.T) {
	tests := []struct {
		in    string
		block int
		want  string
	}{
		{"", 4, ""},
		{"1", 4, "1000"},
		{"1111", 4, "1111"},
		{"11111", 4, "11111000"},
	}
	for _, tt := range tests {
		if got := PadBits(tt.in, tt.block); got != tt.want {
			t.Errorf("PadBits(%q, %d) = %q, want %q", tt.in, tt.block, got, tt.want)
		}
	}
}

func TestFlipBits(t *testing.T) {
	if got := FlipBits("100111"); got != "011011" {
		t.Errorf("FlipBits() = %q", got)
	}
	if got := FlipBits("101"); got != "011" {
		t.Errorf("FlipBits() odd length = %q", got)
	}
	if got := FlipBits(UWDownlink); got != UWDownlink {
		t.Errorf("downlink unique word is not pair symmetric: %q", got)
	}
}

func TestHammingDistanceAndParity(t *testing.T) {
	if d := HammingDistance([]byte("0110"), []byte("0011")); d != 2 {
		t.Errorf("HammingDistance() = %d", d)
	}
	if d := HammingDistance([]Symbol{0, 1, 2}, []Symbol{0, 1}); d != 0 {
		t.Errorf("HammingDistance() over prefix = %d", d)
	}
	if p := Parity("1011"); p != 1 {
		t.Errorf("Parity() = %d", p)
	}
	if p := Parity(""); p != 0 {
		t.Errorf("Parity(\"\") = %d", p)
	}
}
