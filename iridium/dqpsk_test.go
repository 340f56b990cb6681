package iridium

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

func TestDecodeDQPSK(t *testing.T) {
	tests := []struct {
		name string
		bits string
		mode DifferentialMode
		want []Symbol
	}{
		{"accumulate", "0011000000110000", Accumulate, []Symbol{0, 2, 2, 2, 2, 0, 0, 0}},
		{"difference", "0011000000110000", Difference, []Symbol{0, 2, 2, 0, 0, 2, 2, 0}},
		{"downlink word", UWDownlink, Accumulate, []Symbol{0, 2, 2, 2, 2, 0, 0, 0, 2, 0, 0, 2}},
		{"uplink word", UWUplink, Accumulate, []Symbol{2, 2, 0, 0, 0, 2, 0, 0, 2, 0, 2, 2}},
		{"empty", "", Accumulate, []Symbol{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeDQPSK(tt.bits, tt.mode)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeDQPSK() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeDQPSKErrors(t *testing.T) {
	if _, err := DecodeDQPSK("001", Accumulate); err == nil {
		t.Error("odd length accepted")
	}
	if _, err := DecodeDQPSK("0021", Accumulate); err == nil {
		t.Error("bad bit accepted")
	}
	if _, err := DecodeDQPSK("00", DifferentialMode(7)); err == nil {
		t.Error("unknown mode accepted")
	}
}

func TestUndifferentiate(t *testing.T) {
	got := Undifferentiate([]Symbol{0, 2, 2, 2, 2, 0, 0, 0})
	want := []Symbol{0, 2, 0, 0, 0, 2, 0, 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Undifferentiate() = %v, want %v", got, want)
	}
}

func TestDQPSKRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 64).Draw(t, "pairs")
		bits := bitString(2*n).Draw(t, "bits")
		symbols, err := EncodeDQPSK(bits)
		if err != nil {
			t.Fatal(err)
		}
		if got := DemodulateDQPSK(symbols); got != FlipBits(bits) {
			t.Fatalf("DemodulateDQPSK() = %s, want %s", got, FlipBits(bits))
		}
		if got := SymbolsToBits(Undifferentiate(symbols)); got != bits {
			t.Fatalf("SymbolsToBits() = %s, want %s", got, bits)
		}
		rx, err := DecodeDQPSK(FlipBits(bits), Accumulate)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(rx, symbols) {
			t.Fatalf("DecodeDQPSK() = %v, want %v", rx, symbols)
		}
	})
}

func TestParseDifferentialMode(t *testing.T) {
	for _, m := range []DifferentialMode{Accumulate, Difference} {
		got, err := ParseDifferentialMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseDifferentialMode(%s) = %v, %v", m, got, err)
		}
	}
	if m, err := ParseDifferentialMode(""); err != nil || m != Accumulate {
		t.Errorf("ParseDifferentialMode(\"\") = %v, %v", m, err)
	}
	if _, err := ParseDifferentialMode("sum"); err == nil {
		t.Error("ParseDifferentialMode(sum) accepted")
	}
}
