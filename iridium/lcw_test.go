package iridium

import (
	"errors"
	"testing"
)

func TestParseLCW(t *testing.T) {
	tests := []struct {
		name string
		code string
		lcw1 string
		lcw2 string
		lcw3 string
	}{
		{"silent", "LCW(3,T:maint,C:<silent>,000000000000000000000)", "011", "001111", "000000000000000000000"},
		{"sync", "LCW(0,T:maint,C:sync[status:1,dtoa:512,dfoa:100],0|1)", "000", "000000", "011" + "1000000000" + "01100100"},
		{"maint1", "LCW(7,T:maint,C:maint[1][lqi:3,power:0],0000000000000000)", "111", "001100", "0000000000000000" + "000" + "11"},
		{"acchl", "LCW(7,T:acchl,C:acchl[msg_type:1,bloc_num:0,sapi_code:0,segm_list:00111111],0,00)", "111", "010001", "0" + "001" + "0" + "000" + "00111111" + "00000"},
		{"handoff", "LCW(2,T:hndof,C:handoff_resp[cand:P,denied:0,ref:1,slot:2,sband_up:12,sband_dn:13,access:4],01,1)",
			"010", "100011", "01" + "0" + "0" + "1" + "1" + "01" + "01100" + "01101" + "011"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := ParseLCW("ISY: x " + tt.code + " Sync=OK")
			if err != nil {
				t.Fatal(err)
			}
			if l.LCW1 != tt.lcw1 || l.LCW2 != tt.lcw2 || l.LCW3 != tt.lcw3 {
				t.Errorf("ParseLCW() = %s %s %s, want %s %s %s", l.LCW1, l.LCW2, l.LCW3, tt.lcw1, tt.lcw2, tt.lcw3)
			}
		})
	}
}

func TestParseLCWErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		want error
	}{
		{"missing", "no control word", ErrMalformedInput},
		{"type", "LCW(0,T:other,C:sync,0)", ErrUnknownFieldValue},
		{"maint code", "LCW(0,T:maint,C:bogus,0)", ErrUnknownFieldValue},
		{"candidate", "LCW(2,T:hndof,C:handoff_resp[cand:X,denied:0,ref:1,slot:2,sband_up:12,sband_dn:13,access:4],01,1)", ErrUnknownFieldValue},
		{"short lcw3", "LCW(3,T:maint,C:<silent>,0000)", ErrMalformedInput},
		{"ft", "LCW(9,T:maint,C:<silent>,000000000000000000000)", ErrMalformedInput},
		{"code", "LCW(0,T:rsrvd,C:<20>,000000000000000000000)", ErrUnknownFieldValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLCW("ISY: x " + tt.code)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseLCW() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRepairLCW(t *testing.T) {
	l, err := ParseLCW("LCW(0,T:maint,C:sync[status:1,dtoa:512,dfoa:100],0|1)")
	if err != nil {
		t.Fatal(err)
	}
	tx, err := l.Encode()
	if err != nil {
		t.Fatal(err)
	}
	rx := FlipBits(tx)
	for i := -1; i < len(rx); i++ {
		word := rx
		errs := 0
		if i >= 0 {
			word, errs = flip(rx, i), 1
		}
		r, err := RepairLCW(word)
		if err != nil {
			t.Fatalf("bit %d: %v", i, err)
		}
		if r.Errors != errs || r.LCW1 != l.LCW1 || r.LCW2 != l.LCW2 || r.LCW3 != l.LCW3 {
			t.Errorf("bit %d: RepairLCW() = %+v", i, r)
		}
	}
}

func TestRepairLCWUncorrectable(t *testing.T) {
	l, err := ParseLCW("LCW(3,T:maint,C:<silent>,000000000000000000000)")
	if err != nil {
		t.Fatal(err)
	}
	tx, _ := l.Encode()
	rx := FlipBits(tx)
	// lcw1 occupies burst positions 40, 39, 36, 35, 32, 31 and 28
	word := flip(flip(rx, 39), 38)
	_, err = RepairLCW(word)
	var ube *UncorrectableBlockError
	if !errors.As(err, &ube) {
		t.Fatalf("RepairLCW() error = %v", err)
	}
	if ube.Code != "lcw1" || ube.Block != 0 {
		t.Errorf("RepairLCW() error = %+v", ube)
	}
}

func TestLCWEncodeWords(t *testing.T) {
	l, err := ParseLCW("LCW(3,T:maint,C:<silent>,000000000000000000000)")
	if err != nil {
		t.Fatal(err)
	}
	e1, e2, e3, err := l.EncodeWords()
	if err != nil {
		t.Fatal(err)
	}
	if len(e1) != 7 || len(e2) != 13 || len(e3) != 26 {
		t.Errorf("EncodeWords() lengths %d %d %d", len(e1), len(e2), len(e3))
	}
	want, err := InterleaveLCW(e1, e2, e3)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := l.Encode(); got != want {
		t.Errorf("Encode() = %s, want %s", got, want)
	}

	tests := []struct {
		name string
		lcw  LCW
	}{
		{"lcw1", LCW{LCW1: "0110", LCW2: l.LCW2, LCW3: l.LCW3}},
		{"lcw2", LCW{LCW1: l.LCW1, LCW2: "00111", LCW3: l.LCW3}},
		{"lcw3", LCW{LCW1: l.LCW1, LCW2: l.LCW2, LCW3: l.LCW3 + "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, err := tt.lcw.EncodeWords(); !errors.Is(err, ErrMalformedInput) {
				t.Errorf("EncodeWords() error = %v", err)
			}
			if _, err := tt.lcw.Encode(); !errors.Is(err, ErrMalformedInput) {
				t.Errorf("Encode() error = %v", err)
			}
		})
	}
}
