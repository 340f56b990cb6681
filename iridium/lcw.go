package iridium

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// LCW function types.
var lcwTypes = map[string]int{
	"maint": 0,
	"acchl": 1,
	"hndof": 2,
	"rsrvd": 3,
}

var (
	maintCodes = map[string]int{
		"sync":     0,
		"switch":   1,
		"maint[2]": 3,
		"geoloc":   6,
		"maint[1]": 12,
		"<silent>": 15,
	}
	acchlCodes = map[string]int{
		"acchl": 1,
	}
	hndofCodes = map[string]int{
		"handoff_cand": 12,
		"handoff_resp": 3,
		"<silent>":     15,
	}
)

var (
	lcwRE         = regexp.MustCompile(`.*LCW\((\d+),T:(\w+),C:(\S+)\).*`)
	maint1RE      = regexp.MustCompile(`^maint\[(\d+)\]\[lqi:(\d+),power:(\d+)\],(\d+)`)
	maint2RE      = regexp.MustCompile(`^maint\[(\d+)\]\[lqi:(\d+),power:(\d+),f_dtoa:(\d+),f_dfoa:(\d+)\],(\d+)\|(\d+)`)
	syncRE        = regexp.MustCompile(`^sync\[status:(\d+),dtoa:(\d+),dfoa:(\d+)\],(\d+)\|(\d+)`)
	switchRE      = regexp.MustCompile(`^switch\[dtoa:(\d+),dfoa:(\d+)\],(\d+)`)
	reservedRE    = regexp.MustCompile(`^rsrvd\((\d+)\)`)
	reservedAltRE = regexp.MustCompile(`^<(\d+)>`)
	acchlRE       = regexp.MustCompile(`^acchl\[msg_type:(\d+),bloc_num:(\d+),sapi_code:(\d+),segm_list:(\d+)\],(\d+),(\d+)`)
	handoffRespRE = regexp.MustCompile(`^handoff_resp\[cand:(\S),denied:(\d),ref:(\d),slot:(\d),sband_up:(\d+),sband_dn:(\d+),access:(\d)\],(\d+),(\d+)`)
)

var lcwSchema = schema{
	"spare":     anyWidth,
	"spare5":    5,
	"lqi":       2,
	"power":     3,
	"f_dtoa":    7,
	"f_dfoa":    7,
	"status":    1,
	"dtoa":      10,
	"dfoa":      8,
	"msg_type":  3,
	"bloc_num":  1,
	"sapi_code": 3,
	"segm_list": anyWidth,
	"cand":      1,
	"denied":    1,
	"ref":       1,
	"slot":      2,
	"sband_up":  5,
	"sband_dn":  5,
	"access":    3,
}

// LCW is a link control word: three independently coded data words.
type LCW struct {
	FT     int
	Type   string
	Code   int
	Fields Fields

	LCW1 string // 3 bits
	LCW2 string // 6 bits
	LCW3 string // 21 bits
}

// ParseLCW extracts the LCW(...) group of a line.
func ParseLCW(line string) (*LCW, error) {
	m := lcwRE.FindStringSubmatch(line)
	if m == nil {
		return nil, malformed(line, "no LCW")
	}
	ft, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, malformed(line, "bad LCW ft %q", m[1])
	}
	l := &LCW{FT: ft, Type: m[2]}
	typ, ok := lcwTypes[l.Type]
	if !ok {
		return nil, &UnknownFieldValueError{Field: "lcw type", Value: l.Type}
	}

	c := m[3]
	b := newFieldBuilder(line, lcwSchema)
	switch l.Type {
	case "maint":
		l.Code, err = maintLCW(b, c)
	case "acchl":
		l.Code, err = acchlLCW(b, c)
	case "hndof":
		l.Code, err = handoffLCW(b, c)
	case "rsrvd":
		r := reservedAltRE.FindStringSubmatch(c)
		if r == nil {
			return nil, malformed(line, "bad reserved code %q", c)
		}
		l.Code = int(b.atoi("code", r[1], 10))
		err = spare(b, c, 1)
	}
	if err != nil {
		var mi *MalformedInputError
		if errors.As(err, &mi) {
			mi.Line = line
		}
		return nil, err
	}
	if l.Fields, err = b.result(); err != nil {
		return nil, err
	}

	if l.LCW1, err = FormatUint(l.FT, 3); err != nil {
		return nil, malformed(line, "LCW ft %d", l.FT)
	}
	code, err := FormatUint(l.Code, 4)
	if err != nil {
		return nil, &UnknownFieldValueError{Field: "lcw code", Value: strconv.Itoa(l.Code)}
	}
	t, _ := FormatUint(typ, 2)
	l.LCW2 = t + code
	l.LCW3 = l.Fields.Bits()
	if len(l.LCW3) != LCW3BCH.DataLen {
		return nil, malformed(line, "lcw3 is %d bits, want %d", len(l.LCW3), LCW3BCH.DataLen)
	}
	return l, nil
}

// spare adds the n-th comma separated group of code as raw bits.
func spare(b *fieldBuilder, code string, n int) error {
	parts := strings.Split(code, ",")
	if len(parts) <= n {
		return malformed(code, "missing group %d", n)
	}
	b.add("spare", 0, parts[n])
	return nil
}

func reservedCode(b *fieldBuilder, c string) (int, error) {
	r := reservedRE.FindStringSubmatch(c)
	if r == nil {
		return 0, malformed(c, "bad reserved code")
	}
	return int(b.atoi("code", r[1], 10)), spare(b, c, 1)
}

func maintLCW(b *fieldBuilder, c string) (int, error) {
	switch {
	case strings.HasPrefix(c, "maint[1]"):
		m := maint1RE.FindStringSubmatch(c)
		if m == nil {
			return 0, malformed(c, "bad maint[1]")
		}
		b.add("spare", 0, m[4])
		b.decimal("power", 0, m[3])
		b.decimal("lqi", 0, m[2])
		return maintCodes["maint[1]"], nil
	case strings.HasPrefix(c, "maint[2]"):
		m := maint2RE.FindStringSubmatch(c)
		if m == nil {
			return 0, malformed(c, "bad maint[2]")
		}
		b.add("spare", 0, m[6])
		b.decimal("lqi", 0, m[2])
		b.decimal("power", 0, m[3])
		b.decimal("f_dtoa", 0, m[4])
		b.decimal("f_dfoa", 0, m[5])
		b.add("spare", 1, m[7])
		return maintCodes["maint[2]"], nil
	case strings.HasPrefix(c, "<silent>"):
		return maintCodes["<silent>"], spare(b, c, 1)
	case strings.HasPrefix(c, "sync"):
		m := syncRE.FindStringSubmatch(c)
		if m == nil {
			return 0, malformed(c, "bad sync")
		}
		b.add("spare", 0, m[4])
		b.decimal("status", 0, m[1])
		b.add("spare", 1, m[5])
		b.decimal("dtoa", 0, m[2])
		b.decimal("dfoa", 0, m[3])
		return maintCodes["sync"], nil
	case strings.HasPrefix(c, "switch"):
		m := switchRE.FindStringSubmatch(c)
		if m == nil {
			return 0, malformed(c, "bad switch")
		}
		b.add("spare", 0, m[3])
		b.decimal("dtoa", 0, m[1])
		b.decimal("dfoa", 0, m[2])
		return maintCodes["switch"], nil
	case strings.HasPrefix(c, "geoloc"):
		return maintCodes["geoloc"], spare(b, c, 1)
	case strings.HasPrefix(c, "rsrvd"):
		return reservedCode(b, c)
	}
	return 0, &UnknownFieldValueError{Field: "maint code", Value: c}
}

func acchlLCW(b *fieldBuilder, c string) (int, error) {
	switch {
	case strings.HasPrefix(c, "acchl"):
		m := acchlRE.FindStringSubmatch(c)
		if m == nil {
			return 0, malformed(c, "bad acchl")
		}
		b.add("spare", 0, m[5])
		b.uint("msg_type", 0, b.atoi("msg_type", m[1], 16))
		b.uint("bloc_num", 0, b.atoi("bloc_num", m[2], 16))
		b.uint("sapi_code", 0, b.atoi("sapi_code", m[3], 16))
		b.add("segm_list", 0, m[4])
		b.uint("spare5", 0, b.atoi("spare5", m[6], 16))
		return acchlCodes["acchl"], nil
	case strings.HasPrefix(c, "rsrvd"):
		return reservedCode(b, c)
	}
	return 0, &UnknownFieldValueError{Field: "acchl code", Value: c}
}

func handoffLCW(b *fieldBuilder, c string) (int, error) {
	switch {
	case strings.HasPrefix(c, "handoff_cand"):
		parts := strings.Split(c, ",")
		if len(parts) < 3 {
			return 0, malformed(c, "bad handoff_cand")
		}
		b.add("spare", 0, parts[1])
		b.add("spare", 1, parts[2])
		return hndofCodes["handoff_cand"], nil
	case strings.HasPrefix(c, "handoff_resp"):
		m := handoffRespRE.FindStringSubmatch(c)
		if m == nil {
			return 0, malformed(c, "bad handoff_resp")
		}
		var cand int64
		switch m[1] {
		case "P":
		case "S":
			cand = 1
		default:
			return 0, &UnknownFieldValueError{Field: "handoff candidate", Value: m[1]}
		}
		b.add("spare", 0, m[8])
		b.uint("cand", 0, cand)
		b.decimal("denied", 0, m[2])
		b.decimal("ref", 0, m[3])
		b.add("spare", 1, m[9])
		b.uint("slot", 0, b.atoi("slot", m[4], 10)-1)
		b.decimal("sband_up", 0, m[5])
		b.decimal("sband_dn", 0, m[6])
		b.uint("access", 0, b.atoi("access", m[7], 10)-1)
		return hndofCodes["handoff_resp"], nil
	case strings.HasPrefix(c, "<silent>"):
		return hndofCodes["<silent>"], spare(b, c, 1)
	case strings.HasPrefix(c, "rsrvd"):
		return reservedCode(b, c)
	}
	return 0, &UnknownFieldValueError{Field: "handoff code", Value: c}
}

// EncodeWords returns the BCH codewords of the three control words.
func (l *LCW) EncodeWords() (e1, e2, e3 string, err error) {
	if e1, err = LCW1BCH.EncodeBits(l.LCW1); err != nil {
		return "", "", "", err
	}
	if e2, err = LCW2BCH.EncodeBits(l.LCW2); err != nil {
		return "", "", "", err
	}
	if e3, err = LCW3BCH.EncodeBits(l.LCW3); err != nil {
		return "", "", "", err
	}
	return e1, e2, e3, nil
}

// Encode BCH codes the three words and interleaves them into 46 burst bits.
func (l *LCW) Encode() (string, error) {
	e1, e2, e3, err := l.EncodeWords()
	if err != nil {
		return "", err
	}
	return InterleaveLCW(e1, e2, e3)
}

// LCWRepair is the outcome of RepairLCW.
type LCWRepair struct {
	Errors int
	LCW1   string
	LCW2   string
	LCW3   string
}

// RepairLCW de-interleaves the first 46 received bits and repairs each word.
func RepairLCW(bits string) (LCWRepair, error) {
	w1, w2, w3, err := DeInterleaveLCW(bits)
	if err != nil {
		return LCWRepair{Errors: Uncorrectable}, err
	}
	var out LCWRepair
	for i, p := range []struct {
		code *BCHCode
		word string
		data *string
	}{
		{LCW1BCH, w1, &out.LCW1},
		{LCW2BCH, w2, &out.LCW2},
		{LCW3BCH, w3, &out.LCW3},
	} {
		r, err := p.code.Repair(p.word)
		if err != nil {
			return LCWRepair{Errors: Uncorrectable}, atBlock(err, i)
		}
		out.Errors += r.Errors
		*p.data = r.Data
	}
	return out, nil
}

// atBlock records the block index on an uncorrectable block error.
func atBlock(err error, block int) error {
	var ube *UncorrectableBlockError
	if errors.As(err, &ube) {
		ube.Block = block
	}
	return err
}
