package iridium

import (
	"regexp"
	"strings"
)

// FillPattern is the 64-bit idle pattern appended after the coded pages.
const FillPattern = "1010001001110011101111110110110101010100010001011100001011100110"

var (
	ringAlertRE = regexp.MustCompile(`IRA: .* sat:(\d+) beam:(\d+) xyz=\(\+?(-?\d+),\+?(-?\d+),\+?(-?\d+)\) ` +
		`pos=\(\+?(-?\d+\.\d+)/.?(\d+\.\d+)\) alt=(.?\d+) RAI:(\d+) \?(\d)(\d) bc_sb:(\d+) (.*)`)
	pageRE      = regexp.MustCompile(`tmsi:(\w{8}) msc_id:(\d+)`)
	pageZerosRE = regexp.MustCompile(`tmsi:(\w{8}) 0:(\d+) msc_id:(\d+) 0:(\d+)`)
	fillRE      = regexp.MustCompile(`FILL=(\d+)`)
	extraRE     = regexp.MustCompile(`\+(\d+)`)
	descrRE     = regexp.MustCompile(`descr_extra:(\d+)`)
)

var ringAlertSchema = schema{
	"satellite_number": 7,
	"beam_id":          6,
	"pos_x":            12,
	"pos_y":            12,
	"pos_z":            12,
	"RAI":              7,
	"slot":             1,
	"epi":              1,
	"bc_sb":            5,
	"page_tmsi":        32,
	"page_zero1":       2,
	"page_msc_id":      5,
	"page_zero2":       3,
	"end_pages":        42,
	"extra_bits":       anyWidth,
}

const endPages = 42

// ParseRingAlert parses an IRA line and encodes it for transmission. Ring
// alerts are always downlink.
func ParseRingAlert(line string) (*Message, error) {
	phy, _, err := parsePhy(line)
	if err != nil {
		return nil, err
	}
	m := ringAlertRE.FindStringSubmatch(line)
	if m == nil {
		return nil, malformed(line, "not a ring alert")
	}

	b := newFieldBuilder(line, ringAlertSchema)
	b.decimal("satellite_number", 0, m[1])
	b.decimal("beam_id", 0, m[2])
	b.signed("pos_x", 0, b.atoi("pos_x", m[3], 10))
	b.signed("pos_y", 0, b.atoi("pos_y", m[4], 10))
	b.signed("pos_z", 0, b.atoi("pos_z", m[5], 10))
	b.decimal("RAI", 0, m[9])
	b.decimal("slot", 0, m[10])
	b.decimal("epi", 0, m[11])
	b.decimal("bc_sb", 0, m[12])

	info := m[13]
	for i, p := range pageRE.FindAllStringSubmatch(info, -1) {
		b.uint("page_tmsi", i, b.atoi("page_tmsi", p[1], 16))
		b.uint("page_zero1", i, 0)
		b.decimal("page_msc_id", i, p[2])
		b.uint("page_zero2", i, 0)
	}
	for i, p := range pageZerosRE.FindAllStringSubmatch(info, -1) {
		b.uint("page_tmsi", i, b.atoi("page_tmsi", p[1], 16))
		b.decimal("page_zero1", i, p[2])
		b.decimal("page_msc_id", i, p[3])
		b.decimal("page_zero2", i, p[4])
	}
	b.add("end_pages", 0, strings.Repeat("1", endPages))
	if x := extraRE.FindStringSubmatch(info); x != nil {
		b.add("extra_bits", 0, x[1])
	}

	var fill int64
	if f := fillRE.FindStringSubmatch(info); f != nil {
		fill = b.atoi("fill", f[1], 10)
	}
	var extra string
	if d := descrRE.FindStringSubmatch(info); d != nil {
		extra = d[1]
	}

	fields, err := b.result()
	if err != nil {
		return nil, err
	}
	msg := &Message{
		Kind:      KindRingAlert,
		Direction: Downlink,
		Phy:       phy,
		Fields:    fields,
		Raw:       fields.Bits(),
		Extra:     extra,
		Line:      line,
	}
	coded, err := encodeBlocks(msg.Raw)
	if err != nil {
		return nil, err
	}
	msg.Encoded = coded + strings.Repeat(FillPattern, int(fill))
	msg.Interleaved = Scramble3(msg.Encoded, true) + Scramble2(msg.Encoded, window3)
	msg.bitstream = msg.Interleaved + msg.Extra
	return msg, nil
}
