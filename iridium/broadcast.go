package iridium

import (
	"regexp"
	"strings"
)

var (
	broadcastRE = regexp.MustCompile(`IBC: .* bc:(\d+) sat:(\d{3}) cell:(\d{2}) (\d) slot:(\d) sv_blkn:(\d) ` +
		`aq_cl:(\d{16}) aq_sb:(\d{2}) aq_ch:(\d+) (\d{2})(.*)`)
	broadcastOtherRE = regexp.MustCompile(`IBC: .* bc:(\d+) (.*)`)

	bcTimeRE      = regexp.MustCompile(`^(\d{4}) time:(\S+)`)
	bcTMSIExpRE   = regexp.MustCompile(`^(\d{4}) tmsi_expiry:(\S+)`)
	bcUplinkPwrRE = regexp.MustCompile(`^(\d{30}) max_uplink_pwr:(\d+)`)

	// Either an unknown assignment [type bits] or a channel assignment.
	assignmentRE = regexp.MustCompile(`\[(\d+) (\d+)\]|` +
		`\[(\d) Rid:(\d+) ts:(\d+) ul_sb:(\d+) dl_sb:(\d+) access:(\d+) dtoa:(\S+) dfoa:(\d+) (\d{2})\]`)
)

// Broadcast information set types.
const (
	infoUplinkPower = 0
	infoTime        = 1
	infoTMSIExpiry  = 2
)

var broadcastSchema = schema{
	"satellite_number":    7,
	"beam_id":             6,
	"unknown01":           1,
	"slot":                1,
	"sv_blocking":         1,
	"acquisition_classes": 16,
	"acquisition_subband": 5,
	"acquisition_channel": 3,
	"unknown02":           2,

	"type":           6,
	"unknown03":      anyWidth,
	"time":           32,
	"tmsi_expiry":    32,
	"max_uplink_pwr": 6,

	"assignment_type_unknown": 3,
	"assignment_unknown":      anyWidth,
	"assignment_type":         3,
	"assignment_random_id":    8,
	"assignment_timeslot":     2,
	"assignment_ul_sb":        5,
	"assignment_dl_sb":        5,
	"assignment_access":       3,
	"assignment_dtoa":         8,
	"assignment_dfoa":         6,
	"assignment_unknown4":     2,
}

// ParseBroadcast parses an IBC line and encodes it for transmission.
func ParseBroadcast(line string) (*Message, error) {
	phy, dir, err := parsePhy(line)
	if err != nil {
		return nil, err
	}
	b := newFieldBuilder(line, broadcastSchema)

	var info string
	if m := broadcastRE.FindStringSubmatch(line); m != nil {
		b.decimal("satellite_number", 0, m[2])
		b.decimal("beam_id", 0, m[3])
		b.decimal("unknown01", 0, m[4])
		b.decimal("slot", 0, m[5])
		b.decimal("sv_blocking", 0, m[6])
		b.add("acquisition_classes", 0, m[7])
		b.decimal("acquisition_subband", 0, m[8])
		b.decimal("acquisition_channel", 0, m[9])
		b.add("unknown02", 0, m[10])
		info = m[11]
	} else if m := broadcastOtherRE.FindStringSubmatch(line); m != nil {
		info = m[2]
	} else {
		return nil, malformed(line, "not a broadcast")
	}
	info = strings.Trim(info, " ")

	if err := addInformationSet(b, info); err != nil {
		return nil, err
	}
	addAssignments(b, info)

	fields, err := b.result()
	if err != nil {
		return nil, err
	}
	msg := &Message{
		Kind:      KindBroadcast,
		Direction: dir,
		Phy:       phy,
		Fields:    fields,
		Raw:       fields.Bits(),
		Line:      line,
	}
	if msg.Encoded, err = encodeBlocks(msg.Raw); err != nil {
		return nil, err
	}
	msg.Interleaved = Scramble2(msg.Encoded, 0)
	msg.bitstream = headerBits + msg.Interleaved
	return msg, nil
}

func addInformationSet(b *fieldBuilder, info string) error {
	if m := bcTimeRE.FindStringSubmatch(info); m != nil {
		t, err := IridiumTime(m[2])
		if err != nil {
			return err
		}
		b.uint("type", 0, infoTime)
		b.add("unknown03", 0, m[1])
		b.uint("time", 0, int64(t))
		return nil
	}
	if m := bcTMSIExpRE.FindStringSubmatch(info); m != nil {
		t, err := IridiumTime(m[2])
		if err != nil {
			return err
		}
		b.uint("type", 0, infoTMSIExpiry)
		b.add("unknown03", 0, m[1])
		b.uint("tmsi_expiry", 0, int64(t))
		return nil
	}
	if m := bcUplinkPwrRE.FindStringSubmatch(info); m != nil {
		b.uint("type", 0, infoUplinkPower)
		b.add("unknown03", 0, m[1])
		b.decimal("max_uplink_pwr", 0, m[2])
	}
	return nil
}

// addAssignments adds the unknown-format assignments followed by the
// classic ones, each group in input order.
func addAssignments(b *fieldBuilder, info string) {
	var classic [][]string
	unknown := 0
	for _, m := range assignmentRE.FindAllStringSubmatch(info, -1) {
		if m[1] == "" {
			classic = append(classic, m)
			continue
		}
		b.decimal("assignment_type_unknown", unknown, m[1])
		b.add("assignment_unknown", unknown, m[2])
		unknown++
	}
	for i, m := range classic {
		b.decimal("assignment_type", i, m[3])
		b.decimal("assignment_random_id", i, m[4])
		b.uint("assignment_timeslot", i, b.atoi("assignment_timeslot", m[5], 10)-1)
		b.decimal("assignment_ul_sb", i, m[6])
		b.decimal("assignment_dl_sb", i, m[7])
		b.uint("assignment_access", i, b.atoi("assignment_access", m[8], 10)-1)
		b.signed("assignment_dtoa", i, b.atoi("assignment_dtoa", m[9], 10))
		b.decimal("assignment_dfoa", i, m[10])
		b.add("assignment_unknown4", i, m[11])
	}
}
