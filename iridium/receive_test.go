package iridium

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// received turns a transmitted RAW line into what a receiver reports for it.
func received(t *testing.T, line string, mutate func(string) string) *RawBurst {
	t.Helper()
	f := strings.Fields(line)
	require.GreaterOrEqual(t, len(f), 10)
	bits := FlipBits(f[9])
	if mutate != nil {
		bits = mutate(bits)
	}
	f[9] = bits
	raw, err := ParseRawLine(strings.Join(f, " "))
	require.NoError(t, err)
	return raw
}

func TestParseRawLine(t *testing.T) {
	line := "RAW: i-1443338945.6543-t1 000012345.6789 1626000000 N:32.14-80.12 I:00000000000 100% 0.13551 179 " +
		"<001100000011000011110011> 0101 [1]"
	raw, err := ParseRawLine(line)
	require.NoError(t, err)
	assert.Equal(t, "i-1443338945.6543-t1", raw.ID)
	assert.Equal(t, 1626000000, raw.Frequency)
	assert.True(t, raw.HasSNR)
	assert.InDelta(t, 32.14, raw.SNR, 1e-9)
	assert.InDelta(t, -80.12, raw.Noise, 1e-9)
	assert.Equal(t, 100, raw.Confidence)
	assert.Equal(t, 179, raw.Symbols)
	assert.Equal(t, UWDownlink+"01011", raw.Bits)

	_, err = ParseRawLine("IRA: not raw")
	assert.ErrorIs(t, err, ErrMalformedInput)

	amp := "RAW: p-1-e000 0000.1 1626000000 A:0f I:00000000000 90% 0.1 12 0011"
	raw, err = ParseRawLine(amp)
	require.NoError(t, err)
	assert.False(t, raw.HasSNR)
	assert.Equal(t, "0f", raw.Amplitude)
}

func TestMatchUniqueWord(t *testing.T) {
	opts := DefaultRepairOptions()
	tests := []struct {
		name    string
		bits    string
		dir     Direction
		errs    int
		wantErr bool
	}{
		{"downlink", UWDownlink + "0101", Downlink, 0, false},
		{"uplink", UWUplink, Uplink, 0, false},
		{"downlink last bit", flip(UWDownlink, 23) + "00", Downlink, 1, false},
		{"uplink last bit", flip(UWUplink, 22), Uplink, 1, false},
		{"noise", strings.Repeat("1", 40), DirectionUnknown, 0, true},
		{"short", "0011", DirectionUnknown, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, errs, err := MatchUniqueWord(tt.bits, opts)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoUniqueWord)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dir, dir)
			assert.Equal(t, tt.errs, errs)
		})
	}
}

func TestMatchUniqueWordThreshold(t *testing.T) {
	bits := flip(UWDownlink, 23)
	_, _, err := MatchUniqueWord(bits, RepairOptions{Mode: Accumulate, MaxUWDistance: 1})
	assert.ErrorIs(t, err, ErrNoUniqueWord)
}

func TestRepairBurstRingAlert(t *testing.T) {
	in := readLines(t, "testdata/frames.txt")[0]
	out := readLines(t, "testdata/frames.raw")[0]
	msg, err := ParseLine(in)
	require.NoError(t, err)

	rep, err := RepairBurst(received(t, out, nil), KindRingAlert, DefaultRepairOptions())
	require.NoError(t, err)
	assert.True(t, rep.Framed)
	assert.Equal(t, Downlink, rep.Direction)
	assert.Equal(t, 0, rep.BitErrors)
	assert.Equal(t, []int{0, 0, 0, 0, 0}, rep.BlockErrors)
	assert.Equal(t, msg.Raw, rep.Data)
	assert.Empty(t, rep.Extra)
	assert.Equal(t, 184, rep.Length)
	assert.InDelta(t, 25.65, rep.SNR, 1e-9)
	assert.Equal(t, 1.0, rep.PRR())
}

func TestRepairBurstSingleError(t *testing.T) {
	out := readLines(t, "testdata/frames.raw")[0]
	for _, pos := range []int{24, 60, 119, 150, 183} {
		raw := received(t, out, func(s string) string { return flip(s, pos) })
		rep, err := RepairBurst(raw, KindRingAlert, DefaultRepairOptions())
		require.NoError(t, err, "bit %d", pos)
		assert.Equal(t, 1, rep.BitErrors, "bit %d", pos)
		assert.Equal(t, 0, rep.UWErrors, "bit %d", pos)
		assert.Less(t, rep.PRR(), 1.0)
	}
}

func TestRepairBurstUniqueWordError(t *testing.T) {
	out := readLines(t, "testdata/frames.raw")[0]
	raw := received(t, out, func(s string) string { return flip(s, 23) })
	rep, err := RepairBurst(raw, KindRingAlert, DefaultRepairOptions())
	require.NoError(t, err)
	assert.Equal(t, Downlink, rep.Direction)
	assert.Equal(t, 1, rep.UWErrors)
	assert.Equal(t, 1, rep.BitErrors)
}

func TestRepairBurstBroadcast(t *testing.T) {
	ins := readLines(t, "testdata/frames.txt")
	outs := readLines(t, "testdata/frames.raw")
	for i := 2; i <= 4; i++ {
		msg, err := ParseLine(ins[i])
		require.NoError(t, err)
		rep, err := RepairBurst(received(t, outs[i], nil), KindBroadcast, DefaultRepairOptions())
		require.NoError(t, err, "line %d", i+1)
		assert.True(t, rep.Framed, "line %d", i+1)
		assert.Equal(t, 0, rep.BitErrors, "line %d", i+1)
		assert.True(t, strings.HasPrefix(rep.Data, msg.Raw), "line %d: %s does not start with %s", i+1, rep.Data, msg.Raw)
	}
}

func TestCalculateBER(t *testing.T) {
	out := readLines(t, "testdata/frames.raw")[2]
	f := strings.Fields(out)
	f[9] = FlipBits(f[9])
	rep, err := CalculateBER(strings.Join(f, " "))
	require.NoError(t, err)
	assert.Equal(t, KindBroadcast, rep.Kind)
	assert.True(t, rep.Framed)
}

func TestRepairBurstSync(t *testing.T) {
	ins := readLines(t, "testdata/frames.txt")
	outs := readLines(t, "testdata/frames.raw")
	for i := 5; i < len(ins); i++ {
		msg, err := ParseLine(ins[i])
		require.NoError(t, err)
		rep, err := RepairBurst(received(t, outs[i], nil), KindSync, DefaultRepairOptions())
		require.NoError(t, err, "line %d", i+1)
		assert.Equal(t, msg.Direction, rep.Direction, "line %d", i+1)
		assert.Equal(t, msg.Raw, rep.Data, "line %d", i+1)
		assert.Equal(t, FlipBits(msg.Extra), rep.Extra, "line %d", i+1)
	}
}

func TestRepairBurstUnsupported(t *testing.T) {
	out := readLines(t, "testdata/frames.raw")[0]
	_, err := RepairBurst(received(t, out, nil), Kind("IAQ"), DefaultRepairOptions())
	assert.ErrorIs(t, err, ErrUnsupported)
}
