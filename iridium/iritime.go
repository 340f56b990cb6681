package iridium

import (
	"math"
	"time"
)

const (
	iridiumEpoch = 1399818235 // 2014-05-11T14:23:55Z
	leap2015     = 1435708799 // 2015-06-30T23:59:59Z
	leap2016     = 1483228799 // 2016-12-31T23:59:59Z
	frameLength  = 0.09
)

const iridiumTimeLayout = "2006-01-02T15:04:05.999999Z"

// IridiumTime converts a UTC timestamp such as 2022-01-04T23:00:48.89Z to the
// L-band frame counter, in 90 ms frames since the Iridium epoch.
func IridiumTime(s string) (uint32, error) {
	t, err := time.ParseInLocation(iridiumTimeLayout, s, time.UTC)
	if err != nil {
		return 0, malformed(s, "bad time: %v", err)
	}
	return IridiumTimeOf(t)
}

// IridiumTimeOf is IridiumTime for a parsed time.
func IridiumTimeOf(t time.Time) (uint32, error) {
	secs := float64(t.UnixMicro()) / 1e6
	if secs > leap2015 {
		secs++
	}
	if secs > leap2016 {
		secs++
	}
	frames := math.RoundToEven((secs - iridiumEpoch) * 100 / 9)
	if frames < 0 || frames > math.MaxUint32 {
		return 0, malformed(t.String(), "time outside the frame counter range")
	}
	return uint32(frames), nil
}

// TimeOfIridium is the approximate inverse of IridiumTimeOf.
func TimeOfIridium(frames uint32) time.Time {
	secs := iridiumEpoch + float64(frames)*frameLength
	if secs > leap2016+2 {
		secs--
	}
	if secs > leap2015+1 {
		secs--
	}
	return time.UnixMicro(int64(math.Round(secs * 1e6))).UTC()
}
