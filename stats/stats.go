// Package stats accumulates burst error counts and reception rates.
package stats

import (
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/jancona/iridiumtx/iridium"
)

// DefaultGranularity is the number of 0.1 dB SNR buckets.
const DefaultGranularity = 1000

// Failure reasons.
const (
	ReasonMalformed     = "malformed"
	ReasonUncorrectable = "uncorrectable"
	ReasonNoUniqueWord  = "no_unique_word"
	ReasonUnsupported   = "unsupported"
	ReasonOther         = "other"
)

// Reason classifies a per-burst error.
func Reason(err error) string {
	switch {
	case errors.Is(err, iridium.ErrMalformedInput):
		return ReasonMalformed
	case errors.Is(err, iridium.ErrUncorrectableBlock):
		return ReasonUncorrectable
	case errors.Is(err, iridium.ErrNoUniqueWord):
		return ReasonNoUniqueWord
	case errors.Is(err, iridium.ErrUnsupported):
		return ReasonUnsupported
	}
	return ReasonOther
}

// Aggregator collects burst reports. It is safe for concurrent use.
type Aggregator struct {
	mu          sync.Mutex
	granularity int
	prrSum      []float64
	frames      []int

	bursts    int
	framed    int
	bitErrors int
	bits      int
	byKind    map[iridium.Kind]int
	failures  map[string]int
}

func NewAggregator(granularity int) *Aggregator {
	if granularity <= 0 {
		granularity = DefaultGranularity
	}
	return &Aggregator{
		granularity: granularity,
		prrSum:      make([]float64, granularity),
		frames:      make([]int, granularity),
		byKind:      map[iridium.Kind]int{},
		failures:    map[string]int{},
	}
}

// bucket maps an SNR in dB to the nearest 0.1 dB bucket, clamped to the table.
func (a *Aggregator) bucket(snr float64) int {
	b := int(math.Round(snr * 10))
	return max(0, min(b, a.granularity-1))
}

// Add accounts one repaired burst.
func (a *Aggregator) Add(r *iridium.BurstReport) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.bursts++
	a.byKind[r.Kind]++
	a.bitErrors += r.BitErrors
	a.bits += r.Length
	if r.Framed {
		a.framed++
	}
	if r.HasSNR {
		b := a.bucket(r.SNR)
		a.prrSum[b] += r.PRR()
		a.frames[b]++
	}
}

// AddFailure accounts a burst that could not be repaired.
func (a *Aggregator) AddFailure(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures[Reason(err)]++
}

// Bucket is the mean reception rate of bursts within one SNR bucket.
type Bucket struct {
	SNR    float64 `yaml:"snr_db"`
	Frames int     `yaml:"frames"`
	PRR    float64 `yaml:"prr"`
}

// Summary is a point in time copy of the aggregated values.
type Summary struct {
	Bursts    int                  `yaml:"bursts"`
	Framed    int                  `yaml:"framed"`
	BitErrors int                  `yaml:"bit_errors"`
	Bits      int                  `yaml:"bits"`
	BER       float64              `yaml:"ber"`
	ByKind    map[iridium.Kind]int `yaml:"by_kind,omitempty"`
	Failures  map[string]int       `yaml:"failures,omitempty"`
	Buckets   []Bucket             `yaml:"buckets,omitempty"`
}

func (a *Aggregator) Summary() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := Summary{
		Bursts:    a.bursts,
		Framed:    a.framed,
		BitErrors: a.bitErrors,
		Bits:      a.bits,
		ByKind:    make(map[iridium.Kind]int, len(a.byKind)),
		Failures:  make(map[string]int, len(a.failures)),
	}
	if a.bits > 0 {
		s.BER = float64(a.bitErrors) / float64(a.bits)
	}
	for k, v := range a.byKind {
		s.ByKind[k] = v
	}
	for k, v := range a.failures {
		s.Failures[k] = v
	}
	for i, n := range a.frames {
		if n == 0 {
			continue
		}
		s.Buckets = append(s.Buckets, Bucket{
			SNR:    float64(i) / 10,
			Frames: n,
			PRR:    a.prrSum[i] / float64(n),
		})
	}
	return s
}

// Channels counts bursts per 10 kHz channel.
type Channels struct {
	mu     sync.Mutex
	counts map[int]int
}

func NewChannels() *Channels {
	return &Channels{counts: map[int]int{}}
}

// Add counts a burst at freq Hz.
func (c *Channels) Add(freq int) {
	ch := int(math.RoundToEven(float64(freq)/10000)) * 10000
	c.mu.Lock()
	c.counts[ch]++
	c.mu.Unlock()
}

// Sorted returns the channel frequencies in ascending order with their counts.
func (c *Channels) Sorted() ([]int, []int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	freqs := make([]int, 0, len(c.counts))
	for f := range c.counts {
		freqs = append(freqs, f)
	}
	sort.Ints(freqs)
	counts := make([]int, len(freqs))
	for i, f := range freqs {
		counts[i] = c.counts[f]
	}
	return freqs, counts
}
