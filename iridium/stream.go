package iridium

import (
	"math"
	"strconv"
	"time"
)

// Transform runs a function over every value received on a channel in its own
// goroutine and delivers the results on Source. Source is closed once the
// input channel is closed and drained.
type Transform[I any, O any] struct {
	sink      <-chan I
	source    chan O
	transform func(I) []O
}

func NewTransform[I any, O any](sink <-chan I, transform func(I) []O, sourceSize int) *Transform[I, O] {
	ret := &Transform[I, O]{
		sink:      sink,
		source:    make(chan O, sourceSize),
		transform: transform,
	}
	go ret.handle()
	return ret
}

func (t *Transform[I, O]) Source() <-chan O {
	return t.source
}

func (t *Transform[I, O]) handle() {
	for v := range t.sink {
		for _, o := range t.transform(v) {
			t.source <- o
		}
	}
	close(t.source)
}

// Deduper drops repeated captures of one burst. Messages whose timestamps are
// within the window of the previous message are merged with it, keeping the one
// with the longer bitstream.
type Deduper struct {
	*Transform[*Message, *Message]
	window  float64
	pending *Message
	lastTS  float64
}

func NewDeduper(sink <-chan *Message, window time.Duration) *Deduper {
	ret := &Deduper{window: window.Seconds()}
	// a nil sentinel at close flushes the pending message
	ret.Transform = NewTransform(withCloseSentinel(sink), ret.push, 0)
	return ret
}

func (d *Deduper) push(m *Message) []*Message {
	if m == nil {
		if d.pending == nil {
			return nil
		}
		out := d.pending
		d.pending = nil
		return []*Message{out}
	}
	if d.pending == nil {
		d.pending, d.lastTS = m, m.Phy.Timestamp
		return nil
	}
	ts := m.Phy.Timestamp
	near := ts-d.lastTS < d.window
	d.lastTS = ts
	if near {
		if len(m.Bitstream()) > len(d.pending.Bitstream()) {
			d.pending = m
		}
		return nil
	}
	out := d.pending
	d.pending = m
	return []*Message{out}
}

func withCloseSentinel(in <-chan *Message) <-chan *Message {
	out := make(chan *Message)
	go func() {
		for m := range in {
			out <- m
		}
		out <- nil
		close(out)
	}()
	return out
}

// OffsetNormalizer rewrites burst offsets, given in milliseconds, to seconds
// relative to the first message seen.
type OffsetNormalizer struct {
	first float64
	seen  bool
}

// Apply rewrites m in place and returns it.
func (n *OffsetNormalizer) Apply(m *Message) *Message {
	off, err := strconv.ParseFloat(m.Phy.Offset, 64)
	if err != nil {
		return m
	}
	if !n.seen {
		n.first, n.seen = off, true
	}
	rel := math.Round((off-n.first)/1000*1e6) / 1e6
	m.Phy.Offset = strconv.FormatFloat(rel, 'f', -1, 64)
	return m
}
