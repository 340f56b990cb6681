package iridium

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestTransform(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		want []int
	}{
		{"doubled", []int{1, 2, 3}, []int{1, 1, 2, 2, 3, 3}},
		{"dropped", []int{0, 4, 0}, []int{4, 4}},
		{"empty", []int{}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := make(chan int)
			tr := NewTransform(sink, func(i int) []int {
				if i == 0 {
					return nil
				}
				return []int{i, i}
			}, 1)
			go func() {
				for _, i := range tt.in {
					sink <- i
				}
				close(sink)
			}()
			got := []int{}
			for o := range tr.Source() {
				got = append(got, o)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Transform got %v, want %v", got, tt.want)
			}
		})
	}
}

func testMessage(ts float64, bits int) *Message {
	return &Message{
		Phy:       Phy{Timestamp: ts},
		bitstream: strings.Repeat("0", bits),
	}
}

func TestDeduper(t *testing.T) {
	tests := []struct {
		name string
		in   []*Message
		want []int
	}{
		{"distinct", []*Message{testMessage(1, 10), testMessage(2, 20), testMessage(3, 30)}, []int{10, 20, 30}},
		{"keeps longer", []*Message{testMessage(1, 10), testMessage(1.001, 40), testMessage(1.002, 20)}, []int{40}},
		// each capture is close to the one before it
		{"chained", []*Message{testMessage(1, 10), testMessage(1.004, 10), testMessage(1.008, 12), testMessage(2, 5)}, []int{12, 5}},
		{"single", []*Message{testMessage(1, 7)}, []int{7}},
		{"empty", nil, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := make(chan *Message)
			d := NewDeduper(sink, 5*time.Millisecond)
			go func() {
				for _, m := range tt.in {
					sink <- m
				}
				close(sink)
			}()
			got := []int{}
			for m := range d.Source() {
				got = append(got, len(m.Bitstream()))
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Deduper got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOffsetNormalizer(t *testing.T) {
	var n OffsetNormalizer
	offsets := []string{"000000120.1234", "000000121.1234", "000001120.1234", "bogus"}
	want := []string{"0", "0.001", "1", "bogus"}
	for i, off := range offsets {
		m := &Message{Phy: Phy{Offset: off}}
		if got := n.Apply(m).Phy.Offset; got != want[i] {
			t.Errorf("Apply(%s) = %s, want %s", off, got, want[i])
		}
	}
}
