package iridium

import (
	"fmt"
	"strconv"
	"strings"
)

// Field is one named bit group of a frame. Index numbers repeated groups
// such as pages and channel assignments and is zero otherwise.
type Field struct {
	Name  string
	Index int
	Bits  string
}

func (f Field) String() string {
	if f.Index > 0 {
		return fmt.Sprintf("%s_%d=%s", f.Name, f.Index, f.Bits)
	}
	return f.Name + "=" + f.Bits
}

// Fields is an ordered list of fields in transmission order.
type Fields []Field

// Bits concatenates all field bits.
func (fs Fields) Bits() string {
	var sb strings.Builder
	for _, f := range fs {
		sb.WriteString(f.Bits)
	}
	return sb.String()
}

// Get returns the first field with the given name and index.
func (fs Fields) Get(name string, index int) (Field, bool) {
	for _, f := range fs {
		if f.Name == name && f.Index == index {
			return f, true
		}
	}
	return Field{}, false
}

// anyWidth marks schema entries whose width comes from the input.
const anyWidth = -1

// schema declares the width of every field a frame variant may carry.
type schema map[string]int

// fieldBuilder accumulates fields against a schema. The first error sticks
// and later additions are ignored.
type fieldBuilder struct {
	line   string
	schema schema
	fields Fields
	err    error
}

func newFieldBuilder(line string, s schema) *fieldBuilder {
	return &fieldBuilder{line: line, schema: s}
}

func (b *fieldBuilder) add(name string, index int, bits string) {
	if b.err != nil {
		return
	}
	width, ok := b.schema[name]
	if !ok {
		b.err = malformed(b.line, "undeclared field %s", name)
		return
	}
	if err := ValidateBits(bits); err != nil {
		b.err = malformed(b.line, "field %s: %v", name, err)
		return
	}
	if width != anyWidth && len(bits) != width {
		b.err = malformed(b.line, "field %s is %d bits, want %d", name, len(bits), width)
		return
	}
	b.fields = append(b.fields, Field{Name: name, Index: index, Bits: bits})
}

// uint adds v formatted to the declared width of name.
func (b *fieldBuilder) uint(name string, index int, v int64) {
	if b.err != nil {
		return
	}
	s, err := FormatUint(v, b.schema[name])
	if err != nil {
		b.err = malformed(b.line, "field %s: %v", name, err)
		return
	}
	b.add(name, index, s)
}

// signed adds v in biased two's complement form.
func (b *fieldBuilder) signed(name string, index int, v int64) {
	if b.err != nil {
		return
	}
	s, err := FormatSigned(v, b.schema[name])
	if err != nil {
		b.err = malformed(b.line, "field %s: %v", name, err)
		return
	}
	b.add(name, index, s)
}

// decimal parses a decimal group before adding it.
func (b *fieldBuilder) decimal(name string, index int, s string) {
	b.uint(name, index, b.atoi(name, s, 10))
}

func (b *fieldBuilder) atoi(name, s string, base int) int64 {
	if b.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		b.err = malformed(b.line, "field %s: bad number %q", name, s)
		return 0
	}
	return v
}

func (b *fieldBuilder) result() (Fields, error) {
	return b.fields, b.err
}
