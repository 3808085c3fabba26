package domain

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint is the evaluation key of a computed result.
type Fingerprint uint64

func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// KeyBuilder hashes the inputs of one evaluation into a Fingerprint.
// Each write is length- or tag-delimited so distinct sequences never collide
// by concatenation.
type KeyBuilder struct {
	d   *xxhash.Digest
	buf [8]byte
}

// NewKeyBuilder starts a key in the given namespace, e.g. "node" or "composite".
func NewKeyBuilder(namespace string) *KeyBuilder {
	b := &KeyBuilder{d: xxhash.New()}
	b.String(namespace)
	return b
}

// Uint64 writes v.
func (b *KeyBuilder) Uint64(v uint64) *KeyBuilder {
	binary.LittleEndian.PutUint64(b.buf[:], v)
	_, _ = b.d.Write(b.buf[:])
	return b
}

// Int64 writes v.
func (b *KeyBuilder) Int64(v int64) *KeyBuilder {
	return b.Uint64(uint64(v))
}

// Float64 writes the bit pattern of v.
func (b *KeyBuilder) Float64(v float64) *KeyBuilder {
	return b.Uint64(math.Float64bits(v))
}

// String writes s with its length.
func (b *KeyBuilder) String(s string) *KeyBuilder {
	b.Uint64(uint64(len(s)))
	_, _ = b.d.WriteString(s)
	return b
}

// Tag writes a single discriminator byte.
func (b *KeyBuilder) Tag(t byte) *KeyBuilder {
	_, _ = b.d.Write([]byte{t})
	return b
}

// Time writes t.
func (b *KeyBuilder) Time(t Time) *KeyBuilder {
	return b.Int64(int64(t))
}

// Fingerprint writes another fingerprint.
func (b *KeyBuilder) Fingerprint(f Fingerprint) *KeyBuilder {
	return b.Uint64(uint64(f))
}

// Value writes a parameter value, tagged by kind.
func (b *KeyBuilder) Value(v Value) *KeyBuilder {
	b.Tag(byte(v.Kind))
	switch v.Kind {
	case ValueFloat:
		b.Float64(v.Float)
	case ValueInt:
		b.Int64(v.Int)
	case ValueBool:
		if v.Bool {
			b.Tag(1)
		} else {
			b.Tag(0)
		}
	case ValueString:
		b.String(v.Str)
	case ValueColor:
		for _, c := range v.Color {
			b.Uint64(uint64(math.Float32bits(c)))
		}
	case ValueVec2:
		b.Float64(v.Vec2.X).Float64(v.Vec2.Y)
	}
	return b
}

// Format writes an output format.
func (b *KeyBuilder) Format(f Format) *KeyBuilder {
	return b.Int64(int64(f.Width)).Int64(int64(f.Height)).Int64(int64(f.SampleRate)).Int64(int64(f.Channels))
}

// Placement writes a composite placement.
func (b *KeyBuilder) Placement(p Placement) *KeyBuilder {
	b.Tag(byte(p.Blend))
	b.Uint64(uint64(math.Float32bits(p.Opacity)))
	b.Int64(int64(p.OffsetX)).Int64(int64(p.OffsetY))
	return b.Uint64(uint64(math.Float32bits(p.Gain)))
}

// Sum returns the fingerprint.
func (b *KeyBuilder) Sum() Fingerprint {
	return Fingerprint(b.d.Sum64())
}
