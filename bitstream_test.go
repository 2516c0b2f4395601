// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBitWriter builds a bit-exact buffer MSB-first, mirroring
// BitReader's own bit addressing, so tests can assert primitives without
// hand-deriving byte patterns.
type testBitWriter struct {
	bits []bool
}

func (w *testBitWriter) writeBits(value uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		w.bits = append(w.bits, (value>>uint(i))&1 != 0)
	}
}

func (w *testBitWriter) writeBB(v uint8) { w.writeBits(uint64(v), 2) }

func (w *testBitWriter) writeBit(v bool) {
	if v {
		w.writeBits(1, 1)
	} else {
		w.writeBits(0, 1)
	}
}

// writeBS encodes a bit-short using the same 2-bit tag scheme ReadBS
// decodes: 0 and 256 get dedicated tags, everything else goes through the
// raw-16 tag.
func (w *testBitWriter) writeBS(v uint16) {
	switch v {
	case 0:
		w.writeBB(0)
	case 256:
		w.writeBB(1)
	default:
		w.writeBB(3)
		w.writeBits(uint64(v), 16)
	}
}

// writeBL mirrors writeBS for the 32-bit bit-long encoding.
func (w *testBitWriter) writeBL(v uint32) {
	switch v {
	case 0:
		w.writeBB(0)
	case 256:
		w.writeBB(1)
	default:
		w.writeBB(3)
		w.writeBits(uint64(v), 32)
	}
}

func (w *testBitWriter) writeMC(v uint32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.writeBits(uint64(b), 8)
		if v == 0 {
			break
		}
	}
}

// writeTVAnsi writes a TV primitive in the pre-R2007 Windows-1252 shape:
// a BS length followed by that many single-byte code units.
func (w *testBitWriter) writeTVAnsi(s string) {
	w.writeBS(uint16(len(s)))
	for i := 0; i < len(s); i++ {
		w.writeBits(uint64(s[i]), 8)
	}
}

func (w *testBitWriter) writeSentinel(s [16]byte) {
	for _, b := range s {
		w.writeBits(uint64(b), 8)
	}
}

// writeBD writes a bit-double using the full-precision raw-double tag, so
// the value round-trips exactly.
func (w *testBitWriter) writeBD(v float64) {
	w.writeBB(0)
	w.writeBits(math.Float64bits(v), 64)
}

func (w *testBitWriter) writeRawDouble(v float64) {
	w.writeBits(math.Float64bits(v), 64)
}

func (w *testBitWriter) write2BD(v [2]float64) {
	w.writeBD(v[0])
	w.writeBD(v[1])
}

func (w *testBitWriter) write3BD(v [3]float64) {
	w.writeBD(v[0])
	w.writeBD(v[1])
	w.writeBD(v[2])
}

// writeHandleRef writes a handle reference with an explicit byte count
// (1-8), matching ReadHandleRef's 4-bit code + 4-bit count + raw value
// shape.
func (w *testBitWriter) writeHandleRef(code uint8, value uint64, nbytes int) {
	w.writeBits(uint64(code), 4)
	w.writeBits(uint64(nbytes), 4)
	w.writeBits(value, nbytes*8)
}

func (w *testBitWriter) bytes() []byte {
	n := (len(w.bits) + 7) / 8
	out := make([]byte, n)
	for i, b := range w.bits {
		if b {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}

// TestBitReaderBSBoundary exercises spec.md section 8 scenario S3: for
// buffer [0xC0, 0x12, 0x34] with AC1018, the first BS read takes the
// raw-16 tag (BB == 3) and yields the 16 bits that follow; a second BS
// read from the 6 remaining bits cannot satisfy its own raw-16 tag and
// yields the zero value with Overran set.
func TestBitReaderBSBoundary(t *testing.T) {
	data := []byte{0xC0, 0x12, 0x34}
	r := NewBitReader(data, NewProfile(VersionR2004))

	first := r.ReadBS()
	require.False(t, r.Overran())
	assert.Equal(t, uint16(0x0048), first)

	second := r.ReadBS()
	assert.Equal(t, uint16(0), second)
	assert.True(t, r.Overran())
}

func TestBitReaderPrimitives(t *testing.T) {
	data := []byte{0x80}
	r := NewBitReader(data, NewProfile(VersionR2004))
	assert.True(t, r.ReadBit())
	for i := 0; i < 7; i++ {
		assert.False(t, r.ReadBit())
	}
}

func TestBitReaderMC(t *testing.T) {
	// 0x81 0x01 encodes 0x81 (continuation bit set, low 7 bits 0x01)
	// followed by 0x01 (no continuation): value = 1 | (1 << 7) = 129.
	data := []byte{0x81, 0x01}
	r := NewBitReader(data, NewProfile(VersionR2004))
	assert.Equal(t, uint32(129), r.ReadMC())
}

func TestBitReaderTVEncodings(t *testing.T) {
	pre2007 := NewProfile(VersionR2004)
	post2007 := NewProfile(VersionR2007)

	w := &testBitWriter{}
	w.writeBB(3) // BS raw16 tag
	w.writeBits(3, 16)
	w.writeBits(uint64('a'), 8)
	w.writeBits(uint64('b'), 8)
	w.writeBits(uint64('c'), 8)
	r := NewBitReader(w.bytes(), pre2007)
	assert.Equal(t, "abc", r.ReadTV())

	w2 := &testBitWriter{}
	w2.writeBB(3)
	w2.writeBits(2, 16)
	w2.writeBits(uint64('h'), 8)
	w2.writeBits(0, 8)
	w2.writeBits(uint64('i'), 8)
	w2.writeBits(0, 8)
	r2 := NewBitReader(w2.bytes(), post2007)
	assert.Equal(t, "hi", r2.ReadTV())
}

func TestBitReaderSentinel(t *testing.T) {
	var expected [16]byte
	for i := range expected {
		expected[i] = byte(i)
	}
	data := append([]byte{}, expected[:]...)
	r := NewBitReader(data, NewProfile(VersionR2004))
	assert.NoError(t, r.ReadSentinel(expected))

	bad := append([]byte{}, expected[:]...)
	bad[0] ^= 0xFF
	r2 := NewBitReader(bad, NewProfile(VersionR2004))
	assert.Error(t, r2.ReadSentinel(expected))
}
