// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

import "encoding/binary"

// byteReader is a small bounds-checked cursor over a byte slice, used by
// the file-header, page-map, and section-map decoders, which are all
// byte-granular rather than bit-granular (spec.md section 4.1). It mirrors
// the bounds-checking discipline of BitReader but at byte granularity and
// surfaces overruns as an explicit error instead of a sticky flag, since
// these structures are fixed-shape and a short read always means the
// container itself is truncated (ErrTruncatedHeader et al.).
type byteReader struct {
	data []byte
	pos  int
}

func newByteReader(data []byte) *byteReader {
	return &byteReader{data: data}
}

func (r *byteReader) remaining() int { return len(r.data) - r.pos }

func (r *byteReader) take(n int) ([]byte, bool) {
	if n < 0 || r.remaining() < n {
		return nil, false
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, true
}

func (r *byteReader) u8() (uint8, bool) {
	b, ok := r.take(1)
	if !ok {
		return 0, false
	}
	return b[0], true
}

func (r *byteReader) u16le() (uint16, bool) {
	b, ok := r.take(2)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b), true
}

func (r *byteReader) u32le() (uint32, bool) {
	b, ok := r.take(4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

func (r *byteReader) u64le() (uint64, bool) {
	b, ok := r.take(8)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b), true
}

func (r *byteReader) skip(n int) bool {
	_, ok := r.take(n)
	return ok
}
