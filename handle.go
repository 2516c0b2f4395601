// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

// Handle is the DWG format's opaque 64-bit object identifier. Handles are
// never interpreted numerically beyond equality and ordering (ordering is
// used only for seed advancement); the object graph they form is
// addressed only through handle-keyed maps (spec.md section 9).
type Handle uint64

// NullHandle is the reserved "no reference" value. It is never the key of
// an entry in a Document's entity or object maps, and it is never
// allocated by the handle allocator.
const NullHandle Handle = 0

// firstAllocatableHandle reserves 0x01..0x0F for the small set of
// fixed-value handles the format uses for standard bookkeeping objects,
// matching spec.md section 4.7.
const firstAllocatableHandle Handle = 0x10

// handleSeed is a monotonic handle allocator. It starts at
// firstAllocatableHandle and is advanced past every handle observed in a
// template or document entity, so handles allocated after loaded content
// has been observed never collide with it (spec.md section 4.7).
type handleSeed struct {
	next Handle
}

func newHandleSeed() *handleSeed {
	return &handleSeed{next: firstAllocatableHandle}
}

// observe advances the seed so that it stays strictly greater than h.
func (s *handleSeed) observe(h Handle) {
	if h >= s.next {
		s.next = h + 1
	}
}

// allocate returns the next unused handle and advances the seed.
func (s *handleSeed) allocate() Handle {
	h := s.next
	s.next++
	return h
}

// peek returns the handle that would be returned by the next allocate,
// without advancing the seed. Used by Document.NextHandle.
func (s *handleSeed) peek() Handle {
	return s.next
}
