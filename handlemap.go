// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

// handleMapSentinel frames the AcDb:Handles section body, matching the
// sentinel-then-payload shape every other sentinel-bearing section uses
// (spec.md section 4.4, "sentinel").
var handleMapSentinel = [16]byte{
	0xD4, 0x7B, 0x3B, 0xFC, 0x3B, 0x56, 0x07, 0x3A,
	0x3F, 0x23, 0x0B, 0xA0, 0x58, 0x30, 0x49, 0x75,
}

// parseHandleMap decodes the AcDb:Handles section into a handle->offset
// table. Entries are delta-encoded modular-char pairs relative to the
// previous entry's handle and offset, each starting from zero (this is
// this library's resolution of spec.md section 3's "Handle map", whose
// exact wire encoding the public record leaves unspecified beyond "handle
// -> absolute offset").
//
// For AC15 files offset is absolute within the whole container; for
// AC18+ files it is absolute within the decompressed AcDb:AcDbObjects
// byte stream (spec.md section 3). Both share this decoding; callers
// interpret the resulting offsets accordingly.
func parseHandleMap(data []byte, profile Profile) (map[Handle]int64, []Notification) {
	table := make(map[Handle]int64)
	var notes []Notification
	if len(data) == 0 {
		return table, notes
	}

	r := NewBitReader(data, profile)
	if err := r.ReadSentinel(handleMapSentinel); err != nil {
		notes = append(notes, Notification{Severity: SeverityWarning, Message: "handle map: bad sentinel"})
		return table, notes
	}

	var handle Handle
	var offset int64
	for !r.Overran() {
		hDelta := r.ReadMC()
		if r.Overran() {
			break
		}
		oDelta := r.ReadMC()
		if r.Overran() {
			break
		}
		if hDelta == 0 && oDelta == 0 {
			break
		}
		handle += Handle(hDelta)
		offset += int64(oDelta)
		table[handle] = offset
	}
	return table, notes
}
