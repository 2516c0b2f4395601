// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

import "errors"

// Fatal errors abort a read entirely. Recoverable problems never surface
// as errors — they become Notifications on the returned Document (see
// notification.go).
var (
	// ErrTooSmall is returned when the input is smaller than the shortest
	// possible version magic.
	ErrTooSmall = errors.New("dwg: input too small to contain a version magic")

	// ErrUnsupportedVersion is returned when the 6-byte version magic does
	// not match a known AC10xx generation tag.
	ErrUnsupportedVersion = errors.New("dwg: unsupported or unrecognized version magic")

	// ErrTruncatedHeader is returned when the file header cannot be read in
	// full for the detected generation.
	ErrTruncatedHeader = errors.New("dwg: truncated file header")

	// ErrTruncatedPageMap is returned when the page map section is shorter
	// than its own declared decompressed size.
	ErrTruncatedPageMap = errors.New("dwg: truncated page map")

	// ErrTruncatedSectionMap is returned when the section map section ends
	// before a full descriptor can be read.
	ErrTruncatedSectionMap = errors.New("dwg: truncated section map")

	// ErrSectionNotFound is returned by buildDocument when one of the four
	// required named sections (header, classes, handles, objects) has no
	// descriptor in the file's page/section map.
	ErrSectionNotFound = errors.New("dwg: required section not found")

	// ErrCorruptCompression is returned by the LZ77 decoders when an opcode
	// cannot be decoded, or when the decoded length does not match the
	// declared output size.
	ErrCorruptCompression = errors.New("dwg: corrupt compressed stream")

	// ErrUnrecoverableRS is returned by the Reed-Solomon decoder when a
	// codeword carries more byte errors than its correction factor can fix.
	ErrUnrecoverableRS = errors.New("dwg: unrecoverable Reed-Solomon block")

	// ErrOutsideBoundary reports a read that would cross the end of the
	// backing buffer. No function in this package returns it.
	ErrOutsideBoundary = errors.New("dwg: read outside buffer boundary")

	// ErrObjectDecode is returned (in non-failsafe mode) when decoding a
	// single object record fails.
	ErrObjectDecode = errors.New("dwg: object record decode failed")
)
