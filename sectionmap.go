// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

import "bytes"

// localSectionEntry is one page's contribution to a logical section
// (spec.md section 3).
type localSectionEntry struct {
	PageNumber          int32
	CompressedSize      int32
	OffsetWithinSection uint64
	DecompressedSize    int32
	Seeker              int64
}

// sectionDescriptor is a logical section's reconstructed metadata: its
// name, how large it is compressed/decompressed, how it is encoded, and
// the ordered pages that make it up (spec.md section 3).
type sectionDescriptor struct {
	Name                string
	CompressedSize      uint64
	PageCount           int32
	MaxDecompressedSize int32
	CompressionCode     int32
	SectionID           int32
	Encrypted           int32
	Pages               []localSectionEntry
}

// parseSectionMap decodes a decompressed section-map body into a
// name-keyed table of descriptors, resolving each page's seeker against
// pageMap (spec.md section 4.1, step 4).
func parseSectionMap(body []byte, pageMap []pageMapRecord) (map[string]*sectionDescriptor, error) {
	r := newByteReader(body)
	descriptors := make(map[string]*sectionDescriptor)

	for r.remaining() >= 8+4*5+64 {
		compSize, ok := r.u64le()
		if !ok {
			return nil, ErrTruncatedSectionMap
		}
		pageCount, ok := r.u32le()
		if !ok {
			return nil, ErrTruncatedSectionMap
		}
		maxDecomp, ok := r.u32le()
		if !ok {
			return nil, ErrTruncatedSectionMap
		}
		if !r.skip(4) { // unknown/reserved field
			return nil, ErrTruncatedSectionMap
		}
		compCode, ok := r.u32le()
		if !ok {
			return nil, ErrTruncatedSectionMap
		}
		sectionID, ok := r.u32le()
		if !ok {
			return nil, ErrTruncatedSectionMap
		}
		encrypted, ok := r.u32le()
		if !ok {
			return nil, ErrTruncatedSectionMap
		}
		nameRaw, ok := r.take(64)
		if !ok {
			return nil, ErrTruncatedSectionMap
		}
		name := string(bytes.TrimRight(nameRaw, "\x00"))

		desc := &sectionDescriptor{
			Name:                name,
			CompressedSize:      compSize,
			PageCount:           int32(pageCount),
			MaxDecompressedSize: int32(maxDecomp),
			CompressionCode:     int32(compCode),
			SectionID:           int32(sectionID),
			Encrypted:           int32(encrypted),
		}

		for i := int32(0); i < int32(pageCount); i++ {
			pageNumber, ok := r.u32le()
			if !ok {
				return nil, ErrTruncatedSectionMap
			}
			pageCompSize, ok := r.u32le()
			if !ok {
				return nil, ErrTruncatedSectionMap
			}
			offset, ok := r.u64le()
			if !ok {
				return nil, ErrTruncatedSectionMap
			}

			entry := localSectionEntry{
				PageNumber:          int32(pageNumber),
				CompressedSize:      int32(pageCompSize),
				OffsetWithinSection: offset,
				DecompressedSize:    int32(maxDecomp),
			}
			if page, found := findPage(pageMap, int32(pageNumber)); found {
				entry.Seeker = page.Seeker
			}
			desc.Pages = append(desc.Pages, entry)
		}

		if n := len(desc.Pages); n > 0 && maxDecomp != 0 {
			if rem := compSize % uint64(maxDecomp); rem != 0 {
				desc.Pages[n-1].DecompressedSize = int32(rem)
			}
		}

		descriptors[name] = desc
	}

	return descriptors, nil
}
