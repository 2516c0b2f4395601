// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

// pageHeaderLen is the fixed 20-byte physical header every AC18+ page
// carries: a section-type marker, decompressed size, compressed size,
// compression type, and checksum (spec.md section 4.1).
const pageHeaderLen = 20

// pageBody is a parsed physical page: its header fields plus the
// decompressed payload.
type pageBody struct {
	Marker          int32
	DecompressedLen int32
	CompressedLen   int32
	CompressionType int32
	Checksum        uint32
	Data            []byte
}

// readPageBody parses the 20-byte page header at the start of raw and
// LZ77-AC18-decompresses the body that follows. AC18 uses this shape for
// both the page map and the section map pages, and loadMaps reads AC21
// map pages through it the same way. AC21 section data pages do not go
// through it (see getSectionAC21).
func readPageBody(raw []byte) (*pageBody, error) {
	if len(raw) < pageHeaderLen {
		return nil, ErrTruncatedPageMap
	}
	r := newByteReader(raw)
	marker, _ := r.u32le()
	decompLen, _ := r.u32le()
	compLen, _ := r.u32le()
	compType, _ := r.u32le()
	checksum, _ := r.u32le()

	body, ok := r.take(int(compLen))
	if !ok {
		return nil, ErrTruncatedPageMap
	}

	var data []byte
	var err error
	if int32(compType) == 2 {
		data, err = decompressAC18(body, int(decompLen))
		if err != nil {
			return nil, err
		}
	} else {
		if len(body) < int(decompLen) {
			return nil, ErrTruncatedPageMap
		}
		data = append([]byte(nil), body[:decompLen]...)
	}

	return &pageBody{
		Marker:          int32(marker),
		DecompressedLen: int32(decompLen),
		CompressedLen:   int32(compLen),
		CompressionType: int32(compType),
		Checksum:        checksum,
		Data:            data,
	}, nil
}

// pageMapBaseSeeker is the running file offset the page map stream's
// first entry starts counting from (spec.md section 4.1).
const pageMapBaseSeeker int64 = 0x100

// parsePageMap decodes a decompressed page-map body into its
// (section_number, seeker, size) records, maintaining the running seeker
// spec.md section 4.1 describes. A negative section number marks a gap:
// it consumes four extra little-endian i32 fields of gap metadata and is
// not itself recorded as a page.
func parsePageMap(body []byte) ([]pageMapRecord, error) {
	r := newByteReader(body)
	var records []pageMapRecord
	seeker := pageMapBaseSeeker

	for r.remaining() > 0 {
		if r.remaining() < 8 {
			return nil, ErrTruncatedPageMap
		}
		num, ok := r.u32le()
		if !ok {
			return nil, ErrTruncatedPageMap
		}
		size, ok := r.u32le()
		if !ok {
			return nil, ErrTruncatedPageMap
		}
		sectionNumber := int32(num)

		if sectionNumber < 0 {
			if !r.skip(16) { // four extra i32 gap-metadata fields
				return nil, ErrTruncatedPageMap
			}
			seeker += int64(int32(size))
			continue
		}

		records = append(records, pageMapRecord{
			SectionNumber: sectionNumber,
			Seeker:        seeker,
			Size:          int64(int32(size)),
		})
		seeker += int64(int32(size))
	}
	return records, nil
}

// pageMapRecord is one (section_number, seeker, size) entry in the
// reconstructed page map (spec.md section 3).
type pageMapRecord struct {
	SectionNumber int32
	Seeker        int64
	Size          int64
}

// findPage returns the first page-map record for sectionNumber, in file
// order.
func findPage(records []pageMapRecord, sectionNumber int32) (pageMapRecord, bool) {
	for _, rec := range records {
		if rec.SectionNumber == sectionNumber {
			return rec, true
		}
	}
	return pageMapRecord{}, false
}
