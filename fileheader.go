// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

// locatorRecord is one AC15 (R13-R2000) section locator entry: a
// small-integer section number plus its absolute file offset and byte
// length (spec.md section 4.1).
type locatorRecord struct {
	Number uint8
	Seeker int32
	Size   int32
}

// ac15Header holds the fields the AC15 generation stores at fixed offsets
// ahead of its locator table (spec.md section 4.1).
type ac15Header struct {
	MaintenanceVersion uint8
	PreviewAddress     int32
	CodePage           uint16
	Locators           []locatorRecord
}

// ac18Metadata is the decrypted 108-byte metadata block every AC18+ file
// carries starting at offset 0x80 (spec.md section 4.1). AC21 recovers
// the same fields from a Reed-Solomon-protected, LZ77-AC21-compressed
// record instead of a raw XOR stream.
type ac18Metadata struct {
	RootTreeNodeGap      int32
	LastPageID           int32
	LastSectionAddress   int64
	SecondHeaderAddress  int64
	GapAmount            int32
	SectionAmount        int32
	SectionPageMapID     int32
	PageMapAddress       int64
	SectionMapID         int32
	SectionArrayPageSize int32
	GapArraySize         int32
	CRCSeed              uint32
}

// FileHeader is the per-generation container header (spec.md section 3
// "File header"). Exactly one of AC15 or AC18 is populated, chosen by
// Generation.
type FileHeader struct {
	Version    Version
	Generation generation

	AC15 *ac15Header
	AC18 *ac18Metadata
}

// ac18XORSeed is the fixed LCG seed the AC18/AC21 metadata-block stream
// cipher starts from (spec.md section 4.1).
const ac18XORSeed uint32 = 1

// decryptAC18Metadata reverses the linear-congruential XOR stream
// protecting the AC18/AC21 108-byte metadata block. The cipher is
// symmetric (XOR), so decryption and encryption are the same operation.
func decryptAC18Metadata(block []byte) []byte {
	out := make([]byte, len(block))
	s := ac18XORSeed
	for i, b := range block {
		s = s*0x343FD + 0x269EC3
		out[i] = b ^ byte(s>>16)
	}
	return out
}

// parseAC15Header parses the R13-R2000 file header from the start of the
// file; data begins with the 6-byte version magic, which it skips.
func parseAC15Header(data []byte) (*ac15Header, error) {
	r := newByteReader(data)
	if !r.skip(6) { // version magic
		return nil, ErrTruncatedHeader
	}
	// Five reserved/unused bytes precede the maintenance-version byte in
	// the padding block described by spec.md section 4.1.
	if !r.skip(5) {
		return nil, ErrTruncatedHeader
	}
	maint, ok := r.u8()
	if !ok {
		return nil, ErrTruncatedHeader
	}
	preview, ok := r.u32le()
	if !ok {
		return nil, ErrTruncatedHeader
	}
	if !r.skip(2) { // dwg version / maintenance release byte pair, unused here
		return nil, ErrTruncatedHeader
	}
	codePage, ok := r.u16le()
	if !ok {
		return nil, ErrTruncatedHeader
	}
	count, ok := r.u32le()
	if !ok {
		return nil, ErrTruncatedHeader
	}

	h := &ac15Header{
		MaintenanceVersion: maint,
		PreviewAddress:     int32(preview),
		CodePage:           codePage,
	}
	for i := uint32(0); i < count; i++ {
		num, ok := r.u8()
		if !ok {
			return nil, ErrTruncatedHeader
		}
		seeker, ok := r.u32le()
		if !ok {
			return nil, ErrTruncatedHeader
		}
		size, ok := r.u32le()
		if !ok {
			return nil, ErrTruncatedHeader
		}
		h.Locators = append(h.Locators, locatorRecord{
			Number: num,
			Seeker: int32(seeker),
			Size:   int32(size),
		})
	}
	// CRC (2 bytes) and the 16-byte end sentinel follow but are not
	// validated (spec.md section 4.1: "CRC is read but not validated").
	return h, nil
}

// parseAC18Metadata decrypts and parses the fixed 108-byte metadata block
// at offset 0x80, common to AC18 and (after RS recovery) AC21.
func parseAC18Metadata(encrypted []byte) (*ac18Metadata, error) {
	if len(encrypted) < 108 {
		return nil, ErrTruncatedHeader
	}
	plain := decryptAC18Metadata(encrypted[:108])
	r := newByteReader(plain)

	rootGap, ok := r.u32le()
	if !ok {
		return nil, ErrTruncatedHeader
	}
	lastPage, ok := r.u32le()
	if !ok {
		return nil, ErrTruncatedHeader
	}
	lastSectionAddr, ok := r.u64le()
	if !ok {
		return nil, ErrTruncatedHeader
	}
	secondHeaderAddr, ok := r.u64le()
	if !ok {
		return nil, ErrTruncatedHeader
	}
	gapAmount, ok := r.u32le()
	if !ok {
		return nil, ErrTruncatedHeader
	}
	sectionAmount, ok := r.u32le()
	if !ok {
		return nil, ErrTruncatedHeader
	}
	sectionPageMapID, ok := r.u32le()
	if !ok {
		return nil, ErrTruncatedHeader
	}
	pageMapAddr, ok := r.u64le()
	if !ok {
		return nil, ErrTruncatedHeader
	}
	sectionMapID, ok := r.u32le()
	if !ok {
		return nil, ErrTruncatedHeader
	}
	sectionArrayPageSize, ok := r.u32le()
	if !ok {
		return nil, ErrTruncatedHeader
	}
	gapArraySize, ok := r.u32le()
	if !ok {
		return nil, ErrTruncatedHeader
	}
	crcSeed, ok := r.u32le()
	if !ok {
		return nil, ErrTruncatedHeader
	}

	return &ac18Metadata{
		RootTreeNodeGap:      int32(rootGap),
		LastPageID:           int32(lastPage),
		LastSectionAddress:   int64(lastSectionAddr),
		SecondHeaderAddress:  int64(secondHeaderAddr),
		GapAmount:            int32(gapAmount),
		SectionAmount:        int32(sectionAmount),
		SectionPageMapID:     int32(sectionPageMapID),
		PageMapAddress:       int64(pageMapAddr) + 0x100,
		SectionMapID:         int32(sectionMapID),
		SectionArrayPageSize: int32(sectionArrayPageSize),
		GapArraySize:         int32(gapArraySize),
		CRCSeed:              crcSeed,
	}, nil
}

// ac21MetadataFactor is the RS interleave factor the file header's own
// protected block uses, fixed regardless of the per-page factor used
// elsewhere in the file (spec.md section 4.1: "3x(251+factor) bytes").
const ac21MetadataFactor = 3

// parseAC21Metadata recovers the AC18-shaped metadata block from the
// Reed-Solomon-protected, LZ77-AC21-compressed record AC21 stores at
// offset 0x80 in place of AC18's raw encrypted bytes.
func parseAC21Metadata(data []byte) (*ac18Metadata, error) {
	const codewordDataLen = 251
	rsLen := (codewordDataLen + ac21MetadataFactor) * rsCodewordLen / codewordDataLen
	// Defensive floor: the protected block is always at least one
	// interleaved codeword set wide.
	if rsLen < rsCodewordLen*ac21MetadataFactor {
		rsLen = rsCodewordLen * ac21MetadataFactor
	}
	if len(data) < rsLen {
		return nil, ErrTruncatedHeader
	}
	recovered, err := rsDecode(data[:rsLen], codewordDataLen, ac21MetadataFactor)
	if err != nil {
		return nil, err
	}
	if len(recovered) < 4 {
		return nil, ErrTruncatedHeader
	}
	decompSize := int(int32(recovered[0]) | int32(recovered[1])<<8 | int32(recovered[2])<<16 | int32(recovered[3])<<24)
	if decompSize <= 0 || decompSize > len(recovered) {
		return nil, ErrTruncatedHeader
	}
	plain, err := decompressAC21(recovered[4:], decompSize)
	if err != nil {
		return nil, err
	}
	return parseAC18Metadata(plain)
}
