// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/opencadkit/dwg/log"
)

// ReadOptions configures a single container read (spec.md section 6,
// "Configuration options recognized by the reader").
type ReadOptions struct {
	// Failsafe, when true, turns per-object decode errors into warnings
	// instead of aborting the read.
	Failsafe bool

	// KeepUnknownEntities, when true, keeps the undecoded record payload
	// (Template.Raw) of unrecognized entity types. Unrecognized records
	// are kept as Unknown objects whether or not it is set; when false,
	// only their payload is dropped.
	KeepUnknownEntities bool

	// KeepUnknownObjects is KeepUnknownEntities' counterpart for
	// non-graphical objects.
	KeepUnknownObjects bool

	// Logger receives structured decode diagnostics. Defaults to a
	// filtered stdout logger at LevelError, mirroring the teacher
	// library's default.
	Logger log.Logger
}

// File is an open DWG container. Construct one with Open or OpenBytes,
// then call Parse to produce a Document.
type File struct {
	Version Version
	Profile Profile
	Header  FileHeader

	pageMap  []pageMapRecord
	sections map[string]*sectionDescriptor

	data   []byte
	mm     mmap.MMap
	f      *os.File
	opts   *ReadOptions
	logger *log.Helper

	notifier
}

// Open memory-maps the named file and identifies its version without
// parsing further.
func Open(name string, opts *ReadOptions) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	file, err := newFile(data, opts)
	if err != nil {
		data.Unmap()
		f.Close()
		return nil, err
	}
	file.mm = data
	file.f = f
	return file, nil
}

// OpenBytes identifies the version of an in-memory DWG buffer without
// parsing further.
func OpenBytes(data []byte, opts *ReadOptions) (*File, error) {
	return newFile(data, opts)
}

func newFile(data []byte, opts *ReadOptions) (*File, error) {
	if opts == nil {
		opts = &ReadOptions{}
	}
	var logger log.Logger
	if opts.Logger == nil {
		logger = log.NewStdLogger(os.Stdout)
	} else {
		logger = opts.Logger
	}

	file := &File{
		data:   data,
		opts:   opts,
		logger: log.NewHelper(log.NewFilter(logger, log.FilterLevel(log.LevelError))),
	}

	if len(data) < 6 {
		return nil, ErrTooSmall
	}
	v, err := ParseVersion(string(data[:6]))
	if err != nil {
		return nil, err
	}
	file.Version = v
	file.Profile = NewProfile(v)
	file.Header.Version = v
	file.Header.Generation = v.generation()
	return file, nil
}

// Close releases any memory mapping or file handle held by File.
func (f *File) Close() error {
	if f.mm != nil {
		_ = f.mm.Unmap()
	}
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

// Parse runs the full container + section + object + builder pipeline
// and returns the assembled Document (spec.md section 4.1, "Entry").
func (f *File) Parse() (*Document, error) {
	if len(f.data) < 6 {
		return nil, ErrTooSmall
	}

	switch f.Header.Generation {
	case genAC15:
		h, err := parseAC15Header(f.data)
		if err != nil {
			return nil, err
		}
		f.Header.AC15 = h
	case genAC18:
		meta, err := parseAC18Metadata(f.data[0x80:])
		if err != nil {
			return nil, err
		}
		f.Header.AC18 = meta
		if err := f.loadMaps(); err != nil {
			return nil, err
		}
	case genAC21:
		meta, err := parseAC21Metadata(f.data[0x80:])
		if err != nil {
			return nil, err
		}
		f.Header.AC18 = meta
		if err := f.loadMaps(); err != nil {
			return nil, err
		}
	}

	return buildDocument(f)
}

// loadMaps reconstructs the page map and section map for AC18/AC21 files
// (spec.md section 4.1, steps 3-4).
func (f *File) loadMaps() error {
	meta := f.Header.AC18
	if meta == nil {
		return ErrTruncatedHeader
	}
	if int(meta.PageMapAddress) >= len(f.data) {
		return ErrTruncatedPageMap
	}
	pageMapPage, err := readPageBody(f.data[meta.PageMapAddress:])
	if err != nil {
		return err
	}
	records, err := parsePageMap(pageMapPage.Data)
	if err != nil {
		return err
	}
	f.pageMap = records

	sectionMapPage, found := findPage(records, meta.SectionMapID)
	if !found {
		return ErrTruncatedSectionMap
	}
	if int(sectionMapPage.Seeker) >= len(f.data) {
		return ErrTruncatedSectionMap
	}
	body, err := readPageBody(f.data[sectionMapPage.Seeker:])
	if err != nil {
		return err
	}
	descriptors, err := parseSectionMap(body.Data, records)
	if err != nil {
		return err
	}
	f.sections = descriptors
	return nil
}

// well-known AC15 section indices (spec.md section 4.1, "AC15: look up by
// well-known small-integer index").
const (
	ac15SectionHeader  = 0
	ac15SectionClasses = 1
	ac15SectionHandles = 2
	ac15SectionObjects = 3
)

// getSection returns the concatenated decompressed bytes of the named
// logical section, or (nil, false) if it does not exist in this file
// (spec.md section 4.1, "Section extraction").
func (f *File) getSection(name string) ([]byte, bool) {
	switch f.Header.Generation {
	case genAC15:
		return f.getSectionAC15(name)
	case genAC18:
		return f.getSectionAC18(name)
	default:
		return f.getSectionAC21(name)
	}
}

func (f *File) ac15SectionIndex(name string) (uint8, bool) {
	switch name {
	case sectionHeader:
		return ac15SectionHeader, true
	case sectionClasses:
		return ac15SectionClasses, true
	case sectionHandles:
		return ac15SectionHandles, true
	case sectionObjects:
		return ac15SectionObjects, true
	default:
		return 0, false
	}
}

func (f *File) getSectionAC15(name string) ([]byte, bool) {
	if f.Header.AC15 == nil {
		return nil, false
	}
	idx, ok := f.ac15SectionIndex(name)
	if !ok {
		return nil, false
	}
	for _, loc := range f.Header.AC15.Locators {
		if loc.Number != idx {
			continue
		}
		start, size := int(loc.Seeker), int(loc.Size)
		if start < 0 || size < 0 || start+size > len(f.data) {
			f.warnf(NullHandle, "section %q: locator out of bounds", name)
			return nil, true
		}
		return f.data[start : start+size], true
	}
	return nil, false
}

// ac18SectionPageHeaderLen is the fixed size of the per-page header
// getSection reads ahead of each page's compressed body for AC18/AC21
// (spec.md section 4.1, "read a 32-byte page header").
const ac18SectionPageHeaderLen = 32

// decryptSectionPageHeader reverses the page-offset-keyed XOR stream
// protecting an AC18/AC21 section page header. This keying (distinct from
// the fixed-seed metadata-block cipher in fileheader.go) is this
// library's resolution of spec.md section 4.1's "section-header XOR
// scheme keyed by the page offset", which the public record leaves
// unspecified in exact byte form.
func decryptSectionPageHeader(header []byte, pageOffset int64) []byte {
	out := make([]byte, len(header))
	s := uint32(pageOffset) ^ 0x4357
	for i, b := range header {
		s = s*0x343FD + 0x269EC3
		out[i] = b ^ byte(s>>16)
	}
	return out
}

// sectionPageHeader is the decrypted 32-byte per-page header getSection
// reads ahead of every AC18/AC21 section page body (spec.md section 4.1,
// "read a 32-byte page header"): a section-type marker, the page's
// sequence number within the section, its declared decompressed and
// on-disk sizes, the page's absolute start offset (redundant with the
// page-map-derived seeker, kept here only for cross-validation), and a
// trailing checksum.
type sectionPageHeader struct {
	Marker           uint32
	SectionPageNum   uint32
	DecompressedSize uint32
	PageSize         uint32
	StartOffset      uint64
	Checksum         uint32
}

func parseSectionPageHeader(header []byte) (sectionPageHeader, bool) {
	r := newByteReader(header)
	marker, ok1 := r.u32le()
	pageNum, ok2 := r.u32le()
	decompSize, ok3 := r.u32le()
	pageSize, ok4 := r.u32le()
	startOffset, ok5 := r.u64le()
	_, ok6 := r.u32le() // unknown/reserved field
	checksum, ok7 := r.u32le()
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 || !ok7 {
		return sectionPageHeader{}, false
	}
	return sectionPageHeader{
		Marker:           marker,
		SectionPageNum:   pageNum,
		DecompressedSize: decompSize,
		PageSize:         pageSize,
		StartOffset:      startOffset,
		Checksum:         checksum,
	}, true
}

func (f *File) getSectionAC18(name string) ([]byte, bool) {
	desc, ok := f.sections[name]
	if !ok {
		return nil, false
	}
	var out []byte
	for _, page := range desc.Pages {
		if page.Seeker <= 0 || int(page.Seeker)+ac18SectionPageHeaderLen > len(f.data) {
			f.warnf(NullHandle, "section %q: page %d outside file bounds", name, page.PageNumber)
			continue
		}
		headerStart := int(page.Seeker)
		decrypted := decryptSectionPageHeader(f.data[headerStart:headerStart+ac18SectionPageHeaderLen], page.Seeker)
		if hdr, ok := parseSectionPageHeader(decrypted); ok {
			// The page map/section map (already validated when they were
			// parsed) is the trusted source for page placement; this
			// cross-check only catches a page header that decrypted to
			// something inconsistent with its own section-map entry, which
			// is itself a recoverable condition (spec.md section 7, "bad
			// section sentinel").
			if hdr.DecompressedSize != uint32(page.DecompressedSize) {
				f.warnf(NullHandle, "section %q: page %d header declares decompressed size %d, section map says %d",
					name, page.PageNumber, hdr.DecompressedSize, page.DecompressedSize)
			}
		} else {
			f.warnf(NullHandle, "section %q: page %d: truncated page header", name, page.PageNumber)
		}

		bodyStart := headerStart + ac18SectionPageHeaderLen
		bodyEnd := bodyStart + int(page.CompressedSize)
		if bodyEnd > len(f.data) {
			f.warnf(NullHandle, "section %q: page %d truncated", name, page.PageNumber)
			continue
		}
		body := f.data[bodyStart:bodyEnd]

		if desc.CompressionCode == 2 {
			decoded, err := decompressAC18(body, int(page.DecompressedSize))
			if err != nil {
				f.warnf(NullHandle, "section %q: page %d decompress failed: %v", name, page.PageNumber, err)
				continue
			}
			out = append(out, decoded...)
		} else {
			out = append(out, body...)
		}
	}
	return out, true
}

func (f *File) getSectionAC21(name string) ([]byte, bool) {
	desc, ok := f.sections[name]
	if !ok {
		return nil, false
	}
	var out []byte
	for _, page := range desc.Pages {
		factor, readSize := ac21PageFactorAndSize(page.CompressedSize)
		if page.Seeker <= 0 || int(page.Seeker)+readSize > len(f.data) {
			f.warnf(NullHandle, "section %q: page %d outside file bounds", name, page.PageNumber)
			continue
		}
		raw := f.data[page.Seeker : int(page.Seeker)+readSize]

		recovered, err := rsDecode(raw, ac21PageBlockSize, factor)
		if err != nil {
			f.warnf(NullHandle, "section %q: page %d RS decode failed: %v", name, page.PageNumber, err)
			continue
		}

		if desc.CompressionCode == 2 {
			decoded, err := decompressAC21(recovered, int(page.DecompressedSize))
			if err != nil {
				f.warnf(NullHandle, "section %q: page %d decompress failed: %v", name, page.PageNumber, err)
				continue
			}
			out = append(out, decoded...)
		} else {
			n := int(page.DecompressedSize)
			if n > len(recovered) {
				n = len(recovered)
			}
			out = append(out, recovered[:n]...)
		}
	}
	return out, true
}

// ac21PageBlockSize is the RS data-block size (k) for AC21 page bodies:
// 251 per spec.md section 4.3 ("251 for file header & page bodies; 239
// for compressed metadata body"). fileheader.go's parseAC21Metadata uses
// the same k=251 shape (its codewordDataLen) for the file header's own
// protected block at offset 0x80; no caller in this package uses the
// smaller k=239 shape.
const ac21PageBlockSize = 251

// ac21PageFactorAndSize derives the RS interleave factor and the number
// of raw bytes to read for a page of the given compressed size, per
// spec.md section 4.1 ("AC21: ... compute (factor, read_size) from the
// compressed size"). Each RS(255,251) codeword carries 251 data bytes, so
// the factor is the number of codewords needed to cover compressedSize
// data bytes, and read_size is that many full 255-byte codewords.
func ac21PageFactorAndSize(compressedSize int32) (factor int, readSize int) {
	const k = ac21PageBlockSize
	factor = (int(compressedSize) + k - 1) / k
	if factor < 1 {
		factor = 1
	}
	return factor, factor * rsCodewordLen
}

// readPreviewRaw recovers the thumbnail image bytes without decoding
// them (spec.md section 1: "extraction of the raw bytes" only). AC18+
// stores the preview as an ordinary named section; AC15 instead gives a
// direct file offset with no explicit length, so the raw run is read up
// to the start of the nearest following locator.
func (f *File) readPreviewRaw() []byte {
	if f.Header.Generation != genAC15 {
		data, ok := f.getSection(sectionPreview)
		if !ok {
			return nil
		}
		return data
	}

	if f.Header.AC15 == nil || f.Header.AC15.PreviewAddress <= 0 {
		return nil
	}
	start := int(f.Header.AC15.PreviewAddress)
	if start >= len(f.data) {
		return nil
	}
	end := len(f.data)
	for _, loc := range f.Header.AC15.Locators {
		if int(loc.Seeker) > start && int(loc.Seeker) < end {
			end = int(loc.Seeker)
		}
	}
	return f.data[start:end]
}
