// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildMinimalAC15 constructs the smallest well-formed AC1015 (R2000)
// container: a 24-byte fixed header plus four locator records, all
// pointing at the empty region immediately past the header. The four
// well-known sections (header, classes, handles, objects) exist but are
// empty.
func buildMinimalAC15(t *testing.T) []byte {
	t.Helper()
	buf := make([]byte, 0, 60)
	buf = append(buf, []byte("AC1015")...)
	buf = append(buf, make([]byte, 5)...) // reserved padding
	buf = append(buf, 0)                  // maintenance version
	buf = appendU32(buf, 0)               // preview address
	buf = append(buf, 0, 0)               // dwg version / maintenance pair
	buf = appendU16(buf, 0)               // code page

	const locatorCount = 4
	buf = appendU32(buf, locatorCount)

	require.Equal(t, 24, len(buf))
	const seeker = 60 // exactly the end of this fixture: an empty tail region.
	for i := uint8(0); i < locatorCount; i++ {
		buf = append(buf, i)
		buf = appendU32(buf, seeker)
		buf = appendU32(buf, 0) // size
	}
	require.Equal(t, 60, len(buf))
	return buf
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendU16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

// TestParseMinimalAC15BuildsDefaultDocument covers spec.md section 8
// scenario S1: a minimal file whose four well-known sections are present
// but empty builds a document equivalent to a default-constructed one,
// with no notifications.
func TestParseMinimalAC15BuildsDefaultDocument(t *testing.T) {
	data := buildMinimalAC15(t)

	f, err := OpenBytes(data, nil)
	require.NoError(t, err)
	assert.Equal(t, VersionR2000, f.Version)

	doc, err := f.Parse()
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Empty(t, doc.notifications)

	want := NewDocument(VersionR2000)

	assert.Equal(t, want.Layers.Len(), doc.Layers.Len())
	assert.Equal(t, want.LTypes.Len(), doc.LTypes.Len())
	assert.Equal(t, want.Styles.Len(), doc.Styles.Len())
	assert.Equal(t, want.BlockRecords.Len(), doc.BlockRecords.Len())
	assert.Equal(t, want.DimStyles.Len(), doc.DimStyles.Len())
	assert.Equal(t, want.AppIDs.Len(), doc.AppIDs.Len())
	assert.Equal(t, want.VPorts.Len(), doc.VPorts.Len())

	layer0, ok := doc.Layers.GetByName("0")
	require.True(t, ok)
	assert.Equal(t, uint16(7), layer0.ColorIndex)

	modelSpace, ok := doc.BlockRecords.GetByName("*Model_Space")
	require.True(t, ok)
	assert.Equal(t, want.Header.ModelSpaceHandle, modelSpace.Handle)
	assert.Equal(t, want.Header.ModelSpaceHandle, doc.Header.ModelSpaceHandle)
	assert.Equal(t, want.Header.CurrentLayerHandle, doc.Header.CurrentLayerHandle)

	assert.Empty(t, doc.Entities())
	assert.Empty(t, doc.Objects())

	assert.Nil(t, doc.SummaryInfoRaw)
	assert.Nil(t, doc.AppInfoRaw)
	assert.Nil(t, doc.PreviewRaw)
}

// TestReadPreviewRawAC15 covers the AC15 preview path: a direct file
// offset with no explicit length, bounded by the nearest following
// locator rather than a section descriptor.
func TestReadPreviewRawAC15(t *testing.T) {
	previewBytes := []byte("THUMBNAILBYTES")
	const previewStart = 24
	data := make([]byte, previewStart)
	data = append(data, previewBytes...)
	sectionStart := len(data)
	data = append(data, make([]byte, 8)...) // the "section" the locator below points at

	f := &File{
		data: data,
		Header: FileHeader{
			Generation: genAC15,
			AC15: &ac15Header{
				PreviewAddress: previewStart,
				Locators: []locatorRecord{
					{Number: 0, Seeker: int32(sectionStart), Size: 8},
				},
			},
		},
	}

	got := f.readPreviewRaw()
	assert.Equal(t, previewBytes, got)
}

func TestReadPreviewRawAC15NoAddress(t *testing.T) {
	f := &File{
		Header: FileHeader{
			Generation: genAC15,
			AC15:       &ac15Header{PreviewAddress: 0},
		},
	}
	assert.Nil(t, f.readPreviewRaw())
}

// TestGetSectionAC18ReadsOptionalSections covers the section lookup that
// buildDocument uses for the optional AC18+ sections: an uncompressed
// summary info page comes back as its raw bytes, and an app info section
// with no section-map entry is reported as not found.
func TestGetSectionAC18ReadsOptionalSections(t *testing.T) {
	const pageSeeker = 0x400
	body := []byte("SUMMARYBYTES")
	header := make([]byte, ac18SectionPageHeaderLen)
	data := make([]byte, pageSeeker)
	data = append(data, header...)
	data = append(data, body...)

	f := &File{
		data: data,
		Header: FileHeader{
			Generation: genAC18,
		},
		sections: map[string]*sectionDescriptor{
			sectionSummaryInfo: {
				Name:            sectionSummaryInfo,
				CompressionCode: 0,
				Pages: []localSectionEntry{
					{Seeker: pageSeeker, CompressedSize: int32(len(body)), DecompressedSize: int32(len(body))},
				},
			},
		},
	}

	got, ok := f.getSection(sectionSummaryInfo)
	require.True(t, ok)
	assert.Equal(t, body, got)

	_, ok = f.getSection(sectionAppInfo)
	assert.False(t, ok)
}

// TestBuildDocumentMissingRequiredSectionFails covers spec.md section 7
// ("Fatal ... a required named section is absent from the section map"):
// buildDocument refuses to proceed when any of the four well-known
// sections (header, classes, handles, objects) has no descriptor, wrapping
// ErrSectionNotFound rather than building a partial Document.
func TestBuildDocumentMissingRequiredSectionFails(t *testing.T) {
	f := &File{
		data: make([]byte, ac18SectionPageHeaderLen),
		Header: FileHeader{
			Generation: genAC18,
		},
		sections: map[string]*sectionDescriptor{
			sectionHeader:  {Name: sectionHeader},
			sectionClasses: {Name: sectionClasses},
			sectionHandles: {Name: sectionHandles},
			// sectionObjects deliberately omitted.
		},
	}

	doc, err := buildDocument(f)
	require.Nil(t, doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSectionNotFound)
	assert.Contains(t, err.Error(), sectionObjects)
}

func TestOpenBytesRejectsTooSmallInput(t *testing.T) {
	_, err := OpenBytes([]byte{1, 2, 3}, nil)
	assert.ErrorIs(t, err, ErrTooSmall)
}

func TestOpenBytesRejectsUnknownMagic(t *testing.T) {
	_, err := OpenBytes([]byte("BADMAGIC and then some padding"), nil)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}
