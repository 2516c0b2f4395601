// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassesEmptySection(t *testing.T) {
	table, notes := parseClasses(nil, NewProfile(VersionR2000))
	assert.Empty(t, notes)
	_, ok := table.Lookup(500)
	assert.False(t, ok)
}

func TestParseClassesBadSentinel(t *testing.T) {
	_, notes := parseClasses([]byte{1, 2, 3, 4}, NewProfile(VersionR2000))
	require.Len(t, notes, 1)
	assert.Equal(t, SeverityWarning, notes[0].Severity)
}

func TestParseClassesOneRecord(t *testing.T) {
	profile := NewProfile(VersionR2000) // pre-R2004: no extra version fields

	w := &testBitWriter{}
	w.writeSentinel(classSentinel)
	w.writeBL(0) // size in bits, informational

	w.writeBS(500)          // class number
	w.writeBS(0)            // proxy flags
	w.writeTVAnsi("OPENCAD") // app name
	w.writeTVAnsi("AcDbCustom")
	w.writeTVAnsi("CUSTOM")
	w.writeBit(false)  // was zombie
	w.writeBS(0x1F2)   // item class ID: entity marker

	w.writeBS(0) // terminator

	table, notes := parseClasses(w.bytes(), profile)
	assert.Empty(t, notes)

	rec, ok := table.Lookup(500)
	require.True(t, ok)
	assert.Equal(t, uint16(500), rec.ClassNumber)
	assert.Equal(t, "OPENCAD", rec.AppName)
	assert.Equal(t, "AcDbCustom", rec.CppClassName)
	assert.Equal(t, "CUSTOM", rec.DXFName)
	assert.True(t, rec.IsEntity)
}
