// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewDocumentStandardEntries covers spec.md section 8 invariant 4:
// every table a freshly constructed document exposes carries its
// required standard entries.
func TestNewDocumentStandardEntries(t *testing.T) {
	doc := NewDocument(VersionR2000)

	layer0, ok := doc.Layers.GetByName("0")
	require.True(t, ok)
	assert.Equal(t, uint16(7), layer0.ColorIndex)

	for _, name := range []string{"Continuous", "ByLayer", "ByBlock"} {
		_, ok := doc.LTypes.GetByName(name)
		assert.True(t, ok, "missing linetype %q", name)
	}

	_, ok = doc.Styles.GetByName("Standard")
	assert.True(t, ok)

	ms, ok := doc.BlockRecords.GetByName("*Model_Space")
	require.True(t, ok)
	ps, ok := doc.BlockRecords.GetByName("*Paper_Space")
	require.True(t, ok)

	assert.Equal(t, ms.Handle, doc.Header.ModelSpaceHandle)
	assert.Equal(t, ps.Handle, doc.Header.PaperSpaceHandle)
	assert.Equal(t, layer0.Handle, doc.Header.CurrentLayerHandle)

	_, ok = doc.DimStyles.GetByName("Standard")
	assert.True(t, ok)
	_, ok = doc.AppIDs.GetByName("ACAD")
	assert.True(t, ok)
	_, ok = doc.VPorts.GetByName("*Active")
	assert.True(t, ok)
}

// TestResolveReferencesAssignsModelSpaceOwner covers spec.md section 8
// scenario S5: an entity with a null owner handle is assigned to model
// space once references are resolved, and the transition to a non-null
// owner is recorded as a Warning.
func TestResolveReferencesAssignsModelSpaceOwner(t *testing.T) {
	doc := NewDocument(VersionR2000)
	h := doc.AddEntity(&Entity{ClassName: "LINE"})

	doc.ResolveReferences()

	e, ok := doc.GetEntity(h)
	require.True(t, ok)
	assert.Equal(t, doc.Header.ModelSpaceHandle, e.OwnerHandle)

	found := false
	for _, n := range doc.notifications {
		if n.Severity == SeverityWarning && n.Handle == h {
			found = true
		}
	}
	assert.True(t, found, "expected a Warning recorded for the null-owner reassignment")
}

// TestResolveReferencesIdempotent covers spec.md section 8 property 9:
// calling ResolveReferences twice produces no additional diagnostics and
// does not move NextHandle.
func TestResolveReferencesIdempotent(t *testing.T) {
	doc := NewDocument(VersionR2000)
	doc.AddEntity(&Entity{ClassName: "LINE"})

	doc.ResolveReferences()
	notesAfterFirst := len(doc.notifications)
	nextAfterFirst := doc.NextHandle()

	doc.ResolveReferences()
	assert.Equal(t, notesAfterFirst, len(doc.notifications))
	assert.Equal(t, nextAfterFirst, doc.NextHandle())
}

func TestContentHashStableAcrossEquivalentDocuments(t *testing.T) {
	docA := NewDocument(VersionR2000)
	docA.AddEntity(&Entity{Handle: 0x100, OwnerHandle: 0x10, ClassName: "LINE"})
	docA.AddEntity(&Entity{Handle: 0x101, OwnerHandle: 0x10, ClassName: "CIRCLE"})

	docB := NewDocument(VersionR2000)
	docB.AddEntity(&Entity{Handle: 0x101, OwnerHandle: 0x10, ClassName: "CIRCLE"})
	docB.AddEntity(&Entity{Handle: 0x100, OwnerHandle: 0x10, ClassName: "LINE"})

	assert.Equal(t, docA.ContentHash(), docB.ContentHash())

	docB.AddEntity(&Entity{Handle: 0x102, OwnerHandle: 0x10, ClassName: "ARC"})
	assert.NotEqual(t, docA.ContentHash(), docB.ContentHash())
}
