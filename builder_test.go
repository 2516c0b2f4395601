// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder(profile Profile) *builder {
	return &builder{
		profile:   profile,
		classes:   newClassTable(),
		templates: make(map[Handle]*Template),
		consumed:  make(map[Handle]bool),
		doc:       NewDocument(profile.Version),
	}
}

func layerControlTemplate(entries ...Handle) *Template {
	t := newTemplate(objTypeLayerControl, KindTableControl)
	t.EntryOrder = entries
	return t
}

// TestBuildTablesLayerWithLinetype covers spec.md section 8 scenario S2:
// a two-entry LAYER table (including a non-default layer referencing a
// linetype by handle) resolves into Document.Layers with the linetype
// name joined in.
func TestBuildTablesLayerWithLinetype(t *testing.T) {
	b := newTestBuilder(NewProfile(VersionR2004))

	b.hh.LayerControl = 0x20
	b.templates[0x20] = layerControlTemplate(0x21, 0x22)

	lt := newTemplate(objTypeLType, KindTableEntry)
	lt.Common.Handle = 0x30
	lt.Fields["Name"] = "Continuous"
	b.templates[0x30] = lt

	// This builder is set up with an R2004+ profile, matching the wire
	// shape decodeCommon actually produces for that generation: color
	// index lives on TemplateCommon, not in Fields (objectdecoder.go).
	layer0 := newTemplate(objTypeLayer, KindTableEntry)
	layer0.Common.Handle = 0x21
	layer0.Common.ColorIndex = 7
	layer0.Fields["Name"] = "0"
	layer0.TailHandles["LTypeHandle"] = 0x30
	b.templates[0x21] = layer0

	myLayer := newTemplate(objTypeLayer, KindTableEntry)
	myLayer.Common.Handle = 0x22
	myLayer.Common.ColorIndex = 1
	myLayer.Fields["Name"] = "MyLayer"
	myLayer.TailHandles["LTypeHandle"] = 0x30
	b.templates[0x22] = myLayer

	b.phase3RegisterTableControls()
	b.phase4BuildTables()

	wantColorIndex := map[string]uint16{"0": 7, "MyLayer": 1}
	for _, name := range []string{"0", "MyLayer"} {
		entry, ok := b.doc.Layers.GetByName(name)
		require.True(t, ok, "layer %q not built", name)
		assert.Equal(t, "Continuous", entry.LineType)
		assert.Equal(t, wantColorIndex[name], entry.ColorIndex)
	}
	assert.Equal(t, Handle(0x20), b.doc.Layers.Handle)
}

// TestBuildTablesBlockRecordOwnedEntitiesR2004Plus covers phase 4's
// explicit owned-object list path (spec.md section 4.6, phase 4), which
// places those entities into the document's entity map with the block
// record as owner (spec.md section 8 scenario S5's
// complement: an entity with a *non-null* owner is left untouched).
func TestBuildTablesBlockRecordOwnedEntitiesR2004Plus(t *testing.T) {
	b := newTestBuilder(NewProfile(VersionR2004))

	b.hh.BlockControl = 0x40
	b.templates[0x40] = layerControlTemplate(0x41)

	block := newTemplate(objTypeBlockHeader, KindTableEntry)
	block.Common.Handle = 0x41
	block.Fields["Name"] = "TestBlock"
	block.EntryOrder = []Handle{0x50, 0x51}
	b.templates[0x41] = block

	line := newTemplate(objTypeLine, KindEntity)
	line.Common.Handle = 0x50
	line.Common.OwnerHandle = 0x41
	line.Fields["Start"] = [3]float64{0, 0, 0}
	b.templates[0x50] = line

	nonEntity := newTemplate(objTypeDictionary, KindDictionary)
	nonEntity.Common.Handle = 0x51
	b.templates[0x51] = nonEntity

	b.phase3RegisterTableControls()
	b.phase4BuildTables()
	b.phase6BuildRemainingObjects()

	record, ok := b.doc.BlockRecords.GetByName("TestBlock")
	require.True(t, ok)
	assert.Equal(t, []Handle{0x50}, record.Entities)

	e, ok := b.doc.GetEntity(0x50)
	require.True(t, ok)
	assert.Equal(t, Handle(0x41), e.OwnerHandle)

	_, isEntity := b.doc.GetEntity(0x51)
	assert.False(t, isEntity)
	_, isObject := b.doc.GetObject(0x51)
	assert.True(t, isObject)
}

// TestCollectBlockEntitiesLegacyChain covers the pre-R2004 entity-chain
// traversal path (spec.md section 4.5, "Entity chain traversal").
func TestCollectBlockEntitiesLegacyChain(t *testing.T) {
	b := newTestBuilder(NewProfile(VersionR2000))

	block := newTemplate(objTypeBlockHeader, KindTableEntry)
	block.Common.Handle = 0x41
	block.TailHandles["FirstEntityHandle"] = 0x50
	block.TailHandles["LastEntityHandle"] = 0x52

	e1 := newTemplate(objTypeLine, KindEntity)
	e1.Common.Handle = 0x50
	e1.TailHandles["NextEntityHandle"] = 0x51
	b.templates[0x50] = e1

	e2 := newTemplate(objTypeLine, KindEntity)
	e2.Common.Handle = 0x51
	e2.TailHandles["NextEntityHandle"] = 0x52
	b.templates[0x51] = e2

	e3 := newTemplate(objTypeLine, KindEntity)
	e3.Common.Handle = 0x52
	b.templates[0x52] = e3

	got := b.collectBlockEntities(block)
	assert.Equal(t, []Handle{0x50, 0x51, 0x52}, got)
}

// TestPhase7PreservesDefaultsOnEmptyHeader covers spec.md section 8
// scenario S1's guard: an absent header section must not clobber the
// defaults NewDocument already populated.
func TestPhase7PreservesDefaultsOnEmptyHeader(t *testing.T) {
	b := newTestBuilder(NewProfile(VersionR2000))
	wantModelSpace := b.doc.Header.ModelSpaceHandle

	b.phase7UpdateHeader()

	assert.Equal(t, wantModelSpace, b.doc.Header.ModelSpaceHandle)
}
