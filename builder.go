// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

import "fmt"

// builder assembles a Document from a flat set of decoded Templates by
// running the seven ordered phases spec.md section 4.6 describes.
type builder struct {
	profile   Profile
	hv        HeaderVariables
	hh        HeaderHandles
	classes   *ClassTable
	templates map[Handle]*Template
	consumed  map[Handle]bool

	doc *Document
}

const entityChainCap = 100000

func buildDocument(f *File) (*Document, error) {
	headerData, ok := f.getSection(sectionHeader)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, sectionHeader)
	}
	classesData, ok := f.getSection(sectionClasses)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, sectionClasses)
	}
	handlesData, ok := f.getSection(sectionHandles)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, sectionHandles)
	}
	objectsData, ok := f.getSection(sectionObjects)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, sectionObjects)
	}

	// Summary info and app info are AC18+ section-map entries; AC15 has
	// no section map at all, so their absence there is the format's
	// normal shape, not a recoverable problem worth a Notification.
	var summaryInfoRaw, appInfoRaw []byte
	var summaryOK, appInfoOK bool
	if f.Header.Generation != genAC15 {
		summaryInfoRaw, summaryOK = f.getSection(sectionSummaryInfo)
		appInfoRaw, appInfoOK = f.getSection(sectionAppInfo)
	}
	previewRaw := f.readPreviewRaw()

	classes, classNotes := parseClasses(classesData, f.Profile)
	handleMap, handleNotes := parseHandleMap(handlesData, f.Profile)
	hv, hh, headerNotes := parseHeaderVariables(headerData, f.Profile)

	buf := objectsData
	if f.Header.Generation == genAC15 {
		buf = f.data
	}

	var seeds []Handle
	seeds = append(seeds,
		hh.LayerControl, hh.LTypeControl, hh.StyleControl, hh.BlockControl,
		hh.DimStyleControl, hh.AppIDControl, hh.ViewControl, hh.VPortControl,
		hh.UCSControl, hh.NamedObjectsDict, hh.GroupDict, hh.MLineStyleDict,
		hh.LayoutDict,
		hv.ModelSpaceHandle, hv.PaperSpaceHandle, hv.CurrentLayerHandle,
		hv.CurrentTextStyleHandle, hv.CurrentLinetypeHandle, hv.DimStyleHandle,
	)

	dec := newObjectDecoder(buf, handleMap, classes, f.Profile, f.opts)
	templates, err := dec.run(seeds)
	if err != nil {
		return nil, err
	}

	b := &builder{
		profile:   f.Profile,
		hv:        hv,
		hh:        hh,
		classes:   classes,
		templates: templates,
		consumed:  make(map[Handle]bool),
	}

	doc := NewDocument(f.Version)
	doc.Classes = classes
	doc.notifications = append(doc.notifications, f.notifications...)
	doc.notifications = append(doc.notifications, classNotes...)
	doc.notifications = append(doc.notifications, handleNotes...)
	doc.notifications = append(doc.notifications, headerNotes...)
	doc.notifications = append(doc.notifications, dec.notifications...)
	b.doc = doc

	if f.Header.Generation != genAC15 {
		if summaryOK {
			doc.SummaryInfoRaw = summaryInfoRaw
		} else {
			doc.warnf(NullHandle, "missing optional section %q", sectionSummaryInfo)
		}
		if appInfoOK {
			doc.AppInfoRaw = appInfoRaw
		} else {
			doc.warnf(NullHandle, "missing optional section %q", sectionAppInfo)
		}
	}
	if previewRaw != nil {
		doc.PreviewRaw = previewRaw
	}

	b.phase1AllocateMissingHandles()
	b.phase2ResolveBlockNames()
	b.phase3RegisterTableControls()
	b.phase4BuildTables()
	b.phase5BuildDictionaries()
	b.phase6BuildRemainingObjects()
	b.phase7UpdateHeader()

	doc.ResolveReferences()
	return doc, nil
}

// phase1AllocateMissingHandles seeds the handle allocator past every
// handle observed in the template set, and assigns new handles to any
// template still carrying NullHandle (spec.md section 4.6, phase 1).
func (b *builder) phase1AllocateMissingHandles() {
	for h, tmpl := range b.templates {
		b.doc.seed.observe(h)
		if tmpl.Common.Handle == NullHandle {
			tmpl.Common.Handle = b.doc.seed.allocate()
		}
	}
}

// phase2ResolveBlockNames copies each BLOCK entity's name onto its owning
// BLOCK_HEADER template, and seeds the well-known model/paper space names
// from the header-handles collection (spec.md section 4.6, phase 2).
func (b *builder) phase2ResolveBlockNames() {
	for h, tmpl := range b.templates {
		if tmpl.ObjectType != objTypeBlockHeader {
			continue
		}
		if blockEntity, ok := b.templates[tmpl.TailHandles["BlockEntityHandle"]]; ok {
			if name := blockEntity.fieldString("Name"); name != "" {
				tmpl.Fields["Name"] = name
			}
		}
		switch h {
		case b.hv.ModelSpaceHandle:
			tmpl.Fields["Name"] = "*Model_Space"
		case b.hv.PaperSpaceHandle:
			tmpl.Fields["Name"] = "*Paper_Space"
		}
	}
}

// phase3RegisterTableControls copies the nine table-control handles into
// each table's Handle field (spec.md section 4.6, phase 3).
func (b *builder) phase3RegisterTableControls() {
	b.doc.Layers.Handle = b.hh.LayerControl
	b.doc.LTypes.Handle = b.hh.LTypeControl
	b.doc.Styles.Handle = b.hh.StyleControl
	b.doc.BlockRecords.Handle = b.hh.BlockControl
	b.doc.DimStyles.Handle = b.hh.DimStyleControl
	b.doc.AppIDs.Handle = b.hh.AppIDControl
	b.doc.Views.Handle = b.hh.ViewControl
	b.doc.VPorts.Handle = b.hh.VPortControl
	b.doc.UCSs.Handle = b.hh.UCSControl
}

// phase4BuildTables walks every table-control template's entries,
// constructs the final table-entry record, and inserts it into the
// matching document table. For the block-records table this also builds
// the owned entity list, either from the explicit owned-object list
// (AC18+) or by walking the legacy entity chain (spec.md section 4.6
// phase 4, and section 4.5 "Entity chain traversal").
func (b *builder) phase4BuildTables() {
	b.buildSimpleTable(b.hh.LayerControl, func(h Handle, t *Template) {
		// Pre-R2004 records carry color index in the type-specific payload
		// (Fields); R2004+ moves it into the common object data, and
		// R2007+ additionally carries the full CMC color there
		// (objectdecoder.go decodeCommon; spec.md section 4.5 step 3).
		colorIndex := t.fieldUint16("ColorIndex")
		if b.profile.R2004Plus {
			colorIndex = t.Common.ColorIndex
		}
		l := &Layer{
			Handle:         h,
			Name:           t.fieldString("Name"),
			Flags:          t.fieldUint16("Flags"),
			ColorIndex:     colorIndex,
			Color:          t.Common.Color,
			LineTypeHandle: t.TailHandles["LTypeHandle"],
		}
		if lt, ok := b.templates[l.LineTypeHandle]; ok {
			l.LineType = lt.fieldString("Name")
		}
		b.doc.Layers.Add(h, l.Name, l)
	})
	b.buildSimpleTable(b.hh.LTypeControl, func(h Handle, t *Template) {
		b.doc.LTypes.Add(h, t.fieldString("Name"), &LType{
			Handle:      h,
			Name:        t.fieldString("Name"),
			Description: t.fieldString("Description"),
		})
	})
	b.buildSimpleTable(b.hh.StyleControl, func(h Handle, t *Template) {
		b.doc.Styles.Add(h, t.fieldString("Name"), &TextStyle{
			Handle:      h,
			Name:        t.fieldString("Name"),
			FontName:    t.fieldString("FontName"),
			BigFontName: t.fieldString("BigFontName"),
		})
	})
	b.buildSimpleTable(b.hh.DimStyleControl, func(h Handle, t *Template) {
		b.doc.DimStyles.Add(h, t.fieldString("Name"), &DimStyle{
			Handle:          h,
			Name:            t.fieldString("Name"),
			TextStyleHandle: t.TailHandles["TextStyleHandle"],
		})
	})
	b.buildSimpleTable(b.hh.AppIDControl, func(h Handle, t *Template) {
		b.doc.AppIDs.Add(h, t.fieldString("Name"), &AppID{Handle: h, Name: t.fieldString("Name")})
	})
	b.buildSimpleTable(b.hh.ViewControl, func(h Handle, t *Template) {
		b.doc.Views.Add(h, t.fieldString("Name"), &View{Handle: h, Name: t.fieldString("Name")})
	})
	b.buildSimpleTable(b.hh.VPortControl, func(h Handle, t *Template) {
		b.doc.VPorts.Add(h, t.fieldString("Name"), &VPort{Handle: h, Name: t.fieldString("Name")})
	})
	b.buildSimpleTable(b.hh.UCSControl, func(h Handle, t *Template) {
		b.doc.UCSs.Add(h, t.fieldString("Name"), &UCS{Handle: h, Name: t.fieldString("Name")})
	})

	control, ok := b.templates[b.hh.BlockControl]
	if !ok {
		return
	}
	for _, entryHandle := range control.EntryOrder {
		tmpl, ok := b.templates[entryHandle]
		if !ok || tmpl.ObjectType != objTypeBlockHeader {
			continue
		}
		record := &BlockRecord{Handle: entryHandle, Name: tmpl.fieldString("Name")}
		record.Entities = b.collectBlockEntities(tmpl)
		for _, eh := range record.Entities {
			b.consumed[eh] = true
			if et, ok := b.templates[eh]; ok {
				b.doc.entities[eh] = &Entity{
					Handle:      eh,
					OwnerHandle: entryHandle,
					ClassName:   et.ClassName,
					Fields:      et.Fields,
				}
			}
		}
		b.doc.BlockRecords.Add(entryHandle, record.Name, record)
	}
}

func (b *builder) buildSimpleTable(controlHandle Handle, build func(h Handle, t *Template)) {
	control, ok := b.templates[controlHandle]
	if !ok {
		return
	}
	for _, entryHandle := range control.EntryOrder {
		tmpl, ok := b.templates[entryHandle]
		if !ok {
			b.doc.warnf(controlHandle, "table entry %#x: template not found", uint64(entryHandle))
			continue
		}
		build(entryHandle, tmpl)
	}
}

// collectBlockEntities returns a block header's owned entity handles in
// file order, via the explicit owned-object list for AC18+ or by walking
// the legacy first/next entity chain, capped at entityChainCap steps
// (spec.md section 4.5, "Entity chain traversal"; section 8, property 14).
func (b *builder) collectBlockEntities(blockHeader *Template) []Handle {
	if b.profile.R2004Plus {
		var out []Handle
		for _, h := range blockHeader.EntryOrder {
			if t, ok := b.templates[h]; ok && t.Kind == KindEntity {
				out = append(out, h)
			}
		}
		return out
	}

	first := blockHeader.TailHandles["FirstEntityHandle"]
	last := blockHeader.TailHandles["LastEntityHandle"]
	if first == NullHandle {
		return nil
	}
	var out []Handle
	cur := first
	steps := 0
	for cur != NullHandle && steps < entityChainCap {
		out = append(out, cur)
		tmpl, ok := b.templates[cur]
		if !ok || cur == last {
			break
		}
		cur = tmpl.TailHandles["NextEntityHandle"]
		steps++
	}
	if steps >= entityChainCap {
		b.doc.warnf(blockHeader.Common.Handle, "entity chain exceeded %d steps, truncated", entityChainCap)
	}
	return out
}

// phase5BuildDictionaries instantiates dictionary-shaped templates as
// Objects (spec.md section 4.6, phase 5). Entry-handle resolution for
// categories whose concrete model is out of scope is deferred to
// whatever consumes Object.Fields["Entries"].
func (b *builder) phase5BuildDictionaries() {
	for h, tmpl := range b.templates {
		switch tmpl.Kind {
		case KindDictionary, KindGroup, KindMLineStyle, KindLayout, KindPlotSettings, KindMaterial:
			b.doc.objects[h] = &Object{
				Handle:    h,
				Kind:      tmpl.Kind,
				ClassName: tmpl.ClassName,
				Fields:    tmpl.Fields,
			}
			b.consumed[h] = true
			b.doc.seed.observe(h)
		}
	}
}

// phase6BuildRemainingObjects places every entity not already consumed by
// a block record into the document's entity map, and every other
// template (table controls and table entries aside) into the object map (spec.md
// section 4.6, phase 6).
func (b *builder) phase6BuildRemainingObjects() {
	for h, tmpl := range b.templates {
		if b.consumed[h] {
			continue
		}
		switch tmpl.Kind {
		case KindEntity:
			b.doc.entities[h] = &Entity{
				Handle:      h,
				OwnerHandle: tmpl.Common.OwnerHandle,
				ClassName:   tmpl.ClassName,
				Fields:      tmpl.Fields,
			}
		case KindTableControl, KindTableEntry:
			// Already placed (or deliberately dropped) by phase 4.
		default:
			b.doc.objects[h] = &Object{
				Handle:    h,
				Kind:      tmpl.Kind,
				ClassName: tmpl.ClassName,
				Fields:    tmpl.Fields,
				Raw:       tmpl.Raw,
			}
		}
		b.doc.seed.observe(h)
	}
}

// phase7UpdateHeader rewrites the header-variable handle fields from raw
// form into this build's resolved handles (spec.md section 4.6, phase 7).
// In this model the fields already hold Handle values directly, so this
// phase's job is to fold the parsed header-handles collection into the
// document header that callers read.
func (b *builder) phase7UpdateHeader() {
	// An absent or empty header section leaves hv at its zero value; in
	// that case keep the defaults NewDocument already populated rather
	// than overwriting them with zeros (spec.md section 8 scenario S1
	// expects a minimal file to build a document equivalent to a
	// default-constructed one).
	if b.hv == (HeaderVariables{}) {
		return
	}
	b.doc.Header = b.hv
	b.doc.HeaderHandles = b.hh
	if b.doc.Header.ModelSpaceHandle == NullHandle {
		if ms, ok := b.doc.BlockRecords.GetByName("*Model_Space"); ok {
			b.doc.Header.ModelSpaceHandle = ms.Handle
		}
	}
	if b.doc.Header.PaperSpaceHandle == NullHandle {
		if ps, ok := b.doc.BlockRecords.GetByName("*Paper_Space"); ok {
			b.doc.Header.PaperSpaceHandle = ps.Handle
		}
	}
}
