// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

// Entity is a resolved, graph-complete graphical object: its owner
// handle has been rewritten to the real block record it belongs to
// (spec.md section 3, invariant 2).
type Entity struct {
	Handle      Handle
	OwnerHandle Handle
	ClassName   string
	Fields      map[string]interface{}
}

// Object is a resolved, non-graphical item (dictionary, layout, group,
// mline style, plot settings, material, or an opaque Unknown payload).
type Object struct {
	Handle    Handle
	Kind      ObjectKind
	ClassName string
	Fields    map[string]interface{}
	Raw       []byte
}

// Document is the fully resolved result of a read: every handle field
// has been rewritten from raw form to a value that either resolves in
// this Document or is recorded as dangling in Notifications (spec.md
// section 3, "Document").
type Document struct {
	Version Version
	Profile Profile

	Header        HeaderVariables
	HeaderHandles HeaderHandles
	Classes       *ClassTable

	Layers       *Table[Layer]
	LTypes       *Table[LType]
	Styles       *Table[TextStyle]
	BlockRecords *Table[BlockRecord]
	DimStyles    *Table[DimStyle]
	AppIDs       *Table[AppID]
	Views        *Table[View]
	VPorts       *Table[VPort]
	UCSs         *Table[UCS]

	// SummaryInfoRaw, AppInfoRaw, and PreviewRaw carry sections whose
	// internal layout is outside the core object graph: decompressed
	// bytes are exposed as-is rather than field-parsed.
	SummaryInfoRaw []byte
	AppInfoRaw     []byte
	PreviewRaw     []byte

	entities map[Handle]*Entity
	objects  map[Handle]*Object

	seed *handleSeed

	resolved bool

	notifier
}

// NewDocument returns an empty document pre-populated with the standard
// entries every table must carry (spec.md section 8, invariant 4).
func NewDocument(v Version) *Document {
	doc := &Document{
		Version:      v,
		Profile:      NewProfile(v),
		Classes:      newClassTable(),
		Layers:       newTable[Layer](),
		LTypes:       newTable[LType](),
		Styles:       newTable[TextStyle](),
		BlockRecords: newTable[BlockRecord](),
		DimStyles:    newTable[DimStyle](),
		AppIDs:       newTable[AppID](),
		Views:        newTable[View](),
		VPorts:       newTable[VPort](),
		UCSs:         newTable[UCS](),
		entities:     make(map[Handle]*Entity),
		objects:      make(map[Handle]*Object),
		seed:         newHandleSeed(),
	}
	doc.populateStandardEntries()
	return doc
}

func (doc *Document) populateStandardEntries() {
	layer0 := doc.seed.allocate()
	doc.Layers.Add(layer0, "0", &Layer{Handle: layer0, Name: "0", ColorIndex: 7})

	continuous := doc.seed.allocate()
	doc.LTypes.Add(continuous, "Continuous", &LType{Handle: continuous, Name: "Continuous"})
	byLayer := doc.seed.allocate()
	doc.LTypes.Add(byLayer, "ByLayer", &LType{Handle: byLayer, Name: "ByLayer"})
	byBlock := doc.seed.allocate()
	doc.LTypes.Add(byBlock, "ByBlock", &LType{Handle: byBlock, Name: "ByBlock"})

	style := doc.seed.allocate()
	doc.Styles.Add(style, "Standard", &TextStyle{Handle: style, Name: "Standard", FontName: "txt"})

	modelSpace := doc.seed.allocate()
	doc.BlockRecords.Add(modelSpace, "*Model_Space", &BlockRecord{Handle: modelSpace, Name: "*Model_Space"})
	paperSpace := doc.seed.allocate()
	doc.BlockRecords.Add(paperSpace, "*Paper_Space", &BlockRecord{Handle: paperSpace, Name: "*Paper_Space"})

	dimStyle := doc.seed.allocate()
	doc.DimStyles.Add(dimStyle, "Standard", &DimStyle{Handle: dimStyle, Name: "Standard"})

	appID := doc.seed.allocate()
	doc.AppIDs.Add(appID, "ACAD", &AppID{Handle: appID, Name: "ACAD"})

	vport := doc.seed.allocate()
	doc.VPorts.Add(vport, "*Active", &VPort{Handle: vport, Name: "*Active"})

	doc.Header.ModelSpaceHandle = modelSpace
	doc.Header.PaperSpaceHandle = paperSpace
	doc.Header.CurrentLayerHandle = layer0
	doc.Header.CurrentTextStyleHandle = style
	doc.Header.CLayerHandle = layer0
}

// ModelSpace returns the document's model-space block record.
func (doc *Document) ModelSpace() (*BlockRecord, bool) {
	return doc.BlockRecords.Get(doc.Header.ModelSpaceHandle)
}

// AddEntity inserts e, allocating a handle first if e.Handle is
// NullHandle (spec.md section 6, "add_entity").
func (doc *Document) AddEntity(e *Entity) Handle {
	if e.Handle == NullHandle {
		e.Handle = doc.seed.allocate()
	} else {
		doc.seed.observe(e.Handle)
	}
	doc.entities[e.Handle] = e
	return e.Handle
}

// RemoveEntity deletes the entity with the given handle, if present.
func (doc *Document) RemoveEntity(h Handle) {
	delete(doc.entities, h)
}

// GetEntity returns the entity with the given handle.
func (doc *Document) GetEntity(h Handle) (*Entity, bool) {
	e, ok := doc.entities[h]
	return e, ok
}

// Entities returns every entity currently in the document, in
// unspecified order.
func (doc *Document) Entities() []*Entity {
	out := make([]*Entity, 0, len(doc.entities))
	for _, e := range doc.entities {
		out = append(out, e)
	}
	return out
}

// AddObject inserts o into the object map, allocating a handle first if
// needed.
func (doc *Document) AddObject(o *Object) Handle {
	if o.Handle == NullHandle {
		o.Handle = doc.seed.allocate()
	} else {
		doc.seed.observe(o.Handle)
	}
	doc.objects[o.Handle] = o
	return o.Handle
}

// GetObject returns the object with the given handle.
func (doc *Document) GetObject(h Handle) (*Object, bool) {
	o, ok := doc.objects[h]
	return o, ok
}

// Objects returns every non-graphical object currently in the document.
func (doc *Document) Objects() []*Object {
	out := make([]*Object, 0, len(doc.objects))
	for _, o := range doc.objects {
		out = append(out, o)
	}
	return out
}

// NextHandle returns the handle the next allocation would produce,
// without consuming it (spec.md section 3, "next_handle").
func (doc *Document) NextHandle() Handle { return doc.seed.peek() }

// ResolveReferences asserts invariants 2-4 (spec.md section 6,
// "resolve_references"): every entity with a null owner is assigned the
// model-space block record, and the handle seed is advanced past every
// handle actually present in the document. Calling it twice is a no-op
// (spec.md section 8, property 9): the second call records no new
// diagnostics and does not advance next_handle.
func (doc *Document) ResolveReferences() {
	modelSpace := doc.Header.ModelSpaceHandle

	for _, e := range doc.entities {
		doc.seed.observe(e.Handle)
		if e.OwnerHandle == NullHandle {
			e.OwnerHandle = modelSpace
			if !doc.resolved {
				doc.warnf(e.Handle, "entity %#x: null owner, assigned to model space", uint64(e.Handle))
			}
		}
		doc.seed.observe(e.OwnerHandle)
	}
	for _, o := range doc.objects {
		doc.seed.observe(o.Handle)
	}
	doc.resolved = true
}
