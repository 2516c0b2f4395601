// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

// ObjectTypeCode identifies a record's concrete shape. Codes 1-499 are
// this library's own fixed assignment for the standard table/control/
// entity kinds it decodes in full (spec.md section 1 places the entity
// and table-entry domain model itself out of scope, so no external
// numbering is mandated); codes >= 500 are resolved through the class
// table built from AcDb:Classes (spec.md section 4.5).
type ObjectTypeCode uint16

const (
	objTypeUnused ObjectTypeCode = iota

	objTypeLayerControl
	objTypeLayer
	objTypeLTypeControl
	objTypeLType
	objTypeStyleControl
	objTypeStyle
	objTypeBlockControl
	objTypeBlockHeader
	objTypeBlock
	objTypeEndBlk
	objTypeDimStyleControl
	objTypeDimStyle
	objTypeAppIDControl
	objTypeAppID
	objTypeViewControl
	objTypeView
	objTypeVPortControl
	objTypeVPort
	objTypeUCSControl
	objTypeUCS
	objTypeLine
	objTypeDictionary
	objTypeGroup
	objTypeMLineStyle
	objTypeLayout
	objTypePlotSettings
	objTypeMaterial
)

// ObjectKind groups ObjectTypeCodes into the builder-relevant categories
// spec.md section 3 names for Template ("entity subtypes, table-control
// object, table-entry subtypes, dictionary, layout, group, etc.").
type ObjectKind uint8

const (
	KindUnknown ObjectKind = iota
	KindTableControl
	KindTableEntry
	KindEntity
	KindDictionary
	KindGroup
	KindMLineStyle
	KindLayout
	KindPlotSettings
	KindMaterial
)

// XDataEntry is one extended-data block, grouped by the owning APPID
// handle (spec.md section 4.5, "common object data").
type XDataEntry struct {
	AppHandle Handle
	Data      []byte
}

// TemplateCommon is the fixed header every Template carries regardless of
// its concrete type (spec.md section 3, "Template").
type TemplateCommon struct {
	Handle          Handle
	OwnerHandle     Handle
	XData           []XDataEntry
	ReactorHandles  []Handle
	XDictHandle     Handle
	ColorHandles    []Handle
	HasNoLinks      bool
	ColorIndex      uint16
	Color           Color
	Lineweight      uint8
	LinetypeHandle  Handle
	PlotstyleHandle Handle
	MaterialHandle  Handle
}

// Template is the intermediate, graph-unresolved decoded form of one
// object record (spec.md section 3, "Template"). TailHandles carries the
// type-specific handle references read at the record's tail (spec.md
// section 4.5, step 5); Fields carries every other decoded value, keyed
// by name, since the concrete per-type schema is out of this library's
// scope (spec.md section 1).
type Template struct {
	Common     TemplateCommon
	ObjectType ObjectTypeCode
	ClassName  string
	Kind       ObjectKind

	Fields      map[string]interface{}
	TailHandles map[string]Handle
	EntryOrder  []Handle // owned handles in file order: table-control entries, R2004+ block-header entities, dictionary and group members

	// Raw holds the undecoded payload for the Unknown fallback variant
	// (spec.md section 9, "Polymorphic object types").
	Raw []byte
}

func newTemplate(objType ObjectTypeCode, kind ObjectKind) *Template {
	return &Template{
		ObjectType:  objType,
		Kind:        kind,
		Fields:      make(map[string]interface{}),
		TailHandles: make(map[string]Handle),
	}
}

func (t *Template) fieldString(name string) string {
	if v, ok := t.Fields[name].(string); ok {
		return v
	}
	return ""
}

func (t *Template) fieldUint16(name string) uint16 {
	if v, ok := t.Fields[name].(uint16); ok {
		return v
	}
	return 0
}

func (t *Template) fieldBool(name string) bool {
	if v, ok := t.Fields[name].(bool); ok {
		return v
	}
	return false
}
