// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

// headerSentinel frames the AcDb:Header section body.
var headerSentinel = [16]byte{
	0xCF, 0x7B, 0x1F, 0x23, 0xFD, 0xDE, 0x38, 0xA9,
	0x5F, 0x7C, 0x68, 0xB8, 0x4E, 0x6D, 0x33, 0x5F,
}

// HeaderVariables is the drawing-settings bag every file carries (spec.md
// section 3, "Header-variable collection"). The real format carries on
// the order of 300 fields; this holds the subset the document model and
// the builder actually consume (extents, standard-table handles, units,
// and the fields the testable scenarios in spec.md section 8 reference),
// parsed in the same flat, version-branching order the full field set
// would use.
type HeaderVariables struct {
	Requires         string
	InsBase          [3]float64
	ExtMin           [3]float64
	ExtMax           [3]float64
	LimMin           [2]float64
	LimMax           [2]float64
	Elevation        float64
	OrthoMode        bool
	RegenMode        bool
	FillMode         bool
	QuickTextMode    bool
	MirrText         bool
	WorldView        bool
	TileMode         bool
	PLineGen         bool
	PSLTScale        bool
	LineweightGlobal uint16
	InsUnits         uint16
	CEColorIndex     uint16
	CELtypeScale     float64
	DimScale         float64
	DimASZ           float64
	DimTXT           float64
	TextSize         float64
	TextStyleName    string
	CurrentLayer     string
	CodePage         uint16
	TDCreate         float64
	TDUpdate         float64

	ModelSpaceHandle       Handle
	PaperSpaceHandle       Handle
	CurrentLayerHandle     Handle
	CurrentTextStyleHandle Handle
	CLayerHandle           Handle
	CurrentLinetypeHandle  Handle
	DimStyleHandle         Handle
}

// HeaderHandles is the ancillary named-handle table spec.md section 3
// describes ("Header-handles collection"): control objects, dictionary
// roots, and other named references the builder resolves in phase 7.
// Real files carry roughly 60 such references; this holds the subset
// phases 3 and 7 consume.
type HeaderHandles struct {
	LayerControl     Handle
	LTypeControl     Handle
	StyleControl     Handle
	BlockControl     Handle
	DimStyleControl  Handle
	AppIDControl     Handle
	ViewControl      Handle
	VPortControl     Handle
	UCSControl       Handle
	NamedObjectsDict Handle
	GroupDict        Handle
	MLineStyleDict   Handle
	LayoutDict       Handle
}

// parseHeaderVariables decodes the AcDb:Header section body. Field order
// and presence branch on profile exactly as spec.md section 3 describes;
// a short or malformed section yields defaults plus a Warning rather than
// a fatal error (spec.md section 7, "Missing section descriptor for an
// optional section").
func parseHeaderVariables(data []byte, profile Profile) (HeaderVariables, HeaderHandles, []Notification) {
	var hv HeaderVariables
	var hh HeaderHandles
	var notes []Notification

	if len(data) == 0 {
		// An empty (but present) header section yields an all-defaults
		// HeaderVariables with no diagnostic, matching spec.md section 8
		// scenario S1's minimal-file expectation of zero notifications.
		return hv, hh, notes
	}

	r := NewBitReader(data, profile)
	if err := r.ReadSentinel(headerSentinel); err != nil {
		notes = append(notes, Notification{Severity: SeverityWarning, Message: "header section: bad sentinel"})
		return hv, hh, notes
	}

	_ = r.ReadBL() // size in bits, informational
	if profile.R2007Plus {
		_ = r.ReadRawDouble() // unknown R2007+ preamble field
	}

	hv.Requires = r.ReadTV()
	hv.InsBase = r.Read3BD()
	hv.ExtMin = r.Read3BD()
	hv.ExtMax = r.Read3BD()
	hv.LimMin = r.Read2BD()
	hv.LimMax = r.Read2BD()
	hv.Elevation = r.ReadBD()

	hv.OrthoMode = r.ReadBit()
	hv.RegenMode = r.ReadBit()
	hv.FillMode = r.ReadBit()
	hv.QuickTextMode = r.ReadBit()
	hv.MirrText = r.ReadBit()
	hv.WorldView = r.ReadBit()
	hv.TileMode = r.ReadBit()
	hv.PLineGen = r.ReadBit()
	hv.PSLTScale = r.ReadBit()

	hv.LineweightGlobal = r.ReadBS()
	hv.InsUnits = r.ReadBS()
	hv.CEColorIndex = r.ReadBS()
	hv.CELtypeScale = r.ReadBD()

	hv.DimScale = r.ReadBD()
	hv.DimASZ = r.ReadBD()
	hv.DimTXT = r.ReadBD()
	hv.TextSize = r.ReadBD()
	hv.TextStyleName = r.ReadTV()
	hv.CurrentLayer = r.ReadTV()
	hv.CodePage = r.ReadBS()
	hv.TDCreate = r.ReadRawDouble()
	hv.TDUpdate = r.ReadRawDouble()

	hh.LayerControl, _ = r.ReadHandleRef(NullHandle)
	hh.LTypeControl, _ = r.ReadHandleRef(NullHandle)
	hh.StyleControl, _ = r.ReadHandleRef(NullHandle)
	hh.BlockControl, _ = r.ReadHandleRef(NullHandle)
	hh.DimStyleControl, _ = r.ReadHandleRef(NullHandle)
	hh.AppIDControl, _ = r.ReadHandleRef(NullHandle)
	hh.ViewControl, _ = r.ReadHandleRef(NullHandle)
	hh.VPortControl, _ = r.ReadHandleRef(NullHandle)
	hh.UCSControl, _ = r.ReadHandleRef(NullHandle)
	hh.NamedObjectsDict, _ = r.ReadHandleRef(NullHandle)

	hv.ModelSpaceHandle, _ = r.ReadHandleRef(NullHandle)
	hv.PaperSpaceHandle, _ = r.ReadHandleRef(NullHandle)
	hv.CurrentLayerHandle, _ = r.ReadHandleRef(NullHandle)
	hv.CurrentTextStyleHandle, _ = r.ReadHandleRef(NullHandle)
	hv.CurrentLinetypeHandle, _ = r.ReadHandleRef(NullHandle)
	hv.DimStyleHandle, _ = r.ReadHandleRef(NullHandle)

	if profile.R2000Plus {
		hh.GroupDict, _ = r.ReadHandleRef(NullHandle)
		hh.MLineStyleDict, _ = r.ReadHandleRef(NullHandle)
	}
	if profile.R2004Plus {
		hh.LayoutDict, _ = r.ReadHandleRef(NullHandle)
	}

	if r.Overran() {
		notes = append(notes, Notification{Severity: SeverityWarning, Message: "header section: truncated, fields left at defaults"})
	}

	return hv, hh, notes
}
