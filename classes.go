// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

// classSentinel marks the start of the AcDb:Classes section body
// (spec.md section 4.4, "sentinel").
var classSentinel = [16]byte{
	0x8D, 0xA1, 0xC4, 0xB8, 0xC4, 0xA9, 0xF8, 0xC5,
	0xC0, 0xDC, 0xF4, 0x5F, 0xE7, 0xCF, 0xB6, 0x8A,
}

// ClassRecord describes one non-fixed object type, addressed by codes at
// or above 500 (spec.md section 4.5: "class-table indirection for codes
// >= 500").
type ClassRecord struct {
	ClassNumber   uint16
	ProxyFlags    uint16
	AppName       string
	CppClassName  string
	DXFName       string
	WasZombie     bool
	IsEntity      bool
	ItemClassID   uint16
	DWGVersion    uint32 // R2004+
	MaintVersion  uint32 // R2004+
	InstanceCount uint32 // R2010+ ("number of objects created of this type")
}

// ClassTable maps the class-number offset a widened object-type code
// carries (objectType-500) to its ClassRecord.
type ClassTable struct {
	byOffset map[uint16]*ClassRecord
}

func newClassTable() *ClassTable {
	return &ClassTable{byOffset: make(map[uint16]*ClassRecord)}
}

// Lookup returns the ClassRecord for a raw object-type code, if it is in
// the non-fixed range (>= 500) and known.
func (c *ClassTable) Lookup(objectType uint16) (*ClassRecord, bool) {
	if objectType < 500 {
		return nil, false
	}
	r, ok := c.byOffset[objectType-500]
	return r, ok
}

// parseClasses decodes the AcDb:Classes section body into a ClassTable.
// The section is sentinel-framed and carries a BL giving its size in bits, followed
// by a flat sequence of per-class records whose field width grows with
// version (spec.md section 4.5 and the per-primitive table in section
// 4.4).
func parseClasses(data []byte, profile Profile) (*ClassTable, []Notification) {
	table := newClassTable()
	var notes []Notification

	if len(data) == 0 {
		return table, notes
	}

	r := NewBitReader(data, profile)
	if err := r.ReadSentinel(classSentinel); err != nil {
		notes = append(notes, Notification{Severity: SeverityWarning, Message: "classes section: bad sentinel"})
		return table, notes
	}

	sizeInBits := r.ReadBL()
	_ = sizeInBits
	if profile.R2010Plus {
		_ = r.ReadBL() // maximum class number, informational only
		_ = r.ReadBit()
		_ = r.ReadBit()
	}

	offset := uint16(0)
	for {
		if r.Overran() {
			break
		}
		classNumber := r.ReadBS()
		if classNumber == 0 {
			break
		}
		proxyFlags := r.ReadBS()
		appName := r.ReadTV()
		cppName := r.ReadTV()
		dxfName := r.ReadTV()
		wasZombie := r.ReadBit()
		itemClassID := r.ReadBS()

		rec := &ClassRecord{
			ClassNumber:  classNumber,
			ProxyFlags:   proxyFlags,
			AppName:      appName,
			CppClassName: cppName,
			DXFName:      dxfName,
			WasZombie:    wasZombie,
			IsEntity:     itemClassID == 0x1F2,
			ItemClassID:  itemClassID,
		}
		if profile.R2004Plus {
			rec.DWGVersion = r.ReadBL()
			rec.MaintVersion = r.ReadBL()
			_ = r.ReadBL() // unknown
			_ = r.ReadBL() // unknown
		}
		if profile.R2010Plus {
			rec.InstanceCount = r.ReadBL()
		}

		table.byOffset[offset] = rec
		offset++
		if r.Overran() {
			notes = append(notes, Notification{Severity: SeverityWarning, Message: "classes section: truncated record"})
			break
		}
	}

	return table, notes
}
