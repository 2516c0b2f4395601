// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

import "strings"

// Table is a generic, name- and handle-indexed collection used for each
// of the document's nine standard tables (spec.md section 3, "Document").
// Lookups by name are case-insensitive, matching the format's own
// case-insensitive symbol table semantics.
type Table[T any] struct {
	Handle   Handle // the table-control object's own handle
	byHandle map[Handle]*T
	byName   map[string]*T
	order    []Handle
}

func newTable[T any]() *Table[T] {
	return &Table[T]{
		byHandle: make(map[Handle]*T),
		byName:   make(map[string]*T),
	}
}

// Get returns the entry with the given handle.
func (t *Table[T]) Get(h Handle) (*T, bool) {
	v, ok := t.byHandle[h]
	return v, ok
}

// GetByName returns the entry with the given name (case-insensitive).
func (t *Table[T]) GetByName(name string) (*T, bool) {
	v, ok := t.byName[strings.ToUpper(name)]
	return v, ok
}

// Add inserts or replaces the entry for handle, indexing it under name.
func (t *Table[T]) Add(handle Handle, name string, entry *T) {
	if _, exists := t.byHandle[handle]; !exists {
		t.order = append(t.order, handle)
	}
	t.byHandle[handle] = entry
	t.byName[strings.ToUpper(name)] = entry
}

// Len returns the number of entries in the table.
func (t *Table[T]) Len() int { return len(t.byHandle) }

// Handles returns the table's entries' handles in insertion order.
func (t *Table[T]) Handles() []Handle {
	return append([]Handle(nil), t.order...)
}

// Layer is the resolved, builder-populated form of a LAYER table entry
// (spec.md section 4.6, phase 4).
type Layer struct {
	Handle         Handle
	Name           string
	Flags          uint16
	ColorIndex     uint16
	Color          Color
	LineType       string
	LineTypeHandle Handle
}

// LType is a resolved LTYPE entry.
type LType struct {
	Handle      Handle
	Name        string
	Description string
}

// TextStyle is a resolved STYLE entry.
type TextStyle struct {
	Handle      Handle
	Name        string
	FontName    string
	BigFontName string
	TextHeight  float64
	WidthFactor float64
}

// BlockRecord is a resolved BLOCK_HEADER entry, carrying the ordered
// entity handles owned by this block (spec.md section 4.6, phase 4/6).
type BlockRecord struct {
	Handle   Handle
	Name     string
	Entities []Handle
}

// DimStyle is a resolved DIMSTYLE entry.
type DimStyle struct {
	Handle          Handle
	Name            string
	TextStyleHandle Handle
}

// AppID is a resolved APPID entry.
type AppID struct {
	Handle Handle
	Name   string
}

// View is a resolved VIEW entry.
type View struct {
	Handle Handle
	Name   string
	Height float64
	Width  float64
}

// VPort is a resolved VPORT entry.
type VPort struct {
	Handle Handle
	Name   string
	Height float64
}

// UCS is a resolved UCS entry.
type UCS struct {
	Handle Handle
	Name   string
	Origin [3]float64
}
