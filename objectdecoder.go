// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

import "fmt"

// objectDecoder walks the object-record handle queue described by
// spec.md section 4.5, populating a handle-keyed set of Templates.
type objectDecoder struct {
	buf       []byte
	handleMap map[Handle]int64
	classes   *ClassTable
	profile   Profile
	opts      *ReadOptions

	visited   map[Handle]bool
	queue     []Handle
	templates map[Handle]*Template
	seed      *handleSeed

	notifier
}

func newObjectDecoder(buf []byte, handleMap map[Handle]int64, classes *ClassTable, profile Profile, opts *ReadOptions) *objectDecoder {
	return &objectDecoder{
		buf:       buf,
		handleMap: handleMap,
		classes:   classes,
		profile:   profile,
		opts:      opts,
		visited:   make(map[Handle]bool),
		templates: make(map[Handle]*Template),
		seed:      newHandleSeed(),
	}
}

// registerTemplate inserts tmpl under handle, unless that handle is
// already occupied (spec.md section 8 scenario S4, "handle collision
// during template registration"): the colliding template is instead
// reassigned the next free handle and a Warning naming the original
// handle is recorded, so the file's own (corrupt) handle reuse never
// silently drops a record.
func (d *objectDecoder) registerTemplate(handle Handle, tmpl *Template) {
	d.seed.observe(handle)
	if _, exists := d.templates[handle]; exists {
		reassigned := d.seed.allocate()
		d.warnf(handle, "Repeated handle %#x, reassigned to %#x", uint64(handle), uint64(reassigned))
		tmpl.Common.Handle = reassigned
		d.templates[reassigned] = tmpl
		return
	}
	d.templates[handle] = tmpl
}

func (d *objectDecoder) enqueue(h Handle) {
	if h == NullHandle || d.visited[h] {
		return
	}
	d.visited[h] = true
	d.queue = append(d.queue, h)
}

// run decodes every handle reachable from the seed queue, per spec.md
// section 4.5 step 7 ("additional handles ... enqueued for future
// decoding if not already parsed"). In non-failsafe mode, the first
// per-object decode error aborts the whole read (spec.md section 4.5
// "Failsafe mode"; section 6 "failsafe"; section 7, "Fatal ... In strict
// (non-failsafe) mode: any per-object decode error").
func (d *objectDecoder) run(seeds []Handle) (map[Handle]*Template, error) {
	for _, h := range seeds {
		d.enqueue(h)
	}
	for len(d.queue) > 0 {
		h := d.queue[0]
		d.queue = d.queue[1:]
		if err := d.decodeOne(h); err != nil {
			return nil, err
		}
	}
	return d.templates, nil
}

func (d *objectDecoder) decodeOne(handle Handle) error {
	offset, ok := d.handleMap[handle]
	if !ok || offset < 0 || int(offset) >= len(d.buf) {
		d.warnf(handle, "handle %#x: no offset in handle map", uint64(handle))
		return nil
	}

	head := NewBitReader(d.buf[offset:], d.profile)
	length := head.ReadMS()
	head.AlignByte()
	bodyStart := int(offset) + int(head.BitPosition()/8)
	bodyEnd := bodyStart + int(length)
	if bodyEnd > len(d.buf) || bodyStart > bodyEnd {
		err := fmt.Errorf("handle %#x: record length %d out of bounds", uint64(handle), length)
		return d.fail(handle, err)
	}

	r := NewBitReader(d.buf[bodyStart:bodyEnd], d.profile)
	tmpl, err := d.decodeRecord(r, handle)
	if err != nil {
		return d.fail(handle, err)
	}
	if r.Overran() {
		d.warnf(handle, "handle %#x: record decode ran past end of buffer", uint64(handle))
	}
	d.registerTemplate(handle, tmpl)
	return nil
}

// fail records a per-object decode error. In failsafe mode it is a
// Warning and decoding continues with the next handle; otherwise it is
// fatal and wraps ErrObjectDecode for the caller to surface out of Parse
// (spec.md section 7, "Fatal ... In strict (non-failsafe) mode: any
// per-object decode error").
func (d *objectDecoder) fail(handle Handle, err error) error {
	if d.opts != nil && d.opts.Failsafe {
		d.warnf(handle, "handle %#x: decode failed: %v", uint64(handle), err)
		return nil
	}
	return fmt.Errorf("%w: handle %#x: %v", ErrObjectDecode, uint64(handle), err)
}

func (d *objectDecoder) decodeRecord(r *BitReader, handle Handle) (*Template, error) {
	objType := ObjectTypeCode(r.ReadBS())

	className := ""
	isEntity := false
	if objType >= 500 {
		if rec, ok := d.classes.Lookup(uint16(objType)); ok {
			className = rec.CppClassName
			if className == "" {
				className = rec.DXFName
			}
			isEntity = rec.IsEntity
		}
	}

	entry, known := objectHandlers[objType]
	if !known {
		tmpl := newTemplate(objType, KindUnknown)
		tmpl.ClassName = className
		decodeCommon(r, tmpl, handle, d.profile)
		unknownKind := KindUnknown
		if isEntity {
			unknownKind = KindEntity
		}
		if d.keepUnknown(unknownKind) {
			tmpl.Raw = append([]byte(nil), r.data...)
		}
		d.notImplementedf(handle, "object type %d: no concrete decoder, kept as Unknown", objType)
		d.enqueueTail(tmpl)
		return tmpl, nil
	}

	tmpl := newTemplate(objType, entry.kind)
	tmpl.ClassName = className
	decodeCommon(r, tmpl, handle, d.profile)
	entry.handler(r, tmpl, d.profile)
	d.enqueueTail(tmpl)
	return tmpl, nil
}

func (d *objectDecoder) keepUnknown(kind ObjectKind) bool {
	if d.opts == nil {
		return false
	}
	if kind == KindEntity {
		return d.opts.KeepUnknownEntities
	}
	return d.opts.KeepUnknownObjects
}

func (d *objectDecoder) enqueueTail(tmpl *Template) {
	d.enqueue(tmpl.Common.OwnerHandle)
	d.enqueue(tmpl.Common.XDictHandle)
	for _, h := range tmpl.Common.ReactorHandles {
		d.enqueue(h)
	}
	for _, h := range tmpl.TailHandles {
		d.enqueue(h)
	}
	for _, h := range tmpl.EntryOrder {
		d.enqueue(h)
	}
}

// decodeCommon reads the fixed common-object-data block every record
// carries ahead of its type-specific payload (spec.md section 4.5, step 3).
func decodeCommon(r *BitReader, tmpl *Template, handle Handle, profile Profile) {
	tmpl.Common.Handle = handle

	if numXData := r.ReadBS(); numXData > 0 {
		for i := uint16(0); i < numXData; i++ {
			appHandle, _ := r.ReadHandleRef(handle)
			n := int(r.ReadBS())
			tmpl.Common.XData = append(tmpl.Common.XData, XDataEntry{
				AppHandle: appHandle,
				Data:      r.ReadBytes(n),
			})
		}
	}

	if profile.R2004Plus {
		tmpl.Common.ColorIndex = r.ReadBS()
	}

	numReactors := r.ReadBL()
	for i := uint32(0); i < numReactors; i++ {
		h, _ := r.ReadHandleRef(handle)
		tmpl.Common.ReactorHandles = append(tmpl.Common.ReactorHandles, h)
	}

	if profile.R2004Plus {
		tmpl.Common.HasNoLinks = r.ReadBit()
	}

	if r.ReadBit() {
		tmpl.Common.XDictHandle, _ = r.ReadHandleRef(handle)
	}

	if profile.R2007Plus {
		tmpl.Common.Color = r.ReadColor()
	}
	tmpl.Common.OwnerHandle, _ = r.ReadHandleRef(handle)
}

// readName reads the TV name every table-entry/control record begins
// its payload with.
func readName(r *BitReader) string { return r.ReadTV() }

type objectHandlerFunc func(r *BitReader, tmpl *Template, profile Profile)

var objectHandlers = map[ObjectTypeCode]struct {
	handler objectHandlerFunc
	kind    ObjectKind
}{}

func registerHandler(code ObjectTypeCode, kind ObjectKind, fn objectHandlerFunc) {
	objectHandlers[code] = struct {
		handler objectHandlerFunc
		kind    ObjectKind
	}{handler: fn, kind: kind}
}
