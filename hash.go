// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// ContentHash returns a deterministic digest over a document's entities
// (handle, owner handle, class name) and objects (handle, class name),
// independent of map iteration order. Field values are not hashed.
// It is intended for change detection between two loads of the same
// logical drawing, not as a format checksum.
func (doc *Document) ContentHash() uint64 {
	h := xxhash.New()

	handles := make([]Handle, 0, len(doc.entities))
	for handle := range doc.entities {
		handles = append(handles, handle)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	var buf [8]byte
	writeHandle := func(handle Handle) {
		binary.LittleEndian.PutUint64(buf[:], uint64(handle))
		h.Write(buf[:])
	}

	for _, handle := range handles {
		e := doc.entities[handle]
		writeHandle(e.Handle)
		writeHandle(e.OwnerHandle)
		h.WriteString(e.ClassName)
	}

	objHandles := make([]Handle, 0, len(doc.objects))
	for handle := range doc.objects {
		objHandles = append(objHandles, handle)
	}
	sort.Slice(objHandles, func(i, j int) bool { return objHandles[i] < objHandles[j] })
	for _, handle := range objHandles {
		o := doc.objects[handle]
		writeHandle(o.Handle)
		h.WriteString(o.ClassName)
	}

	return h.Sum64()
}
