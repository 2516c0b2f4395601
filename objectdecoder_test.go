// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegisterTemplateHandleCollision covers spec.md section 8 scenario
// S4: registering a second template under an already-occupied handle
// reassigns it a fresh handle and records one Warning whose text contains
// "Repeated handle".
func TestRegisterTemplateHandleCollision(t *testing.T) {
	dec := newObjectDecoder(nil, nil, newClassTable(), NewProfile(VersionR2000), nil)

	first := newTemplate(objTypeLine, KindEntity)
	first.Common.Handle = 0x42
	dec.registerTemplate(0x42, first)

	second := newTemplate(objTypeLine, KindEntity)
	second.Common.Handle = 0x42
	dec.registerTemplate(0x42, second)

	require.Len(t, dec.notifications, 1)
	assert.Equal(t, SeverityWarning, dec.notifications[0].Severity)
	assert.Contains(t, dec.notifications[0].Message, "Repeated handle")

	got, ok := dec.templates[0x42]
	require.True(t, ok)
	assert.Same(t, first, got)

	var reassigned *Template
	for h, tmpl := range dec.templates {
		if h != 0x42 {
			reassigned = tmpl
		}
	}
	require.NotNil(t, reassigned)
	assert.Same(t, second, reassigned)
	assert.Greater(t, uint64(reassigned.Common.Handle), uint64(firstAllocatableHandle))
	assert.True(t, strings.Contains(dec.notifications[0].Message, "0x42"))
}

func TestObjectDecoderKeepUnknown(t *testing.T) {
	decNoKeep := newObjectDecoder(nil, nil, newClassTable(), NewProfile(VersionR2000), nil)
	assert.False(t, decNoKeep.keepUnknown(KindEntity))
	assert.False(t, decNoKeep.keepUnknown(KindUnknown))

	decKeep := newObjectDecoder(nil, nil, newClassTable(), NewProfile(VersionR2000), &ReadOptions{
		KeepUnknownEntities: true,
	})
	assert.True(t, decKeep.keepUnknown(KindEntity))
	assert.False(t, decKeep.keepUnknown(KindUnknown))
}

func TestObjectDecoderUnknownHandleNoOffset(t *testing.T) {
	dec := newObjectDecoder([]byte{}, map[Handle]int64{}, newClassTable(), NewProfile(VersionR2000), nil)
	got, err := dec.run([]Handle{0x99})
	require.NoError(t, err)
	assert.Empty(t, got)
	require.Len(t, dec.notifications, 1)
	assert.Equal(t, SeverityWarning, dec.notifications[0].Severity)
}

// badRecordBuf encodes a modular-short record length (5000) far larger
// than the 10-byte buffer it heads, so decodeOne's bounds check
// always fails regardless of Failsafe.
func badRecordBuf() []byte {
	return []byte{0x13, 0x88, 0, 0, 0, 0, 0, 0, 0, 0}
}

// TestObjectDecoderNonFailsafeAbortsOnDecodeError covers spec.md section
// 4.5 ("Failsafe mode. ... When disabled, the first error aborts"),
// section 6 (failsafe=false aborts the read), and section 7 ("In strict
// (non-failsafe) mode: any per-object decode error" is Fatal): a single
// bad record terminates run with a wrapped ErrObjectDecode instead of
// being dropped as a Warning.
func TestObjectDecoderNonFailsafeAbortsOnDecodeError(t *testing.T) {
	buf := badRecordBuf()
	dec := newObjectDecoder(buf, map[Handle]int64{0x10: 0}, newClassTable(), NewProfile(VersionR2000), &ReadOptions{Failsafe: false})

	got, err := dec.run([]Handle{0x10})
	require.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrObjectDecode)
}

// TestObjectDecoderFailsafeContinuesOnDecodeError covers the complement:
// with Failsafe enabled, the same bad record becomes a Warning and run
// completes without error (spec.md section 7, "In failsafe mode:
// per-object decode errors").
func TestObjectDecoderFailsafeContinuesOnDecodeError(t *testing.T) {
	buf := badRecordBuf()
	dec := newObjectDecoder(buf, map[Handle]int64{0x10: 0}, newClassTable(), NewProfile(VersionR2000), &ReadOptions{Failsafe: true})

	got, err := dec.run([]Handle{0x10})
	require.NoError(t, err)
	assert.Empty(t, got)
	require.Len(t, dec.notifications, 1)
	assert.Equal(t, SeverityWarning, dec.notifications[0].Severity)
}
