// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDecompressAC21LiteralVector mirrors TestDecompressAC18LiteralVector
// for the AC21 opcode scheme, confirming the two variants don't collide on
// interpretation (spec.md section 8 scenario S6, generalized to R2007+).
func TestDecompressAC21LiteralVector(t *testing.T) {
	want := []byte("OPENCADKIT-DWG21")
	require.Len(t, want, 16)

	opcode := byte(len(want)<<1) | 0x01
	input := append([]byte{opcode}, want...)
	input = append(input, 0x00)

	got, err := decompressAC21(input, len(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecompressAC21BackReference(t *testing.T) {
	// "AB" literal, then a back-reference (class 1 => length 3) at
	// distance 2 reproduces "ABA".
	input := []byte{
		(2 << 1) | 0x01, 'A', 'B', // literal run, n=2
		(1 << 1), 0x01, 0x00, 0x00, // back-reference, length=3, distance word 1 => distance 2
		0x00,
	}
	got, err := decompressAC21(input, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("ABABA"), got)
}

func TestDecompressAC21TruncatedInput(t *testing.T) {
	input := []byte{(4 << 1) | 0x01, 'A', 'B'}
	_, err := decompressAC21(input, 4)
	assert.ErrorIs(t, err, ErrCorruptCompression)
}
