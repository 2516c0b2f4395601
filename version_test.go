// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		magic string
		want  Version
	}{
		{"AC1012", VersionR13},
		{"AC1014", VersionR14},
		{"AC1015", VersionR2000},
		{"AC1018", VersionR2004},
		{"AC1021", VersionR2007},
		{"AC1024", VersionR2010},
		{"AC1027", VersionR2013},
		{"AC1032", VersionR2018},
	}
	for _, tt := range tests {
		t.Run(tt.magic, func(t *testing.T) {
			got, err := ParseVersion(tt.magic)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.magic, got.String())
		})
	}
}

// TestParseVersionUnsupported covers spec.md section 8, boundary 10:
// an unrecognized magic fails with ErrUnsupportedVersion.
func TestParseVersionUnsupported(t *testing.T) {
	_, err := ParseVersion("ACZZZZ")
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestProfileMonotonic(t *testing.T) {
	versions := []Version{
		VersionR13, VersionR14, VersionR2000, VersionR2004,
		VersionR2007, VersionR2010, VersionR2013, VersionR2018,
	}
	flags := func(p Profile) []bool {
		return []bool{p.R2000Plus, p.R2004Plus, p.R2007Plus, p.R2010Plus, p.R2013Plus, p.R2018Plus}
	}
	var prev []bool
	for _, v := range versions {
		cur := flags(NewProfile(v))
		if prev != nil {
			for i := range cur {
				// Once a flag is true for an earlier (lower) version it
				// must stay true for every later version (spec.md
				// section 8, property 5: "the flag set is monotonic in
				// the version order").
				if prev[i] {
					assert.Truef(t, cur[i], "flag %d regressed at version %v", i, v)
				}
			}
		}
		prev = cur
		p := NewProfile(v)
		assert.Equal(t, !p.R2000Plus, p.PreR2000)
		assert.Equal(t, !p.R2004Plus, p.PreR2004)
	}
}
