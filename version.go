// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

// Version identifies a DWG file generation by its 6-byte magic tag.
type Version uint8

// Supported generations, R13 through R2018.
const (
	VersionUnknown Version = iota
	VersionR13             // AC1012
	VersionR14             // AC1014
	VersionR2000           // AC1015
	VersionR2004           // AC1018
	VersionR2007           // AC1021
	VersionR2010           // AC1024
	VersionR2013           // AC1027
	VersionR2018           // AC1032
)

var versionMagic = map[string]Version{
	"AC1012": VersionR13,
	"AC1014": VersionR14,
	"AC1015": VersionR2000,
	"AC1018": VersionR2004,
	"AC1021": VersionR2007,
	"AC1024": VersionR2010,
	"AC1027": VersionR2013,
	"AC1032": VersionR2018,
}

var versionString = map[Version]string{
	VersionR13:   "AC1012",
	VersionR14:   "AC1014",
	VersionR2000: "AC1015",
	VersionR2004: "AC1018",
	VersionR2007: "AC1021",
	VersionR2010: "AC1024",
	VersionR2013: "AC1027",
	VersionR2018: "AC1032",
}

// String returns the 6-byte magic tag for the version, or "" for
// VersionUnknown.
func (v Version) String() string {
	return versionString[v]
}

// ParseVersion maps a 6-byte magic tag (e.g. "AC1015") to a Version. It
// returns VersionUnknown, ErrUnsupportedVersion for anything else.
func ParseVersion(magic string) (Version, error) {
	if v, ok := versionMagic[magic]; ok {
		return v, nil
	}
	return VersionUnknown, ErrUnsupportedVersion
}

// generation is the container format family a Version belongs to. It
// governs file-header shape, page/section-map presence, and compression.
type generation uint8

const (
	genAC15 generation = iota // R13, R14, R2000
	genAC18                   // R2004
	genAC21                   // R2007+
)

func (v Version) generation() generation {
	switch v {
	case VersionR13, VersionR14, VersionR2000:
		return genAC15
	case VersionR2004:
		return genAC18
	default:
		return genAC21
	}
}

// Profile precomputes every version-conditional capability flag used by
// the bit-stream reader and object decoder. One Profile is built per read
// and threaded through every decoder so no call site compares Versions
// directly (spec.md "Version-conditional branching").
type Profile struct {
	Version Version

	R2000Plus bool
	R2004Plus bool
	R2007Plus bool
	R2010Plus bool
	R2013Plus bool
	R2018Plus bool

	PreR2000 bool
	PreR2004 bool
	PreR2007 bool
	PreR2010 bool
	PreR2013 bool
	PreR2018 bool
}

// NewProfile derives the full capability-flag set for v.
func NewProfile(v Version) Profile {
	p := Profile{Version: v}
	p.R2000Plus = v >= VersionR2000
	p.R2004Plus = v >= VersionR2004
	p.R2007Plus = v >= VersionR2007
	p.R2010Plus = v >= VersionR2010
	p.R2013Plus = v >= VersionR2013
	p.R2018Plus = v >= VersionR2018
	p.PreR2000 = !p.R2000Plus
	p.PreR2004 = !p.R2004Plus
	p.PreR2007 = !p.R2007Plus
	p.PreR2010 = !p.R2010Plus
	p.PreR2013 = !p.R2013Plus
	p.PreR2018 = !p.R2018Plus
	return p
}
