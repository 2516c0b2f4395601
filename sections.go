// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

// Well-known logical section names (spec.md GLOSSARY, "Section").
const (
	sectionHeader      = "AcDb:Header"
	sectionClasses     = "AcDb:Classes"
	sectionHandles     = "AcDb:Handles"
	sectionObjects     = "AcDb:AcDbObjects"
	sectionSummaryInfo = "AcDb:SummaryInfo"
	sectionPreview     = "AcDb:Preview"
	sectionAppInfo     = "AcDb:AppInfo"
)
