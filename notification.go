// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

import "fmt"

// Severity classifies a Notification. Grounded on
// original_source/src/notification.rs, which documents the same four
// levels this library's decode pipeline distinguishes (spec.md section 6).
type Severity uint8

const (
	// SeverityNotImplemented marks a known object type the current
	// implementation cannot populate in full detail. The template is
	// still retained (spec.md section 7, "Informational").
	SeverityNotImplemented Severity = iota

	// SeverityNotSupported marks a feature recognized but deliberately
	// unhandled (e.g. a data directory this reader chooses not to parse).
	SeverityNotSupported

	// SeverityWarning marks a recoverable problem; decode continues.
	SeverityWarning

	// SeverityError marks a problem serious enough to note even though the
	// surrounding operation did not abort (used sparingly; most fatal
	// conditions are Go errors, not notifications).
	SeverityError
)

// String names the severity.
func (s Severity) String() string {
	switch s {
	case SeverityNotImplemented:
		return "NotImplemented"
	case SeverityNotSupported:
		return "NotSupported"
	case SeverityWarning:
		return "Warning"
	case SeverityError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Notification is one entry in a Document's append-only diagnostics
// collection (spec.md section 6). Handle is NullHandle when the
// notification is not associated with a specific object.
type Notification struct {
	Severity Severity
	Message  string
	Handle   Handle
}

func (n Notification) String() string {
	if n.Handle == NullHandle {
		return fmt.Sprintf("[%s] %s", n.Severity, n.Message)
	}
	return fmt.Sprintf("[%s] %s (handle %#x)", n.Severity, n.Message, uint64(n.Handle))
}

// notifier accumulates Notifications. File, objectDecoder and Document
// each embed one; buildDocument copies the File's and the decoder's
// notifications onto the Document.
type notifier struct {
	notifications []Notification
}

func (n *notifier) notify(severity Severity, handle Handle, format string, args ...interface{}) {
	n.notifications = append(n.notifications, Notification{
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
		Handle:   handle,
	})
}

func (n *notifier) warnf(handle Handle, format string, args ...interface{}) {
	n.notify(SeverityWarning, handle, format, args...)
}

func (n *notifier) notImplementedf(handle Handle, format string, args ...interface{}) {
	n.notify(SeverityNotImplemented, handle, format, args...)
}
