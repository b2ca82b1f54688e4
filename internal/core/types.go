// Package core implements the CSV import pipeline for course meta-enrolment
// links. It validates file shape, interprets per-line operations, and applies
// add/delete/modify semantics against a relationship store, accumulating a
// human-readable report. This package has no HTTP or database dependencies;
// collaborators are supplied as interfaces.
package core

import (
	"context"
	"errors"
	"io"
)

// FieldCount is the exact number of comma-separated fields per import line.
const FieldCount = 5

// DisabledFlag is the sentinel value meaning "create/set this link disabled".
// Any other value in the disable-flag field means enabled.
const DisabledFlag = "1"

// LinkKindMeta identifies a parent->child meta-enrolment link. It is the only
// link kind this importer manages.
const LinkKindMeta = "meta"

// Operation is the per-line directive parsed from the first CSV field.
type Operation int

const (
	OpInvalid Operation = iota
	OpAdd
	OpDelete
	OpModify
)

// ParseOperation maps the raw operation field to an Operation.
// Matching is case-sensitive; anything but "add", "del", "mod" is OpInvalid.
func ParseOperation(s string) Operation {
	switch s {
	case "add":
		return OpAdd
	case "del":
		return OpDelete
	case "mod":
		return OpModify
	default:
		return OpInvalid
	}
}

func (op Operation) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpDelete:
		return "del"
	case OpModify:
		return "mod"
	default:
		return "invalid"
	}
}

// Row is one parsed and sanitized import line. It exists only for the
// duration of processing that line.
type Row struct {
	Operation      string
	ParentIDNumber string
	ChildIDNumber  string
	DisableFlag    string
	// GroupIDNumber is accepted and sanitized but not consumed by any
	// current operation (reserved field).
	GroupIDNumber string
}

// Course is the subset of a course record the importer needs.
type Course struct {
	ID        int64
	ShortName string
	IDNumber  string
}

// MetaLink is a directional parent->child enrolment-sync link.
// A link from A to B is distinct from a link from B to A.
type MetaLink struct {
	ID             int64
	CourseID       int64 // parent
	LinkedCourseID int64 // child
	Enabled        bool
}

// ErrNotFound is returned by store lookups when no matching record exists.
var ErrNotFound = errors.New("not found")

// CourseStore resolves courses by their external identifier.
type CourseStore interface {
	CourseByIDNumber(ctx context.Context, idnumber string) (*Course, error)
}

// LinkStore persists meta links. FindLink returns ErrNotFound when no link
// with the given direction exists.
type LinkStore interface {
	FindLink(ctx context.Context, courseID, linkedCourseID int64) (*MetaLink, error)
	CreateLink(ctx context.Context, courseID, linkedCourseID int64) (*MetaLink, error)
	SetLinkEnabled(ctx context.Context, linkID int64, enabled bool) error
	DeleteLink(ctx context.Context, linkID int64) error
}

// Resyncer propagates the membership effects of a newly added link for the
// parent course. Implementations must be idempotent and side-effect-only.
type Resyncer interface {
	Resync(ctx context.Context, courseID int64) error
}

// StagedFiles is the uploaded-file staging area. OpenLatest resolves the most
// recently stored file matching (userID, name), ties broken by descending
// record id, and returns ErrNotFound when nothing matches.
type StagedFiles interface {
	OpenLatest(ctx context.Context, userID int64, name string) (io.ReadCloser, error)
}

// Formatter renders a named message template with substitution parameters.
type Formatter interface {
	Format(key string, params map[string]string) string
}
