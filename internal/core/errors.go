package core

// errors.go defines the fatal error surface of the import pipeline.
//
// Only two conditions abort an import: the source file cannot be opened, or a
// row has the wrong column count during validation. Both are reported as an
// *ImportError carrying a message key, an optional 1-based line number, and an
// HTTP-equivalent status code. Everything else (unknown operation, missing
// course, link-state conflicts, insert rejection) is row-level data recorded
// in the report, never an error.

import (
	"fmt"
	"net/http"
	"strconv"
)

// Message keys. The keys double as catalog lookup keys for the formatter.
const (
	KeyCannotReadFile   = "cannotreadfile"
	KeyTooFewColumns    = "toofewcols"
	KeyTooManyColumns   = "toomanycols"
	KeyInvalidOp        = "invalidop"
	KeyParentNotFound   = "parentnotfound"
	KeyChildNotFound    = "childnotfound"
	KeyRelAdded         = "reladded"
	KeyRelAddError      = "reladderror"
	KeyRelAlreadyExists = "relalreadyexists"
	KeyChildIsParent    = "childisparent"
	KeyRelDeleted       = "reldeleted"
	KeyRelModified      = "relmodified"
	KeyRelDoesNotExist  = "reldoesntexist"
)

// ImportError is a fatal stream-level failure. It aborts the whole pass and
// is never retried.
type ImportError struct {
	Key    string // message key, e.g. "toofewcols"
	Line   int    // 1-based line number, 0 when not line-specific
	Status int    // HTTP-equivalent status code
	Err    error  // underlying cause, may be nil
}

func (e *ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d)", e.Key, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Key, e.Err)
	}
	return e.Key
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// Params returns the substitution parameters for formatting this error via a
// message catalog.
func (e *ImportError) Params() map[string]string {
	if e.Line > 0 {
		return map[string]string{"line": strconv.Itoa(e.Line)}
	}
	return nil
}

func errCannotRead(cause error) *ImportError {
	return &ImportError{Key: KeyCannotReadFile, Status: http.StatusInternalServerError, Err: cause}
}

func errColumnCount(key string, line int) *ImportError {
	return &ImportError{Key: key, Line: line, Status: http.StatusUnsupportedMediaType}
}
