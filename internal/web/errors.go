package web

// errors.go maps pipeline failures onto HTTP responses.
//
// Fatal *core.ImportError values carry their own HTTP-equivalent status
// (500 for an unreadable source, 415 for malformed CSV shape), a message key,
// and an optional 1-based line number; those surface directly in the JSON
// body along with the formatted catalog message. Anything else is an
// internal error and is reported generically while the technical detail is
// logged with the request id.

import (
	"errors"
	"net/http"

	"github.com/davidpesce/moodle-tool-uploadenrolmentmethods/internal/core"
	"github.com/davidpesce/moodle-tool-uploadenrolmentmethods/internal/logging"
)

// errorResponse is the JSON body for failed requests.
type errorResponse struct {
	Error   string `json:"error"`
	Key     string `json:"key,omitempty"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message,omitempty"`
}

// respondError logs the technical error and writes the appropriate response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context())

	var ie *core.ImportError
	if errors.As(err, &ie) {
		logger.Error("import failed",
			"path", r.URL.Path,
			"status", ie.Status,
			"key", ie.Key,
			"line", ie.Line,
			"error", err,
		)
		writeJSON(w, ie.Status, errorResponse{
			Error:   ie.Key,
			Key:     ie.Key,
			Line:    ie.Line,
			Message: s.msgs.Format(ie.Key, ie.Params()),
		})
		return
	}

	logger.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"error", err,
	)
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:   "internal error",
		Message: "An unexpected error occurred",
	})
}
