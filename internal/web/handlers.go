package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/davidpesce/moodle-tool-uploadenrolmentmethods/internal/logging"
	"github.com/google/uuid"
)

// importRequest is the body of the validate and process endpoints.
type importRequest struct {
	// Source is a filesystem path or a staged filename.
	Source string `json:"source"`
	// UserID scopes staged-file resolution.
	UserID int64 `json:"user_id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStageFile stores a multipart upload in the caller's staging area.
func (s *Server) handleStageFile(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	userID, err := strconv.ParseInt(r.FormValue("user_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing or invalid user_id")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	id, err := s.stager.SaveStagedFile(r.Context(), userID, header.Filename, content)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("file staged",
		"user_id", userID,
		"filename", header.Filename,
		"bytes", len(content),
	)

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       id,
		"filename": header.Filename,
	})
}

// handleValidate runs the shape-only validation pass.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeImportRequest(w, r)
	if !ok {
		return
	}

	if err := s.importer.Validate(r.Context(), req.UserID, req.Source); err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "valid"})
}

// handleProcess runs the full processing pass and returns the report.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeImportRequest(w, r)
	if !ok {
		return
	}

	jobID := uuid.New().String()
	logger := logging.FromContext(r.Context()).With("job_id", jobID, "source", req.Source)
	logger.Info("import started", "user_id", req.UserID)

	report, err := s.importer.Process(r.Context(), req.UserID, req.Source)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logger.Info("import finished")

	writeJSON(w, http.StatusOK, map[string]string{
		"job_id": jobID,
		"report": report,
	})
}

func (s *Server) decodeImportRequest(w http.ResponseWriter, r *http.Request) (importRequest, bool) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if req.Source == "" {
		writeError(w, http.StatusBadRequest, "missing source")
		return req, false
	}
	return req, true
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a simple JSON error message.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
