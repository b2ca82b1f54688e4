package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/davidpesce/moodle-tool-uploadenrolmentmethods/internal/config"
	"github.com/davidpesce/moodle-tool-uploadenrolmentmethods/internal/core"
)

type stubImporter struct {
	validateErr error
	report      string
	processErr  error
}

func (s *stubImporter) Validate(context.Context, int64, string) error {
	return s.validateErr
}

func (s *stubImporter) Process(context.Context, int64, string) (string, error) {
	return s.report, s.processErr
}

type stubStager struct {
	savedName string
	savedLen  int
}

func (s *stubStager) SaveStagedFile(_ context.Context, _ int64, name string, content []byte) (int64, error) {
	s.savedName = name
	s.savedLen = len(content)
	return 42, nil
}

type keyFormatter struct{}

func (keyFormatter) Format(key string, params map[string]string) string {
	return "msg:" + key
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           0,
			RequestTimeout: 10 * time.Second,
		},
		Import: config.ImportConfig{MaxFileSize: 1 << 20},
	}
}

func newTestServer(imp Importer, stager FileStager) *Server {
	return NewServer(imp, stager, keyFormatter{}, testConfig())
}

func postJSON(t *testing.T, srv *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func TestHandleValidate_OK(t *testing.T) {
	srv := newTestServer(&stubImporter{}, &stubStager{})
	rr := postJSON(t, srv, "/api/import/validate", `{"source":"import.csv","user_id":1}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestHandleValidate_FatalErrorStatus(t *testing.T) {
	srv := newTestServer(&stubImporter{
		validateErr: &core.ImportError{
			Key:    core.KeyTooFewColumns,
			Line:   3,
			Status: http.StatusUnsupportedMediaType,
		},
	}, &stubStager{})
	rr := postJSON(t, srv, "/api/import/validate", `{"source":"import.csv","user_id":1}`)

	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415", rr.Code)
	}

	var body struct {
		Key     string `json:"key"`
		Line    int    `json:"line"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Key != core.KeyTooFewColumns {
		t.Errorf("key = %q, want %q", body.Key, core.KeyTooFewColumns)
	}
	if body.Line != 3 {
		t.Errorf("line = %d, want 3", body.Line)
	}
	if body.Message != "msg:"+core.KeyTooFewColumns {
		t.Errorf("message = %q", body.Message)
	}
}

func TestHandleProcess_ReturnsReport(t *testing.T) {
	srv := newTestServer(&stubImporter{report: "Line 1: linked 'c' to 'p'"}, &stubStager{})
	rr := postJSON(t, srv, "/api/import/process", `{"source":"import.csv","user_id":1}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var body struct {
		JobID  string `json:"job_id"`
		Report string `json:"report"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Report != "Line 1: linked 'c' to 'p'" {
		t.Errorf("report = %q", body.Report)
	}
	if body.JobID == "" {
		t.Error("job_id should be set")
	}
}

func TestHandleProcess_UnreadableSource(t *testing.T) {
	srv := newTestServer(&stubImporter{
		processErr: &core.ImportError{
			Key:    core.KeyCannotReadFile,
			Status: http.StatusInternalServerError,
		},
	}, &stubStager{})
	rr := postJSON(t, srv, "/api/import/process", `{"source":"missing.csv","user_id":1}`)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}

func TestImportRequest_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing source", `{"user_id":1}`},
	}

	srv := newTestServer(&stubImporter{}, &stubStager{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postJSON(t, srv, "/api/import/validate", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
		})
	}
}

func TestHandleStageFile(t *testing.T) {
	stager := &stubStager{}
	srv := newTestServer(&stubImporter{}, stager)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("user_id", "7"); err != nil {
		t.Fatal(err)
	}
	fw, err := mw.CreateFormFile("file", "links.csv")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("add,P101,C201,0,g1\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}
	if stager.savedName != "links.csv" {
		t.Errorf("saved name = %q, want links.csv", stager.savedName)
	}
	if stager.savedLen == 0 {
		t.Error("saved content is empty")
	}
}

func TestHandleStageFile_MissingUserID(t *testing.T) {
	srv := newTestServer(&stubImporter{}, &stubStager{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "links.csv")
	fw.Write([]byte("x"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&stubImporter{}, &stubStager{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}
