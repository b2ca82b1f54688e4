package messages

import (
	"strings"
	"testing"

	"github.com/davidpesce/moodle-tool-uploadenrolmentmethods/internal/core"
)

func TestLoad(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(c.templates) == 0 {
		t.Fatal("catalog is empty")
	}
}

// TestCatalogCoversPipelineKeys ensures every message key the pipeline emits
// has a template, so no report line ever renders as [[key]].
func TestCatalogCoversPipelineKeys(t *testing.T) {
	c := MustLoad()

	keys := []string{
		core.KeyCannotReadFile,
		core.KeyTooFewColumns,
		core.KeyTooManyColumns,
		core.KeyInvalidOp,
		core.KeyParentNotFound,
		core.KeyChildNotFound,
		core.KeyRelAdded,
		core.KeyRelAddError,
		core.KeyRelAlreadyExists,
		core.KeyChildIsParent,
		core.KeyRelDeleted,
		core.KeyRelModified,
		core.KeyRelDoesNotExist,
	}

	for _, key := range keys {
		if !c.Has(key) {
			t.Errorf("catalog is missing template for %q", key)
		}
	}
}

func TestFormat(t *testing.T) {
	c := MustLoad()

	tests := []struct {
		name   string
		key    string
		params map[string]string
		want   []string // substrings that must appear
	}{
		{
			name:   "line substituted",
			key:    core.KeyTooFewColumns,
			params: map[string]string{"line": "3"},
			want:   []string{"line 3"},
		},
		{
			name:   "parent and child substituted",
			key:    core.KeyRelAdded,
			params: map[string]string{"line": "1", "parent": "Parent 101", "child": "Child 201"},
			want:   []string{"Parent 101", "Child 201", "Line 1"},
		},
		{
			name:   "operation substituted",
			key:    core.KeyInvalidOp,
			params: map[string]string{"line": "2", "op": "xyz"},
			want:   []string{"xyz", "Line 2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Format(tt.key, tt.params)
			for _, sub := range tt.want {
				if !strings.Contains(got, sub) {
					t.Errorf("Format(%q) = %q, missing %q", tt.key, got, sub)
				}
			}
			if strings.Contains(got, "{line}") {
				t.Errorf("Format(%q) = %q, placeholder left unsubstituted", tt.key, got)
			}
		})
	}
}

func TestFormat_UnknownKey(t *testing.T) {
	c := MustLoad()
	got := c.Format("nosuchkey", nil)
	if got != "[[nosuchkey]]" {
		t.Errorf("Format(unknown) = %q, want [[nosuchkey]]", got)
	}
}

func TestFormat_NilParams(t *testing.T) {
	c := MustLoad()
	got := c.Format(core.KeyCannotReadFile, nil)
	if got == "" || strings.HasPrefix(got, "[[") {
		t.Errorf("Format(%q, nil) = %q", core.KeyCannotReadFile, got)
	}
}
