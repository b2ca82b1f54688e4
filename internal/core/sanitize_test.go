package core

import "testing"

func TestCleanOperation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "add", "add"},
		{"excel formula", `="add"`, "add"},
		{"surrounding junk", " add\t", "add"},
		{"punctuation stripped", "a-d_d!", "add"},
		{"case preserved", "Add", "Add"},
		{"digits kept", "op2", "op2"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanOperation(tt.input); got != tt.want {
				t.Errorf("CleanOperation(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "COURSE-101", "COURSE-101"},
		{"whitespace trimmed", "  COURSE-101  ", "COURSE-101"},
		{"excel formula", `="12345"`, "12345"},
		{"leading equals", "=value", "value"},
		{"surrounding quotes", `"quoted"`, "quoted"},
		{"single quotes", "'quoted'", "quoted"},
		{"bom stripped", "\uFEFFCOURSE", "COURSE"},
		{"control chars removed", "abc\x00\x01def", "abcdef"},
		{"invalid utf8 dropped", "caf\xff", "caf"},
		{"unicode preserved", "coursé", "coursé"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanField(tt.input); got != tt.want {
				t.Errorf("CleanField(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseRow(t *testing.T) {
	row := parseRow([]string{` ="add" `, " P101 ", "C201", "1", "g1"})
	want := Row{
		Operation:      "add",
		ParentIDNumber: "P101",
		ChildIDNumber:  "C201",
		DisableFlag:    "1",
		GroupIDNumber:  "g1",
	}
	if row != want {
		t.Errorf("parseRow() = %+v, want %+v", row, want)
	}
}

func TestParseRow_ShortRecord(t *testing.T) {
	row := parseRow([]string{"del", "P101"})
	if row.Operation != "del" || row.ParentIDNumber != "P101" {
		t.Errorf("parseRow() = %+v", row)
	}
	if row.ChildIDNumber != "" || row.DisableFlag != "" || row.GroupIDNumber != "" {
		t.Errorf("missing fields should be empty, got %+v", row)
	}
}

func TestParseOperation(t *testing.T) {
	tests := []struct {
		input string
		want  Operation
	}{
		{"add", OpAdd},
		{"del", OpDelete},
		{"mod", OpModify},
		{"Add", OpInvalid},
		{"delete", OpInvalid},
		{"", OpInvalid},
		{"xyz", OpInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseOperation(tt.input); got != tt.want {
				t.Errorf("ParseOperation(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
