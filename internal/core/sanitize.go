package core

// sanitize.go cleans raw CSV fields before they reach the store.
//
// CSV exported from spreadsheets carries predictable junk: Excel formula
// prefixes (="value"), stray quotes, BOMs, control characters. The operation
// field additionally gets reduced to alphanumerics only, since it is matched
// against a closed set of codes.

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CleanOperation strips everything but ASCII letters and digits from the
// operation field.
func CleanOperation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanField trims a general text field and removes common CSV artifacts:
// Excel formula prefixes, surrounding quotes, control characters, and
// invalid UTF-8 sequences.
func CleanField(s string) string {
	s = strings.TrimSpace(s)

	// Remove leading '='
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	// Remove any surrounding quotes
	s = strings.Trim(s, `"'`)

	// Strip the BOM rune if it survived decoding
	s = strings.TrimPrefix(s, "\uFEFF")

	if !needsRuneScan(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			i++
			continue
		}
		if !unicode.IsControl(r) {
			b.WriteRune(r)
		}
		i += size
	}
	return b.String()
}

// needsRuneScan reports whether the string contains control characters or
// non-ASCII bytes that require the slow path. Most fields are plain ASCII.
func needsRuneScan(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] == 0x7f || s[i] >= 0x80 {
			return true
		}
	}
	return false
}

// parseRow sanitizes a raw record into a Row. Missing trailing fields are
// treated as empty; extra fields are ignored. Shape enforcement belongs to
// the validation pass, not here.
func parseRow(record []string) Row {
	field := func(i int) string {
		if i < len(record) {
			return CleanField(record[i])
		}
		return ""
	}
	var op string
	if len(record) > 0 {
		op = CleanOperation(record[0])
	}
	return Row{
		Operation:      op,
		ParentIDNumber: field(1),
		ChildIDNumber:  field(2),
		DisableFlag:    field(3),
		GroupIDNumber:  field(4),
	}
}
