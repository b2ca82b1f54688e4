package core

// reader.go resolves an import source reference to a readable byte stream.
//
// A reference is tried as a filesystem path first; otherwise it names a file
// in the caller's staged-upload area. Either way the stream is single-pass
// and finite, and the caller owns closing it on every exit path. Each import
// pass (validate, process) opens its own stream.

import (
	"context"
	"fmt"
	"io"
	"os"
)

// LineSource opens import sources by reference for an explicit user.
type LineSource struct {
	staged StagedFiles
}

// NewLineSource creates a LineSource backed by the given staging area.
func NewLineSource(staged StagedFiles) *LineSource {
	return &LineSource{staged: staged}
}

// Open resolves ref to a content stream. If ref is an existing filesystem
// path it is opened directly; otherwise the newest staged file matching
// (userID, ref) is opened. Any failure is a fatal *ImportError with status
// 500 and key "cannotreadfile".
func (ls *LineSource) Open(ctx context.Context, userID int64, ref string) (io.ReadCloser, error) {
	if _, err := os.Stat(ref); err == nil {
		f, err := os.Open(ref)
		if err != nil {
			return nil, errCannotRead(fmt.Errorf("open %s: %w", ref, err))
		}
		return newBOMSkippingReader(f), nil
	}

	if ls.staged == nil {
		return nil, errCannotRead(fmt.Errorf("no staged file store configured"))
	}

	rc, err := ls.staged.OpenLatest(ctx, userID, ref)
	if err != nil {
		return nil, errCannotRead(fmt.Errorf("staged file %q for user %d: %w", ref, userID, err))
	}
	return newBOMSkippingReader(rc), nil
}

// bomSkippingReader removes a leading UTF-8 BOM (0xEF 0xBB 0xBF), which
// Windows tools routinely prepend to CSV exports.
type bomSkippingReader struct {
	rc      io.ReadCloser
	checked bool
	pending []byte
}

func newBOMSkippingReader(rc io.ReadCloser) io.ReadCloser {
	return &bomSkippingReader{rc: rc}
}

func (r *bomSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		head := make([]byte, 3)
		n, err := io.ReadFull(r.rc, head)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return 0, err
		}
		head = head[:n]
		if !(n == 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF) {
			r.pending = head
		}
	}

	if len(r.pending) > 0 {
		n := copy(p, r.pending)
		r.pending = r.pending[n:]
		return n, nil
	}

	return r.rc.Read(p)
}

func (r *bomSkippingReader) Close() error {
	return r.rc.Close()
}
