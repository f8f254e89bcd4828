// Package source provides single-pass line sources for the record processor.
//
// A LineSource hands out one line per Next call, in input order and without
// line terminators. Next returns io.EOF once the input is exhausted and
// ErrClosed after Close. Close is idempotent.
package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ErrClosed is returned by Next after the source has been closed.
var ErrClosed = errors.New("line source closed")

// ErrOutsideRoot rejects a file location that is not under the allowed directory.
var ErrOutsideRoot = errors.New("source location outside data directory")

// maxLineSize bounds a single line held by the scanner. A longer line fails
// the read with bufio.ErrTooLong.
const maxLineSize = 1024 * 1024

// scanLines splits on "\n", "\r\n" or a lone "\r" and drops the terminator.
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		switch {
		case i+1 < len(data) && data[i+1] == '\n':
			return i + 2, data[:i], nil
		case i+1 < len(data) || atEOF:
			return i + 1, data[:i], nil
		}
		// "\r" at the end of the buffer: wait to see whether "\n" follows.
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// LineSource is a lazy, single-pass sequence of text lines.
type LineSource interface {
	Next() (string, error)
	Close() error
	Name() string
}

// ReaderSource reads lines from an io.Reader and owns its closer.
type ReaderSource struct {
	name    string
	scanner *bufio.Scanner
	closer  io.Closer
	closed  bool
}

// NewReaderSource wraps rc. Closing the source closes rc.
func NewReaderSource(name string, rc io.ReadCloser) *ReaderSource {
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanLines)
	return &ReaderSource{name: name, scanner: scanner, closer: rc}
}

// Open opens the file at path as a line source.
func Open(path string) (*ReaderSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	return NewReaderSource(path, file), nil
}

// OpenURL fetches url and streams the response body line by line.
func OpenURL(ctx context.Context, client *http.Client, url string) (*ReaderSource, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to GET source: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to GET source: unexpected status %s", resp.Status)
	}
	return NewReaderSource(url, resp.Body), nil
}

// IsURL reports whether location is fetched over http(s).
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// OpenLocation opens a URL when location starts with http, a file otherwise.
func OpenLocation(ctx context.Context, location string) (*ReaderSource, error) {
	if IsURL(location) {
		return OpenURL(ctx, nil, location)
	}
	return Open(location)
}

// Confine resolves a file location against root and fails with ErrOutsideRoot
// when it points elsewhere. Relative locations are taken relative to root.
// URLs pass unchanged. An empty root rejects every file location. Symlinks
// inside root are not resolved.
func Confine(root, location string) (string, error) {
	if IsURL(location) {
		return location, nil
	}
	if root == "" {
		return "", fmt.Errorf("%w: file sources are disabled", ErrOutsideRoot)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve data directory: %w", err)
	}
	path := location
	if !filepath.IsAbs(path) {
		path = filepath.Join(absRoot, path)
	}
	rel, err := filepath.Rel(absRoot, filepath.Clean(path))
	if err != nil || rel == "." || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, location)
	}
	return filepath.Join(absRoot, rel), nil
}

// Next returns the next line without its terminator.
func (s *ReaderSource) Next() (string, error) {
	if s.closed {
		return "", ErrClosed
	}
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("read %s: %w", s.name, err)
	}
	return "", io.EOF
}

// Close releases the underlying reader.
func (s *ReaderSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.closer.Close()
}

// Name identifies the source, usually its path or URL.
func (s *ReaderSource) Name() string { return s.name }

// SliceSource serves lines from memory.
type SliceSource struct {
	lines  []string
	closed bool
}

// NewSliceSource copies nothing; lines must not change while in use.
func NewSliceSource(lines []string) *SliceSource {
	return &SliceSource{lines: lines}
}

func (s *SliceSource) Next() (string, error) {
	if s.closed {
		return "", ErrClosed
	}
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *SliceSource) Close() error {
	s.closed = true
	return nil
}

func (s *SliceSource) Name() string { return "memory" }
