package source

import (
	"context"
	"sync/atomic"
)

type contextSource struct {
	LineSource
	ctx context.Context
}

// WithContext makes Next fail with ctx.Err() once ctx is done.
func WithContext(ctx context.Context, src LineSource) LineSource {
	return &contextSource{LineSource: src, ctx: ctx}
}

func (s *contextSource) Next() (string, error) {
	select {
	case <-s.ctx.Done():
		return "", s.ctx.Err()
	default:
		return s.LineSource.Next()
	}
}

// CountingSource counts the lines handed out by the wrapped source.
type CountingSource struct {
	LineSource
	lines atomic.Int64
}

// Counting wraps src so the number of lines read can be reported.
func Counting(src LineSource) *CountingSource {
	return &CountingSource{LineSource: src}
}

func (s *CountingSource) Next() (string, error) {
	line, err := s.LineSource.Next()
	if err == nil {
		s.lines.Add(1)
	}
	return line, err
}

// Lines returns how many lines have been read so far.
func (s *CountingSource) Lines() int64 { return s.lines.Load() }
