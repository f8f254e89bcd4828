// Package records turns delimited text lines into records and reduces them to
// a filtered sequence, a count, a key/value mapping or an integer summary.
//
// Everything here is synchronous and single-pass. A Stream pulls from its line
// source lazily and can be consumed exactly once; any second operation on the
// same Stream fails with ErrStreamConsumed. Lines whose field count differs
// from the expected arity are dropped silently, while a field that fails
// numeric parsing ends the stream with a *ParseError. The package never logs.
package records

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
)

// LineReader is the part of a line source the processor needs.
// Next returns io.EOF at end of input.
type LineReader interface {
	Next() (string, error)
}

// Record is one delimiter-split input line.
type Record struct {
	Line   int      `json:"line"`
	Fields []string `json:"fields"`
}

// Field returns the i-th field.
func (r Record) Field(i int) string { return r.Fields[i] }

// LineFilter selects raw lines before they are split. Lines it rejects still
// advance the line number.
type LineFilter func(line string) bool

// Config is the processing configuration a caller supplies with a source.
type Config struct {
	Delimiter     string `json:"delimiter" yaml:"delimiter"`
	ExpectedArity int    `json:"expectedArity" yaml:"expected_arity"`
	KeyIndex      int    `json:"keyIndex" yaml:"key_index"`
	ValueIndex    int    `json:"valueIndex" yaml:"value_index"`
}

// DefaultConfig matches comma-separated rows of three fields keyed by the
// first field with an integer second field.
func DefaultConfig() Config {
	return Config{Delimiter: ",", ExpectedArity: 3, KeyIndex: 0, ValueIndex: 1}
}

// Validate checks the delimiter, the arity and both indexes.
func (c Config) Validate() error {
	if c.Delimiter == "" {
		return fmt.Errorf("%w: empty delimiter", ErrInvalidConfig)
	}
	if c.ExpectedArity < 1 {
		return fmt.Errorf("%w: expected arity %d", ErrInvalidConfig, c.ExpectedArity)
	}
	if err := checkIndex(c.KeyIndex, c.ExpectedArity); err != nil {
		return fmt.Errorf("key index: %w", err)
	}
	if err := checkIndex(c.ValueIndex, c.ExpectedArity); err != nil {
		return fmt.Errorf("value index: %w", err)
	}
	return nil
}

// Stream is a lazy, single-use sequence of records of a fixed arity.
type Stream struct {
	arity int
	seq   iter.Seq2[Record, error]
	used  bool
}

func (s *Stream) take() (iter.Seq2[Record, error], error) {
	if s.used {
		return nil, ErrStreamConsumed
	}
	s.used = true
	return s.seq, nil
}

func checkIndex(index, arity int) error {
	if index < 0 || index >= arity {
		return &IndexError{Index: index, Arity: arity}
	}
	return nil
}

// SplitFields splits line on delimiter and removes trailing empty fields.
// A line without the delimiter is a single field, even when empty.
func SplitFields(line, delimiter string) []string {
	if !strings.Contains(line, delimiter) {
		return []string{line}
	}
	fields := strings.Split(line, delimiter)
	end := len(fields)
	for end > 0 && fields[end-1] == "" {
		end--
	}
	return fields[:end]
}

// ParseAndFilter splits each line read from lines on delimiter and keeps the
// records with exactly expectedArity fields, in input order. The stream reads
// lazily; a read error other than io.EOF is returned by whichever operation
// consumes the stream.
func ParseAndFilter(lines LineReader, delimiter string, expectedArity int) (*Stream, error) {
	return ParseMatching(lines, delimiter, expectedArity, nil)
}

// ParseMatching is ParseAndFilter restricted to the lines keep accepts. A nil
// keep accepts every line. Record.Line is the position in lines either way.
func ParseMatching(lines LineReader, delimiter string, expectedArity int, keep LineFilter) (*Stream, error) {
	if delimiter == "" {
		return nil, fmt.Errorf("%w: empty delimiter", ErrInvalidConfig)
	}
	if expectedArity < 1 {
		return nil, fmt.Errorf("%w: expected arity %d", ErrInvalidConfig, expectedArity)
	}

	seq := func(yield func(Record, error) bool) {
		lineNo := 0
		for {
			line, err := lines.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Record{}, err)
				return
			}
			lineNo++
			if keep != nil && !keep(line) {
				continue
			}

			fields := SplitFields(line, delimiter)
			if len(fields) != expectedArity {
				continue
			}
			if !yield(Record{Line: lineNo, Fields: fields}, nil) {
				return
			}
		}
	}
	return &Stream{arity: expectedArity, seq: seq}, nil
}

// FilterByField keeps records whose field at fieldIndex satisfies predicate.
// A predicate error ends the stream as a *ParseError.
func FilterByField(s *Stream, fieldIndex int, predicate Predicate) (*Stream, error) {
	if err := checkIndex(fieldIndex, s.arity); err != nil {
		return nil, err
	}
	in, err := s.take()
	if err != nil {
		return nil, err
	}

	seq := func(yield func(Record, error) bool) {
		for rec, err := range in {
			if err != nil {
				yield(Record{}, err)
				return
			}
			value := rec.Field(fieldIndex)
			ok, err := predicate(value)
			if err != nil {
				yield(Record{}, &ParseError{Line: rec.Line, Field: fieldIndex, Value: value, Err: err})
				return
			}
			if ok && !yield(rec, nil) {
				return
			}
		}
	}
	return &Stream{arity: s.arity, seq: seq}, nil
}

// MapFields applies fn to every field of every record.
func MapFields(s *Stream, fn func(string) string) (*Stream, error) {
	in, err := s.take()
	if err != nil {
		return nil, err
	}

	seq := func(yield func(Record, error) bool) {
		for rec, err := range in {
			if err != nil {
				yield(Record{}, err)
				return
			}
			fields := make([]string, len(rec.Fields))
			for i, f := range rec.Fields {
				fields[i] = fn(f)
			}
			if !yield(Record{Line: rec.Line, Fields: fields}, nil) {
				return
			}
		}
	}
	return &Stream{arity: s.arity, seq: seq}, nil
}

// Peek calls fn with every record as it passes through.
func Peek(s *Stream, fn func(Record)) (*Stream, error) {
	in, err := s.take()
	if err != nil {
		return nil, err
	}

	seq := func(yield func(Record, error) bool) {
		for rec, err := range in {
			if err != nil {
				yield(Record{}, err)
				return
			}
			fn(rec)
			if !yield(rec, nil) {
				return
			}
		}
	}
	return &Stream{arity: s.arity, seq: seq}, nil
}

// Count consumes the stream and returns the number of records.
func Count(s *Stream) (int, error) {
	in, err := s.take()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, err := range in {
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Collect consumes the stream into a slice.
func Collect(s *Stream) ([]Record, error) {
	in, err := s.take()
	if err != nil {
		return nil, err
	}
	var out []Record
	for rec, err := range in {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// ToMapping consumes the stream into keyIndex -> parse(valueIndex). A later
// record overwrites the value of an earlier record with the same key. When a
// value fails to parse no mapping is returned.
func ToMapping(s *Stream, keyIndex, valueIndex int, parse ValueParser) (*OrderedMap, error) {
	if err := checkIndex(keyIndex, s.arity); err != nil {
		return nil, fmt.Errorf("key index: %w", err)
	}
	if err := checkIndex(valueIndex, s.arity); err != nil {
		return nil, fmt.Errorf("value index: %w", err)
	}
	in, err := s.take()
	if err != nil {
		return nil, err
	}

	m := NewOrderedMap()
	for rec, err := range in {
		if err != nil {
			return nil, err
		}
		raw := rec.Field(valueIndex)
		v, err := parse(raw)
		if err != nil {
			return nil, &ParseError{Line: rec.Line, Field: valueIndex, Value: raw, Err: err}
		}
		m.Set(rec.Field(keyIndex), v)
	}
	return m, nil
}
