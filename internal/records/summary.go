package records

import (
	"fmt"
	"math"
)

// Summary holds count, sum, min, max and average of one integer field.
// Min and Max are zero when Count is zero.
type Summary struct {
	Count   int64   `json:"count"`
	Sum     int64   `json:"sum"`
	Min     int     `json:"min"`
	Max     int     `json:"max"`
	Average float64 `json:"average"`
}

// Add folds one value into the summary.
func (s *Summary) Add(v int) {
	if s.Count == 0 {
		s.Min, s.Max = v, v
	} else {
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
	}
	s.Count++
	s.Sum += int64(v)
	s.Average = float64(s.Sum) / float64(s.Count)
}

// Merge combines two partial summaries.
func (s *Summary) Merge(o Summary) {
	if o.Count == 0 {
		return
	}
	if s.Count == 0 {
		*s = o
		return
	}
	s.Min = min(s.Min, o.Min)
	s.Max = max(s.Max, o.Max)
	s.Count += o.Count
	s.Sum += o.Sum
	s.Average = float64(s.Sum) / float64(s.Count)
}

func (s Summary) String() string {
	lo, hi := s.Min, s.Max
	if s.Count == 0 {
		lo, hi = math.MaxInt32, math.MinInt32
	}
	return fmt.Sprintf("IntSummaryStatistics{count=%d, sum=%d, min=%d, average=%f, max=%d}",
		s.Count, s.Sum, lo, s.Average, hi)
}

// Summarize consumes the stream and summarizes the integer field at fieldIndex.
func Summarize(s *Stream, fieldIndex int, parse ValueParser) (Summary, error) {
	var sum Summary
	if err := checkIndex(fieldIndex, s.arity); err != nil {
		return sum, err
	}
	in, err := s.take()
	if err != nil {
		return sum, err
	}
	for rec, err := range in {
		if err != nil {
			return Summary{}, err
		}
		raw := rec.Field(fieldIndex)
		v, err := parse(raw)
		if err != nil {
			return Summary{}, &ParseError{Line: rec.Line, Field: fieldIndex, Value: raw, Err: err}
		}
		sum.Add(v)
	}
	return sum, nil
}
