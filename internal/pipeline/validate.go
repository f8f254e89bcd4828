package pipeline

import (
	"fmt"
	"strconv"

	"go-linerecord-pipeline/internal/model"
	"go-linerecord-pipeline/internal/records"
)

// buildPredicate turns a filter rule from the job spec into a predicate.
func buildPredicate(f model.FieldFilter) (records.Predicate, error) {
	switch f.Op {
	case "gt", "gte", "lt", "lte", "eq", "ne", "longerThan":
		n, err := strconv.Atoi(f.Value)
		if err != nil {
			return nil, fmt.Errorf("filter %s on field %d needs an integer, got %q", f.Op, f.Field, f.Value)
		}
		switch f.Op {
		case "gt":
			return records.IntGreaterThan(n), nil
		case "gte":
			return records.IntAtLeast(n), nil
		case "lt":
			return records.IntLessThan(n), nil
		case "lte":
			return records.IntAtMost(n), nil
		case "eq":
			return records.IntEquals(n), nil
		case "ne":
			return records.IntNotEquals(n), nil
		default:
			return records.LongerThan(n), nil
		}
	case "is":
		return records.Equals(f.Value), nil
	case "isNot":
		return records.NotEquals(f.Value), nil
	case "prefix":
		return records.HasPrefix(f.Value), nil
	case "contains":
		return records.Contains(f.Value), nil
	default:
		return nil, fmt.Errorf("unknown filter op: %s", f.Op)
	}
}

// FilterRecords chains one FilterByField per rule.
func FilterRecords(s *records.Stream, filters []model.FieldFilter) (*records.Stream, error) {
	for _, f := range filters {
		pred, err := buildPredicate(f)
		if err != nil {
			return nil, err
		}
		if s, err = records.FilterByField(s, f.Field, pred); err != nil {
			return nil, fmt.Errorf("filter on field %d: %w", f.Field, err)
		}
	}
	return s, nil
}
