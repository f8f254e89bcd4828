package records

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Predicate decides whether a field value is kept. An error means the value
// could not be interpreted.
type Predicate func(field string) (bool, error)

// ValueParser turns a field into an integer.
type ValueParser func(field string) (int, error)

// ParseInt parses a decimal 32-bit integer. Surrounding whitespace is not
// accepted and values outside the int32 range fail.
func ParseInt(field string) (int, error) {
	v, err := strconv.ParseInt(field, 10, 32)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func intCompare(parse ValueParser, keep func(int) bool) Predicate {
	return func(field string) (bool, error) {
		v, err := parse(field)
		if err != nil {
			return false, err
		}
		return keep(v), nil
	}
}

func IntGreaterThan(n int) Predicate {
	return intCompare(ParseInt, func(v int) bool { return v > n })
}

func IntAtLeast(n int) Predicate {
	return intCompare(ParseInt, func(v int) bool { return v >= n })
}

func IntLessThan(n int) Predicate {
	return intCompare(ParseInt, func(v int) bool { return v < n })
}

func IntAtMost(n int) Predicate {
	return intCompare(ParseInt, func(v int) bool { return v <= n })
}

func IntEquals(n int) Predicate {
	return intCompare(ParseInt, func(v int) bool { return v == n })
}

func IntNotEquals(n int) Predicate {
	return intCompare(ParseInt, func(v int) bool { return v != n })
}

func Equals(s string) Predicate {
	return func(field string) (bool, error) { return field == s, nil }
}

func NotEquals(s string) Predicate {
	return func(field string) (bool, error) { return field != s, nil }
}

func HasPrefix(prefix string) Predicate {
	return func(field string) (bool, error) { return strings.HasPrefix(field, prefix), nil }
}

func Contains(sub string) Predicate {
	return func(field string) (bool, error) { return strings.Contains(field, sub), nil }
}

// LongerThan counts runes, not bytes.
func LongerThan(n int) Predicate {
	return func(field string) (bool, error) { return utf8.RuneCountInString(field) > n, nil }
}
