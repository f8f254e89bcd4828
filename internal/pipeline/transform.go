package pipeline

import (
	"fmt"
	"strings"

	"go-linerecord-pipeline/internal/records"
)

// fieldTransforms maps transformation names accepted in a JobSpec to the
// function applied to every field.
var fieldTransforms = map[string]func(string) string{
	"trimStrings":        strings.TrimSpace,
	"convertToUppercase": strings.ToUpper,
	"convertToLowercase": strings.ToLower,
}

// TransformRecords applies the named transformations, in order, to every field.
func TransformRecords(s *records.Stream, transformations []string) (*records.Stream, error) {
	for _, name := range transformations {
		fn, ok := fieldTransforms[name]
		if !ok {
			return nil, fmt.Errorf("unknown transformation: %s", name)
		}
		var err error
		if s, err = records.MapFields(s, fn); err != nil {
			return nil, err
		}
	}
	return s, nil
}
