package rules

import (
	"errors"
	"fmt"
)

// ErrInvalidRules is wrapped by every validation failure
var ErrInvalidRules = errors.New("invalid gate rules")

// ValidationError names the offending field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return ErrInvalidRules
}

// Validate checks all required constraints
func Validate(r *Rules) error {
	if r.ExpectedFiles < 0 {
		return ValidationError{"expected_files", "must be >= 0"}
	}
	if r.ExpectedColumns < 0 {
		return ValidationError{"expected_columns", "must be >= 0"}
	}
	if r.DriftTolerance < 0 {
		return ValidationError{"drift_tolerance", "must be >= 0"}
	}
	if !r.PartitionPolicy.Valid() {
		return ValidationError{"partition_policy", fmt.Sprintf("unknown policy %q (defect|abort|skip)", r.PartitionPolicy)}
	}

	seen := make(map[string]struct{}, len(r.Bounds))
	for i, b := range r.Bounds {
		field := fmt.Sprintf("bounds[%d]", i)
		if b.Prefix == "" {
			return ValidationError{field + ".prefix", "required"}
		}
		if _, dup := seen[b.Prefix]; dup {
			return ValidationError{field + ".prefix", fmt.Sprintf("duplicate prefix %q", b.Prefix)}
		}
		seen[b.Prefix] = struct{}{}

		if b.Min == nil && b.Max == nil {
			return ValidationError{field, "at least one of min/max is required"}
		}
		if b.Min != nil && b.Max != nil && *b.Min > *b.Max {
			return ValidationError{field, "min must be <= max"}
		}
	}

	return nil
}
