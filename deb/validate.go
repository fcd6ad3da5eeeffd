package deb

import (
	"fmt"
	"strings"
)

// ValidationErrorKind distinguishes the ways a parsed control stanza can
// fail validation before it is allowed to become a Package.
type ValidationErrorKind int

const (
	ErrDoesNotStartWithPackage ValidationErrorKind = iota
	ErrMissingFields
	ErrForbiddenFields
)

// ValidationError reports that a control stanza's fields don't meet the
// required/forbidden shape a repository package needs.
type ValidationError struct {
	Kind   ValidationErrorKind
	Fields []string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ErrDoesNotStartWithPackage:
		return "control: first field must be Package"
	case ErrMissingFields:
		return fmt.Sprintf("control: missing required fields: %s", strings.Join(e.Fields, ", "))
	case ErrForbiddenFields:
		return fmt.Sprintf("control: forbidden derived fields present: %s", strings.Join(e.Fields, ", "))
	default:
		return "control: validation error"
	}
}

// Validate checks that fields carries every required field, carries none of
// the forbidden derived fields, and that its first entry is Package. Field
// name comparisons are case-insensitive, matching the rest of the control
// file format.
func Validate(fields Fields) error {
	first := fields.Oldest()
	if first == nil || !strings.EqualFold(first.Key, FieldPackage.String()) {
		return &ValidationError{Kind: ErrDoesNotStartWithPackage}
	}

	var missing []string
	for _, req := range requiredFields {
		if !hasFieldFold(fields, req.String()) {
			missing = append(missing, req.String())
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Kind: ErrMissingFields, Fields: missing}
	}

	var forbidden []string
	for _, bad := range forbiddenFields {
		if hasFieldFold(fields, bad.String()) {
			forbidden = append(forbidden, bad.String())
		}
	}
	if len(forbidden) > 0 {
		return &ValidationError{Kind: ErrForbiddenFields, Fields: forbidden}
	}

	return nil
}

// hasFieldFold reports whether fields carries a key equal to name under
// case-insensitive comparison.
func hasFieldFold(fields Fields, name string) bool {
	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		if strings.EqualFold(pair.Key, name) {
			return true
		}
	}
	return false
}

// fieldFold returns the value of the first key equal to name under
// case-insensitive comparison.
func fieldFold(fields Fields, name string) (string, bool) {
	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		if strings.EqualFold(pair.Key, name) {
			return pair.Value, true
		}
	}
	return "", false
}
