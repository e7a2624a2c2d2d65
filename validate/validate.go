// Package validate carries field-scoped validation errors through the
// panel layer and the API. Errors have a typed severity: blocking errors
// abort a save, advisory errors surface to the user but never block.
package validate

import "strings"

// Severity classifies a FieldError as save-blocking or advisory.
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityAdvisory Severity = "advisory"
)

// FieldError is a validation failure scoped to a single form field.
// The "general" field carries failures not tied to any one input.
type FieldError struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity,omitempty"`
}

// GeneralField is the pseudo-field used for unscoped errors.
const GeneralField = "general"

// New builds a FieldError, deriving severity from the message via
// Classify when none of the helpers set it explicitly.
func New(field, message string) FieldError {
	return FieldError{Field: field, Message: message, Severity: Classify(message)}
}

// Classify preserves the legacy severity convention: a message containing
// the substring "Warning" is advisory, everything else blocks the save.
// New call sites should construct typed errors directly; this exists so
// messages authored under the old convention keep their behavior.
func Classify(message string) Severity {
	if strings.Contains(message, "Warning") {
		return SeverityAdvisory
	}
	return SeverityBlocking
}

// Blocking filters errs down to the entries that must prevent a save.
func Blocking(errs []FieldError) []FieldError {
	var out []FieldError
	for _, e := range errs {
		sev := e.Severity
		if sev == "" {
			sev = Classify(e.Message)
		}
		if sev == SeverityBlocking {
			out = append(out, e)
		}
	}
	return out
}

// Append adds e to errs when it is non-nil, so check results chain
// without nil tests at every call site.
func Append(errs []FieldError, e *FieldError) []FieldError {
	if e == nil {
		return errs
	}
	return append(errs, *e)
}

// Required returns a blocking error when value is empty after trimming.
func Required(field, label, value string) *FieldError {
	if strings.TrimSpace(value) == "" {
		e := FieldError{Field: field, Message: label + " is required", Severity: SeverityBlocking}
		return &e
	}
	return nil
}

// DecimalAmount returns a blocking error unless value is a plain
// decimal number: digits with at most one dot. Currency symbols and
// separators are rejected; amounts stay strings end to end.
func DecimalAmount(field, label, value string) *FieldError {
	value = strings.TrimSpace(value)
	bad := value == ""
	dots := 0
	for _, r := range value {
		switch {
		case r == '.':
			dots++
		case r < '0' || r > '9':
			bad = true
		}
	}
	if bad || dots > 1 {
		e := FieldError{Field: field, Message: label + " must be a decimal number", Severity: SeverityBlocking}
		return &e
	}
	return nil
}

// UniqueExact returns a blocking error when value matches an existing
// value case-sensitively. existing should already exclude the item being
// edited.
func UniqueExact(field, label, value string, existing []string) *FieldError {
	for _, other := range existing {
		if other == value {
			e := FieldError{Field: field, Message: label + " must be unique", Severity: SeverityBlocking}
			return &e
		}
	}
	return nil
}

// DuplicateEmailWarning returns an advisory error when value matches an
// existing email ignoring case. Duplicate emails are legal but suspicious,
// so the save proceeds.
func DuplicateEmailWarning(field, value string, existing []string) *FieldError {
	lowered := strings.ToLower(strings.TrimSpace(value))
	if lowered == "" {
		return nil
	}
	for _, other := range existing {
		if strings.ToLower(strings.TrimSpace(other)) == lowered {
			e := FieldError{
				Field:    field,
				Message:  "Warning: another contact uses this email",
				Severity: SeverityAdvisory,
			}
			return &e
		}
	}
	return nil
}
