package domainerrors

import (
	"errors"
	"strings"
)

// FieldError describes a single input field failure. Field is the JSON path
// of the offending input so clients can attach the message to it.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// FieldErrors is an ordered set of field failures. It implements error so it
// can travel through the usual error returns; a nil or empty value means no
// failure and must not be returned as a non-nil error.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field has at least one error.
func (fe FieldErrors) Has(field string) bool {
	for _, e := range fe {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Message returns the first message recorded for field.
func (fe FieldErrors) Message(field string) string {
	for _, e := range fe {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// Fields lists the distinct failing field paths in first-seen order.
func (fe FieldErrors) Fields() []string {
	seen := make(map[string]struct{}, len(fe))
	out := make([]string, 0, len(fe))
	for _, e := range fe {
		if _, ok := seen[e.Field]; ok {
			continue
		}
		seen[e.Field] = struct{}{}
		out = append(out, e.Field)
	}
	return out
}

// Add appends a failure unless the exact same field/code pair is present.
func (fe *FieldErrors) Add(field, code, message string) {
	for _, e := range *fe {
		if e.Field == field && e.Code == code {
			return
		}
	}
	*fe = append(*fe, FieldError{Field: field, Message: message, Code: code})
}

// Err returns fe as an error, or nil when empty.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// AsFieldErrors extracts field failures from err. Field-attributed *Error
// values (conflicts) are converted into a single-entry FieldErrors.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) && len(fe) > 0 {
		return fe, true
	}
	var de *Error
	if errors.As(err, &de) && de.Field != "" {
		return FieldErrors{{Field: de.Field, Message: de.Message, Code: string(de.Code)}}, true
	}
	return nil, false
}
