// Package httputil centralizes JSON response envelopes so every handler
// reports errors the same way.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "vehiclereg/pkg/domain-errors"
)

// MaxBodyBytes bounds request bodies accepted by DecodeJSON.
const MaxBodyBytes = 64 << 10

// ErrorResponse is the JSON error envelope. Fields is only present for
// field-attributable failures.
type ErrorResponse struct {
	Error       string              `json:"error"`
	Description string              `json:"error_description,omitempty"`
	Fields      dErrors.FieldErrors `json:"fields,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into its status and envelope.
// Internal errors never leak their description.
func WriteError(w http.ResponseWriter, err error) {
	if fe, ok := dErrors.AsFieldErrors(err); ok {
		code := dErrors.CodeValidation
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			code = dErrors.CodeConflict
		}
		WriteFieldErrors(w, code, dErrors.MessageOf(err), fe)
		return
	}

	code := dErrors.CodeOf(err)
	resp := ErrorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		resp.Description = dErrors.MessageOf(err)
	}
	WriteJSON(w, StatusFor(code), resp)
}

// WriteFieldErrors writes a field-attributed failure.
func WriteFieldErrors(w http.ResponseWriter, code dErrors.Code, description string, fields dErrors.FieldErrors) {
	WriteJSON(w, StatusFor(code), ErrorResponse{
		Error:       string(code),
		Description: description,
		Fields:      fields,
	})
}

// StatusFor maps a domain error code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return http.StatusUnprocessableEntity
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict, dErrors.CodeInvalidState, dErrors.CodeBusy:
		return http.StatusConflict
	case dErrors.CodeUnavailable:
		return http.StatusBadGateway
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON decodes a bounded JSON body into dst. An empty body is allowed
// when allowEmpty is set and leaves dst untouched.
func DecodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
