// Package domain holds typed identifiers shared across bounded contexts.
//
// Typed IDs stop a wizard session id from being passed where an applicant id
// is expected. Parse functions are the trust boundary: anything arriving over
// the wire goes through them.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "vehiclereg/pkg/domain-errors"
)

// ApplicantID is the server-assigned reference of a submitted registration.
type ApplicantID uuid.UUID

// WizardSessionID identifies one in-progress wizard and its snapshot slot.
type WizardSessionID uuid.UUID

func (id ApplicantID) String() string     { return uuid.UUID(id).String() }
func (id WizardSessionID) String() string { return uuid.UUID(id).String() }

func (id ApplicantID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id WizardSessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id ApplicantID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id WizardSessionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ApplicantID) UnmarshalText(b []byte) error {
	parsed, err := ParseApplicantID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *WizardSessionID) UnmarshalText(b []byte) error {
	parsed, err := ParseWizardSessionID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NewApplicantID returns a fresh random applicant id.
func NewApplicantID() ApplicantID { return ApplicantID(uuid.New()) }

// NewWizardSessionID returns a fresh random session id.
func NewWizardSessionID() WizardSessionID { return WizardSessionID(uuid.New()) }

// ParseApplicantID parses and validates an applicant id.
func ParseApplicantID(s string) (ApplicantID, error) {
	u, err := parseUUID(s, "applicant id")
	return ApplicantID(u), err
}

// ParseWizardSessionID parses and validates a wizard session id.
func ParseWizardSessionID(s string) (WizardSessionID, error) {
	u, err := parseUUID(s, "session id")
	return WizardSessionID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	if len(s) > 64 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is too long")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}
