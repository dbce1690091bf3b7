package models

import "time"

// UniquenessQuery asks whether contact identifiers are already registered.
// Empty identifiers are omitted from the query.
type UniquenessQuery struct {
	PrimaryPhoneNumber string `json:"primaryPhoneNumber,omitempty"`
	EmailAddress       string `json:"emailAddress,omitempty"`
}

// IsEmpty reports whether the query names no identifier.
func (q UniquenessQuery) IsEmpty() bool {
	return q.PrimaryPhoneNumber == "" && q.EmailAddress == ""
}

// UniquenessResult is the registry's answer to a UniquenessQuery.
// DuplicateField is one of FieldPrimaryPhoneNumber or FieldEmailAddress.
type UniquenessResult struct {
	IsUnique       bool   `json:"isUnique"`
	DuplicateField string `json:"duplicateField,omitempty"`
	Message        string `json:"message,omitempty"`
}

// SubmissionReceipt carries the applicant id the registry assigned.
type SubmissionReceipt struct {
	ID string
}

// Registration is a draft the registry accepted.
type Registration struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	DraftRecord
}
