// Package store persists accepted registrations.
//
// Stores report infrastructure facts through pkg/platform/sentinel:
// ErrNotFound for unknown ids and ErrConflict when a phone number or email
// address is already taken. Attribution of a conflict to a field is the
// service's job.
package store

import "strings"

// ContactKey is the lookup form of an email address. Emails compare
// case-insensitively; phone numbers compare exactly after trimming.
func ContactKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
