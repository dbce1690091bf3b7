package audit

import (
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks
// can apply different retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal significance: a
	// registration was accepted into the registry.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events worth alerting on, such as repeated
	// duplicate submissions.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Action names what happened.
type Action string

const (
	ActionRegistrationCreated  Action = "registration_created"
	ActionRegistrationRejected Action = "registration_rejected"
	ActionDuplicateDetected    Action = "duplicate_detected"
	ActionUniquenessChecked    Action = "uniqueness_checked"
)

var actionCategories = map[Action]EventCategory{
	ActionRegistrationCreated:  CategoryCompliance,
	ActionRegistrationRejected: CategoryOperations,
	ActionDuplicateDetected:    CategorySecurity,
	ActionUniquenessChecked:    CategoryOperations,
}

// Category returns the category for the action. Unknown actions are
// operational.
func (a Action) Category() EventCategory {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted from domain logic to capture key actions. It stays
// transport-agnostic so sinks can fan out. Contact identifiers are never
// carried raw; Subject holds the applicant id when one exists.
type Event struct {
	Category  EventCategory `json:"category"`
	Action    Action        `json:"action"`
	Timestamp time.Time     `json:"timestamp"`
	Subject   string        `json:"subject,omitempty"`
	Field     string        `json:"field,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
	ClientIP  string        `json:"client_ip,omitempty"`
}

// Normalize fills the category and timestamp when the emitter left them empty.
func (e Event) Normalize(now time.Time) Event {
	if e.Category == "" {
		e.Category = e.Action.Category()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	return e
}
