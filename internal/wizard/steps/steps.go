// Package steps holds the two wizard step controllers. Each owns a schema
// scoped to its own fields, a Validate that reports field errors keyed by
// JSON name, and a Continue that runs the step's side effects in order.
package steps

import (
	"context"

	"vehiclereg/internal/registration/models"
	"vehiclereg/internal/wizard/submission"
)

// Step names used in logs and metrics.
const (
	StepIdentity = "identity"
	StepVehicle  = "vehicle"
)

// DraftStore is the draft store as the step controllers use it.
type DraftStore interface {
	Current() models.DraftRecord
	Merge(ctx context.Context, patch models.Patch) models.DraftRecord
	Clear(ctx context.Context)
}

// Gate is the uniqueness guard run before leaving step 1.
type Gate interface {
	Check(ctx context.Context, phone, email string) error
}

// Coordinator performs the final submission.
type Coordinator interface {
	Submit(ctx context.Context, store submission.DraftStore) (models.SubmissionReceipt, error)
}
