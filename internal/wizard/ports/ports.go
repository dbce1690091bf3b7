// Package ports declares the registry collaborators the wizard calls.
//
// Errors follow one convention across all three: dErrors.FieldErrors for
// input the registry rejected, a *dErrors.Error with CodeConflict and a Field
// for duplicates, and CodeUnavailable for everything that cannot be
// attributed to user input.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"vehiclereg/internal/registration/models"
)

// UniquenessChecker asks the registry whether contact identifiers are taken.
type UniquenessChecker interface {
	CheckUnique(ctx context.Context, q models.UniquenessQuery) (models.UniquenessResult, error)
}

// Submitter sends a complete draft to the registry.
type Submitter interface {
	Submit(ctx context.Context, d models.DraftRecord) (models.SubmissionReceipt, error)
}

// RegistrationReader fetches a registration the registry accepted.
type RegistrationReader interface {
	Registration(ctx context.Context, applicantID string) (*models.Registration, error)
}

// CatalogSource lists the selectable vehicles in display order.
type CatalogSource interface {
	Catalog(ctx context.Context) (models.Catalog, error)
}
