package steps

import (
	"context"
	"errors"
	"strings"

	"vehiclereg/internal/registration/models"
	"vehiclereg/internal/registration/schema"
	strutil "vehiclereg/pkg/platform/strings"
)

// IdentityForm is the step 1 input: identity, affiliation, business,
// location and contact. The primary phone is optional here as long as an
// email is given; the full draft schema still requires it at submission.
type IdentityForm struct {
	FullName               string `json:"fullName" validate:"required"`
	FatherName             string `json:"fatherName" validate:"required"`
	GrandfatherName        string `json:"grandfatherName"`
	AssociationName        string `json:"associationName"`
	MembershipNumber       string `json:"membershipNumber"`
	IsBusiness             bool   `json:"isBusiness"`
	TIN                    string `json:"tin"`
	BusinessLicenseNo      string `json:"businessLicenseNo"`
	Region                 string `json:"region" validate:"required"`
	City                   string `json:"city" validate:"required"`
	WoredaKebele           string `json:"woredaKebele" validate:"required"`
	PrimaryPhoneNumber     string `json:"primaryPhoneNumber" validate:"omitempty,phone"`
	AlternativePhoneNumber string `json:"alternativePhoneNumber" validate:"omitempty,phone"`
	EmailAddress           string `json:"emailAddress" validate:"omitempty,email"`
}

func (f IdentityForm) trimmed() IdentityForm {
	for _, p := range []*string{
		&f.FullName, &f.FatherName, &f.GrandfatherName, &f.AssociationName,
		&f.MembershipNumber, &f.TIN, &f.BusinessLicenseNo, &f.Region, &f.City,
		&f.WoredaKebele, &f.PrimaryPhoneNumber, &f.AlternativePhoneNumber, &f.EmailAddress,
	} {
		*p = strings.TrimSpace(*p)
	}
	return f
}

// IdentityValues are step 1 values that passed validation.
type IdentityValues struct {
	form IdentityForm
}

// Apply writes the step 1 fields into d. Business fields are dropped for
// non-business applicants.
func (v IdentityValues) Apply(d models.DraftRecord) models.DraftRecord {
	f := v.form
	d.FullName = f.FullName
	d.FatherName = f.FatherName
	d.GrandfatherName = strutil.Optional(f.GrandfatherName)
	d.AssociationName = strutil.Optional(f.AssociationName)
	d.MembershipNumber = strutil.Optional(f.MembershipNumber)
	d.IsBusiness = f.IsBusiness
	d.TIN = nil
	d.BusinessLicenseNo = nil
	if f.IsBusiness {
		d.TIN = strutil.Optional(f.TIN)
		d.BusinessLicenseNo = strutil.Optional(f.BusinessLicenseNo)
	}
	d.Region = f.Region
	d.City = f.City
	d.WoredaKebele = f.WoredaKebele
	d.PrimaryPhoneNumber = f.PrimaryPhoneNumber
	d.AlternativePhoneNumber = strutil.Optional(f.AlternativePhoneNumber)
	d.EmailAddress = strutil.Optional(f.EmailAddress)
	return d
}

// Identity controls step 1.
type Identity struct {
	schema *schema.Schema
	gate   Gate
	store  DraftStore
}

// NewIdentity creates the step 1 controller.
func NewIdentity(sch *schema.Schema, gate Gate, store DraftStore) (*Identity, error) {
	if sch == nil || gate == nil || store == nil {
		return nil, errors.New("schema, gate and store are required")
	}
	return &Identity{schema: sch, gate: gate, store: store}, nil
}

// Validate checks form against the step 1 schema: field tags, the business
// license rule and the phone-or-email rule.
func (c *Identity) Validate(form IdentityForm) (IdentityValues, error) {
	f := form.trimmed()
	err := c.schema.Check(f,
		schema.BusinessLicense(f.IsBusiness, f.BusinessLicenseNo),
		schema.PhoneOrEmail(f.PrimaryPhoneNumber, f.EmailAddress),
	)
	if err != nil {
		return IdentityValues{}, err
	}
	return IdentityValues{form: f}, nil
}

// Continue validates, checks uniqueness and merges, in that order. Any
// failure leaves the draft untouched.
func (c *Identity) Continue(ctx context.Context, form IdentityForm) (models.DraftRecord, error) {
	values, err := c.Validate(form)
	if err != nil {
		return models.DraftRecord{}, err
	}
	if err := c.gate.Check(ctx, values.form.PrimaryPhoneNumber, values.form.EmailAddress); err != nil {
		return models.DraftRecord{}, err
	}
	return c.store.Merge(ctx, values), nil
}

// Form renders the step 1 input from the current draft.
func (c *Identity) Form() IdentityForm {
	d := c.store.Current()
	return IdentityForm{
		FullName:               d.FullName,
		FatherName:             d.FatherName,
		GrandfatherName:        strutil.Value(d.GrandfatherName),
		AssociationName:        strutil.Value(d.AssociationName),
		MembershipNumber:       strutil.Value(d.MembershipNumber),
		IsBusiness:             d.IsBusiness,
		TIN:                    strutil.Value(d.TIN),
		BusinessLicenseNo:      strutil.Value(d.BusinessLicenseNo),
		Region:                 d.Region,
		City:                   d.City,
		WoredaKebele:           d.WoredaKebele,
		PrimaryPhoneNumber:     d.PrimaryPhoneNumber,
		AlternativePhoneNumber: strutil.Value(d.AlternativePhoneNumber),
		EmailAddress:           d.Email(),
	}
}
