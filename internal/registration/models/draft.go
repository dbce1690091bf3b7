package models

import (
	"strings"

	strutil "vehiclereg/pkg/platform/strings"
)

// Wire names of the draft fields. Field errors are keyed by these.
const (
	FieldFullName               = "fullName"
	FieldFatherName             = "fatherName"
	FieldGrandfatherName        = "grandfatherName"
	FieldAssociationName        = "associationName"
	FieldMembershipNumber       = "membershipNumber"
	FieldIsBusiness             = "isBusiness"
	FieldTIN                    = "tin"
	FieldBusinessLicenseNo      = "businessLicenseNo"
	FieldRegion                 = "region"
	FieldCity                   = "city"
	FieldWoredaKebele           = "woredaKebele"
	FieldPrimaryPhoneNumber     = "primaryPhoneNumber"
	FieldAlternativePhoneNumber = "alternativePhoneNumber"
	FieldEmailAddress           = "emailAddress"
	FieldPreferredVehicleType   = "preferredVehicleType"
	FieldVehicleQuantity        = "vehicleQuantity"
	FieldIntendedUse            = "intendedUse"
	FieldDigitalSignatureURL    = "digitalSignatureUrl"
	FieldAgreedToTerms          = "agreedToTerms"
)

// IntendedUseNone is the picker sentinel meaning "no intended use given".
const IntendedUseNone = "none"

// DefaultVehicleQuantity is the quantity a fresh draft starts with.
const DefaultVehicleQuantity = 1

// DraftRecord is the registration carried across wizard steps and sent to
// the registry on submission. Optional fields are nil when absent.
//
// Invariants (after Normalize):
//   - strings are trimmed and optional blanks are nil
//   - TIN and BusinessLicenseNo are nil whenever IsBusiness is false
//   - IntendedUse is never the "none" sentinel
type DraftRecord struct {
	FullName               string  `json:"fullName" validate:"required"`
	FatherName             string  `json:"fatherName" validate:"required"`
	GrandfatherName        *string `json:"grandfatherName,omitempty"`
	AssociationName        *string `json:"associationName,omitempty"`
	MembershipNumber       *string `json:"membershipNumber,omitempty"`
	IsBusiness             bool    `json:"isBusiness"`
	TIN                    *string `json:"tin,omitempty"`
	BusinessLicenseNo      *string `json:"businessLicenseNo,omitempty"`
	Region                 string  `json:"region" validate:"required"`
	City                   string  `json:"city" validate:"required"`
	WoredaKebele           string  `json:"woredaKebele" validate:"required"`
	PrimaryPhoneNumber     string  `json:"primaryPhoneNumber" validate:"required,phone"`
	AlternativePhoneNumber *string `json:"alternativePhoneNumber,omitempty" validate:"omitempty,phone"`
	EmailAddress           *string `json:"emailAddress,omitempty" validate:"omitempty,email"`
	PreferredVehicleType   string  `json:"preferredVehicleType" validate:"required,vehicle_type"`
	VehicleQuantity        int     `json:"vehicleQuantity" validate:"min=1,max=100"`
	IntendedUse            *string `json:"intendedUse,omitempty"`
	DigitalSignatureURL    string  `json:"digitalSignatureUrl" validate:"required"`
	AgreedToTerms          bool    `json:"agreedToTerms" validate:"required"`
}

// Defaults returns the record a wizard starts with when nothing was recovered.
func Defaults() DraftRecord {
	return DraftRecord{VehicleQuantity: DefaultVehicleQuantity}
}

// Normalize returns a copy with whitespace trimmed, optional blanks coerced
// to nil, business fields cleared for non-business applicants and the
// intended-use sentinel dropped. It is idempotent.
func (d DraftRecord) Normalize() DraftRecord {
	d.FullName = strings.TrimSpace(d.FullName)
	d.FatherName = strings.TrimSpace(d.FatherName)
	d.GrandfatherName = strutil.NormalizeOptional(d.GrandfatherName)
	d.AssociationName = strutil.NormalizeOptional(d.AssociationName)
	d.MembershipNumber = strutil.NormalizeOptional(d.MembershipNumber)
	d.TIN = strutil.NormalizeOptional(d.TIN)
	d.BusinessLicenseNo = strutil.NormalizeOptional(d.BusinessLicenseNo)
	if !d.IsBusiness {
		d.TIN = nil
		d.BusinessLicenseNo = nil
	}
	d.Region = strings.TrimSpace(d.Region)
	d.City = strings.TrimSpace(d.City)
	d.WoredaKebele = strings.TrimSpace(d.WoredaKebele)
	d.PrimaryPhoneNumber = strings.TrimSpace(d.PrimaryPhoneNumber)
	d.AlternativePhoneNumber = strutil.NormalizeOptional(d.AlternativePhoneNumber)
	d.EmailAddress = strutil.NormalizeOptional(d.EmailAddress)
	d.PreferredVehicleType = strings.TrimSpace(d.PreferredVehicleType)
	d.IntendedUse = strutil.NormalizeOptional(d.IntendedUse)
	if d.IntendedUse != nil && strings.EqualFold(*d.IntendedUse, IntendedUseNone) {
		d.IntendedUse = nil
	}
	d.DigitalSignatureURL = strings.TrimSpace(d.DigitalSignatureURL)
	return d
}

// Email returns the email address or "" when absent.
func (d DraftRecord) Email() string {
	return strutil.Value(d.EmailAddress)
}

// Patch is a shallow set of field values written into a draft.
type Patch interface {
	Apply(DraftRecord) DraftRecord
}

// PatchFunc adapts a function to Patch.
type PatchFunc func(DraftRecord) DraftRecord

func (f PatchFunc) Apply(d DraftRecord) DraftRecord { return f(d) }
