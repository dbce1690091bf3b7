// Package schema validates registration data with go-playground/validator
// and reports failures as field errors keyed by JSON field name.
//
// Per-field constraints live in struct tags. Cross-field rules are Rule
// values composed at the call site, so step-scoped schemas can reuse them.
package schema

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"vehiclereg/internal/registration/models"
	dErrors "vehiclereg/pkg/domain-errors"
)

// PhonePattern is the accepted shape of phone numbers.
var PhonePattern = regexp.MustCompile(`^\+?[0-9]{9,15}$`)

// Messages for the named cross-field rules.
const (
	MessageContactRequired = "Provide a phone number or an email address"
	MessageLicenseRequired = "Business license number is required for business registrations"
)

// Rule is a named cross-field check that records its own failures.
type Rule func(fe *dErrors.FieldErrors)

// Schema validates structs tagged with the registration constraints.
type Schema struct {
	validate *validator.Validate
	catalog  models.Catalog
}

// New builds a Schema. Vehicle types are checked against catalog; with an
// empty catalog any non-empty type is accepted.
func New(catalog models.Catalog) *Schema {
	s := &Schema{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		catalog:  catalog,
	}
	s.validate.RegisterTagNameFunc(jsonName)
	mustRegister(s.validate, "phone", func(fl validator.FieldLevel) bool {
		return PhonePattern.MatchString(fl.Field().String())
	})
	mustRegister(s.validate, "vehicle_type", func(fl validator.FieldLevel) bool {
		if len(s.catalog) == 0 {
			return fl.Field().String() != ""
		}
		return s.catalog.Has(fl.Field().String())
	})
	mustRegister(s.validate, "number_value", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Float32, reflect.Float64:
			return !math.IsNaN(fl.Field().Float())
		default:
			return true
		}
	})
	mustRegister(s.validate, "whole", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Float32, reflect.Float64:
			v := fl.Field().Float()
			return v == math.Trunc(v)
		default:
			return true
		}
	})
	return s
}

// Catalog returns the catalog vehicle types are checked against.
func (s *Schema) Catalog() models.Catalog {
	return s.catalog
}

// Check validates v's tags, then applies rules. It returns
// dErrors.FieldErrors on failure and nil otherwise.
func (s *Schema) Check(v any, rules ...Rule) error {
	var fe dErrors.FieldErrors
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "schema misuse")
		}
		for _, e := range verrs {
			fe.Add(e.Field(), "validation_"+e.Tag(), message(e))
		}
	}
	for _, rule := range rules {
		rule(&fe)
	}
	return fe.Err()
}

// ValidateDraft checks the complete draft schema against the normalized
// form of d.
func (s *Schema) ValidateDraft(d models.DraftRecord) error {
	d = d.Normalize()
	var license string
	if d.BusinessLicenseNo != nil {
		license = *d.BusinessLicenseNo
	}
	return s.Check(d, BusinessLicense(d.IsBusiness, license))
}

// BusinessLicense requires a license number iff the applicant is a business.
func BusinessLicense(isBusiness bool, license string) Rule {
	return func(fe *dErrors.FieldErrors) {
		if isBusiness && strings.TrimSpace(license) == "" {
			fe.Add(models.FieldBusinessLicenseNo, "validation_business_license", MessageLicenseRequired)
		}
	}
}

// PhoneOrEmail requires at least one contact identifier. The failure is
// attached to both fields so either input shows it.
func PhoneOrEmail(phone, email string) Rule {
	return func(fe *dErrors.FieldErrors) {
		if strings.TrimSpace(phone) != "" || strings.TrimSpace(email) != "" {
			return
		}
		fe.Add(models.FieldPrimaryPhoneNumber, "validation_contact", MessageContactRequired)
		fe.Add(models.FieldEmailAddress, "validation_contact", MessageContactRequired)
	}
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		if e.Field() == models.FieldAgreedToTerms {
			return "You must agree to the terms and conditions"
		}
		return fmt.Sprintf("Field '%s' is required", e.Field())
	case "email":
		return fmt.Sprintf("Field '%s' must be a valid email address", e.Field())
	case "phone":
		return fmt.Sprintf("Field '%s' must be 9 to 15 digits with an optional leading +", e.Field())
	case "vehicle_type":
		return fmt.Sprintf("Field '%s' must be one of the listed vehicles", e.Field())
	case "min", "max":
		if e.Field() == models.FieldVehicleQuantity {
			return "Quantity must be between 1 and 100"
		}
		return fmt.Sprintf("Field '%s' is out of range", e.Field())
	case "number_value":
		return fmt.Sprintf("Field '%s' must be a number", e.Field())
	case "whole":
		return fmt.Sprintf("Field '%s' must be a whole number", e.Field())
	default:
		return fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}
