package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"vehiclereg/internal/registration/models"
	"vehiclereg/internal/registration/schema"
	dErrors "vehiclereg/pkg/domain-errors"
	strutil "vehiclereg/pkg/platform/strings"
)

const (
	minQuantity = 1
	maxQuantity = 100
)

// Quantity is a form quantity. It decodes from a JSON number or a numeric
// string; anything else decodes to NaN so validation reports it on the field
// instead of the whole body failing to decode.
type Quantity float64

func (q *Quantity) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		*q = Quantity(math.NaN())
		return nil
	}
	*q = Quantity(v)
	return nil
}

// MarshalJSON writes null for a quantity that is not a finite number.
func (q Quantity) MarshalJSON() ([]byte, error) {
	v := float64(q)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// VehicleForm is the step 2 input.
type VehicleForm struct {
	PreferredVehicleType string   `json:"preferredVehicleType" validate:"required,vehicle_type"`
	VehicleQuantity      Quantity `json:"vehicleQuantity" validate:"number_value,min=1,max=100,whole"`
	IntendedUse          string   `json:"intendedUse"`
	DigitalSignatureURL  string   `json:"digitalSignatureUrl" validate:"required"`
	AgreedToTerms        bool     `json:"agreedToTerms" validate:"required"`
}

func (f VehicleForm) trimmed() VehicleForm {
	f.PreferredVehicleType = strings.TrimSpace(f.PreferredVehicleType)
	f.IntendedUse = strings.TrimSpace(f.IntendedUse)
	f.DigitalSignatureURL = strings.TrimSpace(f.DigitalSignatureURL)
	return f
}

// VehicleValues are step 2 values that passed validation.
type VehicleValues struct {
	form VehicleForm
}

// Apply writes the step 2 fields into d.
func (v VehicleValues) Apply(d models.DraftRecord) models.DraftRecord {
	f := v.form
	d.PreferredVehicleType = f.PreferredVehicleType
	d.VehicleQuantity = int(f.VehicleQuantity)
	d.IntendedUse = strutil.Optional(f.IntendedUse)
	d.DigitalSignatureURL = f.DigitalSignatureURL
	d.AgreedToTerms = f.AgreedToTerms
	return d
}

// inProgress carries unvalidated step 2 values on back navigation. A
// quantity that is not a whole number in range is not carried.
type inProgress struct {
	form VehicleForm
}

func (p inProgress) Apply(d models.DraftRecord) models.DraftRecord {
	f := p.form.trimmed()
	d.PreferredVehicleType = f.PreferredVehicleType
	if q := float64(f.VehicleQuantity); q == math.Trunc(q) && q >= minQuantity && q <= maxQuantity {
		d.VehicleQuantity = int(q)
	}
	d.IntendedUse = strutil.Optional(f.IntendedUse)
	d.DigitalSignatureURL = f.DigitalSignatureURL
	d.AgreedToTerms = f.AgreedToTerms
	return d
}

// Vehicle controls step 2, the final step.
type Vehicle struct {
	schema      *schema.Schema
	store       DraftStore
	coordinator Coordinator
}

// NewVehicle creates the step 2 controller.
func NewVehicle(sch *schema.Schema, store DraftStore, coordinator Coordinator) (*Vehicle, error) {
	if sch == nil || store == nil || coordinator == nil {
		return nil, errors.New("schema, store and coordinator are required")
	}
	return &Vehicle{schema: sch, store: store, coordinator: coordinator}, nil
}

// Validate checks form against the step 2 schema.
func (c *Vehicle) Validate(form VehicleForm) (VehicleValues, error) {
	f := form.trimmed()
	if err := c.schema.Check(f); err != nil {
		return VehicleValues{}, err
	}
	return VehicleValues{form: f}, nil
}

// Continue validates, merges and hands the draft to the coordinator.
// Step 2 is terminal: success means the registration was accepted.
func (c *Vehicle) Continue(ctx context.Context, form VehicleForm) (models.SubmissionReceipt, error) {
	values, err := c.Validate(form)
	if err != nil {
		return models.SubmissionReceipt{}, err
	}
	c.store.Merge(ctx, values)
	return c.coordinator.Submit(ctx, c.store)
}

// Keep merges in-progress values without validating them, so returning to
// step 2 shows what was typed.
func (c *Vehicle) Keep(ctx context.Context, form VehicleForm) models.DraftRecord {
	return c.store.Merge(ctx, inProgress{form: form})
}

// Form renders the step 2 input from the current draft. With no vehicle
// chosen yet the first catalog entry is preselected.
func (c *Vehicle) Form() VehicleForm {
	d := c.store.Current()
	form := VehicleForm{
		PreferredVehicleType: d.PreferredVehicleType,
		VehicleQuantity:      Quantity(d.VehicleQuantity),
		IntendedUse:          strutil.Value(d.IntendedUse),
		DigitalSignatureURL:  d.DigitalSignatureURL,
		AgreedToTerms:        d.AgreedToTerms,
	}
	if form.PreferredVehicleType == "" {
		if first, ok := c.schema.Catalog().First(); ok {
			form.PreferredVehicleType = first.Name
		}
	}
	return form
}

// Select binds a picker choice into the form by writing the entry's
// canonical name.
func (c *Vehicle) Select(form VehicleForm, name string) (VehicleForm, error) {
	entry, ok := c.schema.Catalog().Find(strings.TrimSpace(name))
	if !ok {
		var fe dErrors.FieldErrors
		fe.Add(models.FieldPreferredVehicleType, "validation_vehicle_type", "Choose one of the listed vehicles")
		return form, fe
	}
	form.PreferredVehicleType = entry.Name
	return form, nil
}

// Selected returns the catalog entry the form's value designates. An empty
// value designates the first entry; an unknown one designates nothing.
func (c *Vehicle) Selected(form VehicleForm) (models.VehicleEntry, bool) {
	catalog := c.schema.Catalog()
	if form.PreferredVehicleType == "" {
		return catalog.First()
	}
	return catalog.Find(form.PreferredVehicleType)
}
