package steps

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"vehiclereg/internal/registration/models"
	"vehiclereg/internal/registration/schema"
	"vehiclereg/internal/wizard/draft"
	"vehiclereg/internal/wizard/gate"
	"vehiclereg/internal/wizard/ports/mocks"
	"vehiclereg/internal/wizard/submission"
	dErrors "vehiclereg/pkg/domain-errors"
)

var catalog = models.Catalog{
	{Name: "Minibus", Category: "passenger", Capacity: "12 seats"},
	{Name: "Pickup", Category: "cargo", Capacity: "1 tonne"},
}

func identityForm() IdentityForm {
	return IdentityForm{
		FullName:           "Abebe Kebede",
		FatherName:         "Kebede",
		Region:             "Oromia",
		City:               "Adama",
		WoredaKebele:       "Kebele 04",
		PrimaryPhoneNumber: "0911223344",
		EmailAddress:       "abebe@example.com",
	}
}

func vehicleForm() VehicleForm {
	return VehicleForm{
		PreferredVehicleType: "Pickup",
		VehicleQuantity:      2,
		IntendedUse:          "cargo",
		DigitalSignatureURL:  "sig-123",
		AgreedToTerms:        true,
	}
}

type StepsSuite struct {
	suite.Suite
	ctx       context.Context
	ctrl      *gomock.Controller
	checker   *mocks.MockUniquenessChecker
	submitter *mocks.MockSubmitter
	store     *draft.Store
	identity  *Identity
	vehicle   *Vehicle
}

func TestStepsSuite(t *testing.T) {
	suite.Run(t, new(StepsSuite))
}

func (s *StepsSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.checker = mocks.NewMockUniquenessChecker(s.ctrl)
	s.submitter = mocks.NewMockSubmitter(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sch := schema.New(catalog)
	s.store = draft.New(draft.NewMemoryBackend().Slot("steps"), sch, draft.WithLogger(logger))
	g, err := gate.New(s.checker, gate.WithLogger(logger))
	s.Require().NoError(err)
	coord, err := submission.New(s.submitter, sch, submission.WithLogger(logger))
	s.Require().NoError(err)

	s.identity, err = NewIdentity(sch, g, s.store)
	s.Require().NoError(err)
	s.vehicle, err = NewVehicle(sch, s.store, coord)
	s.Require().NoError(err)
}

func (s *StepsSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *StepsSuite) fields(err error) dErrors.FieldErrors {
	fe, ok := dErrors.AsFieldErrors(err)
	s.Require().True(ok, "expected field errors, got %v", err)
	return fe
}

func (s *StepsSuite) TestIdentityValidate() {
	s.Run("missing phone and email flag both fields", func() {
		f := identityForm()
		f.PrimaryPhoneNumber = ""
		f.EmailAddress = ""
		_, err := s.identity.Validate(f)
		fe := s.fields(err)
		s.ElementsMatch([]string{"primaryPhoneNumber", "emailAddress"}, fe.Fields())
		s.Equal(fe.Message("primaryPhoneNumber"), fe.Message("emailAddress"))
	})

	s.Run("email alone satisfies the contact rule", func() {
		f := identityForm()
		f.PrimaryPhoneNumber = ""
		_, err := s.identity.Validate(f)
		s.NoError(err)
	})

	s.Run("a present phone must match the pattern", func() {
		f := identityForm()
		f.PrimaryPhoneNumber = "12-34"
		_, err := s.identity.Validate(f)
		s.Equal([]string{"primaryPhoneNumber"}, s.fields(err).Fields())
	})

	s.Run("business license follows the business flag", func() {
		f := identityForm()
		f.IsBusiness = true
		f.BusinessLicenseNo = "  "
		_, err := s.identity.Validate(f)
		s.Equal([]string{"businessLicenseNo"}, s.fields(err).Fields())

		f.IsBusiness = false
		_, err = s.identity.Validate(f)
		s.NoError(err)
	})
}

func (s *StepsSuite) TestIdentityContinue() {
	s.Run("gate conflict leaves the draft untouched", func() {
		s.checker.EXPECT().CheckUnique(gomock.Any(), gomock.Any()).Return(models.UniquenessResult{
			DuplicateField: models.FieldPrimaryPhoneNumber,
			Message:        "Phone number already registered",
		}, nil)

		_, err := s.identity.Continue(s.ctx, identityForm())
		fe := s.fields(err)
		s.Equal("Phone number already registered", fe.Message("primaryPhoneNumber"))
		s.Equal(models.Defaults(), s.store.Current())
	})

	s.Run("invalid input never reaches the gate", func() {
		f := identityForm()
		f.FullName = ""
		_, err := s.identity.Continue(s.ctx, f)
		s.Error(err)
	})

	s.Run("unique identifiers merge the step", func() {
		f := identityForm()
		f.IsBusiness = true
		f.TIN = "0012345678"
		f.BusinessLicenseNo = "BL-1"
		s.checker.EXPECT().CheckUnique(gomock.Any(), models.UniquenessQuery{
			PrimaryPhoneNumber: "0911223344",
			EmailAddress:       "abebe@example.com",
		}).Return(models.UniquenessResult{IsUnique: true}, nil)

		d, err := s.identity.Continue(s.ctx, f)
		s.Require().NoError(err)
		s.Equal("Abebe Kebede", d.FullName)
		s.Equal("BL-1", *d.BusinessLicenseNo)
		s.Equal(f, s.identity.Form())
	})
}

func (s *StepsSuite) TestVehicleValidate() {
	for _, q := range []Quantity{0, 101, 2.5, -3, Quantity(math.NaN()), Quantity(math.Inf(1))} {
		f := vehicleForm()
		f.VehicleQuantity = q
		_, err := s.vehicle.Validate(f)
		s.Equal([]string{"vehicleQuantity"}, s.fields(err).Fields(), "quantity %v", q)
	}

	f := vehicleForm()
	f.PreferredVehicleType = "Tractor"
	f.AgreedToTerms = false
	_, err := s.vehicle.Validate(f)
	s.ElementsMatch([]string{"preferredVehicleType", "agreedToTerms"}, s.fields(err).Fields())
}

func (s *StepsSuite) TestVehicleContinueValidationSkipsSubmission() {
	f := vehicleForm()
	f.VehicleQuantity = 150
	_, err := s.vehicle.Continue(s.ctx, f)
	s.Error(err)
	s.Equal(models.DefaultVehicleQuantity, s.store.Current().VehicleQuantity)
}

func (s *StepsSuite) TestVehicleContinueSubmits() {
	s.checker.EXPECT().CheckUnique(gomock.Any(), gomock.Any()).Return(models.UniquenessResult{IsUnique: true}, nil)
	_, err := s.identity.Continue(s.ctx, identityForm())
	s.Require().NoError(err)

	s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, d models.DraftRecord) (models.SubmissionReceipt, error) {
			s.Equal("Pickup", d.PreferredVehicleType)
			s.Equal(2, d.VehicleQuantity)
			s.Equal("Abebe Kebede", d.FullName)
			return models.SubmissionReceipt{ID: "app-1"}, nil
		})

	receipt, err := s.vehicle.Continue(s.ctx, vehicleForm())
	s.Require().NoError(err)
	s.Equal("app-1", receipt.ID)
	s.Equal(models.Defaults(), s.store.Current())
}

func (s *StepsSuite) TestKeepMergesWithoutValidation() {
	f := vehicleForm()
	f.AgreedToTerms = false
	f.VehicleQuantity = 7.5
	f.IntendedUse = "none"

	d := s.vehicle.Keep(s.ctx, f)
	s.Equal("Pickup", d.PreferredVehicleType)
	s.Equal(models.DefaultVehicleQuantity, d.VehicleQuantity)
	s.Nil(d.IntendedUse)

	form := s.vehicle.Form()
	s.Equal("Pickup", form.PreferredVehicleType)
	s.Equal("sig-123", form.DigitalSignatureURL)
}

func (s *StepsSuite) TestPickerBinding() {
	s.Run("defaults to the first catalog entry", func() {
		form := s.vehicle.Form()
		s.Equal("Minibus", form.PreferredVehicleType)
		entry, ok := s.vehicle.Selected(VehicleForm{})
		s.True(ok)
		s.Equal("Minibus", entry.Name)
	})

	s.Run("selection writes the canonical name", func() {
		form, err := s.vehicle.Select(s.vehicle.Form(), " Pickup ")
		s.Require().NoError(err)
		s.Equal("Pickup", form.PreferredVehicleType)
		entry, ok := s.vehicle.Selected(form)
		s.True(ok)
		s.Equal("cargo", entry.Category)
	})

	s.Run("unknown entries are rejected", func() {
		form := s.vehicle.Form()
		got, err := s.vehicle.Select(form, "Tractor")
		s.True(s.fields(err).Has("preferredVehicleType"))
		s.Equal(form, got)

		_, ok := s.vehicle.Selected(VehicleForm{PreferredVehicleType: "Tractor"})
		s.False(ok)
	})
}

func TestQuantityDecoding(t *testing.T) {
	decode := func(t *testing.T, body string) VehicleForm {
		t.Helper()
		var f VehicleForm
		require.NoError(t, json.Unmarshal([]byte(body), &f))
		return f
	}

	t.Run("number and numeric string", func(t *testing.T) {
		assert.Equal(t, Quantity(3), decode(t, `{"vehicleQuantity":3}`).VehicleQuantity)
		assert.Equal(t, Quantity(5), decode(t, `{"vehicleQuantity":" 5 "}`).VehicleQuantity)
		assert.Equal(t, Quantity(2.5), decode(t, `{"vehicleQuantity":"2.5"}`).VehicleQuantity)
	})

	t.Run("non-numeric input decodes to NaN", func(t *testing.T) {
		for _, body := range []string{`{"vehicleQuantity":"abc"}`, `{"vehicleQuantity":""}`, `{"vehicleQuantity":true}`} {
			assert.True(t, math.IsNaN(float64(decode(t, body).VehicleQuantity)), body)
		}
	})

	t.Run("overflow decodes to infinity", func(t *testing.T) {
		assert.True(t, math.IsInf(float64(decode(t, `{"vehicleQuantity":1e400}`).VehicleQuantity), 1))
	})

	t.Run("null leaves the value alone", func(t *testing.T) {
		f := VehicleForm{VehicleQuantity: 4}
		require.NoError(t, json.Unmarshal([]byte(`{"vehicleQuantity":null}`), &f))
		assert.Equal(t, Quantity(4), f.VehicleQuantity)
	})

	t.Run("non-finite values encode as null", func(t *testing.T) {
		out, err := json.Marshal(VehicleForm{VehicleQuantity: Quantity(math.NaN())})
		require.NoError(t, err)
		assert.Contains(t, string(out), `"vehicleQuantity":null`)
	})
}
