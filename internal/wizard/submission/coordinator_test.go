package submission

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"vehiclereg/internal/registration/models"
	"vehiclereg/internal/registration/schema"
	"vehiclereg/internal/wizard/draft"
	"vehiclereg/internal/wizard/ports/mocks"
	dErrors "vehiclereg/pkg/domain-errors"
)

func ptr(s string) *string { return &s }

func validDraft() models.DraftRecord {
	return models.DraftRecord{
		FullName:             "Tigist Alemu",
		FatherName:           "Alemu",
		Region:               "Amhara",
		City:                 "Bahir Dar",
		WoredaKebele:         "Kebele 11",
		PrimaryPhoneNumber:   "+251922334455",
		EmailAddress:         ptr("tigist@example.com"),
		PreferredVehicleType: "Pickup",
		VehicleQuantity:      1,
		DigitalSignatureURL:  "sig-01",
		AgreedToTerms:        true,
	}
}

type CoordinatorSuite struct {
	suite.Suite
	ctx         context.Context
	ctrl        *gomock.Controller
	submitter   *mocks.MockSubmitter
	store       *draft.Store
	coordinator *Coordinator
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.submitter = mocks.NewMockSubmitter(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sch := schema.New(models.Catalog{{Name: "Minibus"}, {Name: "Pickup"}})
	s.store = draft.New(draft.NewMemoryBackend().Slot("s"), sch, draft.WithLogger(logger))

	var err error
	s.coordinator, err = New(s.submitter, sch, WithLogger(logger))
	s.Require().NoError(err)
}

func (s *CoordinatorSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *CoordinatorSuite) fill(d models.DraftRecord) {
	s.store.Merge(s.ctx, models.PatchFunc(func(models.DraftRecord) models.DraftRecord { return d }))
}

func (s *CoordinatorSuite) TestNew() {
	_, err := New(nil, schema.New(nil))
	s.ErrorContains(err, "submitter is required")
	_, err = New(s.submitter, nil)
	s.ErrorContains(err, "schema is required")
}

func (s *CoordinatorSuite) TestPreCheckBlocksNetwork() {
	d := validDraft()
	d.AgreedToTerms = false
	d.VehicleQuantity = 0
	s.fill(d)

	_, err := s.coordinator.Submit(s.ctx, s.store)
	fe, ok := dErrors.AsFieldErrors(err)
	s.Require().True(ok)
	s.ElementsMatch([]string{"agreedToTerms", "vehicleQuantity"}, fe.Fields())
	s.Equal(d.FullName, s.store.Current().FullName, "draft must be kept")
}

func (s *CoordinatorSuite) TestSuccessClearsDraft() {
	s.fill(validDraft())
	s.submitter.EXPECT().Submit(gomock.Any(), validDraft()).
		Return(models.SubmissionReceipt{ID: "abc123"}, nil).Times(1)

	receipt, err := s.coordinator.Submit(s.ctx, s.store)
	s.Require().NoError(err)
	s.Equal("abc123", receipt.ID)
	s.Equal(models.Defaults(), s.store.Current())
	s.Equal(models.Defaults(), s.store.Load(s.ctx))
}

func (s *CoordinatorSuite) TestFailuresKeepDraft() {
	s.Run("late duplicate stays field attached", func() {
		s.fill(validDraft())
		s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
			Return(models.SubmissionReceipt{}, dErrors.Conflict(models.FieldPrimaryPhoneNumber, "Phone already registered"))

		_, err := s.coordinator.Submit(s.ctx, s.store)
		field, ok := dErrors.FieldOf(err)
		s.True(ok)
		s.Equal(models.FieldPrimaryPhoneNumber, field)
		s.Equal(validDraft(), s.store.Current())
	})

	s.Run("registry field errors pass through", func() {
		s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
			Return(models.SubmissionReceipt{}, dErrors.FieldErrors{{Field: "city", Message: "unknown city", Code: "validation_error"}})

		_, err := s.coordinator.Submit(s.ctx, s.store)
		fe, ok := dErrors.AsFieldErrors(err)
		s.True(ok)
		s.True(fe.Has("city"))
	})

	s.Run("server errors become a generic failure", func() {
		s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
			Return(models.SubmissionReceipt{}, dErrors.New(dErrors.CodeUnavailable, "registry returned 500"))

		_, err := s.coordinator.Submit(s.ctx, s.store)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
		s.Equal(MessageSubmitFailed, dErrors.MessageOf(err))
		_, ok := dErrors.FieldOf(err)
		s.False(ok)
		s.Equal(validDraft(), s.store.Load(s.ctx), "snapshot survives for a retry")
	})

	s.Run("missing id is a protocol failure", func() {
		s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(models.SubmissionReceipt{}, nil)

		_, err := s.coordinator.Submit(s.ctx, s.store)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
		s.Equal(validDraft(), s.store.Current())
	})

	s.Run("transport errors are not field attached", func() {
		s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
			Return(models.SubmissionReceipt{}, errors.New("dial tcp: connection refused"))

		_, err := s.coordinator.Submit(s.ctx, s.store)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
		_, ok := dErrors.AsFieldErrors(err)
		s.False(ok)
	})
}
