package draft

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"vehiclereg/internal/registration/models"
	"vehiclereg/internal/registration/schema"
	"vehiclereg/pkg/platform/sentinel"
)

func ptr(s string) *string { return &s }

func validDraft() models.DraftRecord {
	return models.DraftRecord{
		FullName:             "Abebe Kebede",
		FatherName:           "Kebede",
		Region:               "Oromia",
		City:                 "Adama",
		WoredaKebele:         "Kebele 04",
		PrimaryPhoneNumber:   "0911223344",
		EmailAddress:         ptr("abebe@example.com"),
		PreferredVehicleType: "Minibus",
		VehicleQuantity:      3,
		IntendedUse:          ptr("public transport"),
		DigitalSignatureURL:  "sig-7f3a",
		AgreedToTerms:        true,
	}
}

type StoreSuite struct {
	suite.Suite
	ctx     context.Context
	backend *MemoryBackend
	slot    SnapshotStore
	schema  *schema.Schema
	store   *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.backend = NewMemoryBackend()
	s.slot = s.backend.Slot("session-1")
	s.schema = schema.New(models.Catalog{{Name: "Minibus"}, {Name: "Pickup"}})
	s.store = s.newStore()
}

func (s *StoreSuite) newStore() *Store {
	return New(s.slot, s.schema, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func (s *StoreSuite) slotBytes() ([]byte, bool) {
	data, err := s.slot.Read(s.ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, false
	}
	s.Require().NoError(err)
	return data, true
}

func (s *StoreSuite) TestLoad() {
	s.Run("empty slot yields defaults", func() {
		s.Equal(models.Defaults(), s.store.Load(s.ctx))
	})

	s.Run("is idempotent", func() {
		s.Require().True(s.store.Persist(s.ctx, validDraft()))
		first := s.store.Load(s.ctx)
		second := s.store.Load(s.ctx)
		s.Equal(first, second)
	})

	s.Run("discards undecodable snapshots", func() {
		s.Require().NoError(s.slot.Write(s.ctx, []byte(`{"fullName":`)))
		s.Equal(models.Defaults(), s.store.Load(s.ctx))
		_, ok := s.slotBytes()
		s.False(ok, "corrupt snapshot should be deleted")
	})

	s.Run("discards snapshots that fail the schema", func() {
		s.Require().NoError(s.slot.Write(s.ctx, []byte(`{"fullName":"A","vehicleQuantity":500}`)))
		s.Equal(models.Defaults(), s.store.Load(s.ctx))
		_, ok := s.slotBytes()
		s.False(ok)
	})

	s.Run("discards non-integer quantities", func() {
		s.Require().NoError(s.slot.Write(s.ctx, []byte(`{"vehicleQuantity":2.5}`)))
		s.Equal(models.Defaults(), s.store.Load(s.ctx))
	})

	s.Run("normalizes recovered snapshots", func() {
		s.Require().NoError(s.slot.Write(s.ctx, []byte(`{
			"fullName":"Abebe Kebede","fatherName":"Kebede","region":"Oromia","city":"Adama",
			"woredaKebele":"Kebele 04","primaryPhoneNumber":"0911223344","emailAddress":"",
			"isBusiness":false,"tin":"12345","businessLicenseNo":"",
			"preferredVehicleType":"Minibus","vehicleQuantity":1,"intendedUse":"none",
			"digitalSignatureUrl":"sig","agreedToTerms":true}`)))
		d := s.store.Load(s.ctx)
		s.Equal("Abebe Kebede", d.FullName)
		s.Nil(d.EmailAddress)
		s.Nil(d.TIN)
		s.Nil(d.BusinessLicenseNo)
		s.Nil(d.IntendedUse)
	})
}

func (s *StoreSuite) TestPersist() {
	s.Run("round trips a valid draft", func() {
		d := validDraft()
		s.True(s.store.Persist(s.ctx, d))
		s.Equal(d, s.newStore().Load(s.ctx))
	})

	s.Run("skips invalid drafts on a fresh store", func() {
		s.SetupTest()
		d := validDraft()
		d.AgreedToTerms = false
		s.False(s.store.Persist(s.ctx, d))
		s.Equal(models.Defaults(), s.store.Load(s.ctx))
	})

	s.Run("leaves the previous snapshot untouched when invalid", func() {
		s.SetupTest()
		s.Require().True(s.store.Persist(s.ctx, validDraft()))
		before, _ := s.slotBytes()

		bad := validDraft()
		bad.VehicleQuantity = 0
		s.False(s.store.Persist(s.ctx, bad))

		after, _ := s.slotBytes()
		s.Equal(before, after)
	})

	s.Run("clears business fields once the flag flips off", func() {
		s.SetupTest()
		d := validDraft()
		d.IsBusiness = true
		d.TIN = ptr("0012345678")
		d.BusinessLicenseNo = ptr("BL-2024-001")
		s.Require().True(s.store.Persist(s.ctx, d))

		d.IsBusiness = false
		s.Require().True(s.store.Persist(s.ctx, d))

		got := s.newStore().Load(s.ctx)
		s.False(got.IsBusiness)
		s.Nil(got.TIN)
		s.Nil(got.BusinessLicenseNo)
	})
}

func (s *StoreSuite) TestMerge() {
	s.Run("keeps partial drafts in memory only", func() {
		d := s.store.Merge(s.ctx, models.PatchFunc(func(d models.DraftRecord) models.DraftRecord {
			d.FullName = "  Abebe  "
			return d
		}))
		s.Equal("Abebe", d.FullName)
		s.Equal(d, s.store.Current())
		_, ok := s.slotBytes()
		s.False(ok)
	})

	s.Run("persists once the draft is complete", func() {
		full := validDraft()
		d := s.store.Merge(s.ctx, models.PatchFunc(func(models.DraftRecord) models.DraftRecord {
			return full
		}))
		s.Equal(full, d)
		s.Equal(full, s.newStore().Load(s.ctx))
	})
}

func (s *StoreSuite) TestClear() {
	s.store.Merge(s.ctx, models.PatchFunc(func(models.DraftRecord) models.DraftRecord {
		return validDraft()
	}))
	s.store.Clear(s.ctx)

	s.Equal(models.Defaults(), s.store.Current())
	s.Equal(models.Defaults(), s.store.Load(s.ctx))
	_, ok := s.slotBytes()
	s.False(ok)
}

func TestFileBackend(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "drafts")
	slot := NewFileBackend(dir).Slot("../escape/session")

	_, err := slot.Read(ctx)
	require.ErrorIs(t, err, sentinel.ErrNotFound)
	require.NoError(t, slot.Delete(ctx))

	require.NoError(t, slot.Write(ctx, []byte(`{"a":1}`)))
	require.NoError(t, slot.Write(ctx, []byte(`{"a":2}`)))
	data, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not linger")
	assert.Equal(t, "___escape_session.json", entries[0].Name())

	require.NoError(t, slot.Delete(ctx))
	_, err = slot.Read(ctx)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestMemoryBackendIsolatesSlots(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, b.Slot("a").Write(ctx, []byte("x")))

	_, err := b.Slot("b").Read(ctx)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	data, err := b.Slot("a").Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}
