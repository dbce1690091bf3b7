package registryclient

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehiclereg/internal/registration/models"
	"vehiclereg/internal/registration/schema"
	"vehiclereg/internal/registry/catalog"
	"vehiclereg/internal/registry/handler"
	"vehiclereg/internal/registry/service"
	"vehiclereg/internal/registry/store"
	dErrors "vehiclereg/pkg/domain-errors"
	strutil "vehiclereg/pkg/platform/strings"
)

// TestAgainstRegistryHandler runs the client against the reference registry
// so the wire shapes on both sides stay in step.
func TestAgainstRegistryHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := service.New(store.NewInMemory(), schema.New(catalog.Builtin()), service.WithLogger(logger))
	require.NoError(t, err)
	router := chi.NewRouter()
	handler.New(svc, logger).Register(router)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	client, err := New(server.URL, 2*time.Second)
	require.NoError(t, err)
	ctx := context.Background()

	vehicles, err := client.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.Builtin().Names(), vehicles.Names())

	d := models.DraftRecord{
		FullName:             "Abebe Kebede",
		FatherName:           "Kebede",
		Region:               "Oromia",
		City:                 "Adama",
		WoredaKebele:         "Kebele 04",
		PrimaryPhoneNumber:   "0911223344",
		EmailAddress:         strutil.Optional("abebe@example.com"),
		PreferredVehicleType: "Pickup",
		VehicleQuantity:      3,
		DigitalSignatureURL:  "sig-1",
		AgreedToTerms:        true,
	}

	result, err := client.CheckUnique(ctx, models.UniquenessQuery{PrimaryPhoneNumber: d.PrimaryPhoneNumber})
	require.NoError(t, err)
	assert.True(t, result.IsUnique)

	receipt, err := client.Submit(ctx, d)
	require.NoError(t, err)
	require.NotEmpty(t, receipt.ID)

	reg, err := client.Registration(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reg.VehicleQuantity)

	result, err = client.CheckUnique(ctx, models.UniquenessQuery{EmailAddress: "abebe@example.com"})
	require.NoError(t, err)
	assert.False(t, result.IsUnique)
	assert.Equal(t, models.FieldEmailAddress, result.DuplicateField)

	_, err = client.Submit(ctx, d)
	field, ok := dErrors.FieldOf(err)
	require.True(t, ok)
	assert.Equal(t, models.FieldPrimaryPhoneNumber, field)

	d.PrimaryPhoneNumber = "0922000000"
	d.EmailAddress = nil
	d.PreferredVehicleType = "Spaceship"
	_, err = client.Submit(ctx, d)
	fe, ok := dErrors.AsFieldErrors(err)
	require.True(t, ok)
	assert.True(t, fe.Has(models.FieldPreferredVehicleType))
}
