package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehiclereg/internal/platform/config"
	"vehiclereg/internal/registration/models"
	"vehiclereg/internal/wizard"
	"vehiclereg/internal/wizard/draft"
	"vehiclereg/pkg/testutil"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	var cfg config.Config
	require.NoError(t, config.ParseEnv(&cfg))
	cfg.Snapshot.Backend = config.SnapshotMemory
	cfg.Redis.URL = ""
	cfg.Postgres.DSN = ""
	cfg.Kafka.Brokers = nil
	cfg.Catalog.Path = ""
	cfg.Server.ServeRegistry = true
	return cfg
}

func TestSnapshotBackend(t *testing.T) {
	b, err := snapshotBackend(config.Snapshot{Backend: config.SnapshotMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &draft.MemoryBackend{}, b)

	b, err = snapshotBackend(config.Snapshot{Backend: config.SnapshotFile, Dir: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &draft.FileBackend{}, b)

	_, err = snapshotBackend(config.Snapshot{Backend: config.SnapshotRedis}, nil)
	assert.Error(t, err)

	_, err = snapshotBackend(config.Snapshot{Backend: "tape"}, nil)
	assert.Error(t, err)
}

// TestAppEndToEnd points the wizard's registry client at the same router
// that hosts the reference registry and walks a registration through.
func TestAppEndToEnd(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	var handler http.Handler
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	cfg := testConfig(t)
	cfg.Registry.BaseURL = server.URL
	cfg.Registry.Timeout = 5 * time.Second

	a, err := newApp(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	handler = a.router

	rr := testutil.DoRequest(a.router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	rr = testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodPost, "/wizard/sessions", nil))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	view := testutil.UnmarshalResponse[wizard.View](t, rr)
	require.NotEmpty(t, view.Catalog)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	base := "/wizard/sessions/" + view.SessionID.String()

	rr = testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodPost, base+"/identity", map[string]any{
		"fullName":           "Abebe Kebede",
		"fatherName":         "Kebede",
		"region":             "Oromia",
		"city":               "Adama",
		"woredaKebele":       "Kebele 04",
		"primaryPhoneNumber": "0911223344",
	}))
	testutil.AssertStatus(t, rr, http.StatusOK)
	view = testutil.UnmarshalResponse[wizard.View](t, rr)
	assert.Equal(t, wizard.StateVehicle, view.State)

	rr = testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodPost, base+"/vehicle", map[string]any{
		"preferredVehicleType": view.Catalog[0].Name,
		"vehicleQuantity":      2,
		"digitalSignatureUrl":  "sig-1",
		"agreedToTerms":        true,
	}))
	testutil.AssertStatus(t, rr, http.StatusOK)
	view = testutil.UnmarshalResponse[wizard.View](t, rr)
	assert.Equal(t, wizard.StateConfirmed, view.State)
	require.NotEmpty(t, view.ReferenceID)

	rr = testutil.DoRequest(a.router, httptest.NewRequest(http.MethodGet, "/api/registrations/"+view.ReferenceID, nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	reg := testutil.UnmarshalResponse[models.Registration](t, rr)
	assert.Equal(t, "0911223344", reg.PrimaryPhoneNumber)

	rr = testutil.DoRequest(a.router, httptest.NewRequest(http.MethodGet, base+"/registration", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	confirmed := testutil.UnmarshalResponse[models.Registration](t, rr)
	assert.Equal(t, view.ReferenceID, confirmed.ID)
	assert.Equal(t, 2, confirmed.VehicleQuantity)

	rr = testutil.DoRequest(a.router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, "vehiclereg_registry_registrations_created_total 1"), "metrics body missing created counter")
	assert.Contains(t, body, "vehiclereg_wizard_submission_outcomes_total")
	assert.Contains(t, body, "vehiclereg_registry_registrations_stored 1")
}
