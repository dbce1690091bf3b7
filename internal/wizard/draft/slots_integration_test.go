//go:build integration

package draft

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehiclereg/internal/registration/models"
	"vehiclereg/internal/registration/schema"
	"vehiclereg/pkg/platform/sentinel"
	"vehiclereg/pkg/testutil/containers"
)

func TestRedisBackend(t *testing.T) {
	ctx := context.Background()
	client := containers.Redis(t)
	backend := NewRedisBackend(client, time.Hour)
	slot := backend.Slot("session-42")

	_, err := slot.Read(ctx)
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	store := New(slot, schema.New(models.Catalog{{Name: "Minibus"}}))
	require.True(t, store.Persist(ctx, validDraft()))

	ttl, err := client.TTL(ctx, "wizard:draft:session-42").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)

	assert.Equal(t, validDraft(), New(slot, schema.New(models.Catalog{{Name: "Minibus"}})).Load(ctx))

	store.Clear(ctx)
	_, err = slot.Read(ctx)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
