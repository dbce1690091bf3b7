//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"vehiclereg/internal/registry/store"
	"vehiclereg/pkg/testutil/containers"
)

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	db := containers.Postgres(t)
	pg := store.NewPostgres(db)
	if err := pg.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	suite.Run(t, &StoreSuite{newStore: func() Store {
		if _, err := db.Exec(`TRUNCATE registrations`); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return pg
	}})
}

func TestPostgresMigrateIsRepeatable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := store.NewPostgres(containers.Postgres(t))
	ctx := context.Background()
	if err := pg.Migrate(ctx); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	if err := pg.Migrate(ctx); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}
