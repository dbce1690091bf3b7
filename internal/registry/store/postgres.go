package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"vehiclereg/internal/registration/models"
	"vehiclereg/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

const schemaDDL = `
CREATE TABLE IF NOT EXISTS registrations (
	id            TEXT PRIMARY KEY,
	primary_phone TEXT NOT NULL,
	email_key     TEXT,
	record        JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS registrations_primary_phone_key ON registrations (primary_phone);
CREATE UNIQUE INDEX IF NOT EXISTS registrations_email_key_key ON registrations (email_key) WHERE email_key IS NOT NULL;
`

// PostgresStore persists registrations in PostgreSQL. The draft is kept as
// JSONB next to the indexed contact columns.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the registrations table and its unique indexes.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("migrate registrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, reg *models.Registration) error {
	if reg == nil {
		return fmt.Errorf("registration is required")
	}
	record, err := json.Marshal(reg.DraftRecord)
	if err != nil {
		return fmt.Errorf("encode registration: %w", err)
	}
	var emailKey sql.NullString
	if key := ContactKey(reg.Email()); key != "" {
		emailKey = sql.NullString{String: key, Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO registrations (id, primary_phone, email_key, record, created_at) VALUES ($1, $2, $3, $4, $5)`,
		reg.ID, strings.TrimSpace(reg.PrimaryPhoneNumber), emailKey, record, reg.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", sentinel.ErrConflict, pqErr.Constraint)
		}
		return fmt.Errorf("save registration: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	var (
		record []byte
		reg    models.Registration
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, record, created_at FROM registrations WHERE id = $1`, id,
	).Scan(&reg.ID, &record, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	if err := json.Unmarshal(record, &reg.DraftRecord); err != nil {
		return nil, fmt.Errorf("%w: decode registration %s: %w", sentinel.ErrCorrupt, id, err)
	}
	return &reg, nil
}

func (s *PostgresStore) FindDuplicate(ctx context.Context, phone, email string) (string, error) {
	phone = strings.TrimSpace(phone)
	email = ContactKey(email)

	if phone != "" {
		taken, err := s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM registrations WHERE primary_phone = $1)`, phone)
		if err != nil {
			return "", err
		}
		if taken {
			return models.FieldPrimaryPhoneNumber, nil
		}
	}
	if email != "" {
		taken, err := s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM registrations WHERE email_key = $1)`, email)
		if err != nil {
			return "", err
		}
		if taken {
			return models.FieldEmailAddress, nil
		}
	}
	return "", nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) exists(ctx context.Context, query, arg string) (bool, error) {
	var found bool
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("lookup duplicate: %w", err)
	}
	return found, nil
}
