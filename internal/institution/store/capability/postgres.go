package capability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bursar/internal/institution/models"
	id "bursar/pkg/domain"
	"bursar/pkg/platform/sentinel"
	txcontext "bursar/pkg/platform/tx"
)

// PostgresStore persists capabilities in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Capability) error {
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO capabilities (id, institution_id, secret_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, c.ID.String(), c.InstitutionID.String(), c.SecretHash, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert capability: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, capID id.CapabilityID) (*models.Capability, error) {
	var (
		c         models.Capability
		rawID     string
		rawInstID string
	)
	err := txcontext.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, institution_id, secret_hash, created_at
		FROM capabilities
		WHERE id = $1
	`, capID.String()).Scan(&rawID, &rawInstID, &c.SecretHash, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find capability: %w", err)
	}
	if c.ID, err = id.ParseCapabilityID(rawID); err != nil {
		return nil, fmt.Errorf("parse capability id: %w", err)
	}
	if c.InstitutionID, err = id.ParseInstitutionID(rawInstID); err != nil {
		return nil, fmt.Errorf("parse institution id: %w", err)
	}
	return &c, nil
}
