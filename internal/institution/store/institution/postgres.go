package institution

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bursar/internal/institution/models"
	"bursar/internal/platform/postgres"
	id "bursar/pkg/domain"
	"bursar/pkg/platform/sentinel"
	txcontext "bursar/pkg/platform/tx"
)

const ownerIndexConstraint = "institution_owners_pkey"

// PostgresStore persists institutions in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const insertInstitution = `
	WITH inst AS (
		INSERT INTO institutions (id, owner, kind, name, location, contact, category, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, owner
	)
	INSERT INTO institution_owners (owner, institution_id)
	SELECT owner, id FROM inst
`

// Create inserts inst and indexes its owner if the owner has no entry yet.
func (s *PostgresStore) Create(ctx context.Context, inst *models.Institution) error {
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, insertInstitution+` ON CONFLICT (owner) DO NOTHING`, institutionArgs(inst)...)
	if err != nil {
		return fmt.Errorf("insert institution: %w", err)
	}
	return nil
}

// CreateIfOwnerAvailable inserts inst in one statement that fails as a whole
// when the owner already has an institution.
func (s *PostgresStore) CreateIfOwnerAvailable(ctx context.Context, inst *models.Institution) error {
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, insertInstitution, institutionArgs(inst)...)
	if err != nil {
		if postgres.IsUniqueViolation(err, ownerIndexConstraint) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert institution: %w", err)
	}
	return nil
}

func institutionArgs(inst *models.Institution) []any {
	return []any{
		inst.ID.String(), string(inst.Owner), string(inst.Kind), inst.Name, inst.Location,
		inst.Contact, inst.Category, postgres.Amount(inst.Balance), inst.CreatedAt, inst.UpdatedAt,
	}
}

const selectInstitution = `
	SELECT i.id, i.owner, i.kind, i.name, i.location, i.contact, i.category, i.balance::text, i.created_at, i.updated_at
	FROM institutions i
`

func (s *PostgresStore) FindByID(ctx context.Context, instID id.InstitutionID) (*models.Institution, error) {
	row := txcontext.Conn(ctx, s.db).QueryRowContext(ctx, selectInstitution+` WHERE i.id = $1`, instID.String())
	return scanInstitution(row)
}

func (s *PostgresStore) FindByOwner(ctx context.Context, owner id.Principal) (*models.Institution, error) {
	row := txcontext.Conn(ctx, s.db).QueryRowContext(ctx, selectInstitution+`
		JOIN institution_owners o ON o.institution_id = i.id
		WHERE o.owner = $1
	`, string(owner))
	return scanInstitution(row)
}

func (s *PostgresStore) Update(ctx context.Context, inst *models.Institution) error {
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE institutions
		SET name = $2, location = $3, contact = $4, category = $5, balance = $6, updated_at = $7
		WHERE id = $1
	`, inst.ID.String(), inst.Name, inst.Location, inst.Contact, inst.Category, postgres.Amount(inst.Balance), inst.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update institution: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := txcontext.Conn(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM institutions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count institutions: %w", err)
	}
	return n, nil
}

func scanInstitution(row *sql.Row) (*models.Institution, error) {
	var (
		inst                    models.Institution
		rawID, owner, kind, bal string
	)
	err := row.Scan(&rawID, &owner, &kind, &inst.Name, &inst.Location, &inst.Contact, &inst.Category, &bal, &inst.CreatedAt, &inst.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan institution: %w", err)
	}
	if inst.ID, err = id.ParseInstitutionID(rawID); err != nil {
		return nil, fmt.Errorf("parse institution id: %w", err)
	}
	if inst.Balance, err = postgres.ParseAmount(bal); err != nil {
		return nil, err
	}
	inst.Owner = id.Principal(owner)
	inst.Kind = models.InstitutionKind(kind)
	return &inst, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
