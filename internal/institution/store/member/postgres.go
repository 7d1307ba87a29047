package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"bursar/internal/institution/models"
	"bursar/internal/platform/postgres"
	id "bursar/pkg/domain"
	"bursar/pkg/platform/sentinel"
	txcontext "bursar/pkg/platform/tx"
)

const principalConstraint = "members_institution_principal_key"

// PostgresStore persists members in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, m *models.Member) error {
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO members (id, institution_id, kind, principal, name, gender, age, contact, address,
			role, status, paid, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, m.ID.String(), m.InstitutionID.String(), string(m.Kind), string(m.Principal), m.Name, string(m.Gender),
		m.Age, m.Contact, m.Address, m.Role, string(m.Status), m.Paid, postgres.Amount(m.Balance), m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err, principalConstraint) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

const selectMember = `
	SELECT id, institution_id, kind, principal, name, gender, age, contact, address,
		role, status, paid, balance::text, created_at, updated_at
	FROM members
`

func (s *PostgresStore) FindByID(ctx context.Context, instID id.InstitutionID, memberID id.MemberID) (*models.Member, error) {
	row := txcontext.Conn(ctx, s.db).QueryRowContext(ctx, selectMember+`WHERE institution_id = $1 AND id = $2`,
		instID.String(), memberID.String())
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return m, err
}

func (s *PostgresStore) ListByInstitution(ctx context.Context, instID id.InstitutionID, kinds []models.MemberKind) ([]*models.Member, error) {
	filter := make([]string, len(kinds))
	for i, k := range kinds {
		filter[i] = string(k)
	}
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, selectMember+`
		WHERE institution_id = $1 AND (cardinality($2::text[]) = 0 OR kind = ANY($2::text[]))
		ORDER BY created_at, id
	`, instID.String(), pq.Array(filter))
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, m *models.Member) error {
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE members
		SET principal = $3, name = $4, gender = $5, age = $6, contact = $7, address = $8,
			role = $9, status = $10, paid = $11, balance = $12, updated_at = $13
		WHERE institution_id = $1 AND id = $2
	`, m.InstitutionID.String(), m.ID.String(), string(m.Principal), m.Name, string(m.Gender), m.Age,
		m.Contact, m.Address, m.Role, string(m.Status), m.Paid, postgres.Amount(m.Balance), m.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err, principalConstraint) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update member: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, instID id.InstitutionID, memberID id.MemberID) error {
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM members WHERE institution_id = $1 AND id = $2`,
		instID.String(), memberID.String())
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return requireRow(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(row scanner) (*models.Member, error) {
	var (
		m                                 models.Member
		rawID, rawInstID, kind, principal string
		gender, status, bal               string
	)
	err := row.Scan(&rawID, &rawInstID, &kind, &principal, &m.Name, &gender, &m.Age, &m.Contact, &m.Address,
		&m.Role, &status, &m.Paid, &bal, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan member: %w", err)
	}
	if m.ID, err = id.ParseMemberID(rawID); err != nil {
		return nil, fmt.Errorf("parse member id: %w", err)
	}
	if m.InstitutionID, err = id.ParseInstitutionID(rawInstID); err != nil {
		return nil, fmt.Errorf("parse institution id: %w", err)
	}
	if m.Balance, err = postgres.ParseAmount(bal); err != nil {
		return nil, err
	}
	m.Kind = models.MemberKind(kind)
	m.Principal = id.Principal(principal)
	m.Gender = models.Gender(gender)
	m.Status = models.MemberStatus(status)
	return &m, nil
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
