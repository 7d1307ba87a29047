package fee

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

// PostgresStore persists unpaid fees in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, f *models.Fee) error {
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO fees (id, institution_id, member_id, amount, description, due_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, f.ID.String(), f.InstitutionID.String(), f.MemberID.String(), postgres.Amount(f.Amount), f.Description, f.DueAt, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert fee: %w", err)
	}
	return nil
}

const selectFee = `
	SELECT id, institution_id, member_id, amount::text, description, due_at, created_at
	FROM fees
`

func (s *PostgresStore) FindByID(ctx context.Context, instID id.InstitutionID, feeID id.FeeID) (*models.Fee, error) {
	row := txcontext.Conn(ctx, s.db).QueryRowContext(ctx, selectFee+`WHERE institution_id = $1 AND id = $2`,
		instID.String(), feeID.String())
	f, err := scanFee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return f, err
}

func (s *PostgresStore) ListByInstitution(ctx context.Context, instID id.InstitutionID, memberID *id.MemberID) ([]*models.Fee, error) {
	var member any
	if memberID != nil {
		member = memberID.String()
	}
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, selectFee+`
		WHERE institution_id = $1 AND ($2::uuid IS NULL OR member_id = $2::uuid)
		ORDER BY due_at, id
	`, instID.String(), member)
	if err != nil {
		return nil, fmt.Errorf("list fees: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Fee, 0)
	for rows.Next() {
		f, err := scanFee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fees: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CountByMember(ctx context.Context, instID id.InstitutionID, memberID id.MemberID) (int, error) {
	var n int
	err := txcontext.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fees WHERE institution_id = $1 AND member_id = $2`,
		instID.String(), memberID.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count fees: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Delete(ctx context.Context, instID id.InstitutionID, feeID id.FeeID) error {
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM fees WHERE institution_id = $1 AND id = $2`,
		instID.String(), feeID.String())
	if err != nil {
		return fmt.Errorf("delete fee: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFee(row scanner) (*models.Fee, error) {
	var (
		f                           models.Fee
		rawID, rawInstID, rawMember string
		amount                      string
	)
	err := row.Scan(&rawID, &rawInstID, &rawMember, &amount, &f.Description, &f.DueAt, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan fee: %w", err)
	}
	if f.ID, err = id.ParseFeeID(rawID); err != nil {
		return nil, fmt.Errorf("parse fee id: %w", err)
	}
	if f.InstitutionID, err = id.ParseInstitutionID(rawInstID); err != nil {
		return nil, fmt.Errorf("parse institution id: %w", err)
	}
	if f.MemberID, err = id.ParseMemberID(rawMember); err != nil {
		return nil, fmt.Errorf("parse member id: %w", err)
	}
	if f.Amount, err = postgres.ParseAmount(amount); err != nil {
		return nil, err
	}
	return &f, nil
}
