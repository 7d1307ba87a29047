package item

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"

	"bursar/internal/institution/models"
	"bursar/internal/platform/postgres"
	id "bursar/pkg/domain"
	"bursar/pkg/platform/sentinel"
	txcontext "bursar/pkg/platform/tx"
)

// PostgresStore persists items in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, it *models.Item) error {
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO items (id, institution_id, kind, name, description, quantity, unit_price,
			scheduled_at, assignee_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, it.ID.String(), it.InstitutionID.String(), string(it.Kind), it.Name, it.Description,
		quantityArg(it.Quantity), postgres.Amount(it.UnitPrice), nullTime(it.ScheduledAt), nullMember(it.AssigneeID),
		it.CreatedAt, it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

const selectItem = `
	SELECT id, institution_id, kind, name, description, quantity::text, unit_price::text,
		scheduled_at, assignee_id, created_at, updated_at
	FROM items
`

func (s *PostgresStore) FindByID(ctx context.Context, instID id.InstitutionID, itemID id.ItemID) (*models.Item, error) {
	row := txcontext.Conn(ctx, s.db).QueryRowContext(ctx, selectItem+`WHERE institution_id = $1 AND id = $2`,
		instID.String(), itemID.String())
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return it, err
}

func (s *PostgresStore) ListByInstitution(ctx context.Context, instID id.InstitutionID, kinds []models.ItemKind) ([]*models.Item, error) {
	filter := make([]string, len(kinds))
	for i, k := range kinds {
		filter[i] = string(k)
	}
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, selectItem+`
		WHERE institution_id = $1 AND (cardinality($2::text[]) = 0 OR kind = ANY($2::text[]))
		ORDER BY created_at, id
	`, instID.String(), pq.Array(filter))
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, it *models.Item) error {
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE items
		SET name = $3, description = $4, quantity = $5, unit_price = $6, scheduled_at = $7,
			assignee_id = $8, updated_at = $9
		WHERE institution_id = $1 AND id = $2
	`, it.InstitutionID.String(), it.ID.String(), it.Name, it.Description, quantityArg(it.Quantity),
		postgres.Amount(it.UnitPrice), nullTime(it.ScheduledAt), nullMember(it.AssigneeID), it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, instID id.InstitutionID, itemID id.ItemID) error {
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM items WHERE institution_id = $1 AND id = $2`,
		instID.String(), itemID.String())
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) UnassignMember(ctx context.Context, instID id.InstitutionID, memberID id.MemberID, now time.Time) (int, error) {
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE items SET assignee_id = NULL, updated_at = $3
		WHERE institution_id = $1 AND assignee_id = $2
	`, instID.String(), memberID.String(), now)
	if err != nil {
		return 0, fmt.Errorf("unassign items: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*models.Item, error) {
	var (
		it                     models.Item
		rawID, rawInstID, kind string
		quantity, unitPrice    string
		scheduledAt            sql.NullTime
		assignee               sql.NullString
	)
	err := row.Scan(&rawID, &rawInstID, &kind, &it.Name, &it.Description, &quantity, &unitPrice,
		&scheduledAt, &assignee, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}
	if it.ID, err = id.ParseItemID(rawID); err != nil {
		return nil, fmt.Errorf("parse item id: %w", err)
	}
	if it.InstitutionID, err = id.ParseInstitutionID(rawInstID); err != nil {
		return nil, fmt.Errorf("parse institution id: %w", err)
	}
	q, err := postgres.ParseAmount(quantity)
	if err != nil {
		return nil, err
	}
	it.Quantity = uint64(q)
	if it.UnitPrice, err = postgres.ParseAmount(unitPrice); err != nil {
		return nil, err
	}
	if scheduledAt.Valid {
		at := scheduledAt.Time
		it.ScheduledAt = &at
	}
	if assignee.Valid {
		memberID, err := id.ParseMemberID(assignee.String)
		if err != nil {
			return nil, fmt.Errorf("parse assignee id: %w", err)
		}
		it.AssigneeID = &memberID
	}
	it.Kind = models.ItemKind(kind)
	return &it, nil
}

func quantityArg(q uint64) string {
	return strconv.FormatUint(q, 10)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullMember(m *id.MemberID) sql.NullString {
	if m == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: m.String(), Valid: true}
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
