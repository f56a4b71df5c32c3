package quotations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/relocore/relocore/internal/platform/db"
)

// ErrNotFound indicates a missing quotation.
var ErrNotFound = errors.New("quotation not found")

// Repository persists quotations with their charge breakdown and service
// selections.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Quotation, error)
	List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error)
	Create(ctx context.Context, q Quotation) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	UpdateStatus(ctx context.Context, id int64, status QuotationStatus) error
	ReplaceLines(ctx context.Context, quotationID int64, lines []ChargeLine) error
	ReplaceServices(ctx context.Context, quotationID int64, included, excluded []int64) error
	GenerateNumber(ctx context.Context, date time.Time) (string, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed quotations repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const quotationColumns = `id, doc_number, survey_id, status, currency, destination_city, move_type_id,
	volume, base_amount, additional_charges_total, amount, discount, final_amount, advance, balance,
	notes, created_at, updated_at`

func scanQuotation(row pgx.Row) (*Quotation, error) {
	var q Quotation
	err := row.Scan(
		&q.ID, &q.DocNumber, &q.SurveyID, &q.Status, &q.Currency, &q.DestinationCity, &q.MoveTypeID,
		&q.Volume, &q.BaseAmount, &q.AdditionalChargesTotal, &q.Amount, &q.Discount, &q.FinalAmount,
		&q.Advance, &q.Balance, &q.Notes, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Quotation, error) {
	q, err := scanQuotation(r.db.QueryRow(ctx,
		`SELECT `+quotationColumns+` FROM quotations WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, quotation_id, service_id, service_name, quantity, total
		FROM quotation_charges WHERE quotation_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var line ChargeLine
		if err := rows.Scan(&line.ID, &line.QuotationID, &line.ServiceID, &line.ServiceName, &line.Quantity, &line.Total); err != nil {
			return nil, err
		}
		q.ChargeLines = append(q.ChargeLines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	svcRows, err := r.db.Query(ctx, `
		SELECT service_id, kind FROM quotation_services
		WHERE quotation_id = $1 ORDER BY service_id`, id)
	if err != nil {
		return nil, err
	}
	defer svcRows.Close()
	for svcRows.Next() {
		var serviceID int64
		var kind string
		if err := svcRows.Scan(&serviceID, &kind); err != nil {
			return nil, err
		}
		switch kind {
		case "included":
			q.IncludedServiceIDs = append(q.IncludedServiceIDs, serviceID)
		case "excluded":
			q.ExcludedServiceIDs = append(q.ExcludedServiceIDs, serviceID)
		}
	}
	if err := svcRows.Err(); err != nil {
		return nil, err
	}
	return q, nil
}

func (r *repository) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.SurveyID != nil {
		conditions = append(conditions, fmt.Sprintf("survey_id = $%d", argPos))
		args = append(args, *req.SurveyID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quotations`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM quotations%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		quotationColumns, where, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	quotations := make([]Quotation, 0, limit)
	for rows.Next() {
		var q Quotation
		if err := rows.Scan(
			&q.ID, &q.DocNumber, &q.SurveyID, &q.Status, &q.Currency, &q.DestinationCity, &q.MoveTypeID,
			&q.Volume, &q.BaseAmount, &q.AdditionalChargesTotal, &q.Amount, &q.Discount, &q.FinalAmount,
			&q.Advance, &q.Balance, &q.Notes, &q.CreatedAt, &q.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		quotations = append(quotations, q)
	}
	return quotations, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, q Quotation) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotations (doc_number, survey_id, status, currency, destination_city, move_type_id,
			volume, base_amount, additional_charges_total, amount, discount, final_amount, advance, balance, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING id`,
		q.DocNumber, q.SurveyID, q.Status, q.Currency, q.DestinationCity, q.MoveTypeID,
		q.Volume, q.BaseAmount, q.AdditionalChargesTotal, q.Amount, q.Discount, q.FinalAmount,
		q.Advance, q.Balance, q.Notes,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert quotation: %w", err)
	}
	return id, nil
}

// updatableColumns whitelists the columns a partial update may touch, in a
// fixed order so generated SQL is deterministic.
var updatableColumns = []string{
	"currency", "destination_city", "move_type_id", "volume",
	"base_amount", "additional_charges_total", "amount", "discount",
	"final_amount", "advance", "balance", "notes",
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	var sets []string
	var args []interface{}
	argPos := 1
	for _, col := range updatableColumns {
		val, ok := updates[col]
		if !ok {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argPos))
		args = append(args, val)
		argPos++
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	tag, err := r.db.Exec(ctx,
		fmt.Sprintf(`UPDATE quotations SET %s WHERE id = $%d`, strings.Join(sets, ", "), argPos),
		args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status QuotationStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE quotations SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ReplaceLines(ctx context.Context, quotationID int64, lines []ChargeLine) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM quotation_charges WHERE quotation_id = $1`, quotationID); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := r.db.Exec(ctx, `
			INSERT INTO quotation_charges (quotation_id, service_id, service_name, quantity, total)
			VALUES ($1,$2,$3,$4,$5)`,
			quotationID, line.ServiceID, line.ServiceName, line.Quantity, line.Total); err != nil {
			return fmt.Errorf("insert charge line: %w", err)
		}
	}
	return nil
}

func (r *repository) ReplaceServices(ctx context.Context, quotationID int64, included, excluded []int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM quotation_services WHERE quotation_id = $1`, quotationID); err != nil {
		return err
	}
	insert := func(ids []int64, kind string) error {
		for _, serviceID := range ids {
			if _, err := r.db.Exec(ctx, `
				INSERT INTO quotation_services (quotation_id, service_id, kind)
				VALUES ($1,$2,$3)`, quotationID, serviceID, kind); err != nil {
				return fmt.Errorf("insert %s service: %w", kind, err)
			}
		}
		return nil
	}
	if err := insert(included, "included"); err != nil {
		return err
	}
	return insert(excluded, "excluded")
}

// GenerateNumber allocates the next monthly sequence number and formats it
// as QTN-{YYMM}-{SEQ}.
func (r *repository) GenerateNumber(ctx context.Context, date time.Time) (string, error) {
	var seq int64
	period := date.Format("200601")
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, "QTN", period).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("QTN-%s-%04d", date.Format("0601"), seq), nil
}
