package charges

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates a missing price list entry.
var ErrNotFound = errors.New("price list entry not found")

// Repository provides access to the additional-charge price list.
type Repository interface {
	Get(ctx context.Context, id int64) (*PriceListEntry, error)
	ListActive(ctx context.Context) ([]PriceListEntry, error)
	ListByServiceIDs(ctx context.Context, serviceIDs []int64) ([]PriceListEntry, error)
	Create(ctx context.Context, entry PriceListEntry) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const priceColumns = `id, service_id, service_name, price_per_unit, per_unit_quantity, rate_type, currency_name, is_active, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*PriceListEntry, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM charge_prices WHERE id = $1`, priceColumns), id)
	var e PriceListEntry
	err := row.Scan(&e.ID, &e.ServiceID, &e.ServiceName, &e.PricePerUnit, &e.PerUnitQuantity,
		&e.RateType, &e.CurrencyName, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *repository) ListActive(ctx context.Context) ([]PriceListEntry, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM charge_prices WHERE is_active ORDER BY service_name, id`, priceColumns))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (r *repository) ListByServiceIDs(ctx context.Context, serviceIDs []int64) ([]PriceListEntry, error) {
	if len(serviceIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM charge_prices
		WHERE is_active AND service_id = ANY($1)
		ORDER BY service_name, id`, priceColumns), serviceIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (r *repository) Create(ctx context.Context, entry PriceListEntry) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO charge_prices (service_id, service_name, price_per_unit, per_unit_quantity, rate_type, currency_name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING id`,
		entry.ServiceID, entry.ServiceName, entry.PricePerUnit, entry.PerUnitQuantity,
		entry.RateType, entry.CurrencyName, entry.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert price list entry: %w", err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	setClause := ""
	args := make([]interface{}, 0, len(updates)+1)
	argPos := 1
	for _, col := range []string{"service_name", "price_per_unit", "per_unit_quantity", "rate_type", "currency_name", "is_active"} {
		val, ok := updates[col]
		if !ok {
			continue
		}
		if setClause != "" {
			setClause += ", "
		}
		setClause += fmt.Sprintf("%s = $%d", col, argPos)
		args = append(args, val)
		argPos++
	}
	if setClause == "" {
		return nil
	}
	setClause += ", updated_at = now()"
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`UPDATE charge_prices SET %s WHERE id = $%d`, setClause, argPos), args...)
	if err != nil {
		return fmt.Errorf("update price list entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM charge_prices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete price list entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectEntries(rows pgx.Rows) ([]PriceListEntry, error) {
	var entries []PriceListEntry
	for rows.Next() {
		var e PriceListEntry
		if err := rows.Scan(&e.ID, &e.ServiceID, &e.ServiceName, &e.PricePerUnit, &e.PerUnitQuantity,
			&e.RateType, &e.CurrencyName, &e.IsActive, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
