package rates

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates a missing rate band.
var ErrNotFound = errors.New("rate band not found")

// Repository provides access to the rate table.
type Repository interface {
	Get(ctx context.Context, id int64) (*RateBand, error)
	ListActive(ctx context.Context, destinationCity string, moveTypeID int64) ([]RateBand, error)
	List(ctx context.Context, req ListBandsRequest) ([]RateBand, int, error)
	ActivePairs(ctx context.Context) ([]Pair, error)
	Create(ctx context.Context, band RateBand) (int64, error)
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

const bandColumns = `id, destination_city, move_type_id, min_volume, max_volume, rate, rate_type, currency, is_active, created_at, updated_at`

func scanBand(row pgx.Row) (*RateBand, error) {
	var b RateBand
	err := row.Scan(&b.ID, &b.DestinationCity, &b.MoveTypeID, &b.MinVolume, &b.MaxVolume,
		&b.Rate, &b.RateType, &b.Currency, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*RateBand, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM rate_bands WHERE id = $1`, bandColumns), id)
	return scanBand(row)
}

func (r *repository) ListActive(ctx context.Context, destinationCity string, moveTypeID int64) ([]RateBand, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM rate_bands
		WHERE destination_city = $1 AND move_type_id = $2 AND is_active
		ORDER BY min_volume, id`, bandColumns), destinationCity, moveTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBands(rows)
}

func (r *repository) List(ctx context.Context, req ListBandsRequest) ([]RateBand, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.DestinationCity != nil {
		conditions = append(conditions, fmt.Sprintf("destination_city = $%d", argPos))
		args = append(args, *req.DestinationCity)
		argPos++
	}
	if req.MoveTypeID != nil {
		conditions = append(conditions, fmt.Sprintf("move_type_id = $%d", argPos))
		args = append(args, *req.MoveTypeID)
		argPos++
	}
	if req.ActiveOnly {
		conditions = append(conditions, "is_active")
	}

	whereClause := ""
	for i, cond := range conditions {
		if i == 0 {
			whereClause = "WHERE " + cond
		} else {
			whereClause += " AND " + cond
		}
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM rate_bands %s`, whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT %s FROM rate_bands %s
		ORDER BY destination_city, move_type_id, min_volume, id
		LIMIT $%d OFFSET $%d`, bandColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	bands, err := collectBands(rows)
	if err != nil {
		return nil, 0, err
	}
	return bands, total, nil
}

func (r *repository) ActivePairs(ctx context.Context) ([]Pair, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT destination_city, move_type_id FROM rate_bands
		WHERE is_active ORDER BY destination_city, move_type_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []Pair
	for rows.Next() {
		var p Pair
		if err := rows.Scan(&p.DestinationCity, &p.MoveTypeID); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

func (r *repository) Create(ctx context.Context, band RateBand) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO rate_bands (destination_city, move_type_id, min_volume, max_volume, rate, rate_type, currency, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING id`,
		band.DestinationCity, band.MoveTypeID, band.MinVolume, band.MaxVolume,
		band.Rate, band.RateType, band.Currency, band.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert rate band: %w", err)
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
	for _, col := range []string{"min_volume", "max_volume", "rate", "rate_type", "currency", "is_active"} {
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

	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`UPDATE rate_bands SET %s WHERE id = $%d`, setClause, argPos), args...)
	if err != nil {
		return fmt.Errorf("update rate band: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM rate_bands WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete rate band: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectBands(rows pgx.Rows) ([]RateBand, error) {
	var bands []RateBand
	for rows.Next() {
		var b RateBand
		if err := rows.Scan(&b.ID, &b.DestinationCity, &b.MoveTypeID, &b.MinVolume, &b.MaxVolume,
			&b.Rate, &b.RateType, &b.Currency, &b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bands = append(bands, b)
	}
	return bands, rows.Err()
}
