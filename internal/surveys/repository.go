package surveys

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/relocore/relocore/internal/platform/db"
)

// ErrNotFound indicates a missing survey.
var ErrNotFound = errors.New("survey not found")

// Repository provides access to surveys with their article and service lines.
type Repository interface {
	Get(ctx context.Context, id int64) (*Survey, error)
	List(ctx context.Context, req ListSurveysRequest) ([]Survey, int, error)
	Create(ctx context.Context, survey Survey) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}, articles []Article, services []SelectedService) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id int64) (*Survey, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, customer_name, customer_phone, origin_city, destination_city, move_type_id, survey_date, notes, created_at, updated_at
		FROM surveys WHERE id = $1`, id)
	var s Survey
	err := row.Scan(&s.ID, &s.CustomerName, &s.CustomerPhone, &s.OriginCity, &s.DestinationCity,
		&s.MoveTypeID, &s.SurveyDate, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	articleRows, err := r.pool.Query(ctx, `
		SELECT id, survey_id, name, volume, quantity FROM survey_articles WHERE survey_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer articleRows.Close()
	for articleRows.Next() {
		var a Article
		if err := articleRows.Scan(&a.ID, &a.SurveyID, &a.Name, &a.Volume, &a.Quantity); err != nil {
			return nil, err
		}
		s.Articles = append(s.Articles, a)
	}
	if err := articleRows.Err(); err != nil {
		return nil, err
	}

	serviceRows, err := r.pool.Query(ctx, `
		SELECT service_id, quantity FROM survey_services WHERE survey_id = $1 ORDER BY service_id`, id)
	if err != nil {
		return nil, err
	}
	defer serviceRows.Close()
	for serviceRows.Next() {
		var sel SelectedService
		if err := serviceRows.Scan(&sel.ServiceID, &sel.Quantity); err != nil {
			return nil, err
		}
		s.SelectedServices = append(s.SelectedServices, sel)
	}
	if err := serviceRows.Err(); err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *repository) List(ctx context.Context, req ListSurveysRequest) ([]Survey, int, error) {
	whereClause := ""
	var args []interface{}
	argPos := 1
	if req.DestinationCity != nil {
		whereClause = fmt.Sprintf("WHERE destination_city = $%d", argPos)
		args = append(args, *req.DestinationCity)
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM surveys %s`, whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT id, customer_name, customer_phone, origin_city, destination_city, move_type_id, survey_date, notes, created_at, updated_at
		FROM surveys %s ORDER BY survey_date DESC, id DESC LIMIT $%d OFFSET $%d`, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var surveys []Survey
	for rows.Next() {
		var s Survey
		if err := rows.Scan(&s.ID, &s.CustomerName, &s.CustomerPhone, &s.OriginCity, &s.DestinationCity,
			&s.MoveTypeID, &s.SurveyDate, &s.Notes, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		surveys = append(surveys, s)
	}
	return surveys, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, survey Survey) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO surveys (customer_name, customer_phone, origin_city, destination_city, move_type_id, survey_date, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
			RETURNING id`,
			survey.CustomerName, survey.CustomerPhone, survey.OriginCity, survey.DestinationCity,
			survey.MoveTypeID, survey.SurveyDate, survey.Notes,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert survey: %w", err)
		}
		if err := insertArticles(ctx, tx, id, survey.Articles); err != nil {
			return err
		}
		return insertServices(ctx, tx, id, survey.SelectedServices)
	})
	return id, err
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}, articles []Article, services []SelectedService) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if len(updates) > 0 {
			setClause := ""
			args := make([]interface{}, 0, len(updates)+1)
			argPos := 1
			for _, col := range []string{"customer_name", "customer_phone", "origin_city", "destination_city", "move_type_id", "survey_date", "notes"} {
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
			if setClause != "" {
				setClause += ", updated_at = now()"
				args = append(args, id)
				tag, err := tx.Exec(ctx, fmt.Sprintf(`UPDATE surveys SET %s WHERE id = $%d`, setClause, argPos), args...)
				if err != nil {
					return fmt.Errorf("update survey: %w", err)
				}
				if tag.RowsAffected() == 0 {
					return ErrNotFound
				}
			}
		}

		if articles != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM survey_articles WHERE survey_id = $1`, id); err != nil {
				return err
			}
			if err := insertArticles(ctx, tx, id, articles); err != nil {
				return err
			}
		}
		if services != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM survey_services WHERE survey_id = $1`, id); err != nil {
				return err
			}
			if err := insertServices(ctx, tx, id, services); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM surveys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete survey: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func insertArticles(ctx context.Context, tx pgx.Tx, surveyID int64, articles []Article) error {
	for _, a := range articles {
		if _, err := tx.Exec(ctx, `
			INSERT INTO survey_articles (survey_id, name, volume, quantity)
			VALUES ($1, $2, $3, $4)`, surveyID, a.Name, a.Volume, a.Quantity); err != nil {
			return fmt.Errorf("insert survey article: %w", err)
		}
	}
	return nil
}

func insertServices(ctx context.Context, tx pgx.Tx, surveyID int64, services []SelectedService) error {
	for _, s := range services {
		if _, err := tx.Exec(ctx, `
			INSERT INTO survey_services (survey_id, service_id, quantity)
			VALUES ($1, $2, $3)`, surveyID, s.ServiceID, s.Quantity); err != nil {
			return fmt.Errorf("insert survey service: %w", err)
		}
	}
	return nil
}
