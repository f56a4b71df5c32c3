package surveys

import (
	"context"
	"fmt"
)

// Service owns survey intake and editing.
type Service struct {
	repo Repository
}

// NewService constructs the surveys service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns a survey with its articles and selected services.
func (s *Service) Get(ctx context.Context, id int64) (*Survey, error) {
	return s.repo.Get(ctx, id)
}

// List returns surveys matching the filter plus the unpaginated total.
func (s *Service) List(ctx context.Context, req ListSurveysRequest) ([]Survey, int, error) {
	return s.repo.List(ctx, req)
}

// Create inserts a survey with its article and service lines.
func (s *Service) Create(ctx context.Context, req CreateSurveyRequest) (*Survey, error) {
	survey := Survey{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		OriginCity:      req.OriginCity,
		DestinationCity: req.DestinationCity,
		MoveTypeID:      req.MoveTypeID,
		SurveyDate:      req.SurveyDate,
		Notes:           req.Notes,
	}
	for _, a := range req.Articles {
		survey.Articles = append(survey.Articles, Article{Name: a.Name, Volume: a.Volume, Quantity: a.Quantity})
	}
	for _, sel := range req.SelectedServices {
		survey.SelectedServices = append(survey.SelectedServices, SelectedService{ServiceID: sel.ServiceID, Quantity: sel.Quantity})
	}

	id, err := s.repo.Create(ctx, survey)
	if err != nil {
		return nil, fmt.Errorf("create survey: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Update applies a partial survey update; provided article or service lists
// replace the stored ones wholesale.
func (s *Service) Update(ctx context.Context, id int64, req UpdateSurveyRequest) (*Survey, error) {
	updates := make(map[string]interface{})
	if req.CustomerName != nil {
		updates["customer_name"] = *req.CustomerName
	}
	if req.CustomerPhone != nil {
		updates["customer_phone"] = *req.CustomerPhone
	}
	if req.OriginCity != nil {
		updates["origin_city"] = *req.OriginCity
	}
	if req.DestinationCity != nil {
		updates["destination_city"] = *req.DestinationCity
	}
	if req.MoveTypeID != nil {
		updates["move_type_id"] = *req.MoveTypeID
	}
	if req.SurveyDate != nil {
		updates["survey_date"] = *req.SurveyDate
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	var articles []Article
	if req.Articles != nil {
		articles = make([]Article, 0, len(*req.Articles))
		for _, a := range *req.Articles {
			articles = append(articles, Article{Name: a.Name, Volume: a.Volume, Quantity: a.Quantity})
		}
	}
	var services []SelectedService
	if req.SelectedServices != nil {
		services = make([]SelectedService, 0, len(*req.SelectedServices))
		for _, sel := range *req.SelectedServices {
			services = append(services, SelectedService{ServiceID: sel.ServiceID, Quantity: sel.Quantity})
		}
	}

	if err := s.repo.Update(ctx, id, updates, articles, services); err != nil {
		return nil, fmt.Errorf("update survey: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a survey.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
