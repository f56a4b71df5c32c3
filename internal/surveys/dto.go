package surveys

import "time"

// CreateSurveyRequest describes a new survey with its article list.
type CreateSurveyRequest struct {
	CustomerName     string               `json:"customer_name" validate:"required,max=120"`
	CustomerPhone    string               `json:"customer_phone" validate:"omitempty,max=32"`
	OriginCity       string               `json:"origin_city" validate:"required,max=120"`
	DestinationCity  string               `json:"destination_city" validate:"required,max=120"`
	MoveTypeID       int64                `json:"move_type_id" validate:"required,gt=0"`
	SurveyDate       time.Time            `json:"survey_date" validate:"required"`
	Notes            *string              `json:"notes,omitempty"`
	Articles         []ArticleRequest     `json:"articles" validate:"dive"`
	SelectedServices []SelectedServiceReq `json:"selected_services" validate:"dive"`
}

// ArticleRequest is one article line of a survey payload.
type ArticleRequest struct {
	Name     string  `json:"name" validate:"required,max=160"`
	Volume   float64 `json:"volume" validate:"required,gte=0"`
	Quantity int     `json:"quantity" validate:"required,gt=0"`
}

// SelectedServiceReq marks an ancillary service as selected.
type SelectedServiceReq struct {
	ServiceID int64 `json:"service_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"gte=0"`
}

// UpdateSurveyRequest carries a partial survey update. A non-nil Articles or
// SelectedServices list replaces the stored list wholesale.
type UpdateSurveyRequest struct {
	CustomerName     *string               `json:"customer_name,omitempty" validate:"omitempty,max=120"`
	CustomerPhone    *string               `json:"customer_phone,omitempty" validate:"omitempty,max=32"`
	OriginCity       *string               `json:"origin_city,omitempty" validate:"omitempty,max=120"`
	DestinationCity  *string               `json:"destination_city,omitempty" validate:"omitempty,max=120"`
	MoveTypeID       *int64                `json:"move_type_id,omitempty" validate:"omitempty,gt=0"`
	SurveyDate       *time.Time            `json:"survey_date,omitempty"`
	Notes            *string               `json:"notes,omitempty"`
	Articles         *[]ArticleRequest     `json:"articles,omitempty" validate:"omitempty,dive"`
	SelectedServices *[]SelectedServiceReq `json:"selected_services,omitempty" validate:"omitempty,dive"`
}

// ListSurveysRequest filters the survey listing.
type ListSurveysRequest struct {
	DestinationCity *string `json:"destination_city,omitempty"`
	Limit           int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset          int     `json:"offset" validate:"gte=0"`
}
