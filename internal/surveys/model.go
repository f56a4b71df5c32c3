package surveys

import (
	"time"

	"github.com/relocore/relocore/internal/pricing"
)

// Survey records a pre-move site visit: the customer, the destination, the
// articles to ship and the ancillary services the surveyor selected.
type Survey struct {
	ID               int64             `json:"id" db:"id"`
	CustomerName     string            `json:"customer_name" db:"customer_name"`
	CustomerPhone    string            `json:"customer_phone,omitempty" db:"customer_phone"`
	OriginCity       string            `json:"origin_city" db:"origin_city"`
	DestinationCity  string            `json:"destination_city" db:"destination_city"`
	MoveTypeID       int64             `json:"move_type_id" db:"move_type_id"`
	SurveyDate       time.Time         `json:"survey_date" db:"survey_date"`
	Notes            *string           `json:"notes,omitempty" db:"notes"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at" db:"updated_at"`
	Articles         []Article         `json:"articles,omitempty" db:"-"`
	SelectedServices []SelectedService `json:"selected_services,omitempty" db:"-"`
}

// Article is one surveyed item with its unit volume in cubic meters.
type Article struct {
	ID       int64   `json:"id" db:"id"`
	SurveyID int64   `json:"survey_id" db:"survey_id"`
	Name     string  `json:"name" db:"name"`
	Volume   float64 `json:"volume" db:"volume"`
	Quantity int     `json:"quantity" db:"quantity"`
}

// SelectedService is an ancillary service chosen on the survey with the
// quantity the surveyor recorded.
type SelectedService struct {
	ServiceID int64 `json:"service_id" db:"service_id"`
	Quantity  int   `json:"quantity" db:"quantity"`
}

// TotalVolume derives the shipment volume: sum of unit volume times quantity
// over all articles, in cubic meters to two decimals. Derived on read, never
// stored independently.
func (s *Survey) TotalVolume() float64 {
	var total float64
	for _, a := range s.Articles {
		total += a.Volume * float64(a.Quantity)
	}
	return pricing.Round2(total)
}
