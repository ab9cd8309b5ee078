package dto

import (
	"time"

	"github.com/fieldflow/timelog_service/internal/domain"
)

// StartTimeLogRequest opens a work session. HourlyRate falls back to the
// worker's configured rate when omitted.
type StartTimeLogRequest struct {
	OrderID           uint      `json:"order_id" validate:"required"`
	StartTime         time.Time `json:"start_time" validate:"required"`
	HourlyRate        *float64  `json:"hourly_rate,omitempty"`
	WorkType          *string   `json:"work_type,omitempty"`
	WeatherConditions *string   `json:"weather_conditions,omitempty"`
	LocationLat       *float64  `json:"location_lat,omitempty"`
	LocationLng       *float64  `json:"location_lng,omitempty"`
	Notes             *string   `json:"notes,omitempty"`
}

// UpdateTimeLogRequest mutates an open or closed session. Only fields that
// are present are applied. IsApproved is deliberately absent: approval goes
// through its own endpoint.
type UpdateTimeLogRequest struct {
	EndTime           *time.Time             `json:"end_time,omitempty"`
	BreakDuration     *int                   `json:"break_duration,omitempty"`
	Notes             *string                `json:"notes,omitempty"`
	HourlyRate        *float64               `json:"hourly_rate,omitempty"`
	LocationLat       *float64               `json:"location_lat,omitempty"`
	LocationLng       *float64               `json:"location_lng,omitempty"`
	PhotoURLs         []string               `json:"photo_urls,omitempty"`
	MaterialsUsed     []domain.MaterialEntry `json:"materials_used,omitempty"`
	TravelTimeMinutes *int                   `json:"travel_time_minutes,omitempty"`
	WorkType          *string                `json:"work_type,omitempty"`
	WeatherConditions *string                `json:"weather_conditions,omitempty"`
}

type CreateOrderRequest struct {
	Title  string `json:"title" validate:"required"`
	Status string `json:"status,omitempty"`
}
