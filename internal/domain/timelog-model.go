package domain

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

// TimeLog is one work session of a worker on an order.
// TotalAmount is derived from the clock fields and must never be set by
// callers directly; the repository recomputes it on every write.
type TimeLog struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	OrderID           uint           `gorm:"not null;index:idx_time_logs_order_id" json:"order_id"`
	UserID            uint           `gorm:"not null;index:idx_time_logs_user_id;index:idx_time_logs_user_start,priority:1" json:"user_id"`
	StartTime         time.Time      `gorm:"not null;index:idx_time_logs_start_time;index:idx_time_logs_user_start,priority:2" json:"start_time"`
	EndTime           *time.Time     `json:"end_time,omitempty"`
	BreakDuration     int            `gorm:"not null;default:0" json:"break_duration"`
	Notes             *string        `gorm:"type:text" json:"notes,omitempty"`
	IsApproved        bool           `gorm:"not null;default:false;index:idx_time_logs_is_approved" json:"is_approved"`
	HourlyRate        float64        `gorm:"type:decimal(10,2);not null;default:0" json:"hourly_rate"`
	TotalAmount       float64        `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`
	LocationLat       *float64       `gorm:"type:decimal(10,6)" json:"location_lat,omitempty"`
	LocationLng       *float64       `gorm:"type:decimal(10,6)" json:"location_lng,omitempty"`
	PhotoURLs         datatypes.JSON `gorm:"not null;default:'[]'" json:"photo_urls"`
	MaterialsUsed     datatypes.JSON `gorm:"not null;default:'[]'" json:"materials_used"`
	TravelTimeMinutes int            `gorm:"not null;default:0" json:"travel_time_minutes"`
	WorkType          *string        `gorm:"type:varchar(100)" json:"work_type,omitempty"`
	WeatherConditions *string        `gorm:"type:varchar(255)" json:"weather_conditions,omitempty"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	Order  Order `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
	Worker User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (TimeLog) TableName() string { return "time_logs" }

// MaterialEntry is one line of the materials_used JSON array.
type MaterialEntry struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	UnitCost float64 `json:"unit_cost"`
}

// ComputeTotalAmount derives the billable amount of a session.
// An open session (no end time) is always worth 0. Worked minutes are not
// floored at zero: a break longer than the session span yields a negative
// amount. That matches the billing rules as shipped; see DESIGN.md before
// clamping.
func ComputeTotalAmount(start time.Time, end *time.Time, breakMinutes int, hourlyRate float64) float64 {
	if start.IsZero() || end == nil {
		return 0
	}
	workedMinutes := end.Sub(start).Minutes() - float64(breakMinutes)
	return round2(workedMinutes / 60 * hourlyRate)
}

// Recalculate refreshes TotalAmount from the current clock fields.
func (t *TimeLog) Recalculate() {
	t.TotalAmount = ComputeTotalAmount(t.StartTime, t.EndTime, t.BreakDuration, t.HourlyRate)
}

// round2 keeps stored amounts at decimal(12,2) precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
