package domain

import "time"

const (
	RoleAdmin  = "admin"
	RoleSales  = "sales"
	RoleWorker = "worker"
)

// DefaultHourlyRate is applied to workers that have no rate configured.
const DefaultHourlyRate = 650

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string    `json:"-"`
	Name           string    `json:"name"`
	Role           string    `gorm:"type:varchar(20);not null;default:worker" json:"role"`
	OrganisationID uint      `gorm:"not null;index" json:"organisation_id"`
	HourlyRate     float64   `gorm:"type:decimal(10,2);not null;default:650" json:"hourly_rate"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
