package domain

import "time"

type Order struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganisationID uint      `gorm:"not null;index" json:"organisation_id"`
	Title          string    `gorm:"not null" json:"title"`
	Status         string    `gorm:"type:varchar(20);not null;default:open" json:"status"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
