package domain

import "time"

// Team groups workers under a leader within one organisation. Leadership
// plus active membership is what grants a leader approval rights over a
// member's time logs.
type Team struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	OrganisationID uint         `gorm:"not null;index" json:"organisation_id"`
	Name           string       `gorm:"not null" json:"name"`
	LeaderID       uint         `gorm:"not null;index" json:"leader_id"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"created_at"`
	Members        []TeamMember `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

type TeamMember struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	TeamID uint `gorm:"not null;index:idx_team_members_team_user,priority:1" json:"team_id"`
	UserID uint `gorm:"not null;index:idx_team_members_team_user,priority:2" json:"user_id"`
	// no default tag: gorm would skip a false value on insert and the
	// database default would silently activate the member
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
