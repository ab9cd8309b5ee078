package repository

import (
	"errors"
	"log"

	"github.com/fieldflow/timelog_service/internal/domain"
	"gorm.io/gorm"
)

type TeamRepository interface {
	CreateTeam(team *domain.Team) (*domain.Team, error)
	AddMember(member *domain.TeamMember) error
	// LeadsActiveMember reports whether the worker is an active member of
	// any team led by the given leader. Organisation boundaries are the
	// policy's concern, not this query's.
	LeadsActiveMember(leaderID, workerID uint) (bool, error)
}

type teamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) CreateTeam(team *domain.Team) (*domain.Team, error) {
	if team == nil {
		return nil, errors.New("nil team")
	}

	if err := r.db.Create(team).Error; err != nil {
		log.Printf("create team error: %v", err)
		return nil, errors.New("failed to create team")
	}

	return team, nil
}

func (r *teamRepository) AddMember(member *domain.TeamMember) error {
	if member == nil {
		return errors.New("nil team member")
	}

	if err := r.db.Create(member).Error; err != nil {
		log.Printf("add team member error: %v", err)
		return errors.New("failed to add team member")
	}
	return nil
}

func (r *teamRepository) LeadsActiveMember(leaderID, workerID uint) (bool, error) {
	var count int64

	err := r.db.Model(&domain.TeamMember{}).
		Joins("JOIN teams ON teams.id = team_members.team_id").
		Where("teams.leader_id = ?", leaderID).
		Where("team_members.user_id = ?", workerID).
		Where("team_members.is_active = ?", true).
		Count(&count).Error
	if err != nil {
		log.Printf("leads active member check error: %v", err)
		return false, errors.New("failed to check team membership")
	}

	return count > 0, nil
}
