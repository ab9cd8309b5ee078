package repository

import (
	"errors"
	"log"
	"time"

	"github.com/fieldflow/timelog_service/internal/domain"
	"gorm.io/gorm"
)

// ErrTimeLogNotFound is returned when a record does not exist. Callers must
// not leak it as-is to actors who are not allowed to see the record.
var ErrTimeLogNotFound = errors.New("time log not found")

type TimeLogRepository interface {
	CreateTimeLog(entry *domain.TimeLog) (*domain.TimeLog, error)
	SaveTimeLog(entry *domain.TimeLog) error
	FindTimeLogById(id uint) (*domain.TimeLog, error)
	ListByUser(userID uint, from, to *time.Time) ([]domain.TimeLog, error)
	ListByOrder(orderID uint) ([]domain.TimeLog, error)
	ListPendingByOrganisation(organisationID uint) ([]domain.TimeLog, error)
	ListPendingByLeader(leaderID uint) ([]domain.TimeLog, error)
}

type timeLogRepository struct {
	db *gorm.DB
}

func NewTimeLogRepository(db *gorm.DB) TimeLogRepository {
	return &timeLogRepository{db: db}
}

// CreateTimeLog recomputes the derived amount before the insert so readers
// never see a total that disagrees with the clock fields.
func (r *timeLogRepository) CreateTimeLog(entry *domain.TimeLog) (*domain.TimeLog, error) {
	if entry == nil {
		return nil, errors.New("nil time log")
	}

	entry.Recalculate()
	if err := r.db.Create(entry).Error; err != nil {
		log.Printf("create time log error: %v", err)
		return nil, err
	}

	return entry, nil
}

// SaveTimeLog recomputes the derived amount in the same transaction as the
// update; gorm refreshes updated_at.
func (r *timeLogRepository) SaveTimeLog(entry *domain.TimeLog) error {
	if entry == nil {
		return errors.New("nil time log")
	}

	entry.Recalculate()
	if err := r.db.Save(entry).Error; err != nil {
		log.Printf("save time log error: %v", err)
		return err
	}
	return nil
}

func (r *timeLogRepository) FindTimeLogById(id uint) (*domain.TimeLog, error) {
	entry := &domain.TimeLog{}

	if err := r.db.First(entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeLogNotFound
		}
		log.Printf("find time log by id error: %v", err)
		return nil, errors.New("failed to find time log")
	}

	return entry, nil
}

func (r *timeLogRepository) ListByUser(userID uint, from, to *time.Time) ([]domain.TimeLog, error) {
	var entries []domain.TimeLog

	q := r.db.Where("user_id = ?", userID)
	if from != nil {
		q = q.Where("start_time >= ?", *from)
	}
	if to != nil {
		q = q.Where("start_time < ?", *to)
	}

	if err := q.Order("start_time DESC").Find(&entries).Error; err != nil {
		log.Printf("list time logs by user error: %v", err)
		return nil, errors.New("failed to list time logs")
	}
	return entries, nil
}

func (r *timeLogRepository) ListByOrder(orderID uint) ([]domain.TimeLog, error) {
	var entries []domain.TimeLog

	if err := r.db.Where("order_id = ?", orderID).Order("start_time DESC").Find(&entries).Error; err != nil {
		log.Printf("list time logs by order error: %v", err)
		return nil, errors.New("failed to list time logs")
	}
	return entries, nil
}

// ListPendingByOrganisation returns unapproved logs of every worker in the
// organisation, for admin review queues.
func (r *timeLogRepository) ListPendingByOrganisation(organisationID uint) ([]domain.TimeLog, error) {
	var entries []domain.TimeLog

	err := r.db.
		Joins("JOIN users ON users.id = time_logs.user_id").
		Where("users.organisation_id = ?", organisationID).
		Where("time_logs.is_approved = ?", false).
		Order("time_logs.start_time DESC").
		Find(&entries).Error
	if err != nil {
		log.Printf("list pending time logs by organisation error: %v", err)
		return nil, errors.New("failed to list pending time logs")
	}
	return entries, nil
}

// ListPendingByLeader returns unapproved logs of workers who are active
// members of a team the leader leads, within the leader's organisation.
func (r *timeLogRepository) ListPendingByLeader(leaderID uint) ([]domain.TimeLog, error) {
	var entries []domain.TimeLog

	err := r.db.
		Select("DISTINCT time_logs.*").
		Joins("JOIN users ON users.id = time_logs.user_id").
		Joins("JOIN team_members ON team_members.user_id = time_logs.user_id AND team_members.is_active = ?", true).
		Joins("JOIN teams ON teams.id = team_members.team_id AND teams.leader_id = ?", leaderID).
		Where("users.organisation_id = (SELECT organisation_id FROM users WHERE id = ?)", leaderID).
		Where("time_logs.is_approved = ?", false).
		Order("time_logs.start_time DESC").
		Find(&entries).Error
	if err != nil {
		log.Printf("list pending time logs by leader error: %v", err)
		return nil, errors.New("failed to list pending time logs")
	}
	return entries, nil
}
