package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fieldflow/timelog_service/internal/domain"
	"github.com/fieldflow/timelog_service/internal/dto"
	"github.com/fieldflow/timelog_service/internal/interfaces"
	"github.com/fieldflow/timelog_service/internal/policy"
	"github.com/fieldflow/timelog_service/internal/repository"
	"gorm.io/datatypes"
)

// ErrForbidden is returned for every policy denial, including denials on
// records the actor should not even know exist.
var ErrForbidden = errors.New("forbidden")

var ErrNotFound = errors.New("not found")

type TimeLogService interface {
	Start(actorID uint, input dto.StartTimeLogRequest) (*domain.TimeLog, error)
	Get(actorID, timeLogID uint) (*domain.TimeLog, error)
	Update(actorID, timeLogID uint, input dto.UpdateTimeLogRequest) (*domain.TimeLog, error)
	Approve(actorID, timeLogID uint) (*domain.TimeLog, error)
	AttachPhoto(actorID, timeLogID uint, url string) (*domain.TimeLog, error)
	ListMine(actorID uint, from, to *time.Time) ([]domain.TimeLog, error)
	ListForWorker(actorID, workerID uint) ([]domain.TimeLog, error)
	ListPending(actorID uint) ([]domain.TimeLog, error)
}

type timeLogService struct {
	repo      repository.TimeLogRepository
	userRepo  repository.UserRepository
	orderRepo repository.OrderRepository
	auditRepo repository.AuditRepository
	gate      *policy.Policy
	producer  interfaces.ProducerHandler
}

func NewTimeLogService(
	repo repository.TimeLogRepository,
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	auditRepo repository.AuditRepository,
	gate *policy.Policy,
	producer interfaces.ProducerHandler,
) TimeLogService {
	return &timeLogService{
		repo:      repo,
		userRepo:  userRepo,
		orderRepo: orderRepo,
		auditRepo: auditRepo,
		gate:      gate,
		producer:  producer,
	}
}

// Start opens a work session for the actor. The record always belongs to the
// actor; there is no way to clock in on someone else's behalf.
func (s *timeLogService) Start(actorID uint, input dto.StartTimeLogRequest) (*domain.TimeLog, error) {
	actor, err := s.userRepo.FindUserById(actorID)
	if err != nil {
		return nil, err
	}

	if _, err := s.orderRepo.FindOrderById(input.OrderID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if input.StartTime.IsZero() {
		return nil, errors.New("start_time is required")
	}

	rate := actor.HourlyRate
	if input.HourlyRate != nil {
		if *input.HourlyRate < 0 {
			return nil, errors.New("hourly_rate must not be negative")
		}
		rate = *input.HourlyRate
	}

	entry := &domain.TimeLog{
		OrderID:           input.OrderID,
		UserID:            actor.ID,
		StartTime:         input.StartTime,
		HourlyRate:        rate,
		Notes:             input.Notes,
		WorkType:          input.WorkType,
		WeatherConditions: input.WeatherConditions,
		LocationLat:       input.LocationLat,
		LocationLng:       input.LocationLng,
		PhotoURLs:         datatypes.JSON([]byte("[]")),
		MaterialsUsed:     datatypes.JSON([]byte("[]")),
	}

	allowed, err := s.gate.Decide(policy.ActionCreate, actor, actor, entry)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbidden
	}

	created, err := s.repo.CreateTimeLog(entry)
	if err != nil {
		return nil, err
	}

	s.publish(dto.EventTimeLogCreated, created)
	return created, nil
}

func (s *timeLogService) Get(actorID, timeLogID uint) (*domain.TimeLog, error) {
	_, entry, _, err := s.authorize(policy.ActionRead, actorID, timeLogID)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Update applies the owner's changes and recomputes the derived amount. The
// policy is evaluated against the stored record and again against the
// mutated record, so an update cannot move a record outside the set the
// actor is authorized to touch.
func (s *timeLogService) Update(actorID, timeLogID uint, input dto.UpdateTimeLogRequest) (*domain.TimeLog, error) {
	actor, entry, owner, err := s.authorize(policy.ActionUpdate, actorID, timeLogID)
	if err != nil {
		return nil, err
	}

	wasOpen := entry.EndTime == nil

	if input.EndTime != nil {
		if input.EndTime.Before(entry.StartTime) {
			return nil, errors.New("end_time before start_time")
		}
		entry.EndTime = input.EndTime
	}
	if input.BreakDuration != nil {
		if *input.BreakDuration < 0 {
			return nil, errors.New("break_duration must not be negative")
		}
		entry.BreakDuration = *input.BreakDuration
	}
	if input.Notes != nil {
		entry.Notes = input.Notes
	}
	if input.HourlyRate != nil {
		if *input.HourlyRate < 0 {
			return nil, errors.New("hourly_rate must not be negative")
		}
		entry.HourlyRate = *input.HourlyRate
	}
	if input.LocationLat != nil {
		entry.LocationLat = input.LocationLat
	}
	if input.LocationLng != nil {
		entry.LocationLng = input.LocationLng
	}
	if input.PhotoURLs != nil {
		raw, err := json.Marshal(input.PhotoURLs)
		if err != nil {
			return nil, errors.New("invalid photo_urls")
		}
		entry.PhotoURLs = raw
	}
	if input.MaterialsUsed != nil {
		raw, err := json.Marshal(input.MaterialsUsed)
		if err != nil {
			return nil, errors.New("invalid materials_used")
		}
		entry.MaterialsUsed = raw
	}
	if input.TravelTimeMinutes != nil {
		if *input.TravelTimeMinutes < 0 {
			return nil, errors.New("travel_time_minutes must not be negative")
		}
		entry.TravelTimeMinutes = *input.TravelTimeMinutes
	}
	if input.WorkType != nil {
		entry.WorkType = input.WorkType
	}
	if input.WeatherConditions != nil {
		entry.WeatherConditions = input.WeatherConditions
	}

	// re-check against the mutated record
	allowed, err := s.gate.Decide(policy.ActionUpdate, actor, owner, entry)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbidden
	}

	if err := s.repo.SaveTimeLog(entry); err != nil {
		return nil, err
	}

	if wasOpen && entry.EndTime != nil {
		s.publish(dto.EventTimeLogClosed, entry)
	}
	return entry, nil
}

// Approve flips is_approved. It is the only write a non-owner (admin or team
// leader) can perform.
func (s *timeLogService) Approve(actorID, timeLogID uint) (*domain.TimeLog, error) {
	actor, entry, _, err := s.authorize(policy.ActionApprove, actorID, timeLogID)
	if err != nil {
		return nil, err
	}

	if entry.IsApproved {
		return entry, nil
	}

	entry.IsApproved = true
	if err := s.repo.SaveTimeLog(entry); err != nil {
		return nil, err
	}

	if err := s.auditRepo.CreateAuditLog(&domain.AuditLog{
		ActorID:  actor.ID,
		Action:   "approve",
		Entity:   "time_log",
		EntityID: entry.ID,
	}); err != nil {
		log.Printf("audit approve error: %v", err)
	}

	s.publish(dto.EventTimeLogApproved, entry)
	return entry, nil
}

// AttachPhoto appends one uploaded URL to the photo list.
func (s *timeLogService) AttachPhoto(actorID, timeLogID uint, url string) (*domain.TimeLog, error) {
	_, entry, _, err := s.authorize(policy.ActionUpdate, actorID, timeLogID)
	if err != nil {
		return nil, err
	}

	var urls []string
	if len(entry.PhotoURLs) > 0 {
		if err := json.Unmarshal(entry.PhotoURLs, &urls); err != nil {
			return nil, errors.New("corrupt photo_urls")
		}
	}
	urls = append(urls, url)

	raw, err := json.Marshal(urls)
	if err != nil {
		return nil, errors.New("invalid photo_urls")
	}
	entry.PhotoURLs = raw

	if err := s.repo.SaveTimeLog(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *timeLogService) ListMine(actorID uint, from, to *time.Time) ([]domain.TimeLog, error) {
	return s.repo.ListByUser(actorID, from, to)
}

// ListForWorker lets admins and team leaders browse a worker's logs. The
// policy is evaluated once against a probe record owned by the worker.
func (s *timeLogService) ListForWorker(actorID, workerID uint) ([]domain.TimeLog, error) {
	actor, err := s.userRepo.FindUserById(actorID)
	if err != nil {
		return nil, err
	}
	worker, err := s.userRepo.FindUserById(workerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	probe := &domain.TimeLog{UserID: worker.ID}
	allowed, err := s.gate.Decide(policy.ActionRead, actor, worker, probe)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbidden
	}

	return s.repo.ListByUser(workerID, nil, nil)
}

// ListPending returns the actor's approval queue: organisation-wide for
// admins, led-team members for everyone else.
func (s *timeLogService) ListPending(actorID uint) ([]domain.TimeLog, error) {
	actor, err := s.userRepo.FindUserById(actorID)
	if err != nil {
		return nil, err
	}

	if actor.IsAdmin() {
		return s.repo.ListPendingByOrganisation(actor.OrganisationID)
	}
	return s.repo.ListPendingByLeader(actor.ID)
}

// authorize loads actor, record and owner and runs the policy. Ids that do
// not exist surface as ErrNotFound for every actor; policy denials on
// existing records come back as ErrForbidden.
func (s *timeLogService) authorize(action policy.Action, actorID, timeLogID uint) (*domain.User, *domain.TimeLog, *domain.User, error) {
	actor, err := s.userRepo.FindUserById(actorID)
	if err != nil {
		return nil, nil, nil, err
	}

	entry, err := s.repo.FindTimeLogById(timeLogID)
	if err != nil {
		if errors.Is(err, repository.ErrTimeLogNotFound) {
			return nil, nil, nil, ErrNotFound
		}
		return nil, nil, nil, err
	}

	owner, err := s.userRepo.FindUserById(entry.UserID)
	if err != nil {
		return nil, nil, nil, err
	}

	allowed, err := s.gate.Decide(action, actor, owner, entry)
	if err != nil {
		return nil, nil, nil, err
	}
	if !allowed {
		return nil, nil, nil, ErrForbidden
	}

	return actor, entry, owner, nil
}

func (s *timeLogService) publish(eventType string, entry *domain.TimeLog) {
	event := dto.TimeLogEvent{
		Type:        eventType,
		TimeLogID:   entry.ID,
		OrderID:     entry.OrderID,
		UserID:      entry.UserID,
		TotalAmount: entry.TotalAmount,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("marshal %s event error: %v", eventType, err)
		return
	}

	key := []byte(fmt.Sprintf("timelog-%d", entry.ID))
	if err := s.producer.PublishMessage(key, payload); err != nil {
		log.Printf("publish %s event error: %v", eventType, err)
	}
}
