package repository

import (
	"errors"
	"log"

	"github.com/fieldflow/timelog_service/internal/domain"
	"gorm.io/gorm"
)

type AuditRepository interface {
	CreateAuditLog(entry *domain.AuditLog) error
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) CreateAuditLog(entry *domain.AuditLog) error {
	if entry == nil {
		return errors.New("nil audit log")
	}

	if err := r.db.Create(entry).Error; err != nil {
		log.Printf("create audit log error: %v", err)
		return errors.New("failed to create audit log")
	}
	return nil
}
