package repository

import (
	"errors"
	"log"

	"github.com/fieldflow/timelog_service/internal/domain"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	CreateUser(user *domain.User) (*domain.User, error)
	FindUserByEmail(email string) (*domain.User, error)
	FindUserById(userID uint) (*domain.User, error)
	SaveUser(user *domain.User) error
	DeleteUser(userID uint) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("nil user")
	}

	if err := r.db.Create(user).Error; err != nil {
		log.Printf("create user error: %v", err)
		return nil, err
	}

	return user, nil
}

func (r *userRepository) FindUserByEmail(email string) (*domain.User, error) {
	user := &domain.User{}

	if err := r.db.First(user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Printf("find user by email error: %v", err)
		return nil, errors.New("failed to find user by email")
	}

	return user, nil
}

func (r *userRepository) FindUserById(userID uint) (*domain.User, error) {
	user := &domain.User{}

	if err := r.db.First(user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Printf("find user by id error: %v", err)
		return nil, errors.New("failed to find user by ID")
	}

	return user, nil
}

func (r *userRepository) SaveUser(user *domain.User) error {
	if user == nil {
		return errors.New("nil user")
	}

	if err := r.db.Save(user).Error; err != nil {
		log.Printf("save user error: %v", err)
		return errors.New("failed to save user")
	}
	return nil
}

// DeleteUser removes the worker; the FK cascade removes their time logs.
func (r *userRepository) DeleteUser(userID uint) error {
	if err := r.db.Delete(&domain.User{}, userID).Error; err != nil {
		log.Printf("delete user error: %v", err)
		return errors.New("failed to delete user")
	}
	return nil
}
