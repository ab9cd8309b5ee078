package services

import (
	"errors"
	"strings"

	"github.com/fieldflow/timelog_service/internal/domain"
	"github.com/fieldflow/timelog_service/internal/dto"
	"github.com/fieldflow/timelog_service/internal/helper"
	"github.com/fieldflow/timelog_service/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(input dto.RegisterRequest) error
	Login(input dto.UserLogin) (*domain.User, error)
	GetProfile(userID uint) (*domain.User, error)
	IsAdmin(userID uint) (bool, error)
}

type userService struct {
	repo repository.UserRepository
	auth helper.Auth
}

func NewUserService(repo repository.UserRepository, auth helper.Auth) UserService {
	return &userService{repo: repo, auth: auth}
}

func (u *userService) Register(input dto.RegisterRequest) error {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	name := strings.TrimSpace(input.Name)

	if email == "" || input.Password == "" || name == "" {
		return errors.New("email, password and name are required")
	}
	if len(input.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	role := strings.TrimSpace(strings.ToLower(input.Role))
	switch role {
	case domain.RoleAdmin, domain.RoleSales, domain.RoleWorker:
	case "":
		role = domain.RoleWorker
	default:
		return errors.New("invalid role")
	}

	if input.OrganisationID == 0 {
		return errors.New("organisation_id is required")
	}

	if _, err := u.repo.FindUserByEmail(email); err == nil {
		return errors.New("email already registered")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}

	rate := float64(domain.DefaultHourlyRate)
	if input.HourlyRate != nil {
		rate = *input.HourlyRate
	}

	user := &domain.User{
		Email:          email,
		PasswordHash:   string(hash),
		Name:           name,
		Role:           role,
		OrganisationID: input.OrganisationID,
		HourlyRate:     rate,
	}

	if _, err := u.repo.CreateUser(user); err != nil {
		if helper.IsDuplicateKey(err) {
			return errors.New("email already registered")
		}
		return errors.New("failed to create user")
	}
	return nil
}

func (u *userService) Login(input dto.UserLogin) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || input.Password == "" {
		return nil, errors.New("email and password are required")
	}

	user, err := u.repo.FindUserByEmail(email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	return user, nil
}

func (u *userService) GetProfile(userID uint) (*domain.User, error) {
	return u.repo.FindUserById(userID)
}

func (u *userService) IsAdmin(userID uint) (bool, error) {
	user, err := u.repo.FindUserById(userID)
	if err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}
