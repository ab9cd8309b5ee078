package dto

type RegisterRequest struct {
	Email          string   `json:"email" validate:"required,email"`
	Password       string   `json:"password" validate:"required,min=6"`
	Name           string   `json:"name" validate:"required"`
	Role           string   `json:"role" validate:"required,oneof=admin sales worker"`
	OrganisationID uint     `json:"organisation_id" validate:"required"`
	HourlyRate     *float64 `json:"hourly_rate,omitempty"`
}

type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserProfileResponse struct {
	ID             uint    `json:"id"`
	Email          string  `json:"email"`
	Name           string  `json:"name"`
	Role           string  `json:"role"`
	OrganisationID uint    `json:"organisation_id"`
	HourlyRate     float64 `json:"hourly_rate"`
	CreatedAt      string  `json:"created_at"`
}

type AuthResponse struct {
	UserID int     `json:"user_id"`
	Email  string  `json:"email"`
	Iat    float64 `json:"iat"`
	Expiry float64 `json:"expiry"`
}
