package dto

import (
	"time"

	"github.com/google/uuid"
)

type SignUpRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	ShopName  string `json:"shop_name" validate:"required"`
	Password  string `json:"password" validate:"required,password"`
}

type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Code            string `json:"code" validate:"required,len=6,numeric"`
	NewPassword     string `json:"new_password" validate:"required,password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type UserDTO struct {
	Id        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         UserDTO   `json:"user"`
}

// SessionResponse mirrors the hosted auth session object the shell consumes.
type SessionResponse struct {
	AccessToken  string                 `json:"access_token"`
	UserId       uuid.UUID              `json:"user_id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	ExpiresAt    time.Time              `json:"expires_at"`
}

type OAuthLoginResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// ClientMeta is request context the controller extracts for the service.
// AppSessionId is the optional X-App-Session header.
type ClientMeta struct {
	IpAddress    string
	UserAgent    string
	AppSessionId string
}
