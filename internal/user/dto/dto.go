package dto

import (
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

type RegisterInput struct {
	MerchantID string
	Email      string
	Password   string
	Name       string
	// GuestCartID is merged into the new account's cart when set.
	GuestCartID string
}

type LoginInput struct {
	MerchantID  string
	Email       string
	Password    string
	GuestCartID string
}

type CreateUserInput struct {
	MerchantID string
	Email      string
	Password   string
	Name       string
	Role       string
}

type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// Profile is the signed-in user with the permissions of their role.
type Profile struct {
	*model.User
	Permissions []string `json:"permissions"`
}
