package user

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Account is the public projection of a User; it never carries the hash.
// swagger:model Account
type Account struct {
	ID        string    `json:"id"         example:"b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b"`
	Email     string    `json:"email"      example:"a@x.com"`
	Username  string    `json:"username"   example:"alice"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Public() Account {
	return Account{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RegisterRequest payload of registration.
// swagger:model RegisterRequest
type RegisterRequest struct {
	Email    string `json:"email"    binding:"required" example:"a@x.com"`
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"pw123"`
}

// LoginRequest is accepted as JSON, form fields or query parameters.
// swagger:model LoginRequest
type LoginRequest struct {
	Username string `json:"username" form:"username" example:"alice"`
	Password string `json:"password" form:"password" example:"pw123"`
}

// Token is the login response.
// swagger:model Token
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type" example:"bearer"`
	ExpiresAt   time.Time `json:"expires_at"`
}
