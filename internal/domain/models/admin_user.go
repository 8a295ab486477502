package models

import "time"

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

type AdminUser struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Active       bool       `json:"active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type AdminUserInput struct {
	Email    string `json:"email" binding:"required,email,max=190"`
	Name     string `json:"name" binding:"required,max=160"`
	Role     string `json:"role" binding:"required,oneof=admin editor"`
	Password string `json:"password" binding:"omitempty,min=10,max=72"`
	Active   *bool  `json:"active"`
}
