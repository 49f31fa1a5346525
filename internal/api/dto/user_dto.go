package dto

import "github.com/spec-kit/voting-identity/internal/domain"

// RegisterUserRequest payload for self-registration and admin provisioning.
// Password is optional: when absent a temporary one is generated and mailed.
type RegisterUserRequest struct {
	Name     string           `json:"name" validate:"required"`
	DNI      int64            `json:"dni" validate:"required"`
	Email    string           `json:"email" validate:"required,email"`
	Password string           `json:"password,omitempty"`
	Address  string           `json:"address,omitempty"`
	City     string           `json:"city,omitempty"`
	Country  string           `json:"country,omitempty"`
	CanVote  bool             `json:"can_vote"`
	Roles    []domain.RoleRef `json:"roles,omitempty"`
	ParentID string           `json:"parent_id,omitempty"`
}

// UpdateUserRequest payload for user updates. The password is mandatory on
// every update and is always re-hashed.
type UpdateUserRequest struct {
	Name     string           `json:"name,omitempty"`
	DNI      int64            `json:"dni,omitempty"`
	Email    string           `json:"email,omitempty" validate:"omitempty,email"`
	Password string           `json:"password" validate:"required"`
	Address  string           `json:"address,omitempty"`
	City     string           `json:"city,omitempty"`
	Country  string           `json:"country,omitempty"`
	CanVote  bool             `json:"can_vote"`
	Roles    []domain.RoleRef `json:"roles,omitempty"`
}
