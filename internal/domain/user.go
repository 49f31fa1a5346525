package domain

import "time"

// User is the domain model for a platform account. DNI is the national
// identifier; it is unique alongside Email.
type User struct {
	ID           string
	Name         string
	DNI          int64
	Email        string
	PasswordHash string
	IsFirstLogin bool
	Address      string
	City         string
	Country      string
	CanVote      bool
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the caller-safe view of a User: the password hash is never
// included.
type PublicUser struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	DNI          int64     `json:"dni"`
	Email        string    `json:"email"`
	IsFirstLogin bool      `json:"is_first_login"`
	Address      string    `json:"address,omitempty"`
	City         string    `json:"city,omitempty"`
	Country      string    `json:"country,omitempty"`
	CanVote      bool      `json:"can_vote"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public strips the secret material from a User.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:           u.ID,
		Name:         u.Name,
		DNI:          u.DNI,
		Email:        u.Email,
		IsFirstLogin: u.IsFirstLogin,
		Address:      u.Address,
		City:         u.City,
		Country:      u.Country,
		CanVote:      u.CanVote,
		Roles:        u.Roles,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// RoleNames returns the names of the user's assigned roles.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}
