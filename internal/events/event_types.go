package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated     EventType = "user_created"
	EventUserUpdated     EventType = "user_updated"
	EventUserDeleted     EventType = "user_deleted"
	EventPasswordChanged EventType = "password_changed"
	EventUsersImported   EventType = "users_imported"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserCreatedPayload payload.
type UserCreatedPayload struct {
	Email       string `json:"email"`
	ParentID    string `json:"parent_id,omitempty"`
	Provisioned bool   `json:"provisioned"`
	Notified    bool   `json:"notified"`
}

// UserDeletedPayload payload.
type UserDeletedPayload struct {
	Email string `json:"email"`
}

// PasswordChangedPayload payload.
type PasswordChangedPayload struct {
	FirstLoginCompleted bool `json:"first_login_completed"`
}

// UsersImportedPayload payload.
type UsersImportedPayload struct {
	ParentID string `json:"parent_id,omitempty"`
	Added    int    `json:"added"`
	Failed   int    `json:"failed"`
}
