package domain

import (
	"encoding/json"
	"fmt"
)

// Role is immutable reference data seeded out-of-band.
type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RoleRef is a reference to a role supplied by a caller, either as a bare
// numeric id or as a full role object. It is normalized against the role
// registry before persistence.
type RoleRef struct {
	ID   int
	Role *Role
}

// RoleID returns the referenced role identifier regardless of variant.
func (r RoleRef) RoleID() int {
	if r.Role != nil {
		return r.Role.ID
	}
	return r.ID
}

// UnmarshalJSON accepts either `4` or `{"id":4,"name":"voter"}`.
func (r *RoleRef) UnmarshalJSON(data []byte) error {
	var id int
	if err := json.Unmarshal(data, &id); err == nil {
		*r = RoleRef{ID: id}
		return nil
	}

	var role Role
	if err := json.Unmarshal(data, &role); err != nil {
		return fmt.Errorf("role reference must be an id or a role object: %w", err)
	}
	*r = RoleRef{ID: role.ID, Role: &role}
	return nil
}

// MarshalJSON renders the reference as its bare id.
func (r RoleRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.RoleID())
}

// RoleIDs flattens a slice of references into role identifiers.
func RoleIDs(refs []RoleRef) []int {
	ids := make([]int, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.RoleID())
	}
	return ids
}
