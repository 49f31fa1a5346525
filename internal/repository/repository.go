package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/voting-identity/internal/domain"
)

// Sentinel errors shared by all storage implementations so services can
// branch without knowing the backing store.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDuplicateDNI   = errors.New("dni already registered")
	ErrDuplicateChild = errors.New("child already linked to a parent")
)

// UserRepository defines persistence access for accounts. Create and Update
// persist the user together with its role links; uniqueness of email and dni
// is enforced by the store itself, not by callers.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User, roleIDs []int) error
	Update(ctx context.Context, user *domain.User, roleIDs []int) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByDNI(ctx context.Context, dni int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.User, error)
}

// RoleRepository exposes the seeded role registry.
type RoleRepository interface {
	GetByID(ctx context.Context, id int) (*domain.Role, error)
	ListByIDs(ctx context.Context, ids []int) ([]domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
}

// HierarchyRepository stores parent→child edges. The store guarantees a
// child appears in at most one edge.
type HierarchyRepository interface {
	CreateEdge(ctx context.Context, parentID, childID string) error
	HasParent(ctx context.Context, childID string) (bool, error)
	ListChildren(ctx context.Context, parentID string) ([]string, error)
	DeleteByUser(ctx context.Context, userID string) error
}
