package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/voting-identity/internal/domain"
)

// InMemoryUserRepository implements UserRepository using in-memory storage.
// It enforces the same email/dni uniqueness as the Postgres schema and is
// used by service tests and local experimentation.
type InMemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
	order []string
}

// NewInMemoryUserRepository creates an empty in-memory user store.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[string]domain.User)}
}

func (r *InMemoryUserRepository) Create(_ context.Context, user *domain.User, roleIDs []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
		if existing.DNI == user.DNI {
			return ErrDuplicateDNI
		}
	}

	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Roles = rolesFromIDs(roleIDs, user.Roles)

	r.users[user.ID] = *user
	r.order = append(r.order, user.ID)
	return nil
}

func (r *InMemoryUserRepository) Update(_ context.Context, user *domain.User, roleIDs []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	for id, existing := range r.users {
		if id == user.ID {
			continue
		}
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
		if existing.DNI == user.DNI {
			return ErrDuplicateDNI
		}
	}

	user.CreatedAt = stored.CreatedAt
	user.UpdatedAt = time.Now()
	if roleIDs != nil {
		user.Roles = rolesFromIDs(roleIDs, user.Roles)
	} else {
		user.Roles = stored.Roles
	}
	r.users[user.ID] = *user
	return nil
}

func (r *InMemoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	for i, stored := range r.order {
		if stored == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *InMemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *InMemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *InMemoryUserRepository) GetByDNI(_ context.Context, dni int64) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.DNI == dni })
}

func (r *InMemoryUserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.order))
	for _, id := range r.order {
		users = append(users, r.users[id])
	}
	return users, nil
}

func (r *InMemoryUserRepository) ListByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := []domain.User{}
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (r *InMemoryUserRepository) find(match func(domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if user := r.users[id]; match(user) {
			out := user
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// InMemoryRoleRepository implements RoleRepository over a fixed role set.
type InMemoryRoleRepository struct {
	mu    sync.RWMutex
	roles map[int]domain.Role
}

// NewInMemoryRoleRepository creates a registry seeded with the given roles.
func NewInMemoryRoleRepository(roles ...domain.Role) *InMemoryRoleRepository {
	seeded := make(map[int]domain.Role, len(roles))
	for _, role := range roles {
		seeded[role.ID] = role
	}
	return &InMemoryRoleRepository{roles: seeded}
}

func (r *InMemoryRoleRepository) GetByID(_ context.Context, id int) (*domain.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role, ok := r.roles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &role, nil
}

func (r *InMemoryRoleRepository) ListByIDs(_ context.Context, ids []int) ([]domain.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roles := []domain.Role{}
	for _, id := range ids {
		if role, ok := r.roles[id]; ok {
			roles = append(roles, role)
		}
	}
	return roles, nil
}

func (r *InMemoryRoleRepository) List(_ context.Context) ([]domain.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roles := make([]domain.Role, 0, len(r.roles))
	for _, role := range r.roles {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })
	return roles, nil
}

// InMemoryHierarchyRepository implements HierarchyRepository with the
// single-parent invariant enforced on insert.
type InMemoryHierarchyRepository struct {
	mu    sync.RWMutex
	edges []domain.HierarchyEdge
}

// NewInMemoryHierarchyRepository creates an empty edge store.
func NewInMemoryHierarchyRepository() *InMemoryHierarchyRepository {
	return &InMemoryHierarchyRepository{}
}

func (r *InMemoryHierarchyRepository) CreateEdge(_ context.Context, parentID, childID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, edge := range r.edges {
		if edge.ChildID == childID {
			return ErrDuplicateChild
		}
	}
	r.edges = append(r.edges, domain.HierarchyEdge{
		ID:        uuid.NewString(),
		ParentID:  parentID,
		ChildID:   childID,
		CreatedAt: time.Now(),
	})
	return nil
}

func (r *InMemoryHierarchyRepository) HasParent(_ context.Context, childID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, edge := range r.edges {
		if edge.ChildID == childID {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryHierarchyRepository) ListChildren(_ context.Context, parentID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	children := []string{}
	for _, edge := range r.edges {
		if edge.ParentID == parentID {
			children = append(children, edge.ChildID)
		}
	}
	return children, nil
}

func (r *InMemoryHierarchyRepository) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.edges[:0]
	for _, edge := range r.edges {
		if edge.ParentID != userID && edge.ChildID != userID {
			kept = append(kept, edge)
		}
	}
	r.edges = kept
	return nil
}

func rolesFromIDs(roleIDs []int, resolved []domain.Role) []domain.Role {
	if len(resolved) > 0 {
		return resolved
	}
	roles := make([]domain.Role, 0, len(roleIDs))
	for _, id := range roleIDs {
		roles = append(roles, domain.Role{ID: id})
	}
	return roles
}
