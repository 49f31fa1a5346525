package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/voting-identity/internal/auth"
	"github.com/spec-kit/voting-identity/internal/config"
	"github.com/spec-kit/voting-identity/internal/domain"
	"github.com/spec-kit/voting-identity/internal/events"
	"github.com/spec-kit/voting-identity/internal/notify"
	"github.com/spec-kit/voting-identity/internal/repository"
	apperrors "github.com/spec-kit/voting-identity/pkg/util"
)

// CreateUserInput carries the caller-supplied account fields. An empty
// Password means a temporary one is generated and the account is gated
// behind the first-login password change.
type CreateUserInput struct {
	Name     string
	DNI      int64
	Email    string
	Password string
	Address  string
	City     string
	Country  string
	CanVote  bool
	Roles    []domain.RoleRef
}

// CreateUserResult reports the persisted account together with the outcome
// of the post-commit notification. A failed notification never rolls back
// the account.
type CreateUserResult struct {
	User      *domain.PublicUser
	Notified  bool
	NotifyErr error
}

// IdentityService orchestrates account creation, profile updates and the
// delegation hierarchy.
type IdentityService struct {
	users      repository.UserRepository
	roles      repository.RoleRepository
	hierarchy  repository.HierarchyRepository
	gateway    notify.Gateway
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.IdentityConfig
	bcryptCost int
}

// IdentityDependencies encapsulates collaborator requirements.
type IdentityDependencies struct {
	UserRepo      repository.UserRepository
	RoleRepo      repository.RoleRepository
	HierarchyRepo repository.HierarchyRepository
	Gateway       notify.Gateway
	Dispatcher    events.Dispatcher
}

// NewIdentityService builds the service.
func NewIdentityService(cfg config.Config, deps IdentityDependencies, logger *zap.Logger) *IdentityService {
	return &IdentityService{
		users:      deps.UserRepo,
		roles:      deps.RoleRepo,
		hierarchy:  deps.HierarchyRepo,
		gateway:    deps.Gateway,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		cfg:        cfg.Identity,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// CreateUser registers an account through the self-registration path,
// falling back to the standard default role.
func (s *IdentityService) CreateUser(ctx context.Context, in CreateUserInput, parentID string) (*CreateUserResult, error) {
	return s.create(ctx, in, parentID, s.cfg.DefaultRoleID, false)
}

// CreateUserByAdmin registers an account on behalf of an admin. The
// admin-provisioned default role applies and the temporary-password mail is
// always sent, even when a password was supplied.
func (s *IdentityService) CreateUserByAdmin(ctx context.Context, in CreateUserInput, parentID string) (*CreateUserResult, error) {
	return s.create(ctx, in, parentID, s.cfg.AdminDefaultRoleID, true)
}

func (s *IdentityService) create(ctx context.Context, in CreateUserInput, parentID string, defaultRoleID int, alwaysTempMail bool) (*CreateUserResult, error) {
	// Friendly pre-checks; the storage unique constraints remain the
	// authoritative guard against races.
	if _, err := s.users.GetByDNI(ctx, in.DNI); err == nil {
		return nil, apperrors.NewConflict(fmt.Sprintf("user with dni %d already exists", in.DNI), nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperrors.NewConflict(fmt.Sprintf("user with email %s already exists", in.Email), nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	generated := in.Password == ""
	password := in.Password
	if generated {
		var err error
		password, err = auth.GenerateTemporaryPassword(s.cfg.TempPasswordLength)
		if err != nil {
			return nil, err
		}
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	roles, err := s.resolveRoles(ctx, in.Roles, defaultRoleID)
	if err != nil {
		return nil, err
	}

	user := buildUser(in, hash, generated, roles)
	if err := s.users.Create(ctx, user, roleIDs(roles)); err != nil {
		return nil, mapUniqueViolation(err, in)
	}

	result := &CreateUserResult{User: user.Public(), Notified: true}
	if err := s.sendCreationMail(ctx, user, password, generated || alwaysTempMail); err != nil {
		s.logger.Warn("account created but notification failed",
			zap.String("user_id", user.ID),
			zap.Error(err))
		result.Notified = false
		result.NotifyErr = err
	}

	if parentID != "" {
		if err := s.attachParent(ctx, parentID, user.ID); err != nil {
			return nil, err
		}
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserCreated,
		UserID:    user.ID,
		Timestamp: time.Now(),
		Payload: events.UserCreatedPayload{
			Email:       user.Email,
			ParentID:    parentID,
			Provisioned: generated,
			Notified:    result.Notified,
		},
	})

	return result, nil
}

// GetUser returns the public view of a single account.
func (s *IdentityService) GetUser(ctx context.Context, id string) (*domain.PublicUser, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}
	return user.Public(), nil
}

// ListUsers returns all users, or only the direct children of parentID when
// given. An admin with no children gets an empty list, not an error.
func (s *IdentityService) ListUsers(ctx context.Context, parentID string) ([]*domain.PublicUser, error) {
	if parentID == "" {
		users, err := s.users.List(ctx)
		if err != nil {
			return nil, err
		}
		return publicViews(users), nil
	}

	if _, err := s.users.GetByID(ctx, parentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": parentID})
		}
		return nil, err
	}

	childIDs, err := s.hierarchy.ListChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListByIDs(ctx, childIDs)
	if err != nil {
		return nil, err
	}
	return publicViews(users), nil
}

// UpdateUser replaces an account's fields. The payload must carry a
// password, which is re-hashed unconditionally.
func (s *IdentityService) UpdateUser(ctx context.Context, id string, in CreateUserInput) (*domain.PublicUser, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}

	if in.Password == "" {
		return nil, apperrors.NewValidationError("password is required for updating user", nil)
	}
	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		user.Name = in.Name
	}
	if in.DNI != 0 {
		user.DNI = in.DNI
	}
	if in.Email != "" {
		user.Email = in.Email
	}
	if in.Address != "" {
		user.Address = in.Address
	}
	if in.City != "" {
		user.City = in.City
	}
	if in.Country != "" {
		user.Country = in.Country
	}
	user.CanVote = in.CanVote
	user.PasswordHash = hash

	var ids []int
	if len(in.Roles) > 0 {
		roles, err := s.resolveRoles(ctx, in.Roles, 0)
		if err != nil {
			return nil, err
		}
		user.Roles = roles
		ids = roleIDs(roles)
	}

	if err := s.users.Update(ctx, user, ids); err != nil {
		return nil, mapUniqueViolation(err, in)
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserUpdated,
		UserID:    user.ID,
		Timestamp: time.Now(),
	})

	return user.Public(), nil
}

// DeleteUser removes an account along with any hierarchy edges that
// reference it.
func (s *IdentityService) DeleteUser(ctx context.Context, id string) (string, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return "", err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return "", err
	}
	if err := s.hierarchy.DeleteByUser(ctx, id); err != nil {
		return "", err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserDeleted,
		UserID:    id,
		Timestamp: time.Now(),
		Payload:   events.UserDeletedPayload{Email: user.Email},
	})

	return fmt.Sprintf("user with id %s successfully deleted", id), nil
}

// EmailTaken reports whether an account with the given email exists.
func (s *IdentityService) EmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// resolveRoles normalizes caller-supplied role references against the
// registry, or falls back to the default role when none were supplied.
func (s *IdentityService) resolveRoles(ctx context.Context, refs []domain.RoleRef, defaultRoleID int) ([]domain.Role, error) {
	if len(refs) == 0 {
		role, err := s.roles.GetByID(ctx, defaultRoleID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NewValidationError("default role not found", nil)
			}
			return nil, err
		}
		return []domain.Role{*role}, nil
	}

	ids := domain.RoleIDs(refs)
	roles, err := s.roles.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(roles) != len(ids) {
		return nil, apperrors.NewValidationError("some roles not found", map[string]any{"requested": ids})
	}
	return roles, nil
}

func (s *IdentityService) sendCreationMail(ctx context.Context, user *domain.User, password string, temporary bool) error {
	if temporary {
		return s.gateway.SendPasswordEmail(ctx, user.Email, user.Name, password)
	}
	return s.gateway.SendWelcomeEmail(ctx, user.Email, user.Name)
}

func (s *IdentityService) attachParent(ctx context.Context, parentID, childID string) error {
	if _, err := s.users.GetByID(ctx, parentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewValidationError(fmt.Sprintf("parent user with id %s not found", parentID), nil)
		}
		return err
	}

	hasParent, err := s.hierarchy.HasParent(ctx, childID)
	if err != nil {
		return err
	}
	if hasParent {
		return apperrors.NewConflict(fmt.Sprintf("user with id %s is already related to another parent", childID), nil)
	}

	if err := s.hierarchy.CreateEdge(ctx, parentID, childID); err != nil {
		if errors.Is(err, repository.ErrDuplicateChild) {
			return apperrors.NewConflict(fmt.Sprintf("user with id %s is already related to another parent", childID), nil)
		}
		return err
	}
	return nil
}

func (s *IdentityService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// buildUser assembles a complete account record; nothing partially built is
// ever handed to the store.
func buildUser(in CreateUserInput, hash string, firstLogin bool, roles []domain.Role) *domain.User {
	return &domain.User{
		Name:         in.Name,
		DNI:          in.DNI,
		Email:        in.Email,
		PasswordHash: hash,
		IsFirstLogin: firstLogin,
		Address:      in.Address,
		City:         in.City,
		Country:      in.Country,
		CanVote:      in.CanVote,
		Roles:        roles,
	}
}

func roleIDs(roles []domain.Role) []int {
	ids := make([]int, 0, len(roles))
	for _, role := range roles {
		ids = append(ids, role.ID)
	}
	return ids
}

func publicViews(users []domain.User) []*domain.PublicUser {
	views := make([]*domain.PublicUser, 0, len(users))
	for i := range users {
		views = append(views, users[i].Public())
	}
	return views
}

func mapUniqueViolation(err error, in CreateUserInput) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperrors.NewConflict(fmt.Sprintf("user with email %s already exists", in.Email), nil)
	case errors.Is(err, repository.ErrDuplicateDNI):
		return apperrors.NewConflict(fmt.Sprintf("user with dni %d already exists", in.DNI), nil)
	}
	return err
}
