package service

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/voting-identity/internal/config"
	"github.com/spec-kit/voting-identity/internal/domain"
	"github.com/spec-kit/voting-identity/internal/events"
	"github.com/spec-kit/voting-identity/internal/repository"
)

// fakeGateway records notifications instead of delivering them.
type fakeGateway struct {
	mu        sync.Mutex
	welcomes  []string
	passwords map[string]string
	err       error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{passwords: map[string]string{}}
}

func (g *fakeGateway) SendWelcomeEmail(_ context.Context, to, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.welcomes = append(g.welcomes, to)
	return nil
}

func (g *fakeGateway) SendPasswordEmail(_ context.Context, to, _, temporaryPassword string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.passwords[to] = temporaryPassword
	return nil
}

func (g *fakeGateway) temporaryPasswordFor(email string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	pw, ok := g.passwords[email]
	return pw, ok
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            bcrypt.MinCost,
		},
		Identity: config.IdentityConfig{
			DefaultRoleID:      4,
			AdminDefaultRoleID: 3,
			TempPasswordLength: 12,
		},
	}
}

type fixture struct {
	identity  *IdentityService
	auth      *AuthService
	importer  *ImportService
	users     *repository.InMemoryUserRepository
	hierarchy *repository.InMemoryHierarchyRepository
	gateway   *fakeGateway
}

func newFixture() *fixture {
	cfg := testConfig()
	users := repository.NewInMemoryUserRepository()
	roles := repository.NewInMemoryRoleRepository(
		domain.Role{ID: 1, Name: "super-admin"},
		domain.Role{ID: 2, Name: "admin"},
		domain.Role{ID: 3, Name: "collaborator"},
		domain.Role{ID: 4, Name: "voter"},
	)
	hierarchy := repository.NewInMemoryHierarchyRepository()
	gateway := newFakeGateway()
	dispatcher := events.NewInMemoryDispatcher()
	logger := zap.NewNop()

	identity := NewIdentityService(cfg, IdentityDependencies{
		UserRepo:      users,
		RoleRepo:      roles,
		HierarchyRepo: hierarchy,
		Gateway:       gateway,
		Dispatcher:    dispatcher,
	}, logger)

	return &fixture{
		identity:  identity,
		auth:      NewAuthService(cfg, users, dispatcher, logger),
		importer:  NewImportService(identity, dispatcher, logger),
		users:     users,
		hierarchy: hierarchy,
		gateway:   gateway,
	}
}

func validInput(name string, dni int64, email string) CreateUserInput {
	return CreateUserInput{
		Name:  name,
		DNI:   dni,
		Email: email,
	}
}
