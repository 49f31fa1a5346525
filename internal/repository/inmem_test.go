package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/voting-identity/internal/domain"
)

func TestInMemoryUserRepositoryUniqueness(t *testing.T) {
	repo := NewInMemoryUserRepository()
	ctx := context.Background()

	first := &domain.User{Name: "Ana", DNI: 100, Email: "ana@x.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, first, []int{4}))
	require.NotEmpty(t, first.ID)

	err := repo.Create(ctx, &domain.User{Name: "Eva", DNI: 100, Email: "eva@x.com"}, nil)
	assert.ErrorIs(t, err, ErrDuplicateDNI)

	err = repo.Create(ctx, &domain.User{Name: "Eva", DNI: 200, Email: "ana@x.com"}, nil)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestInMemoryUserRepositoryLookups(t *testing.T) {
	repo := NewInMemoryUserRepository()
	ctx := context.Background()

	user := &domain.User{Name: "Ana", DNI: 100, Email: "ana@x.com"}
	require.NoError(t, repo.Create(ctx, user, nil))

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	byDNI, err := repo.GetByDNI(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byDNI.ID)

	_, err = repo.GetByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, user.ID))
	assert.ErrorIs(t, repo.Delete(ctx, user.ID), ErrNotFound)
}

func TestInMemoryHierarchySingleParent(t *testing.T) {
	repo := NewInMemoryHierarchyRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateEdge(ctx, "p1", "c1"))
	assert.ErrorIs(t, repo.CreateEdge(ctx, "p2", "c1"), ErrDuplicateChild)

	hasParent, err := repo.HasParent(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, hasParent)

	children, err := repo.ListChildren(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, children)

	require.NoError(t, repo.DeleteByUser(ctx, "c1"))
	children, err = repo.ListChildren(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestInMemoryRoleRepository(t *testing.T) {
	repo := NewInMemoryRoleRepository(
		domain.Role{ID: 2, Name: "admin"},
		domain.Role{ID: 4, Name: "voter"},
	)
	ctx := context.Background()

	role, err := repo.GetByID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "voter", role.Name)

	_, err = repo.GetByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	roles, err := repo.ListByIDs(ctx, []int{2, 99})
	require.NoError(t, err)
	assert.Len(t, roles, 1)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
