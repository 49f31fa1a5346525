package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/voting-identity/internal/auth"
	"github.com/spec-kit/voting-identity/internal/domain"
)

func TestCreateUserAssignsExactlyDefaultRole(t *testing.T) {
	f := newFixture()

	result, err := f.identity.CreateUser(context.Background(), validInput("Ana", 100, "ana@x.com"), "")
	require.NoError(t, err)
	require.Len(t, result.User.Roles, 1)
	assert.Equal(t, 4, result.User.Roles[0].ID)
	assert.Equal(t, "voter", result.User.Roles[0].Name)
}

func TestCreateUserByAdminUsesAdminDefaultRole(t *testing.T) {
	f := newFixture()
	parent, err := f.identity.CreateUser(context.Background(), validInput("Boss", 1, "boss@x.com"), "")
	require.NoError(t, err)

	result, err := f.identity.CreateUserByAdmin(context.Background(), validInput("Ana", 100, "ana@x.com"), parent.User.ID)
	require.NoError(t, err)
	require.Len(t, result.User.Roles, 1)
	assert.Equal(t, 3, result.User.Roles[0].ID)
}

func TestCreateUserResolvesExplicitRoles(t *testing.T) {
	f := newFixture()

	in := validInput("Ana", 100, "ana@x.com")
	in.Roles = []domain.RoleRef{{ID: 2}, {Role: &domain.Role{ID: 4, Name: "voter"}}}
	result, err := f.identity.CreateUser(context.Background(), in, "")
	require.NoError(t, err)
	require.Len(t, result.User.Roles, 2)
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	f := newFixture()

	in := validInput("Ana", 100, "ana@x.com")
	in.Roles = []domain.RoleRef{{ID: 99}}
	_, err := f.identity.CreateUser(context.Background(), in, "")
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestCreateUserConflicts(t *testing.T) {
	f := newFixture()
	_, err := f.identity.CreateUser(context.Background(), validInput("Ana", 100, "ana@x.com"), "")
	require.NoError(t, err)

	t.Run("duplicate dni", func(t *testing.T) {
		_, err := f.identity.CreateUser(context.Background(), validInput("Eva", 100, "eva@x.com"), "")
		assert.Equal(t, "CONFLICT", domainCode(t, err))
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := f.identity.CreateUser(context.Background(), validInput("Eva", 200, "ana@x.com"), "")
		assert.Equal(t, "CONFLICT", domainCode(t, err))
	})

	t.Run("no duplicate persisted", func(t *testing.T) {
		users, err := f.users.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}

func TestCreateUserPasswordHandling(t *testing.T) {
	t.Run("generated password gates first login and mails the secret", func(t *testing.T) {
		f := newFixture()
		result, err := f.identity.CreateUser(context.Background(), validInput("Ana", 100, "ana@x.com"), "")
		require.NoError(t, err)
		assert.True(t, result.User.IsFirstLogin)
		assert.True(t, result.Notified)

		temp, ok := f.gateway.temporaryPasswordFor("ana@x.com")
		require.True(t, ok)
		require.NotEmpty(t, temp)

		user, err := f.users.GetByDNI(context.Background(), 100)
		require.NoError(t, err)
		assert.NoError(t, auth.ComparePassword(user.PasswordHash, temp))
	})

	t.Run("supplied password skips the gate and sends welcome", func(t *testing.T) {
		f := newFixture()
		in := validInput("Ana", 100, "ana@x.com")
		in.Password = "chosen-password"
		result, err := f.identity.CreateUser(context.Background(), in, "")
		require.NoError(t, err)
		assert.False(t, result.User.IsFirstLogin)
		assert.Contains(t, f.gateway.welcomes, "ana@x.com")
		_, mailedTemp := f.gateway.temporaryPasswordFor("ana@x.com")
		assert.False(t, mailedTemp)
	})

	t.Run("admin path always mails the password", func(t *testing.T) {
		f := newFixture()
		parent, err := f.identity.CreateUser(context.Background(), validInput("Boss", 1, "boss@x.com"), "")
		require.NoError(t, err)

		in := validInput("Ana", 100, "ana@x.com")
		in.Password = "chosen-password"
		result, err := f.identity.CreateUserByAdmin(context.Background(), in, parent.User.ID)
		require.NoError(t, err)
		assert.False(t, result.User.IsFirstLogin)
		_, mailed := f.gateway.temporaryPasswordFor("ana@x.com")
		assert.True(t, mailed)
	})
}

func TestCreateUserNotificationFailureDoesNotRollBack(t *testing.T) {
	f := newFixture()
	f.gateway.err = errors.New("smtp down")

	result, err := f.identity.CreateUser(context.Background(), validInput("Ana", 100, "ana@x.com"), "")
	require.NoError(t, err)
	assert.False(t, result.Notified)
	assert.EqualError(t, result.NotifyErr, "smtp down")

	_, err = f.users.GetByEmail(context.Background(), "ana@x.com")
	assert.NoError(t, err)
}

func TestCreateUserNeverExposesPasswordHash(t *testing.T) {
	f := newFixture()
	in := validInput("Ana", 100, "ana@x.com")
	in.Password = "chosen-password"
	result, err := f.identity.CreateUser(context.Background(), in, "")
	require.NoError(t, err)

	// PublicUser has no hash field at all; double-check the stored one is set.
	stored, err := f.users.GetByID(context.Background(), result.User.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "chosen-password", stored.PasswordHash)
}

func TestCreateUserWithParent(t *testing.T) {
	f := newFixture()
	parent, err := f.identity.CreateUser(context.Background(), validInput("Boss", 1, "boss@x.com"), "")
	require.NoError(t, err)

	t.Run("unknown parent", func(t *testing.T) {
		_, err := f.identity.CreateUser(context.Background(), validInput("Ana", 100, "ana@x.com"), "missing-id")
		assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
	})

	t.Run("edge created", func(t *testing.T) {
		child, err := f.identity.CreateUser(context.Background(), validInput("Eva", 200, "eva@x.com"), parent.User.ID)
		require.NoError(t, err)

		children, err := f.hierarchy.ListChildren(context.Background(), parent.User.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{child.User.ID}, children)
	})
}

func TestSingleParentInvariant(t *testing.T) {
	f := newFixture()
	p1, err := f.identity.CreateUser(context.Background(), validInput("Boss", 1, "boss@x.com"), "")
	require.NoError(t, err)
	p2, err := f.identity.CreateUser(context.Background(), validInput("Chief", 2, "chief@x.com"), "")
	require.NoError(t, err)
	child, err := f.identity.CreateUser(context.Background(), validInput("Ana", 100, "ana@x.com"), p1.User.ID)
	require.NoError(t, err)

	err = f.hierarchy.CreateEdge(context.Background(), p2.User.ID, child.User.ID)
	assert.Error(t, err)
}

func TestListUsers(t *testing.T) {
	f := newFixture()
	parent, err := f.identity.CreateUser(context.Background(), validInput("Boss", 1, "boss@x.com"), "")
	require.NoError(t, err)
	c1, err := f.identity.CreateUser(context.Background(), validInput("Ana", 100, "ana@x.com"), parent.User.ID)
	require.NoError(t, err)
	c2, err := f.identity.CreateUser(context.Background(), validInput("Eva", 200, "eva@x.com"), parent.User.ID)
	require.NoError(t, err)
	_, err = f.identity.CreateUser(context.Background(), validInput("Zoe", 300, "zoe@x.com"), "")
	require.NoError(t, err)

	t.Run("all users", func(t *testing.T) {
		users, err := f.identity.ListUsers(context.Background(), "")
		require.NoError(t, err)
		assert.Len(t, users, 4)
	})

	t.Run("direct children only, roles included", func(t *testing.T) {
		users, err := f.identity.ListUsers(context.Background(), parent.User.ID)
		require.NoError(t, err)
		require.Len(t, users, 2)

		ids := []string{users[0].ID, users[1].ID}
		assert.ElementsMatch(t, []string{c1.User.ID, c2.User.ID}, ids)
		for _, u := range users {
			assert.NotEmpty(t, u.Roles)
		}
	})

	t.Run("parent without children gets empty list", func(t *testing.T) {
		leaf, err := f.identity.ListUsers(context.Background(), c1.User.ID)
		require.NoError(t, err)
		assert.Empty(t, leaf)
	})

	t.Run("unknown parent", func(t *testing.T) {
		_, err := f.identity.ListUsers(context.Background(), "missing-id")
		assert.Equal(t, "NOT_FOUND", domainCode(t, err))
	})
}

func TestUpdateUser(t *testing.T) {
	f := newFixture()
	created, err := f.identity.CreateUser(context.Background(), validInput("Ana", 100, "ana@x.com"), "")
	require.NoError(t, err)

	t.Run("password required", func(t *testing.T) {
		_, err := f.identity.UpdateUser(context.Background(), created.User.ID, CreateUserInput{Name: "Ana Maria"})
		assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.identity.UpdateUser(context.Background(), "missing-id", CreateUserInput{Password: "pw"})
		assert.Equal(t, "NOT_FOUND", domainCode(t, err))
	})

	t.Run("fields updated, password rehashed", func(t *testing.T) {
		updated, err := f.identity.UpdateUser(context.Background(), created.User.ID, CreateUserInput{
			Name:     "Ana Maria",
			City:     "Cordoba",
			Password: "fresh-password",
			Roles:    []domain.RoleRef{{ID: 2}},
		})
		require.NoError(t, err)
		assert.Equal(t, "Ana Maria", updated.Name)
		assert.Equal(t, "Cordoba", updated.City)
		assert.Equal(t, int64(100), updated.DNI)
		require.Len(t, updated.Roles, 1)
		assert.Equal(t, "admin", updated.Roles[0].Name)

		stored, err := f.users.GetByID(context.Background(), created.User.ID)
		require.NoError(t, err)
		assert.NoError(t, auth.ComparePassword(stored.PasswordHash, "fresh-password"))
	})
}

func TestDeleteUser(t *testing.T) {
	f := newFixture()
	parent, err := f.identity.CreateUser(context.Background(), validInput("Boss", 1, "boss@x.com"), "")
	require.NoError(t, err)
	child, err := f.identity.CreateUser(context.Background(), validInput("Ana", 100, "ana@x.com"), parent.User.ID)
	require.NoError(t, err)

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.identity.DeleteUser(context.Background(), "missing-id")
		assert.Equal(t, "NOT_FOUND", domainCode(t, err))
	})

	t.Run("removes user and referencing edges", func(t *testing.T) {
		msg, err := f.identity.DeleteUser(context.Background(), child.User.ID)
		require.NoError(t, err)
		assert.Contains(t, msg, child.User.ID)

		_, err = f.users.GetByID(context.Background(), child.User.ID)
		assert.Error(t, err)

		children, err := f.hierarchy.ListChildren(context.Background(), parent.User.ID)
		require.NoError(t, err)
		assert.Empty(t, children)
	})
}

func TestEmailTaken(t *testing.T) {
	f := newFixture()
	_, err := f.identity.CreateUser(context.Background(), validInput("Ana", 100, "ana@x.com"), "")
	require.NoError(t, err)

	taken, err := f.identity.EmailTaken(context.Background(), "ana@x.com")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = f.identity.EmailTaken(context.Background(), "other@x.com")
	require.NoError(t, err)
	assert.False(t, taken)
}
