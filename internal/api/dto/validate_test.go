package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/voting-identity/pkg/util"
)

func TestValidateSignInRequest(t *testing.T) {
	err := Validate(SignInRequest{})
	require.Error(t, err)

	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Contains(t, de.Message, "email is required")
	assert.Contains(t, de.Message, "password is required")

	assert.NoError(t, Validate(SignInRequest{Email: "a@x.com", Password: "pw"}))
}

func TestValidateRejectsMalformedEmail(t *testing.T) {
	err := Validate(SignInRequest{Email: "not-an-email", Password: "pw"})
	require.Error(t, err)

	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Message, "email must be a valid email")
}

func TestValidateFirstLoginRequest(t *testing.T) {
	err := Validate(FirstLoginPasswordRequest{
		DNI:             100,
		Password:        "temp",
		NewPassword:     "short",
		ConfirmPassword: "short",
	})
	require.Error(t, err)

	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Message, "newpassword must be at least 8")
}

func TestValidateImportRequest(t *testing.T) {
	err := Validate(ImportUsersRequest{ParentID: "p1"})
	require.Error(t, err)

	assert.NoError(t, Validate(ImportUsersRequest{
		ParentID: "p1",
		Rows:     []ImportRowRequest{{Name: "A", DNI: 1, Email: "a@x.com"}},
	}))
}
