package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"greenloop/internal/models"
)

func TestAuthenticationRoundTrip(t *testing.T) {
	authentication, err := NewAuthentication("test-secret")
	require.NoError(t, err)

	token, err := authentication.CreateToken(&models.UserFromAuth{
		ID:        42,
		Email:     "jamie@example.com",
		FirstName: "Jamie",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := authentication.Validate(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), user.ID)
	require.Equal(t, "jamie@example.com", user.Email)
	require.Equal(t, "Jamie", user.FirstName)
	require.Equal(t, "Doe", user.LastName)
}

func TestAuthenticationRejectsWrongSecret(t *testing.T) {
	authentication, err := NewAuthentication("secret-a")
	require.NoError(t, err)

	token, err := authentication.CreateToken(&models.UserFromAuth{ID: 1, Email: "a@example.com"})
	require.NoError(t, err)

	other, err := NewAuthentication("secret-b")
	require.NoError(t, err)

	_, err = other.Validate(token)
	require.Error(t, err)
}

func TestAuthenticationRejectsGarbage(t *testing.T) {
	authentication, err := NewAuthentication("test-secret")
	require.NoError(t, err)

	_, err = authentication.Validate("not-a-token")
	require.Error(t, err)
}
