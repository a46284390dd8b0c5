package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/monocle-dev/tracker/internal/apperr"
	"github.com/monocle-dev/tracker/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCredentials(t *testing.T) (*Credentials, *auth.TokenIssuer) {
	t.Helper()

	issuer, err := auth.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	return NewCredentials(newTestDB(t), issuer, nullLogger()), issuer
}

func TestRegisterThenLogin(t *testing.T) {
	credentials, issuer := newCredentials(t)
	ctx := context.Background()

	user, err := credentials.Register(ctx, RegisterInput{Name: "Ada", Email: "  Ada@Example.com ", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	result, err := credentials.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.True(t, result.User.ID.Equal(user.ID))

	identity, err := issuer.Verify(result.Token)
	require.NoError(t, err)
	assert.True(t, identity.ID.Equal(user.ID))
	assert.Equal(t, "Ada", identity.Name)
	assert.Equal(t, "ada@example.com", identity.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	credentials, _ := newCredentials(t)
	ctx := context.Background()

	_, err := credentials.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = credentials.Register(ctx, RegisterInput{Name: "Other", Email: "ADA@example.com", Password: "password2"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestRegisterValidation(t *testing.T) {
	credentials, _ := newCredentials(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@example.com", Password: "password1"}},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "password1"}},
		{"short password", RegisterInput{Name: "A", Email: "a@example.com", Password: "short"}},
		{"password over 72 bytes", RegisterInput{Name: "A", Email: "a@example.com", Password: strings.Repeat("x", 80)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := credentials.Register(ctx, tt.input)
			assert.True(t, apperr.Is(err, apperr.KindBadRequest), "got %v", err)
		})
	}
}

func TestRegisterAcceptsLongestPassword(t *testing.T) {
	credentials, _ := newCredentials(t)
	ctx := context.Background()
	password := strings.Repeat("x", maxPasswordLength)

	_, err := credentials.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: password})
	require.NoError(t, err)

	_, err = credentials.Login(ctx, "ada@example.com", password)
	assert.NoError(t, err)
}

func TestLoginFailures(t *testing.T) {
	credentials, _ := newCredentials(t)
	ctx := context.Background()

	_, err := credentials.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = credentials.Login(ctx, "ada@example.com", "wrong-password")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, err = credentials.Login(ctx, "nobody@example.com", "password1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = credentials.Login(ctx, "", "")
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}
