package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/domain/entity"
)

func TestTokenService_IssueAndParse(t *testing.T) {
	svc, err := NewTokenService("test-secret")
	require.NoError(t, err)

	token, err := svc.Issue(entity.User{Email: "employee@test.tld"}, time.Hour)
	require.NoError(t, err)

	user, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "employee@test.tld", user.Email)
	assert.Equal(t, entity.UserTypeEmployee, user.Type)
}

func TestTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService("")
	assert.Error(t, err)
}

func TestTokenService_IssueRequiresEmail(t *testing.T) {
	svc, _ := NewTokenService("s")
	_, err := svc.Issue(entity.User{}, time.Hour)
	assert.Error(t, err)
}

func TestTokenService_RejectsInvalidTokens(t *testing.T) {
	svc, _ := NewTokenService("test-secret")
	other, _ := NewTokenService("other-secret")

	forged, err := other.Issue(entity.User{Email: "a@a"}, time.Hour)
	require.NoError(t, err)

	expired := func() string {
		old, _ := NewTokenService("test-secret")
		old.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := old.Issue(entity.User{Email: "a@a"}, time.Hour)
		require.NoError(t, err)
		return token
	}()

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Email: "a@a"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage": "not-a-token",
		"forged":  forged,
		"expired": expired,
		"none":    none,
		"empty":   "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Parse(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
