package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSessionAuth_TokenRoundTrip(t *testing.T) {
	sessionAuth := NewSessionAuth("test-secret", time.Hour)

	userID := uuid.New()
	token, err := sessionAuth.IssueToken(userID, "Ada", "ada@example.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	sessionUser, err := sessionAuth.ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, userID, sessionUser.ID)
	assert.Equal(t, "Ada", sessionUser.Name)
	assert.Equal(t, "ada@example.com", sessionUser.Email)
}

func TestSessionAuth_ExpiredToken(t *testing.T) {
	sessionAuth := NewSessionAuth("test-secret", -time.Minute)

	token, err := sessionAuth.IssueToken(uuid.New(), "Ada", "ada@example.com")
	assert.NoError(t, err)

	_, err = sessionAuth.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSessionAuth_WrongSecret(t *testing.T) {
	issuer := NewSessionAuth("secret-one", time.Hour)
	verifier := NewSessionAuth("secret-two", time.Hour)

	token, err := issuer.IssueToken(uuid.New(), "Ada", "ada@example.com")
	assert.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSessionAuth_GarbageToken(t *testing.T) {
	sessionAuth := NewSessionAuth("test-secret", time.Hour)

	_, err := sessionAuth.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
