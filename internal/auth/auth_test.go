package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	tok, err := Sign(Claims{ID: "u1", Name: "Uma"}, "secret")
	require.NoError(t, err)

	claims, err := Parse(tok, "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.ID)
	assert.Equal(t, "Uma", claims.Name)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := Sign(Claims{ID: "u1"}, "secret")
	require.NoError(t, err)

	_, err = Parse(tok, "other")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("not-a-token", "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	tok, err := Sign(Claims{
		ID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}, "secret")
	require.NoError(t, err)

	_, err = Parse(tok, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
