package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_Success(t *testing.T) {
	secret := []byte("super-secret")

	tok, err := GenerateToken("user-123", secret, time.Hour)
	require.NoError(t, err)

	got, err := GetUserIDFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", got)
}

func TestGenerateToken_PayloadShape(t *testing.T) {
	tok, err := GenerateToken("abc", []byte("k"), time.Hour)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, map[string]any{"id": "abc"}, payload["user"])
	assert.Contains(t, payload, "iat")
	assert.Contains(t, payload, "exp")
}

func TestGenerateToken_NoExpiryWhenValidityZero(t *testing.T) {
	secret := []byte("k")
	tok, err := GenerateToken("u", secret, 0)
	require.NoError(t, err)

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) { return secret, nil })
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestGetUserIDFromToken_Expired(t *testing.T) {
	secret := []byte("secret")

	orig := now
	now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := GenerateToken("u1", secret, time.Hour)
	now = orig
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, secret)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestGetUserIDFromToken_WrongSecret(t *testing.T) {
	tok, err := GenerateToken("u2", []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, []byte("wrong-secret"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetUserIDFromToken_Malformed(t *testing.T) {
	_, err := GetUserIDFromToken("not.a.jwt", []byte("k"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetUserIDFromToken_RejectsOtherAlgorithms(t *testing.T) {
	secret := []byte("k")
	claims := Claims{User: UserClaim{ID: "u"}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, secret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = GetUserIDFromToken(none, secret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetUserIDFromToken_MissingUserID(t *testing.T) {
	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString(secret)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, secret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
