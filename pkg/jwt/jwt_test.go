package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bookstore/orderflow/pkg/errors"
)

func TestManager_GenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	pair, err := m.GenerateToken("u-1", "alice@example.com", "ADMIN")
	require.NoError(t, err)
	assert.EqualValues(t, 3600, pair.ExpiresIn)

	claims, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, "u-1", claims.Subject)

	assert.Equal(t, TokenTypeAccess, claims.TokenType)

	refreshClaims, err := m.ParseRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshTokenID, refreshClaims.ID)
	assert.NotEmpty(t, refreshClaims.ID)

	refreshed, err := m.IssueAccessToken(refreshClaims)
	require.NoError(t, err)
	claims, err = m.ParseAccessToken(refreshed)
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestManager_TokenTypesAreNotInterchangeable(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)
	pair, err := m.GenerateToken("u-1", "", "USER")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(pair.RefreshToken)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken), "Refresh Token不能用于API鉴权")

	_, err = m.ParseRefreshToken(pair.AccessToken)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken), "Access Token不能用于刷新")

	untyped := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:           "u-1",
		Role:             "USER",
		RegisteredClaims: m.registered("u-1", time.Now(), time.Hour),
	})
	s, err := untyped.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = m.ParseAccessToken(s)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken), "缺少typ声明的Token一律拒绝")
}

func TestManager_ParseRejects(t *testing.T) {
	m := NewManager("test-secret", time.Hour, time.Hour)

	t.Run("签名不匹配", func(t *testing.T) {
		other := NewManager("other-secret", time.Hour, time.Hour)
		pair, err := other.GenerateToken("u-1", "", "USER")
		require.NoError(t, err)

		_, err = m.ParseToken(pair.AccessToken)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
	})

	t.Run("已过期", func(t *testing.T) {
		expired := NewManager("test-secret", -time.Minute, time.Hour)
		pair, err := expired.GenerateToken("u-1", "", "USER")
		require.NoError(t, err)

		_, err = m.ParseToken(pair.AccessToken)
		assert.True(t, errors.Is(err, apperrors.ErrTokenExpired))
	})

	t.Run("签名算法为none", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u-1"})
		s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.ParseToken(s)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
	})

	t.Run("格式错误", func(t *testing.T) {
		_, err := m.ParseToken("not-a-token")
		assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
	})
}
