package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 签发-验证往返
func TestSessionTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	token, err := manager.GenerateSessionToken("sess-abc")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-abc", claims.SessionID)
	assert.Equal(t, "sess-abc", claims.Subject)
	assert.Equal(t, "byte-world-ai", claims.Issuer)
}

// 过期令牌被拒绝
func TestExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute)

	token, err := manager.GenerateSessionToken("sess-abc")
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

// 密钥不匹配时签名校验失败
func TestWrongSecret(t *testing.T) {
	issuer := NewJWTManager("secret-a", time.Hour)
	verifier := NewJWTManager("secret-b", time.Hour)

	token, err := issuer.GenerateSessionToken("sess-abc")
	require.NoError(t, err)

	claims, err := verifier.ValidateToken(token)
	assert.Nil(t, claims)
	assert.Error(t, err)
}

// 缺少会话ID的令牌无效
func TestTokenWithoutSessionID(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	token, err := manager.GenerateSessionToken("")
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// 非法字符串
func TestGarbageToken(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	claims, err := manager.ValidateToken("not.a.token")
	assert.Nil(t, claims)
	assert.Error(t, err)

	claims, err = manager.ValidateToken("")
	assert.Nil(t, claims)
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	manager := NewJWTManager("test-secret", 72*time.Hour)
	assert.Equal(t, 72*time.Hour, manager.TokenExpiry())
}
