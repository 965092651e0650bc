package mcp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signHS256(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(secret)
	require.NoError(t, err)
	return s
}

func TestJWTValidatorAcceptsValidToken(t *testing.T) {
	secret := []byte("shh")
	v := NewHS256Validator(secret)

	tok := signHS256(t, secret, jwt.MapClaims{
		"sub": "user-1",
		"tid": "tenant-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	claims, err := v.ValidateHeader("Bearer " + tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "tenant-1", claims.TenantID())
}

func TestJWTValidatorTenantFallsBackToSubject(t *testing.T) {
	secret := []byte("shh")
	v := NewHS256Validator(secret)

	tok := signHS256(t, secret, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	claims, err := v.ValidateHeader("Bearer " + tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.TenantID())
}

func TestJWTValidatorMissingBearer(t *testing.T) {
	v := NewHS256Validator([]byte("shh"))
	_, err := v.ValidateHeader("")
	assert.ErrorIs(t, err, ErrMissingBearer)

	_, err = v.ValidateHeader("Basic abc")
	assert.ErrorIs(t, err, ErrMissingBearer)
}

func TestJWTValidatorExpiredToken(t *testing.T) {
	secret := []byte("shh")
	v := NewHS256Validator(secret)

	tok := signHS256(t, secret, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-2 * time.Minute).Unix(),
	})

	_, err := v.ValidateHeader("Bearer " + tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestJWTValidatorBadSignature(t *testing.T) {
	v := NewHS256Validator([]byte("shh"))
	tok := signHS256(t, []byte("wrong-secret"), jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := v.ValidateHeader("Bearer " + tok)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestJWTValidatorHasScope(t *testing.T) {
	secret := []byte("shh")
	v := NewHS256Validator(secret)
	tok := signHS256(t, secret, jwt.MapClaims{
		"sub":   "user-1",
		"scope": "tools:call resources:read",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	claims, err := v.ValidateHeader("Bearer " + tok)
	require.NoError(t, err)
	assert.True(t, claims.HasScope("tools:call"))
	assert.False(t, claims.HasScope("admin"))
}

func TestHTTPServerWithAuthRejectsMissingToken(t *testing.T) {
	s := NewServer[any](ServerConfig{Name: "t", Version: "1"})
	validator := NewHS256Validator([]byte("shh"))
	h := NewHTTPServer(s, WithAuth(validator, func(c Claims) (*any, error) {
		var uc any = c.UserID()
		return &uc, nil
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing bearer token"}`, rec.Body.String())
}

func TestHTTPServerWithAuthAcceptsValidToken(t *testing.T) {
	secret := []byte("shh")
	s := NewServer[any](ServerConfig{Name: "t", Version: "1"})
	validator := NewHS256Validator(secret)
	h := NewHTTPServer(s, WithAuth(validator, func(c Claims) (*any, error) {
		var uc any = c.UserID()
		return &uc, nil
	}))

	tok := signHS256(t, secret, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
