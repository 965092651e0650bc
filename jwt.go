package mcp

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWT validation error kinds, matching the categories a caller needs to
// distinguish to answer with the right 401 body.
var (
	ErrMissingBearer = errors.New("mcp: missing bearer token")
	ErrBadSignature  = errors.New("mcp: bad token signature")
	ErrExpired       = errors.New("mcp: token expired")
	ErrNotYetValid   = errors.New("mcp: token not yet valid")
	ErrMalformed     = errors.New("mcp: malformed token")
	ErrKeyError      = errors.New("mcp: key error")
)

const defaultLeeway = 60 * time.Second

// JWTValidator checks bearer tokens against a single configured algorithm
// and key, either HS256 with a shared secret or RS256 with a public key.
type JWTValidator struct {
	keyFunc     jwt.Keyfunc
	method      string
	tenantClaim string
	issuer      string
	audience    string
}

// JWTOption configures a JWTValidator at construction time.
type JWTOption func(*JWTValidator)

// WithTenantClaim overrides the claim name TenantID reads. The default is
// "tid".
func WithTenantClaim(name string) JWTOption {
	return func(v *JWTValidator) { v.tenantClaim = name }
}

// WithIssuer requires the token's "iss" claim to equal iss.
func WithIssuer(iss string) JWTOption {
	return func(v *JWTValidator) { v.issuer = iss }
}

// WithAudience requires the token's "aud" claim to contain aud.
func WithAudience(aud string) JWTOption {
	return func(v *JWTValidator) { v.audience = aud }
}

// NewHS256Validator builds a validator for HMAC-SHA256-signed tokens.
func NewHS256Validator(secret []byte, opts ...JWTOption) *JWTValidator {
	v := &JWTValidator{
		method:      "HS256",
		tenantClaim: "tid",
		keyFunc: func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrBadSignature
			}
			return secret, nil
		},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// NewRS256Validator builds a validator for RSA-SHA256-signed tokens from a
// PEM-encoded public key. It fails immediately on a malformed key rather
// than deferring the error to the first ValidateHeader call.
func NewRS256Validator(publicKeyPEM []byte, opts ...JWTOption) (*JWTValidator, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, errors.Join(ErrKeyError, err)
	}
	v := &JWTValidator{
		method:      "RS256",
		tenantClaim: "tid",
		keyFunc: func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, ErrBadSignature
			}
			return key, nil
		},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Claims is the decoded, validated payload of a bearer token.
type Claims struct {
	raw jwt.MapClaims
	v   *JWTValidator
}

// UserID returns the "sub" claim.
func (c Claims) UserID() string {
	if s, ok := c.raw["sub"].(string); ok {
		return s
	}
	return ""
}

// TenantID returns the configured tenant claim (default "tid"), falling
// back to "sub" when the tenant claim is absent.
func (c Claims) TenantID() string {
	claim := "tid"
	if c.v != nil && c.v.tenantClaim != "" {
		claim = c.v.tenantClaim
	}
	if s, ok := c.raw[claim].(string); ok && s != "" {
		return s
	}
	return c.UserID()
}

// HasScope reports whether the space-separated "scope" claim contains
// scope.
func (c Claims) HasScope(scope string) bool {
	s, ok := c.raw["scope"].(string)
	if !ok {
		return false
	}
	for _, part := range strings.Fields(s) {
		if part == scope {
			return true
		}
	}
	return false
}

// Raw returns the decoded claim set for access to custom fields.
func (c Claims) Raw() map[string]interface{} { return c.raw }

// ValidateHeader validates the Authorization header value ("Bearer <jwt>")
// and returns the decoded Claims.
func (v *JWTValidator) ValidateHeader(headerValue string) (Claims, error) {
	if headerValue == "" {
		return Claims{}, ErrMissingBearer
	}
	fields := strings.Fields(headerValue)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return Claims{}, ErrMissingBearer
	}
	tokenStr := fields[1]

	parserOpts := []jwt.ParserOption{jwt.WithLeeway(defaultLeeway)}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.audience))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, v.keyFunc, parserOpts...)
	if err != nil {
		return Claims{}, classifyJWTError(err)
	}
	return Claims{raw: claims, v: v}, nil
}

func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrBadSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, ErrBadSignature):
		return ErrBadSignature
	default:
		return ErrMalformed
	}
}
