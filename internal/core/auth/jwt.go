package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"project-management-api/internal/core/errs"
)

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"

	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// 鉴权相关错误（全部 401，角色不足 403）
var (
	ErrMissingToken       = errs.Unauthorized("Missing authorization header")
	ErrInvalidSignature   = errs.Unauthorized("Invalid token signature")
	ErrExpired            = errs.Unauthorized("Token has expired")
	ErrMalformed          = errs.Unauthorized("Invalid token")
	ErrWrongTokenType     = errs.Unauthorized("Invalid token type")
	ErrUserNotFound       = errs.Unauthorized("User not found")
	ErrInvalidCredentials = errs.Unauthorized("Invalid email or password")
	ErrInsufficientRole   = errs.Forbidden("Manager access required")
)

// Claims refresh token 只带 user_id + type
type Claims struct {
	UserID uint64    `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	Role   string    `json:"role,omitempty"`
	Type   TokenType `json:"type"`
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time // 为空时用 time.Now
}

func (j *JWTer) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *JWTer) IssueAccess(userID uint64, email, role string) (string, error) {
	ttl := j.AccessTTL
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	return j.sign(Claims{UserID: userID, Email: email, Role: role, Type: TokenAccess}, ttl)
}

func (j *JWTer) IssueRefresh(userID uint64) (string, error) {
	ttl := j.RefreshTTL
	if ttl <= 0 {
		ttl = DefaultRefreshTTL
	}
	return j.sign(Claims{UserID: userID, Type: TokenRefresh}, ttl)
}

func (j *JWTer) sign(c Claims, ttl time.Duration) (string, error) {
	now := j.now()
	c.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    j.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(j.Secret)
}

// Verify 只校验签名 + 过期，不查吊销
func (j *JWTer) Verify(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	}
	if j.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.Issuer))
	}

	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (any, error) {
		return j.Secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, ErrMalformed
		}
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, ErrMalformed
	}
	return c, nil
}

// VerifyType 校验 + 限定 token 类型
func (j *JWTer) VerifyType(tokenStr string, want TokenType) (*Claims, error) {
	c, err := j.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	if c.Type != want {
		return nil, ErrWrongTokenType
	}
	return c, nil
}
