package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"project-management-api/internal/core/auth"
	"project-management-api/internal/core/errs"
	"project-management-api/internal/domain"
	"project-management-api/pkg/utils"
)

// TokenCodec 由 *auth.JWTer 实现
type TokenCodec interface {
	IssueAccess(userID uint64, email, role string) (string, error)
	IssueRefresh(userID uint64) (string, error)
	VerifyType(token string, want auth.TokenType) (*auth.Claims, error)
}

type RegisterInput = CreateUserInput

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshInput struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

type AuthService struct {
	users  *UserService
	repo   domain.UserRepository
	tokens TokenCodec
	log    *zap.Logger
}

func NewAuthService(users *UserService, repo domain.UserRepository, tokens TokenCodec, l *zap.Logger) *AuthService {
	if l == nil {
		l = zap.NewNop()
	}
	return &AuthService{users: users, repo: repo, tokens: tokens, log: l}
}

// Register 未指定角色时为 employee；重复邮箱返回 409
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	u, err := s.users.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.issuePair(u)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, storeErr(ctx, "find user by email", err)
	}
	if u == nil || !utils.CheckPassword(in.Password, u.PasswordHash) {
		s.log.Debug("login rejected", zap.String("email", in.Email))
		return nil, auth.ErrInvalidCredentials
	}
	return s.issuePair(u)
}

// Refresh 用 refresh token 换新的 access token
func (s *AuthService) Refresh(ctx context.Context, in RefreshInput) (string, error) {
	in.RefreshToken = strings.TrimSpace(in.RefreshToken)
	if err := validateStruct(in); err != nil {
		return "", err
	}
	claims, err := s.tokens.VerifyType(in.RefreshToken, auth.TokenRefresh)
	if err != nil {
		return "", err
	}
	u, err := s.users.Principal(ctx, claims.UserID)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", auth.ErrUserNotFound
	}
	tok, err := s.tokens.IssueAccess(u.ID, u.Email, string(u.Role))
	if err != nil {
		return "", errs.Internal("issue access token", err)
	}
	return tok, nil
}

func (s *AuthService) issuePair(u *domain.User) (*AuthResult, error) {
	access, err := s.tokens.IssueAccess(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, errs.Internal("issue access token", err)
	}
	refresh, err := s.tokens.IssueRefresh(u.ID)
	if err != nil {
		return nil, errs.Internal("issue refresh token", err)
	}
	return &AuthResult{User: u, AccessToken: access, RefreshToken: refresh}, nil
}
