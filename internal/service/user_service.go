package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"project-management-api/internal/core/cache"
	"project-management-api/internal/domain"
)

type CreateUserInput struct {
	Name     string      `json:"name" validate:"required,notblank,max=100"`
	Email    string      `json:"email" validate:"required,emailaddr,max=120"`
	Password string      `json:"password" validate:"required,min=6,max=72"`
	Role     domain.Role `json:"role" validate:"omitempty,role"`
}

type UpdateUserInput struct {
	Name     *string      `json:"name" validate:"omitempty,notblank,max=100"`
	Email    *string      `json:"email" validate:"omitempty,emailaddr,max=120"`
	Password *string      `json:"password" validate:"omitempty,min=6,max=72"`
	Role     *domain.Role `json:"role" validate:"omitempty,role"`
}

type ListUsersInput struct {
	Role domain.Role `form:"role" json:"role" validate:"omitempty,role"`
	Paging
}

type UserView struct {
	domain.User
	Projects []domain.Project // include_projects=true 时非 nil
}

type UserService struct {
	users    domain.UserRepository
	projects domain.ProjectRepository
	cache    *cache.Cache
	log      *zap.Logger
}

func NewUserService(users domain.UserRepository, projects domain.ProjectRepository, c *cache.Cache, l *zap.Logger) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserService{users: users, projects: projects, cache: c, log: l}
}

func principalKey(id uint64) string { return fmt.Sprintf("principal:user:%d", id) }

var errPrincipalMissing = errors.New("principal missing")

// Principal 鉴权用的用户查询（带缓存），不存在返回 nil, nil
func (s *UserService) Principal(ctx context.Context, id uint64) (*domain.User, error) {
	u, err := cache.GetOrLoadJSON(s.cache, ctx, principalKey(id), 0, func(ctx context.Context) (*domain.User, error) {
		u, err := s.users.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, errPrincipalMissing
		}
		return u, nil
	})
	switch {
	case errors.Is(err, errPrincipalMissing):
		return nil, nil
	case err != nil:
		return nil, storeErr(ctx, "load principal", err)
	}
	return u, nil
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = domain.RoleEmployee
	}
	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, storeErr(ctx, "find user by email", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Name:         trimmed(in.Name),
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
	}
	// 并发注册兜底：唯一索引冲突同样映射为 409
	if err := s.users.Create(ctx, u); err != nil {
		return nil, storeErr(ctx, "create user", err)
	}
	s.log.Info("user created", zap.Uint64("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

func (s *UserService) List(ctx context.Context, in ListUsersInput) (*Page[domain.User], error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	page, err := in.normalize()
	if err != nil {
		return nil, err
	}
	users, total, err := s.users.List(ctx, domain.UserFilter{Role: in.Role}, page)
	if err != nil {
		return nil, storeErr(ctx, "list users", err)
	}
	return &Page[domain.User]{Items: users, Total: total, Limit: page.Limit, Offset: page.Offset}, nil
}

func (s *UserService) Get(ctx context.Context, id uint64, includeProjects bool) (*UserView, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &UserView{User: *u}
	if includeProjects {
		projects, _, err := s.projects.List(ctx, domain.ProjectFilter{OwnerID: id}, domain.Page{Limit: IncludeLimit})
		if err != nil {
			return nil, storeErr(ctx, "list user projects", err)
		}
		view.Projects = nonNil(projects)
	}
	return view, nil
}

func (s *UserService) Update(ctx context.Context, id uint64, in UpdateUserInput) (*domain.User, error) {
	if in.Email != nil {
		e := normalizeEmail(*in.Email)
		in.Email = &e
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = trimmed(*in.Name)
	}
	if in.Email != nil && *in.Email != u.Email {
		other, err := s.users.FindByEmail(ctx, *in.Email)
		if err != nil {
			return nil, storeErr(ctx, "find user by email", err)
		}
		if other != nil {
			return nil, ErrEmailTaken
		}
		u.Email = *in.Email
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, storeErr(ctx, "update user", err)
	}
	s.cache.Delete(ctx, principalKey(id))
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id uint64) error {
	start := time.Now()
	ok, err := s.users.Delete(ctx, id)
	if err != nil {
		return storeErr(ctx, "delete user", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	s.cache.Delete(ctx, principalKey(id))
	s.log.Info("user deleted", zap.Uint64("user_id", id), zap.Duration("took", time.Since(start)))
	return nil
}

func (s *UserService) find(ctx context.Context, id uint64) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "find user", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
