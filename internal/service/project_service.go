package service

import (
	"context"

	"go.uber.org/zap"

	"project-management-api/internal/domain"
)

type CreateProjectInput struct {
	Name        string  `json:"name" validate:"required,notblank,max=200"`
	Description *string `json:"description"`
	OwnerID     *uint64 `json:"owner_id" validate:"omitempty,gt=0"` // 为空时默认当前管理者
}

type UpdateProjectInput struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=200"`
	Description *string `json:"description"`
	OwnerID     *uint64 `json:"owner_id" validate:"omitempty,gt=0"`
}

type ListProjectsInput struct {
	OwnerID      *uint64 `form:"owner_id" json:"owner_id" validate:"omitempty,gt=0"`
	IncludeTasks bool    `form:"-" json:"-"`
	Paging
}

type ProjectView struct {
	domain.Project
	Tasks []domain.Task // include_tasks=true 时非 nil
}

type ProjectService struct {
	projects domain.ProjectRepository
	users    domain.UserRepository
	tasks    domain.TaskRepository
	log      *zap.Logger
}

func NewProjectService(projects domain.ProjectRepository, users domain.UserRepository, tasks domain.TaskRepository, l *zap.Logger) *ProjectService {
	if l == nil {
		l = zap.NewNop()
	}
	return &ProjectService{projects: projects, users: users, tasks: tasks, log: l}
}

func (s *ProjectService) Create(ctx context.Context, actor *domain.User, in CreateProjectInput) (*domain.Project, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	ownerID := actor.ID
	if in.OwnerID != nil {
		ownerID = *in.OwnerID
		if err := s.ensureUser(ctx, ownerID); err != nil {
			return nil, err
		}
	}
	p := &domain.Project{
		Name:        trimmed(in.Name),
		Description: optionalText(in.Description),
		OwnerID:     ownerID,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, storeErr(ctx, "create project", err)
	}
	s.log.Info("project created", zap.Uint64("project_id", p.ID), zap.Uint64("owner_id", ownerID))
	return p, nil
}

func (s *ProjectService) List(ctx context.Context, in ListProjectsInput) (*Page[ProjectView], error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	page, err := in.normalize()
	if err != nil {
		return nil, err
	}
	var f domain.ProjectFilter
	if in.OwnerID != nil {
		f.OwnerID = *in.OwnerID
	}
	projects, total, err := s.projects.List(ctx, f, page)
	if err != nil {
		return nil, storeErr(ctx, "list projects", err)
	}

	views := make([]ProjectView, len(projects))
	for i := range projects {
		views[i].Project = projects[i]
	}
	if in.IncludeTasks && len(projects) > 0 {
		ids := make([]uint64, len(projects))
		for i, p := range projects {
			ids[i] = p.ID
		}
		byProject, err := s.tasks.ListForProjects(ctx, ids, IncludeLimit)
		if err != nil {
			return nil, storeErr(ctx, "list project tasks", err)
		}
		for i := range views {
			views[i].Tasks = nonNil(byProject[views[i].ID])
		}
	}
	return &Page[ProjectView]{Items: views, Total: total, Limit: page.Limit, Offset: page.Offset}, nil
}

func (s *ProjectService) Get(ctx context.Context, id uint64, includeTasks bool) (*ProjectView, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &ProjectView{Project: *p}
	if includeTasks {
		tasks, _, err := s.tasks.List(ctx, domain.TaskFilter{ProjectID: id}, domain.Page{Limit: IncludeLimit})
		if err != nil {
			return nil, storeErr(ctx, "list project tasks", err)
		}
		view.Tasks = nonNil(tasks)
	}
	return view, nil
}

func (s *ProjectService) Update(ctx context.Context, id uint64, in UpdateProjectInput) (*domain.Project, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		p.Name = trimmed(*in.Name)
	}
	if in.Description != nil {
		p.Description = optionalText(in.Description)
	}
	if in.OwnerID != nil && *in.OwnerID != p.OwnerID {
		if err := s.ensureUser(ctx, *in.OwnerID); err != nil {
			return nil, err
		}
		p.OwnerID = *in.OwnerID
	}
	if err := s.projects.Update(ctx, p); err != nil {
		return nil, storeErr(ctx, "update project", err)
	}
	return p, nil
}

func (s *ProjectService) Delete(ctx context.Context, id uint64) error {
	ok, err := s.projects.Delete(ctx, id)
	if err != nil {
		return storeErr(ctx, "delete project", err)
	}
	if !ok {
		return ErrProjectNotFound
	}
	s.log.Info("project deleted", zap.Uint64("project_id", id))
	return nil
}

func (s *ProjectService) find(ctx context.Context, id uint64) (*domain.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "find project", err)
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}
	return p, nil
}

func (s *ProjectService) ensureUser(ctx context.Context, id uint64) error {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return storeErr(ctx, "find user", err)
	}
	if u == nil {
		return ErrUserNotFound
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
