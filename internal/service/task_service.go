package service

import (
	"context"

	"go.uber.org/zap"

	"project-management-api/internal/domain"
)

type CreateTaskInput struct {
	Title       string            `json:"title" validate:"required,notblank,max=200"`
	Description *string           `json:"description"`
	Status      domain.TaskStatus `json:"status" validate:"omitempty,taskstatus"`
	ProjectID   uint64            `json:"project_id" validate:"required,gt=0"`
}

type UpdateTaskInput struct {
	Title       *string            `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string            `json:"description"`
	Status      *domain.TaskStatus `json:"status" validate:"omitempty,taskstatus"`
}

type ListTasksInput struct {
	ProjectID *uint64           `form:"project_id" json:"project_id" validate:"omitempty,gt=0"`
	Status    domain.TaskStatus `form:"status" json:"status" validate:"omitempty,taskstatus"`
	Paging
}

type TaskService struct {
	tasks    domain.TaskRepository
	projects domain.ProjectRepository
	log      *zap.Logger
}

func NewTaskService(tasks domain.TaskRepository, projects domain.ProjectRepository, l *zap.Logger) *TaskService {
	if l == nil {
		l = zap.NewNop()
	}
	return &TaskService{tasks: tasks, projects: projects, log: l}
}

func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (*domain.Task, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := s.ensureProject(ctx, in.ProjectID); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = domain.StatusPending
	}
	t := &domain.Task{
		Title:       trimmed(in.Title),
		Description: optionalText(in.Description),
		Status:      status,
		ProjectID:   in.ProjectID,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, storeErr(ctx, "create task", err)
	}
	s.log.Debug("task created", zap.Uint64("task_id", t.ID), zap.Uint64("project_id", t.ProjectID))
	return t, nil
}

func (s *TaskService) List(ctx context.Context, in ListTasksInput) (*Page[domain.Task], error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	page, err := in.normalize()
	if err != nil {
		return nil, err
	}
	f := domain.TaskFilter{Status: in.Status}
	if in.ProjectID != nil {
		f.ProjectID = *in.ProjectID
	}
	tasks, total, err := s.tasks.List(ctx, f, page)
	if err != nil {
		return nil, storeErr(ctx, "list tasks", err)
	}
	return &Page[domain.Task]{Items: tasks, Total: total, Limit: page.Limit, Offset: page.Offset}, nil
}

// ListByProject 与 List 相同，但项目不存在时返回 404
func (s *TaskService) ListByProject(ctx context.Context, projectID uint64, in ListTasksInput) (*Page[domain.Task], error) {
	if err := s.ensureProject(ctx, projectID); err != nil {
		return nil, err
	}
	in.ProjectID = &projectID
	return s.List(ctx, in)
}

func (s *TaskService) Get(ctx context.Context, id uint64) (*domain.Task, error) {
	return s.find(ctx, id)
}

func (s *TaskService) Update(ctx context.Context, id uint64, in UpdateTaskInput) (*domain.Task, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		t.Title = trimmed(*in.Title)
	}
	if in.Description != nil {
		t.Description = optionalText(in.Description)
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, storeErr(ctx, "update task", err)
	}
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, id uint64) error {
	ok, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return storeErr(ctx, "delete task", err)
	}
	if !ok {
		return ErrTaskNotFound
	}
	return nil
}

func (s *TaskService) find(ctx context.Context, id uint64) (*domain.Task, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "find task", err)
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}
	return t, nil
}

func (s *TaskService) ensureProject(ctx context.Context, id uint64) error {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return storeErr(ctx, "find project", err)
	}
	if p == nil {
		return ErrProjectNotFound
	}
	return nil
}
