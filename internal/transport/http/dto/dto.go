package dto

import (
	"time"

	"project-management-api/internal/domain"
	"project-management-api/internal/service"
)

// 对外时间统一 UTC，保留微秒
const tsLayout = "2006-01-02T15:04:05.000000Z07:00"

func ts(t time.Time) string { return t.UTC().Format(tsLayout) }

type User struct {
	ID        uint64     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
	Projects  *[]Project `json:"projects,omitempty"`
}

type Project struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	OwnerID     uint64  `json:"owner_id"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	Tasks       *[]Task `json:"tasks,omitempty"`
}

type Task struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	ProjectID   uint64  `json:"project_id"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func FromUser(u *domain.User) User {
	return User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: ts(u.CreatedAt),
		UpdatedAt: ts(u.UpdatedAt),
	}
}

// FromUserView Projects 为 nil 表示未请求，不输出字段
func FromUserView(v *service.UserView) User {
	out := FromUser(&v.User)
	if v.Projects != nil {
		ps := Projects(v.Projects)
		out.Projects = &ps
	}
	return out
}

func FromProject(p *domain.Project) Project {
	return Project{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		CreatedAt:   ts(p.CreatedAt),
		UpdatedAt:   ts(p.UpdatedAt),
	}
}

func FromProjectView(v *service.ProjectView) Project {
	out := FromProject(&v.Project)
	if v.Tasks != nil {
		tasks := Tasks(v.Tasks)
		out.Tasks = &tasks
	}
	return out
}

func FromTask(t *domain.Task) Task {
	return Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		ProjectID:   t.ProjectID,
		CreatedAt:   ts(t.CreatedAt),
		UpdatedAt:   ts(t.UpdatedAt),
	}
}

func Users(us []domain.User) []User {
	out := make([]User, 0, len(us))
	for i := range us {
		out = append(out, FromUser(&us[i]))
	}
	return out
}

func Projects(ps []domain.Project) []Project {
	out := make([]Project, 0, len(ps))
	for i := range ps {
		out = append(out, FromProject(&ps[i]))
	}
	return out
}

func ProjectViews(vs []service.ProjectView) []Project {
	out := make([]Project, 0, len(vs))
	for i := range vs {
		out = append(out, FromProjectView(&vs[i]))
	}
	return out
}

func Tasks(ts []domain.Task) []Task {
	out := make([]Task, 0, len(ts))
	for i := range ts {
		out = append(out, FromTask(&ts[i]))
	}
	return out
}
