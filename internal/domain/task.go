package domain

import (
	"context"
	"time"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	Status      TaskStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	ProjectID   uint64     `gorm:"not null;index" json:"project_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

type TaskFilter struct {
	ProjectID uint64 // 0 = 不过滤
	Status    TaskStatus
}

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	FindByID(ctx context.Context, id uint64) (*Task, error)
	List(ctx context.Context, f TaskFilter, p Page) ([]Task, int64, error)
	// ListForProjects 每个项目最多 perProject 条，按项目分组
	ListForProjects(ctx context.Context, projectIDs []uint64, perProject int) (map[uint64][]Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id uint64) (bool, error)
}

// Models AutoMigrate 顺序（被引用的表在前）
func Models() []any { return []any{&User{}, &Project{}, &Task{}} }
