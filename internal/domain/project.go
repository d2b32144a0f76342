package domain

import (
	"context"
	"time"
)

type Project struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	OwnerID     uint64    `gorm:"not null;index" json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Tasks []Task `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Project) TableName() string { return "projects" }

type ProjectFilter struct {
	OwnerID uint64 // 0 = 不过滤
}

type ProjectRepository interface {
	Create(ctx context.Context, p *Project) error
	FindByID(ctx context.Context, id uint64) (*Project, error)
	List(ctx context.Context, f ProjectFilter, p Page) ([]Project, int64, error)
	Update(ctx context.Context, p *Project) error
	// Delete 级联删除任务；不存在时返回 false
	Delete(ctx context.Context, id uint64) (bool, error)
}
