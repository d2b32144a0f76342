package domain

import (
	"context"
	"errors"
	"time"
)

type Role string

const (
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool { return r == RoleManager || r == RoleEmployee }

// ErrDuplicateKey 唯一索引冲突（目前只有 users.email）
var ErrDuplicateKey = errors.New("duplicate key")

type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:120;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         Role      `gorm:"size:16;not null;default:employee;index" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Projects []Project `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) IsManager() bool { return u.Role == RoleManager }

type UserFilter struct {
	Role Role
}

// Page limit/offset 已由 service 归一化
type Page struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, f UserFilter, p Page) ([]User, int64, error)
	Update(ctx context.Context, u *User) error
	// Delete 级联删除名下项目和任务；不存在时返回 false
	Delete(ctx context.Context, id uint64) (bool, error)
}
