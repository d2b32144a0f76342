package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"project-management-api/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepo) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context, f domain.UserFilter, p domain.Page) ([]domain.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	q = q.Session(&gorm.Session{}) // Count 与 Find 复用同一条件
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	users := make([]domain.User, 0, p.Limit)
	if err := q.Scopes(creationOrder, paginate(p)).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Update 全字段覆盖，随后回读以拿到库里的 updated_at
func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	db := r.db.WithContext(ctx)
	res := db.Model(u).Select("*").Omit("id", "created_at").Updates(u)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return db.First(u, "id = ?", u.ID).Error
}

func (r *UserRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	return deleteTx(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		owned := tx.Model(&domain.Project{}).Select("id").Where("owner_id = ?", id)
		if err := tx.Where("project_id IN (?)", owned).Delete(&domain.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("owner_id = ?", id).Delete(&domain.Project{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.User{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNoRows
		}
		return nil
	})
}
