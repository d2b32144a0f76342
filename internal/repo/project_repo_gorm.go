package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"project-management-api/internal/domain"
)

type ProjectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) *ProjectRepo { return &ProjectRepo{db: db} }

var _ domain.ProjectRepository = (*ProjectRepo)(nil)

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProjectRepo) FindByID(ctx context.Context, id uint64) (*domain.Project, error) {
	var p domain.Project
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepo) List(ctx context.Context, f domain.ProjectFilter, p domain.Page) ([]domain.Project, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Project{})
	if f.OwnerID != 0 {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	projects := make([]domain.Project, 0, p.Limit)
	if err := q.Scopes(creationOrder, paginate(p)).Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *ProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	db := r.db.WithContext(ctx)
	res := db.Model(p).Select("*").Omit("id", "created_at").Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return db.First(p, "id = ?", p.ID).Error
}

func (r *ProjectRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	return deleteTx(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&domain.Task{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Project{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNoRows
		}
		return nil
	})
}
