package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"project-management-api/internal/domain"
)

type TaskRepo struct{ db *gorm.DB }

func NewTaskRepo(db *gorm.DB) *TaskRepo { return &TaskRepo{db: db} }

var _ domain.TaskRepository = (*TaskRepo)(nil)

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TaskRepo) FindByID(ctx context.Context, id uint64) (*domain.Task, error) {
	var t domain.Task
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepo) List(ctx context.Context, f domain.TaskFilter, p domain.Page) ([]domain.Task, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Task{})
	if f.ProjectID != 0 {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	tasks := make([]domain.Task, 0, p.Limit)
	if err := q.Scopes(creationOrder, paginate(p)).Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// ListForProjects 每个项目单独 LIMIT，避免任务多的项目挤占其它项目；
// 一条窗口函数查询完成（sqlite 3.25+ / mysql 8 / postgres）
func (r *TaskRepo) ListForProjects(ctx context.Context, projectIDs []uint64, perProject int) (map[uint64][]domain.Task, error) {
	out := make(map[uint64][]domain.Task, len(projectIDs))
	if len(projectIDs) == 0 {
		return out, nil
	}
	db := r.db.WithContext(ctx)
	ranked := db.Model(&domain.Task{}).
		Select("tasks.*, ROW_NUMBER() OVER (PARTITION BY project_id ORDER BY created_at ASC, id ASC) AS rn").
		Where("project_id IN ?", projectIDs)
	var rows []domain.Task
	err := db.Table("(?) AS ranked", ranked).
		Where("rn <= ?", perProject).
		Order("project_id ASC").Order("rn ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, id := range projectIDs {
		out[id] = make([]domain.Task, 0)
	}
	for _, t := range rows {
		out[t.ProjectID] = append(out[t.ProjectID], t)
	}
	return out, nil
}

func (r *TaskRepo) Update(ctx context.Context, t *domain.Task) error {
	db := r.db.WithContext(ctx)
	res := db.Model(t).Select("*").Omit("id", "created_at").Updates(t)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return db.First(t, "id = ?", t.ID).Error
}

func (r *TaskRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&domain.Task{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
