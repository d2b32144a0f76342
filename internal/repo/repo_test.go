package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"project-management-api/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(domain.Models()...))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedUser(t *testing.T, r *UserRepo, email string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Name: "u " + email, Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, r.Create(context.Background(), u))
	return u
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepo(db)
	seedUser(t, users, "dup@example.com", domain.RoleEmployee)

	err := users.Create(context.Background(), &domain.User{Name: "again", Email: "dup@example.com", PasswordHash: "x", Role: domain.RoleEmployee})
	require.ErrorIs(t, err, domain.ErrDuplicateKey)
}

func TestUserRepo_FindMissingReturnsNil(t *testing.T) {
	users := NewUserRepo(setupTestDB(t))

	u, err := users.FindByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = users.FindByEmail(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserRepo_ListFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(setupTestDB(t))
	a := seedUser(t, users, "a@example.com", domain.RoleManager)
	b := seedUser(t, users, "b@example.com", domain.RoleEmployee)
	c := seedUser(t, users, "c@example.com", domain.RoleEmployee)

	got, total, err := users.List(ctx, domain.UserFilter{}, domain.Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)

	got, total, err = users.List(ctx, domain.UserFilter{Role: domain.RoleEmployee}, domain.Page{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, got, 2)
	assert.Equal(t, []uint64{b.ID, c.ID}, []uint64{got[0].ID, got[1].ID})
	assert.NotEqual(t, a.ID, got[0].ID)
}

func TestUserRepo_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users, projects, tasks := NewUserRepo(db), NewProjectRepo(db), NewTaskRepo(db)

	owner := seedUser(t, users, "owner@example.com", domain.RoleManager)
	other := seedUser(t, users, "other@example.com", domain.RoleManager)

	const n, m = 3, 4
	for i := 0; i < n; i++ {
		p := &domain.Project{Name: fmt.Sprintf("P%d", i), OwnerID: owner.ID}
		require.NoError(t, projects.Create(ctx, p))
		for j := 0; j < m; j++ {
			require.NoError(t, tasks.Create(ctx, &domain.Task{Title: fmt.Sprintf("T%d-%d", i, j), Status: domain.StatusPending, ProjectID: p.ID}))
		}
	}
	keep := &domain.Project{Name: "keep", OwnerID: other.ID}
	require.NoError(t, projects.Create(ctx, keep))
	require.NoError(t, tasks.Create(ctx, &domain.Task{Title: "keep", Status: domain.StatusPending, ProjectID: keep.ID}))

	ok, err := users.Delete(ctx, owner.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	var projectCount, taskCount int64
	require.NoError(t, db.Model(&domain.Project{}).Where("owner_id = ?", owner.ID).Count(&projectCount).Error)
	require.NoError(t, db.Model(&domain.Task{}).Count(&taskCount).Error)
	assert.Zero(t, projectCount)
	assert.EqualValues(t, 1, taskCount)

	ok, err = users.Delete(ctx, owner.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProjectRepo_UpdateRefreshesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	owner := seedUser(t, NewUserRepo(db), "m@example.com", domain.RoleManager)
	projects := NewProjectRepo(db)

	p := &domain.Project{Name: "before", OwnerID: owner.ID}
	require.NoError(t, projects.Create(ctx, p))
	created := p.UpdatedAt

	time.Sleep(5 * time.Millisecond)
	p.Name = "after"
	require.NoError(t, projects.Update(ctx, p))
	assert.Equal(t, "after", p.Name)
	assert.True(t, p.UpdatedAt.After(created))

	ghost := &domain.Project{ID: 404, Name: "x", OwnerID: owner.ID}
	require.ErrorIs(t, projects.Update(ctx, ghost), gorm.ErrRecordNotFound)
}

func TestTaskRepo_ListForProjectsBounded(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	owner := seedUser(t, NewUserRepo(db), "m@example.com", domain.RoleManager)
	projects, tasks := NewProjectRepo(db), NewTaskRepo(db)

	p1 := &domain.Project{Name: "p1", OwnerID: owner.ID}
	p2 := &domain.Project{Name: "p2", OwnerID: owner.ID}
	require.NoError(t, projects.Create(ctx, p1))
	require.NoError(t, projects.Create(ctx, p2))
	for i := 0; i < 3; i++ {
		require.NoError(t, tasks.Create(ctx, &domain.Task{Title: fmt.Sprint(i), Status: domain.StatusPending, ProjectID: p1.ID}))
	}

	require.NoError(t, tasks.Create(ctx, &domain.Task{Title: "only", Status: domain.StatusPending, ProjectID: p2.ID}))
	p3 := &domain.Project{Name: "p3", OwnerID: owner.ID}
	require.NoError(t, projects.Create(ctx, p3))

	queries := 0
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:count_queries", func(*gorm.DB) { queries++ }))

	got, err := tasks.ListForProjects(ctx, []uint64{p1.ID, p2.ID, p3.ID}, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, queries)
	require.Len(t, got[p1.ID], 2)
	assert.Equal(t, "0", got[p1.ID][0].Title)
	assert.Equal(t, "1", got[p1.ID][1].Title)
	require.Len(t, got[p2.ID], 1)
	assert.Equal(t, "only", got[p2.ID][0].Title)
	assert.NotNil(t, got[p3.ID])
	assert.Empty(t, got[p3.ID])

	empty, err := tasks.ListForProjects(ctx, nil, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Equal(t, 1, queries)
}
