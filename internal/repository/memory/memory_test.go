package memory

import (
	"context"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/repository"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStoreDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	stores := NewStores(NewDB())

	require.NoError(t, stores.Users.Create(ctx, &model.User{Name: "A", Email: "a@example.com", Role: model.Student}))
	err := stores.Users.Create(ctx, &model.User{Name: "B", Email: "a@example.com", Role: model.Student})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = stores.Users.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	stores := NewStores(NewDB())

	user := &model.User{Name: "A", Email: "a@example.com", Role: model.Student}
	require.NoError(t, stores.Users.Create(ctx, user))

	found, err := stores.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	found.Name = "changed"

	again, err := stores.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Name)
}

func TestSetClass(t *testing.T) {
	ctx := context.Background()
	stores := NewStores(NewDB())

	user := &model.User{Name: "A", Email: "a@example.com", Role: model.Student}
	require.NoError(t, stores.Users.Create(ctx, user))

	classID := "class-1"
	require.NoError(t, stores.Users.SetClass(ctx, user.ID, &classID))
	require.NoError(t, stores.Users.SetClass(ctx, user.ID, &classID))

	found, err := stores.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, found.InClass("class-1"))

	assert.ErrorIs(t, stores.Users.SetClass(ctx, "missing", &classID), repository.ErrNotFound)
}

func TestFindActiveByGradeLevelTieBreak(t *testing.T) {
	ctx := context.Background()
	stores := NewStores(NewDB())

	require.NoError(t, stores.Classes.Create(ctx, &model.Class{ClassName: "Grade 2 B", GradeLevel: 2, IsActive: true}))
	require.NoError(t, stores.Classes.Create(ctx, &model.Class{ClassName: "Grade 2 A", GradeLevel: 2, IsActive: true}))
	require.NoError(t, stores.Classes.Create(ctx, &model.Class{ClassName: "Grade 2 0", GradeLevel: 2, IsActive: false}))

	class, err := stores.Classes.FindActiveByGradeLevel(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Grade 2 A", class.ClassName)

	_, err = stores.Classes.FindActiveByGradeLevel(ctx, 3)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = stores.Classes.Create(ctx, &model.Class{ClassName: "Grade 2 A", GradeLevel: 2})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestProgressUpsertKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	stores := NewStores(NewDB())
	now := time.Now()

	first := &model.LessonProgress{StudentID: "s1", LessonID: "l1", Status: model.InProgress, ProgressPercentage: 30, LastAccessed: now}
	require.NoError(t, stores.Progress.Upsert(ctx, first))

	second := &model.LessonProgress{StudentID: "s1", LessonID: "l1"}
	second.MarkCompleted(now)
	require.NoError(t, stores.Progress.Upsert(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	found, err := stores.Progress.Find(ctx, "s1", "l1")
	require.NoError(t, err)
	assert.Equal(t, model.Completed, found.Status)

	count, err := stores.Progress.CountCompleted(ctx, "s1", []string{"l1", "l2"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	archived, err := stores.Progress.ArchiveByStudent(ctx, "s1", now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, archived)

	count, err = stores.Progress.CountAllCompleted(ctx, "s1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestAttendanceUpsertSameDay(t *testing.T) {
	ctx := context.Background()
	stores := NewStores(NewDB())
	morning := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, stores.Attendance.Upsert(ctx, &model.Attendance{StudentID: "s1", Date: morning, Status: model.Absent}))
	require.NoError(t, stores.Attendance.Upsert(ctx, &model.Attendance{StudentID: "s1", Date: morning.Add(4 * time.Hour), Status: model.Present}))
	require.NoError(t, stores.Attendance.Upsert(ctx, &model.Attendance{StudentID: "s1", Date: morning.AddDate(0, 0, 1), Status: model.Late}))

	records, err := stores.Attendance.FindByStudent(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.Late, records[0].Status)
	assert.Equal(t, model.Present, records[1].Status)
}

func TestStatsCache(t *testing.T) {
	ctx := context.Background()
	cache := NewStatsCache()

	var dest map[string]int
	hit, err := cache.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "k", map[string]int{"students": 3}))
	hit, err = cache.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, dest["students"])

	require.NoError(t, cache.Invalidate(ctx, "k"))
	hit, _ = cache.Get(ctx, "k", &dest)
	assert.False(t, hit)
}
