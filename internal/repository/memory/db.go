// Package memory 提供全部存储接口的内存实现，用于测试和本地演示
package memory

import (
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/repository"
	"sort"
	"sync"
	"time"
)

type table[T any] struct {
	rows  map[string]*T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

func (t *table[T]) put(id string, row T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = &row
}

func (t *table[T]) get(id string) (T, bool) {
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return *row, true
}

// filter 按插入顺序返回满足条件的副本
func (t *table[T]) filter(keep func(*T) bool) []T {
	rows := make([]T, 0)
	for _, id := range t.order {
		if row := t.rows[id]; keep(row) {
			rows = append(rows, *row)
		}
	}
	return rows
}

// DB 所有表共用一把锁
type DB struct {
	mu            sync.RWMutex
	now           func() time.Time
	users         *table[model.User]
	classes       *table[model.Class]
	subjects      *table[model.Subject]
	lessons       *table[model.Lesson]
	progress      *table[model.LessonProgress]
	quizzes       *table[model.Quiz]
	attempts      *table[model.QuizAttempt]
	attendance    *table[model.Attendance]
	announcements *table[model.Announcement]
	support       *table[model.SupportRequest]
}

func NewDB() *DB {
	return &DB{
		now:           time.Now,
		users:         newTable[model.User](),
		classes:       newTable[model.Class](),
		subjects:      newTable[model.Subject](),
		lessons:       newTable[model.Lesson](),
		progress:      newTable[model.LessonProgress](),
		quizzes:       newTable[model.Quiz](),
		attempts:      newTable[model.QuizAttempt](),
		attendance:    newTable[model.Attendance](),
		announcements: newTable[model.Announcement](),
		support:       newTable[model.SupportRequest](),
	}
}

// NewStores 返回基于同一个内存 DB 的全部存储
func NewStores(db *DB) *repository.Stores {
	return &repository.Stores{
		Users:         &userStore{db},
		Classes:       &classStore{db},
		Subjects:      &subjectStore{db},
		Lessons:       &lessonStore{db},
		Progress:      &progressStore{db},
		Quizzes:       &quizStore{db},
		Attempts:      &attemptStore{db},
		Attendance:    &attendanceStore{db},
		Announcements: &announcementStore{db},
		Support:       &supportStore{db},
	}
}

// stamp 设置创建/更新时间，调用方需持有写锁
func (db *DB) stamp(created, updated *time.Time) {
	now := db.now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

// newestFirst 按创建时间倒序，时间相同时后插入的在前
func newestFirst[T any](rows []T, createdAt func(*T) time.Time) []T {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return createdAt(&rows[i]).After(createdAt(&rows[j]))
	})
	return rows
}

func limit[T any](rows []T, n int) []T {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// sortBy 按字符串键升序稳定排序
func sortBy[T any](rows []T, key func(*T) string) {
	sort.SliceStable(rows, func(i, j int) bool {
		return key(&rows[i]) < key(&rows[j])
	})
}
