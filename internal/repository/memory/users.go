package memory

import (
	"context"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/repository"
	"time"
)

type userStore struct {
	db *DB
}

func (s *userStore) Create(ctx context.Context, user *model.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.users.rows {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.EnsureID()
	s.db.stamp(&user.CreatedAt, &user.UpdatedAt)
	s.db.users.put(user.ID, *user)
	return nil
}

func (s *userStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	user, ok := s.db.users.get(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, id := range s.db.users.order {
		if user := s.db.users.rows[id]; user.Email == email {
			found := *user
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *userStore) Update(ctx context.Context, user *model.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users.get(user.ID); !ok {
		return repository.ErrNotFound
	}
	for id, existing := range s.db.users.rows {
		if id != user.ID && existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	s.db.stamp(&user.CreatedAt, &user.UpdatedAt)
	s.db.users.put(user.ID, *user)
	return nil
}

func (s *userStore) SetClass(ctx context.Context, userID string, classID *string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user, ok := s.db.users.rows[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if classID != nil {
		id := *classID
		classID = &id
	}
	user.ClassID = classID
	user.UpdatedAt = s.db.now()
	return nil
}

func (s *userStore) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if user, ok := s.db.users.rows[userID]; ok {
		user.LastLogin = &at
	}
	return nil
}

func (s *userStore) CountByRole(ctx context.Context, role model.UserRole) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	users := s.db.users.filter(func(u *model.User) bool { return u.Role == role })
	return int64(len(users)), nil
}

func (s *userStore) FindByClass(ctx context.Context, classID string, role model.UserRole) ([]model.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	users := s.db.users.filter(func(u *model.User) bool { return u.Role == role && u.InClass(classID) })
	sortBy(users, func(u *model.User) string { return u.Name })
	return users, nil
}

func (s *userStore) CountByClasses(ctx context.Context, classIDs []string, role model.UserRole) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	users := s.db.users.filter(func(u *model.User) bool {
		return u.Role == role && u.ClassID != nil && contains(classIDs, *u.ClassID)
	})
	return int64(len(users)), nil
}

func (s *userStore) Recent(ctx context.Context, n int) ([]model.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	users := s.db.users.filter(func(*model.User) bool { return true })
	return limit(newestFirst(users, func(u *model.User) time.Time { return u.CreatedAt }), n), nil
}

func (s *userStore) RecentLogins(ctx context.Context, n int) ([]model.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	users := s.db.users.filter(func(u *model.User) bool { return u.LastLogin != nil })
	return limit(newestFirst(users, func(u *model.User) time.Time { return *u.LastLogin }), n), nil
}
