package service

import (
	"context"
	"net/http"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/repository"
	"rural_lms_backend/internal/util"
	"strings"
	"time"
)

type AnnouncementService struct {
	Announcements repository.AnnouncementStore
	Users         repository.UserStore
	Classes       repository.ClassStore
	Hub           *AnnouncementHub
	Clock         Clock
}

func NewAnnouncementService(stores *repository.Stores) *AnnouncementService {
	return &AnnouncementService{
		Announcements: stores.Announcements,
		Users:         stores.Users,
		Classes:       stores.Classes,
	}
}

type CreateAnnouncementInput struct {
	Title       string
	Message     string
	TargetRoles []string
	ClassID     string
	ExpiresAt   *time.Time
}

func normalizeTargets(targets []string) ([]string, error) {
	if len(targets) == 0 {
		return []string{model.TargetAll}, nil
	}
	seen := make(map[string]bool, len(targets))
	normalized := make([]string, 0, len(targets))
	for _, target := range targets {
		target = strings.ToLower(strings.TrimSpace(target))
		if target != model.TargetAll && !model.UserRole(target).Valid() {
			return nil, util.NewError(util.ErrInvalidInput, "target_roles may only contain student, teacher, admin or all")
		}
		if !seen[target] {
			seen[target] = true
			normalized = append(normalized, target)
		}
	}
	return normalized, nil
}

func (s *AnnouncementService) Create(ctx context.Context, authorID string, in CreateAnnouncementInput) (*model.Announcement, error) {
	title := strings.TrimSpace(in.Title)
	message := strings.TrimSpace(in.Message)
	if title == "" || message == "" {
		return nil, util.NewError(util.ErrInvalidInput, "title and message are required")
	}
	targets, err := normalizeTargets(in.TargetRoles)
	if err != nil {
		return nil, err
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(s.Clock.now()) {
		return nil, util.NewError(util.ErrInvalidInput, "expires_at must be in the future")
	}

	announcement := &model.Announcement{
		Title:       title,
		Message:     message,
		AuthorID:    authorID,
		TargetRoles: targets,
		IsActive:    true,
		ExpiresAt:   in.ExpiresAt,
	}
	if in.ClassID != "" {
		class, err := s.Classes.FindByID(ctx, in.ClassID)
		if err != nil {
			return nil, orNotFound(err, util.ErrClassNotFound)
		}
		announcement.ClassID = &class.ID
	}

	if err := s.Announcements.Create(ctx, announcement); err != nil {
		return nil, err
	}
	if s.Hub != nil {
		s.Hub.Publish(announcement)
	}
	return announcement, nil
}

// Stream 把调用者接入实时公告推送，班级按连接时的归属过滤
func (s *AnnouncementService) Stream(ctx context.Context, w http.ResponseWriter, r *http.Request, userID string) error {
	if s.Hub == nil {
		return util.NewError(util.ErrNotFound, "announcement stream is disabled")
	}
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return orNotFound(err, util.ErrUserNotFound)
	}
	ServeStream(s.Hub, w, r, user)
	return nil
}

// ListVisible 调用者按角色和班级可见的公告
func (s *AnnouncementService) ListVisible(ctx context.Context, userID string) ([]AnnouncementView, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, orNotFound(err, util.ErrUserNotFound)
	}
	classID := ""
	if user.ClassID != nil {
		classID = *user.ClassID
	}

	now := s.Clock.now()
	announcements, err := s.Announcements.FindActive(ctx, now)
	if err != nil {
		return nil, err
	}
	views := make([]AnnouncementView, 0)
	for i := range announcements {
		if len(views) == util.AnnouncementListLimit {
			break
		}
		if announcements[i].VisibleTo(user.Role, classID, now) {
			views = append(views, toAnnouncementView(&announcements[i]))
		}
	}
	return views, nil
}
