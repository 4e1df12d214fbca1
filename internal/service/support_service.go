package service

import (
	"context"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/repository"
	"rural_lms_backend/internal/util"
	"strings"
)

var (
	supportCategories = map[string]bool{"technical": true, "academic": true, "billing": true, "other": true}
	supportPriorities = map[string]bool{"low": true, "medium": true, "high": true, "urgent": true}
)

type SupportService struct {
	Support repository.SupportStore
	Clock   Clock
}

func NewSupportService(support repository.SupportStore) *SupportService {
	return &SupportService{Support: support}
}

type CreateSupportInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
}

func (s *SupportService) Create(ctx context.Context, userID string, in CreateSupportInput) (*model.SupportRequest, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return nil, util.NewError(util.ErrInvalidInput, "title and description are required")
	}

	category := strings.ToLower(strings.TrimSpace(in.Category))
	if category == "" {
		category = "other"
	}
	if !supportCategories[category] {
		return nil, util.NewError(util.ErrInvalidInput, "category must be one of technical, academic, billing, other")
	}
	priority := strings.ToLower(strings.TrimSpace(in.Priority))
	if priority == "" {
		priority = "medium"
	}
	if !supportPriorities[priority] {
		return nil, util.NewError(util.ErrInvalidInput, "priority must be one of low, medium, high, urgent")
	}

	request := &model.SupportRequest{
		UserID:      userID,
		Title:       title,
		Description: description,
		Category:    category,
		Priority:    priority,
		Status:      model.SupportOpen,
	}
	if err := s.Support.Create(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *SupportService) ListMine(ctx context.Context, userID string) ([]model.SupportRequest, error) {
	requests, err := s.Support.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []model.SupportRequest{}
	}
	return requests, nil
}

func parseSupportStatus(status string) (model.SupportStatus, error) {
	switch s := model.SupportStatus(strings.ToLower(strings.TrimSpace(status))); s {
	case model.SupportOpen, model.SupportInProgress, model.SupportResolved, model.SupportClosed:
		return s, nil
	}
	return "", util.NewError(util.ErrInvalidInput, "status must be one of open, in_progress, resolved, closed")
}

// List status 为空时返回全部
func (s *SupportService) List(ctx context.Context, status string) ([]model.SupportRequest, error) {
	var filter model.SupportStatus
	if status != "" {
		parsed, err := parseSupportStatus(status)
		if err != nil {
			return nil, err
		}
		filter = parsed
	}
	requests, err := s.Support.ListByStatus(ctx, filter)
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []model.SupportRequest{}
	}
	return requests, nil
}

// UpdateStatus 状态变为 resolved 时记录解决时间
func (s *SupportService) UpdateStatus(ctx context.Context, id, status, notes string) (*model.SupportRequest, error) {
	parsed, err := parseSupportStatus(status)
	if err != nil {
		return nil, err
	}
	request, err := s.Support.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, util.ErrSupportNotFound)
	}

	if parsed == model.SupportResolved && request.Status != model.SupportResolved {
		now := s.Clock.now()
		request.ResolvedAt = &now
	}
	request.Status = parsed
	if notes = strings.TrimSpace(notes); notes != "" {
		request.ResolutionNotes = notes
	}
	if err := s.Support.Update(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}
