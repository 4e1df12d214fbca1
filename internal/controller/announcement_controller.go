package controller

import (
	"time"

	"rural_lms_backend/internal/service"
	"rural_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnnouncementController struct {
	AnnouncementService *service.AnnouncementService
}

func NewAnnouncementController(announcementService *service.AnnouncementService) *AnnouncementController {
	return &AnnouncementController{AnnouncementService: announcementService}
}

type CreateAnnouncementRequest struct {
	Title       string     `json:"title" binding:"required,notblank"`
	Message     string     `json:"message" binding:"required,notblank"`
	TargetRoles []string   `json:"target_roles"`
	ClassID     string     `json:"class_id"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// @Summary 发布公告
// @Description target_roles 缺省为 ["all"]，可选 class_id 限定班级
// @Tags 公告
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateAnnouncementRequest true "公告内容"
// @Success 201 {object} util.Response{data=model.Announcement}
// @Failure 400 {object} util.Response
// @Router /announcements [post]
func (c *AnnouncementController) Create(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req CreateAnnouncementRequest
	if !bindJSON(ctx, &req) {
		return
	}

	announcement, err := c.AnnouncementService.Create(ctx.Request.Context(), user.UserID, service.CreateAnnouncementInput{
		Title:       req.Title,
		Message:     req.Message,
		TargetRoles: req.TargetRoles,
		ClassID:     req.ClassID,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, announcement)
}

// @Summary 可见公告
// @Description 按角色与班级过滤，最新在前
// @Tags 公告
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.AnnouncementView}
// @Router /announcements [get]
func (c *AnnouncementController) List(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	announcements, err := c.AnnouncementService.ListVisible(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, announcements)
}

// @Summary 实时公告
// @Description 升级为 WebSocket，推送调用者可见的新公告
// @Tags 公告
// @Security ApiKeyAuth
// @Success 101 {string} string "Switching Protocols"
// @Router /announcements/stream [get]
func (c *AnnouncementController) Stream(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	if err := c.AnnouncementService.Stream(ctx.Request.Context(), ctx.Writer, ctx.Request, user.UserID); err != nil {
		util.RespondError(ctx, err)
	}
}
