package controller

import (
	"rural_lms_backend/internal/service"
	"rural_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SupportController struct {
	SupportService *service.SupportService
}

func NewSupportController(supportService *service.SupportService) *SupportController {
	return &SupportController{SupportService: supportService}
}

type CreateSupportRequest struct {
	Title       string `json:"title" binding:"required,notblank"`
	Description string `json:"description" binding:"required,notblank"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

// @Summary 提交支持工单
// @Tags 支持
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateSupportRequest true "工单内容"
// @Success 201 {object} util.Response{data=model.SupportRequest}
// @Failure 400 {object} util.Response
// @Router /student/support [post]
func (c *SupportController) Create(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req CreateSupportRequest
	if !bindJSON(ctx, &req) {
		return
	}

	request, err := c.SupportService.Create(ctx.Request.Context(), user.UserID, service.CreateSupportInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, request)
}

// @Summary 我的工单
// @Tags 支持
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.SupportRequest}
// @Router /student/support [get]
func (c *SupportController) Mine(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	requests, err := c.SupportService.ListMine(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, requests)
}

// @Summary 工单列表
// @Tags 支持
// @Produce json
// @Security ApiKeyAuth
// @Param status query string false "状态过滤 open/in_progress/resolved/closed"
// @Success 200 {object} util.Response{data=[]model.SupportRequest}
// @Router /admin/support [get]
func (c *SupportController) List(ctx *gin.Context) {
	requests, err := c.SupportService.List(ctx.Request.Context(), ctx.Query("status"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, requests)
}

type UpdateSupportRequest struct {
	Status          string `json:"status" binding:"required"`
	ResolutionNotes string `json:"resolution_notes"`
}

// @Summary 更新工单状态
// @Tags 支持
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "工单 ID"
// @Param body body UpdateSupportRequest true "状态与处理说明"
// @Success 200 {object} util.Response{data=model.SupportRequest}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /admin/support/{id} [patch]
func (c *SupportController) UpdateStatus(ctx *gin.Context) {
	var req UpdateSupportRequest
	if !bindJSON(ctx, &req) {
		return
	}

	request, err := c.SupportService.UpdateStatus(ctx.Request.Context(), ctx.Param("id"), req.Status, req.ResolutionNotes)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, request)
}
