package controller

import (
	"rural_lms_backend/internal/service"
	"rural_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	LessonService *service.LessonService
}

func NewLessonController(lessonService *service.LessonService) *LessonController {
	return &LessonController{LessonService: lessonService}
}

// @Summary 课时详情与进度
// @Tags 课时
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path string true "课时 ID"
// @Success 200 {object} util.Response{data=service.LessonWithProgress}
// @Failure 404 {object} util.Response
// @Router /student/lessons/{lessonId} [get]
func (c *LessonController) Get(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	lesson, err := c.LessonService.GetLesson(ctx.Request.Context(), user.UserID, ctx.Param("lessonId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, lesson)
}

// @Summary 标记课时完成
// @Tags 课时
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path string true "课时 ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /student/lessons/{lessonId}/complete [post]
func (c *LessonController) Complete(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	progress, err := c.LessonService.CompleteLesson(ctx.Request.Context(), user.UserID, ctx.Param("lessonId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Lesson marked as completed", "progress": progress})
}

type ProgressRequest struct {
	ProgressPercentage *int `json:"progress_percentage" binding:"required,min=0,max=100"`
}

// @Summary 更新课时进度
// @Tags 课时
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path string true "课时 ID"
// @Param body body ProgressRequest true "进度百分比"
// @Success 200 {object} util.Response{data=model.LessonProgress}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /student/lessons/{lessonId}/progress [post]
func (c *LessonController) UpdateProgress(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req ProgressRequest
	if !bindJSON(ctx, &req) {
		return
	}

	progress, err := c.LessonService.UpdateProgress(ctx.Request.Context(), user.UserID, ctx.Param("lessonId"), *req.ProgressPercentage)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}
