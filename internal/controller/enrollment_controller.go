package controller

import (
	"rural_lms_backend/internal/service"
	"rural_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
	PromotionService  *service.PromotionService
}

func NewEnrollmentController(enrollment *service.EnrollmentService, promotion *service.PromotionService) *EnrollmentController {
	return &EnrollmentController{
		EnrollmentService: enrollment,
		PromotionService:  promotion,
	}
}

// ClassSelector class_id 与 class_number 二选一，合法的 class_id 优先
type ClassSelector struct {
	ClassID     string `json:"class_id"`
	ClassNumber *int   `json:"class_number"`
}

func (s ClassSelector) ref() (service.ClassRef, error) {
	return service.ParseClassRef(s.ClassID, s.ClassNumber)
}

// SelectClass godoc
// @Summary 学生选择班级
// @Tags 入班
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body ClassSelector true "班级 ID 或年级"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response "班级不存在"
// @Router /class/select [post]
func (c *EnrollmentController) SelectClass(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req ClassSelector
	if !bindJSON(ctx, &req) {
		return
	}
	ref, err := req.ref()
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	class, err := c.EnrollmentService.Enroll(ctx.Request.Context(), user.UserID, ref)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"class": class})
}

type AdminEnrollRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	ClassSelector
}

// AdminEnroll godoc
// @Summary 管理员为学生分配班级
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body AdminEnrollRequest true "学生与班级"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /admin/enroll [post]
func (c *EnrollmentController) AdminEnroll(ctx *gin.Context) {
	var req AdminEnrollRequest
	if !bindJSON(ctx, &req) {
		return
	}
	ref, err := req.ref()
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	class, err := c.EnrollmentService.Enroll(ctx.Request.Context(), req.StudentID, ref)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"class": class})
}

type BulkEnrollRequest struct {
	StudentIDs []string `json:"studentIds" binding:"required,min=1,dive,required"`
	ClassSelector
}

// BulkEnroll godoc
// @Summary 批量分配班级
// @Description 单个学生失败不影响其他学生，结果中逐个列出
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body BulkEnrollRequest true "学生列表与班级"
// @Success 200 {object} util.Response{data=service.BulkEnrollResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /admin/enroll/bulk [post]
func (c *EnrollmentController) BulkEnroll(ctx *gin.Context) {
	var req BulkEnrollRequest
	if !bindJSON(ctx, &req) {
		return
	}
	ref, err := req.ref()
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	result, err := c.EnrollmentService.BulkEnroll(ctx.Request.Context(), req.StudentIDs, ref)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

type TransferRequest struct {
	StudentID   string `json:"studentId" binding:"required"`
	FromClassID string `json:"fromClassId" binding:"required"`
	ToClassID   string `json:"toClassId" binding:"required"`
}

// Transfer godoc
// @Summary 学生转班
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body TransferRequest true "转班信息"
// @Success 200 {object} util.Response{data=service.TransferResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /admin/transfer [post]
func (c *EnrollmentController) Transfer(ctx *gin.Context) {
	var req TransferRequest
	if !bindJSON(ctx, &req) {
		return
	}

	result, err := c.EnrollmentService.Transfer(ctx.Request.Context(), req.StudentID, req.FromClassID, req.ToClassID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

type PromoteRequest struct {
	StudentID string `json:"studentId" binding:"required"`
}

// Promote godoc
// @Summary 学生升班
// @Description 升入 grade_level+1 的班级；是否要求课程完成率由配置决定
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body PromoteRequest true "学生 ID"
// @Success 200 {object} util.Response{data=service.PromotionResult}
// @Failure 400 {object} util.Response "未入班 / 没有更高年级 / 未达到升班要求"
// @Failure 404 {object} util.Response
// @Router /admin/promote [post]
func (c *EnrollmentController) Promote(ctx *gin.Context) {
	var req PromoteRequest
	if !bindJSON(ctx, &req) {
		return
	}

	result, err := c.PromotionService.Promote(ctx.Request.Context(), req.StudentID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// GetEnrollment godoc
// @Summary 当前班级与学习统计
// @Tags 学生
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.EnrollmentInfo}
// @Failure 400 {object} util.Response "未入班"
// @Router /student/enrollment [get]
func (c *EnrollmentController) GetEnrollment(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	info, err := c.EnrollmentService.GetEnrollment(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, info)
}

// ClassRoster godoc
// @Summary 班级学生名单
// @Tags 教师
// @Produce json
// @Security ApiKeyAuth
// @Param classId path string true "班级 ID"
// @Success 200 {object} util.Response{data=service.ClassRoster}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /teacher/classes/{classId}/students [get]
func (c *EnrollmentController) ClassRoster(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	roster, err := c.EnrollmentService.ClassRoster(ctx.Request.Context(), user, ctx.Param("classId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, roster)
}
