package controller

import (
	"rural_lms_backend/internal/service"
	"rural_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// @Summary 学生仪表盘
// @Description 科目进度、继续学习、测验、出勤、公告与工单汇总；未选班时返回 needsClassSelection
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "学生不存在"
// @Router /student/dashboard [get]
func (c *DashboardController) StudentDashboard(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	dashboard, err := c.DashboardService.StudentDashboard(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, dashboard)
}

// @Summary 教师仪表盘
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.TeacherDashboard}
// @Router /teacher/dashboard [get]
func (c *DashboardController) TeacherDashboard(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	dashboard, err := c.DashboardService.TeacherDashboard(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, dashboard)
}

// @Summary 管理员仪表盘
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.AdminDashboard}
// @Router /admin/dashboard [get]
func (c *DashboardController) AdminDashboard(ctx *gin.Context) {
	dashboard, err := c.DashboardService.AdminDashboard(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, dashboard)
}

// @Summary 平台统计
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.BasicStats}
// @Router /admin/stats [get]
func (c *DashboardController) Stats(ctx *gin.Context) {
	stats, err := c.DashboardService.BasicStats(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}
