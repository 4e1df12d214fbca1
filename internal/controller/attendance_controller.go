package controller

import (
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/service"
	"rural_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttendanceController struct {
	AttendanceService *service.AttendanceService
}

func NewAttendanceController(attendanceService *service.AttendanceService) *AttendanceController {
	return &AttendanceController{AttendanceService: attendanceService}
}

type MarkAttendanceRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Date      string `json:"date"`
	Status    string `json:"status" binding:"required,oneof=present absent late excused"`
	Remarks   string `json:"remarks"`
}

// @Summary 登记出勤
// @Description 同一学生同一天重复登记时覆盖
// @Tags 出勤
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body MarkAttendanceRequest true "出勤记录"
// @Success 200 {object} util.Response{data=model.Attendance}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response "学生不存在"
// @Router /teacher/attendance [post]
func (c *AttendanceController) Mark(ctx *gin.Context) {
	var req MarkAttendanceRequest
	if !bindJSON(ctx, &req) {
		return
	}

	record, err := c.AttendanceService.Mark(ctx.Request.Context(), service.MarkAttendanceInput{
		StudentID: req.StudentID,
		Date:      req.Date,
		Status:    model.AttendanceStatus(req.Status),
		Remarks:   req.Remarks,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, record)
}

// @Summary 我的出勤
// @Tags 出勤
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.StudentAttendance}
// @Router /student/attendance [get]
func (c *AttendanceController) Mine(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	attendance, err := c.AttendanceService.ForStudent(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, attendance)
}
