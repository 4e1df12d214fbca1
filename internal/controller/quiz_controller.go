package controller

import (
	"rural_lms_backend/internal/service"
	"rural_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// @Summary 科目下的测验
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param subjectId path string true "科目 ID"
// @Success 200 {object} util.Response{data=[]service.QuizSummary}
// @Router /student/subjects/{subjectId}/quizzes [get]
func (c *QuizController) ListBySubject(ctx *gin.Context) {
	quizzes, err := c.QuizService.ListBySubject(ctx.Request.Context(), ctx.Param("subjectId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, quizzes)
}

// @Summary 开始测验
// @Description 创建一次作答，返回不含答案的题目
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "测验 ID"
// @Success 200 {object} util.Response{data=service.StartAttemptResult}
// @Failure 404 {object} util.Response "测验不存在"
// @Router /student/quizzes/{quizId}/start [post]
func (c *QuizController) Start(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	result, err := c.QuizService.StartAttempt(ctx.Request.Context(), user.UserID, ctx.Param("quizId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

type SubmitAttemptRequest struct {
	Answers   []service.SubmittedAnswer `json:"answers" binding:"required,dive"`
	TimeTaken int                       `json:"time_taken" binding:"gte=0"`
}

// @Summary 提交测验
// @Description 按题目 ID 评分，重复提交覆盖上一次结果
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param attemptId path string true "作答 ID"
// @Param body body SubmitAttemptRequest true "答案"
// @Success 200 {object} util.Response{data=service.ScoredResult}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response "不是本人的作答"
// @Failure 404 {object} util.Response
// @Router /student/quizzes/attempt/{attemptId}/submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req SubmitAttemptRequest
	if !bindJSON(ctx, &req) {
		return
	}

	result, err := c.QuizService.SubmitAttempt(ctx.Request.Context(), user.UserID, ctx.Param("attemptId"), req.Answers, req.TimeTaken)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 我的测验记录
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.QuizAttempt}
// @Router /student/quizzes/attempts [get]
func (c *QuizController) ListAttempts(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	attempts, err := c.QuizService.ListAttempts(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, attempts)
}
