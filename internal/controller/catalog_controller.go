package controller

import (
	"rural_lms_backend/internal/service"
	"rural_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	CatalogService *service.CatalogService
	LessonService  *service.LessonService
}

func NewCatalogController(catalog *service.CatalogService, lessons *service.LessonService) *CatalogController {
	return &CatalogController{
		CatalogService: catalog,
		LessonService:  lessons,
	}
}

// @Summary 班级列表
// @Description 按年级排列的启用班级，供学生选班
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Class}
// @Router /classes [get]
func (c *CatalogController) ListClasses(ctx *gin.Context) {
	classes, err := c.CatalogService.ListClasses(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, classes)
}

type CreateClassRequest struct {
	ClassName  string `json:"class_name" binding:"required,notblank"`
	GradeLevel int    `json:"grade_level" binding:"required,min=1"`
	TeacherID  string `json:"teacher_id"`
}

// @Summary 创建班级
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateClassRequest true "班级信息"
// @Success 201 {object} util.Response{data=model.Class}
// @Failure 409 {object} util.Response "班级名已存在"
// @Router /admin/classes [post]
func (c *CatalogController) CreateClass(ctx *gin.Context) {
	var req CreateClassRequest
	if !bindJSON(ctx, &req) {
		return
	}

	class, err := c.CatalogService.CreateClass(ctx.Request.Context(), service.CreateClassInput{
		ClassName:  req.ClassName,
		GradeLevel: req.GradeLevel,
		TeacherID:  req.TeacherID,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, class)
}

type CreateSubjectRequest struct {
	Name        string `json:"name" binding:"required,notblank"`
	Description string `json:"description"`
	ClassID     string `json:"class_id" binding:"required"`
	Order       int    `json:"order"`
}

// @Summary 创建科目
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateSubjectRequest true "科目信息"
// @Success 201 {object} util.Response{data=model.Subject}
// @Failure 404 {object} util.Response "班级不存在"
// @Router /teacher/subjects [post]
func (c *CatalogController) CreateSubject(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req CreateSubjectRequest
	if !bindJSON(ctx, &req) {
		return
	}

	subject, err := c.CatalogService.CreateSubject(ctx.Request.Context(), user.UserID, service.CreateSubjectInput{
		Name:        req.Name,
		Description: req.Description,
		ClassID:     req.ClassID,
		Order:       req.Order,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, subject)
}

type CreateLessonRequest struct {
	Title       string `json:"title" binding:"required,notblank"`
	Description string `json:"description"`
	Content     string `json:"content"`
	SubjectID   string `json:"subject_id" binding:"required"`
	Order       int    `json:"order"`
	Duration    int    `json:"duration" binding:"gte=0"`
}

// @Summary 创建课时
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateLessonRequest true "课时信息"
// @Success 201 {object} util.Response{data=model.Lesson}
// @Failure 404 {object} util.Response "科目不存在"
// @Router /teacher/lessons [post]
func (c *CatalogController) CreateLesson(ctx *gin.Context) {
	var req CreateLessonRequest
	if !bindJSON(ctx, &req) {
		return
	}

	lesson, err := c.CatalogService.CreateLesson(ctx.Request.Context(), service.CreateLessonInput{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		SubjectID:   req.SubjectID,
		Order:       req.Order,
		Duration:    req.Duration,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, lesson)
}

// @Summary 上传课时资料
// @Description 上传到配置的存储（local/minio/oss），成功后写入 material_url
// @Tags 课程
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path string true "课时 ID"
// @Param file formData file true "资料文件"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /teacher/lessons/{lessonId}/material [post]
func (c *CatalogController) UploadMaterial(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	file, err := header.Open()
	if err != nil {
		util.BadRequest(ctx, "file cannot be read")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = util.MimeOctetStream
	}

	lesson, err := c.LessonService.UploadMaterial(ctx.Request.Context(), ctx.Param("lessonId"), header.Filename, file, header.Size, contentType)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, lesson)
}

type QuestionRequest struct {
	QuestionText  string   `json:"question_text" binding:"required,notblank"`
	Options       []string `json:"options" binding:"required,min=2"`
	CorrectAnswer int      `json:"correct_answer" binding:"gte=0"`
	Marks         int      `json:"marks" binding:"gte=0"`
}

type CreateQuizRequest struct {
	Title       string            `json:"title" binding:"required,notblank"`
	Description string            `json:"description"`
	SubjectID   string            `json:"subject_id" binding:"required"`
	TimeLimit   int               `json:"time_limit" binding:"gte=0"`
	TotalMarks  int               `json:"total_marks" binding:"gte=0"`
	Questions   []QuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// @Summary 创建测验
// @Description total_marks 缺省时取各题分值之和
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateQuizRequest true "测验与题目"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response "科目不存在"
// @Router /teacher/quizzes [post]
func (c *CatalogController) CreateQuiz(ctx *gin.Context) {
	var req CreateQuizRequest
	if !bindJSON(ctx, &req) {
		return
	}

	questions := make([]service.QuestionInput, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, service.QuestionInput{
			QuestionText:  q.QuestionText,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Marks:         q.Marks,
		})
	}

	quiz, err := c.CatalogService.CreateQuiz(ctx.Request.Context(), service.CreateQuizInput{
		Title:       req.Title,
		Description: req.Description,
		SubjectID:   req.SubjectID,
		TimeLimit:   req.TimeLimit,
		TotalMarks:  req.TotalMarks,
		Questions:   questions,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, quiz)
}

// @Summary 我的科目与进度
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.SubjectProgress}
// @Router /student/subjects [get]
func (c *CatalogController) StudentSubjects(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	subjects, err := c.CatalogService.StudentSubjects(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, subjects)
}
