package service

import (
	"context"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/repository"
	"rural_lms_backend/internal/util"
)

// courseView 学生所在班级的科目、课时和已完成课时
type courseView struct {
	subjects  []model.Subject
	lessons   []model.Lesson
	completed map[string]bool
}

func loadCourseView(ctx context.Context, subjects repository.SubjectStore, lessons repository.LessonStore,
	progress repository.ProgressStore, studentID, classID string) (*courseView, error) {
	activeSubjects, err := subjects.FindByClass(ctx, classID, true)
	if err != nil {
		return nil, err
	}
	classLessons, err := lessons.FindBySubjects(ctx, subjectIDs(activeSubjects))
	if err != nil {
		return nil, err
	}
	completedIDs, err := progress.CompletedLessonIDs(ctx, studentID, lessonIDs(classLessons))
	if err != nil {
		return nil, err
	}
	return &courseView{
		subjects:  activeSubjects,
		lessons:   classLessons,
		completed: toSet(completedIDs),
	}, nil
}

type SubjectProgress struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Order            int    `json:"order"`
	TotalLessons     int    `json:"totalLessons"`
	CompletedLessons int    `json:"completedLessons"`
	ProgressPercent  int    `json:"progressPercent"`
}

// subjectProgress 没有课时的科目进度为 0
func (v *courseView) subjectProgress() []SubjectProgress {
	total := make(map[string]int, len(v.subjects))
	done := make(map[string]int, len(v.subjects))
	for _, lesson := range v.lessons {
		total[lesson.SubjectID]++
		if v.completed[lesson.ID] {
			done[lesson.SubjectID]++
		}
	}

	result := make([]SubjectProgress, 0, len(v.subjects))
	for _, subject := range v.subjects {
		result = append(result, SubjectProgress{
			ID:               subject.ID,
			Name:             subject.Name,
			Description:      subject.Description,
			Order:            subject.Order,
			TotalLessons:     total[subject.ID],
			CompletedLessons: done[subject.ID],
			ProgressPercent:  util.Percent(int64(done[subject.ID]), int64(total[subject.ID])),
		})
	}
	return result
}

type ContinueLearning struct {
	Subject  string `json:"subject"`
	Lesson   string `json:"lesson"`
	LessonID string `json:"lessonId"`
}

// continueLearning 未完成课时中 order 最小的一节；order 相同时按科目顺序
func (v *courseView) continueLearning() *ContinueLearning {
	subjectRank := make(map[string]int, len(v.subjects))
	subjectNames := make(map[string]string, len(v.subjects))
	for i, subject := range v.subjects {
		subjectRank[subject.ID] = i
		subjectNames[subject.ID] = subject.Name
	}

	var next *model.Lesson
	for i := range v.lessons {
		lesson := &v.lessons[i]
		if v.completed[lesson.ID] {
			continue
		}
		if next == nil || lesson.Order < next.Order ||
			(lesson.Order == next.Order && subjectRank[lesson.SubjectID] < subjectRank[next.SubjectID]) {
			next = lesson
		}
	}
	if next == nil {
		return nil
	}
	return &ContinueLearning{
		Subject:  subjectNames[next.SubjectID],
		Lesson:   next.Title,
		LessonID: next.ID,
	}
}
