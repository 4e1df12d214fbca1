package service

import (
	"math"
	"rural_lms_backend/internal/model"
)

// AverageScore 所有尝试的 percentage 简单平均并取整，没有尝试时为 0
func AverageScore(attempts []model.QuizAttempt) int {
	if len(attempts) == 0 {
		return 0
	}
	total := 0
	for _, attempt := range attempts {
		total += attempt.Percentage
	}
	return int(math.Round(float64(total) / float64(len(attempts))))
}

func lessonIDs(lessons []model.Lesson) []string {
	ids := make([]string, len(lessons))
	for i, lesson := range lessons {
		ids[i] = lesson.ID
	}
	return ids
}

func subjectIDs(subjects []model.Subject) []string {
	ids := make([]string, len(subjects))
	for i, subject := range subjects {
		ids[i] = subject.ID
	}
	return ids
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
