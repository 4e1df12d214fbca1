package service

import (
	"context"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/internal/repository"
	"rural_lms_backend/internal/util"
	"strings"
	"time"
)

type AttendanceService struct {
	Users      repository.UserStore
	Attendance repository.AttendanceStore
	Clock      Clock
}

func NewAttendanceService(users repository.UserStore, attendance repository.AttendanceStore) *AttendanceService {
	return &AttendanceService{Users: users, Attendance: attendance}
}

// AttendanceSummary 出勤汇总，total 为 0 时百分比为 0
type AttendanceSummary struct {
	PresentDays int `json:"presentDays"`
	TotalDays   int `json:"totalDays"`
	Percentage  int `json:"percentage"`
}

func SummarizeAttendance(records []model.Attendance) AttendanceSummary {
	present := 0
	for _, record := range records {
		if record.Status == model.Present {
			present++
		}
	}
	return AttendanceSummary{
		PresentDays: present,
		TotalDays:   len(records),
		Percentage:  util.Percent(int64(present), int64(len(records))),
	}
}

type MarkAttendanceInput struct {
	StudentID string
	Date      string // YYYY-MM-DD，为空时取当天
	Status    model.AttendanceStatus
	Remarks   string
}

func validAttendanceStatus(status model.AttendanceStatus) bool {
	switch status {
	case model.Present, model.Absent, model.Late, model.Excused:
		return true
	}
	return false
}

// Mark 教师登记出勤，同一学生同一天只保留一条
func (s *AttendanceService) Mark(ctx context.Context, in MarkAttendanceInput) (*model.Attendance, error) {
	if strings.TrimSpace(in.StudentID) == "" {
		return nil, util.NewError(util.ErrInvalidInput, "student_id is required")
	}
	if !validAttendanceStatus(in.Status) {
		return nil, util.NewError(util.ErrInvalidInput, "status must be one of present, absent, late, excused")
	}

	date := s.Clock.now()
	if in.Date != "" {
		parsed, err := time.Parse(util.DateFormat, in.Date)
		if err != nil {
			return nil, util.NewError(util.ErrInvalidInput, "date must be formatted as YYYY-MM-DD")
		}
		date = parsed
	}

	student, err := s.Users.FindByID(ctx, in.StudentID)
	if err != nil {
		return nil, orNotFound(err, util.ErrStudentNotFound)
	}
	if !student.IsStudent() {
		return nil, util.ErrStudentNotFound
	}

	record := &model.Attendance{
		StudentID: student.ID,
		Date:      model.DateOnly(date),
		ClassID:   student.ClassID,
		Status:    in.Status,
		Remarks:   strings.TrimSpace(in.Remarks),
	}
	if err := s.Attendance.Upsert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// StudentAttendance 学生自己的出勤记录和汇总
type StudentAttendance struct {
	Records []model.Attendance `json:"records"`
	Summary AttendanceSummary  `json:"summary"`
}

func (s *AttendanceService) ForStudent(ctx context.Context, studentID string) (*StudentAttendance, error) {
	records, err := s.Attendance.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.Attendance{}
	}
	return &StudentAttendance{Records: records, Summary: SummarizeAttendance(records)}, nil
}

// RecordInitial 入班 / 升班后写入当天的初始出勤；当天已有记录时不覆盖
func (s *AttendanceService) RecordInitial(ctx context.Context, studentID, classID string) error {
	today := model.DateOnly(s.Clock.now())
	records, err := s.Attendance.FindByStudent(ctx, studentID)
	if err != nil {
		return err
	}
	for _, record := range records {
		if model.SameDay(record.Date, today) {
			return nil
		}
	}

	return s.Attendance.Upsert(ctx, &model.Attendance{
		StudentID: studentID,
		Date:      today,
		ClassID:   &classID,
		Status:    model.Present,
		Remarks:   "initial attendance on class assignment",
		IsInitial: true,
	})
}
