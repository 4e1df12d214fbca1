package service

import (
	"fmt"
	"rural_lms_backend/internal/util"
	"strings"
)

type classRefKind int

const (
	classByID classRefKind = iota + 1
	classByGradeLevel
)

// ClassRef 指向一个班级：按 ID 或按年级
type ClassRef struct {
	kind       classRefKind
	id         string
	gradeLevel int
}

func ClassByID(id string) ClassRef {
	return ClassRef{kind: classByID, id: id}
}

func ClassByGradeLevel(gradeLevel int) ClassRef {
	return ClassRef{kind: classByGradeLevel, gradeLevel: gradeLevel}
}

// ParseClassRef 请求体同时允许 class_id 和 class_number：
// 合法的 class_id 优先，其次是 class_number
func ParseClassRef(classID string, classNumber *int) (ClassRef, error) {
	classID = strings.TrimSpace(classID)
	if classID != "" && util.IsValidID(classID) {
		return ClassByID(classID), nil
	}
	if classNumber != nil {
		if *classNumber <= 0 {
			return ClassRef{}, util.NewError(util.ErrInvalidInput, "class_number must be a positive integer")
		}
		return ClassByGradeLevel(*classNumber), nil
	}
	if classID != "" {
		return ClassRef{}, util.NewError(util.ErrInvalidInput, "class_id is not a valid identifier")
	}
	return ClassRef{}, util.NewError(util.ErrInvalidInput, "class_id or class_number is required")
}

func (r ClassRef) ID() (string, bool) {
	return r.id, r.kind == classByID
}

func (r ClassRef) GradeLevel() (int, bool) {
	return r.gradeLevel, r.kind == classByGradeLevel
}

func (r ClassRef) IsZero() bool {
	return r.kind == 0
}

func (r ClassRef) String() string {
	switch r.kind {
	case classByID:
		return "class " + r.id
	case classByGradeLevel:
		return fmt.Sprintf("grade level %d", r.gradeLevel)
	}
	return "no class"
}
