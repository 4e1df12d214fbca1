package util

import (
	"errors"
	"net/http"
)

// 错误种类，controller 通过 errors.Is 映射为 HTTP 状态码
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrConflict         = errors.New("conflict")
	ErrNotEnrolled      = errors.New("not enrolled")
	ErrNoHigherClass    = errors.New("no higher class")
	ErrPromotionBlocked = errors.New("promotion blocked")
)

// AppError 携带面向用户的消息，Unwrap 返回其错误种类
type AppError struct {
	Kind    error
	Message string
}

func NewError(kind error, message string) error {
	return &AppError{Kind: kind, Message: message}
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

var (
	ErrUserNotFound       = NewError(ErrNotFound, "user not found")
	ErrStudentNotFound    = NewError(ErrNotFound, "student not found")
	ErrClassNotFound      = NewError(ErrNotFound, "class not found")
	ErrSubjectNotFound    = NewError(ErrNotFound, "subject not found")
	ErrLessonNotFound     = NewError(ErrNotFound, "lesson not found")
	ErrQuizNotFound       = NewError(ErrNotFound, "quiz not found")
	ErrAttemptNotFound    = NewError(ErrNotFound, "attempt not found")
	ErrSupportNotFound    = NewError(ErrNotFound, "support request not found")
	ErrEmailRegistered    = NewError(ErrConflict, "email already registered")
	ErrClassNameTaken     = NewError(ErrConflict, "class name already exists")
	ErrInvalidCredentials = NewError(ErrUnauthorized, "invalid credentials")
	ErrNotAttemptOwner    = NewError(ErrForbidden, "not authorized for this attempt")
	ErrStudentNotEnrolled = NewError(ErrNotEnrolled, "student is not enrolled in any class")
	ErrNoHigherClassFound = NewError(ErrNoHigherClass, "no higher class available")
	ErrRequirementsUnmet  = NewError(ErrPromotionBlocked, "student does not meet promotion requirements")
)

type errorMapping struct {
	kind   error
	status int
	reason string
}

var errorMappings = []errorMapping{
	{ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{ErrNotFound, http.StatusNotFound, "not_found"},
	{ErrForbidden, http.StatusForbidden, "forbidden"},
	{ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{ErrConflict, http.StatusConflict, "conflict"},
	{ErrNotEnrolled, http.StatusBadRequest, "not_enrolled"},
	{ErrNoHigherClass, http.StatusBadRequest, "no_higher_class"},
	{ErrPromotionBlocked, http.StatusBadRequest, "promotion_blocked"},
}

// Classify 返回错误对应的状态码与原因；未知错误返回 500
func Classify(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.kind) {
			return m.status, m.reason
		}
	}
	return http.StatusInternalServerError, "server_error"
}
