package service

import (
	"errors"
	"rural_lms_backend/internal/repository"
	"time"
)

// Clock 便于测试固定当前时间
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// orNotFound 把存储层的 ErrNotFound 换成面向用户的错误
func orNotFound(err, notFound error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return err
}
