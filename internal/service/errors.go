package service

import (
	"errors"
	"fmt"
)

// 错误类别；边界层用 errors.Is 映射状态码
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrUnauthenticated  = errors.New("unauthenticated")

	ErrAlreadyExists         = errors.New("already exists")
	ErrBlocked               = errors.New("account blocked")
	ErrPasswordMismatch      = errors.New("passwords do not match")
	ErrInvalidActivationCode = errors.New("invalid activation code")
	ErrInactive              = errors.New("account inactive")
)

// Error 领域错误：类别 + 涉及的资源与 id
type Error struct {
	Kind     error
	Resource string
	ID       any
	Detail   string
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Resource != "" {
		msg = fmt.Sprintf("%s %v: %s", e.Resource, e.ID, msg)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, resource string, id any, detail string) *Error {
	return &Error{Kind: kind, Resource: resource, ID: id, Detail: detail}
}

func notFound(resource string, id any) error { return newError(ErrNotFound, resource, id, "") }

func conflict(resource string, id any, detail string) error {
	return newError(ErrConflict, resource, id, detail)
}

func validation(detail string) error { return newError(ErrValidation, "", nil, detail) }
