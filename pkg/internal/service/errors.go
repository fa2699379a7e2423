package service

import (
	"errors"
	"net/http"
)

// Error 携带 HTTP 状态码的业务错误，Message 原样返回给调用方.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code int, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// 预定义错误.
var (
	ErrUnauthorized = newError(http.StatusUnauthorized, "Unauthorized")
	ErrNotFound     = newError(http.StatusNotFound, "Not found")
	ErrNotAFile     = newError(http.StatusBadRequest, "A folder doesn't have content")

	ErrMissingName     = newError(http.StatusBadRequest, "Missing name")
	ErrMissingType     = newError(http.StatusBadRequest, "Missing type")
	ErrMissingData     = newError(http.StatusBadRequest, "Missing data")
	ErrInvalidData     = newError(http.StatusBadRequest, "Invalid data")
	ErrParentNotFound  = newError(http.StatusBadRequest, "Parent not found")
	ErrParentNotFolder = newError(http.StatusBadRequest, "Parent is not a folder")

	ErrMissingEmail    = newError(http.StatusBadRequest, "Missing email")
	ErrInvalidEmail    = newError(http.StatusBadRequest, "Invalid email")
	ErrMissingPassword = newError(http.StatusBadRequest, "Missing password")
	ErrPasswordTooLong = newError(http.StatusBadRequest, "Password too long")
	ErrUserExists      = newError(http.StatusBadRequest, "Already exist")
)

// storageError 内容存储读写失败，消息透传底层错误.
func storageError(err error) *Error {
	return newError(http.StatusBadRequest, err.Error())
}

// AsError 提取业务错误，非业务错误返回 false.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}

	return nil, false
}
