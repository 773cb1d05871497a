package errors

import (
	"errors"
	"fmt"
)

// Kind 业务错误分类，决定 HTTP 状态码
type Kind int

const (
	KindNotFound   Kind = iota + 1 // 404
	KindValidation                 // 400
	KindConflict                   // 409 唯一性冲突
	KindRule                       // 422 业务规则拒绝
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindRule:
		return "rule_violation"
	}
	return "unknown"
}

// Error 带分类与业务码的错误
type Error struct {
	Kind    Kind
	Code    int
	Message string
}

func (e *Error) Error() string { return e.Message }

// New 创建业务错误
func New(kind Kind, code int, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// NotFound 资源不存在
func NotFound(code int, message string) *Error { return New(KindNotFound, code, message) }

// Validation 参数校验失败
func Validation(code int, message string) *Error { return New(KindValidation, code, message) }

// Conflict 唯一性冲突
func Conflict(code int, message string) *Error { return New(KindConflict, code, message) }

// Rule 业务规则拒绝
func Rule(code int, message string) *Error { return New(KindRule, code, message) }

// detailed 为业务错误附加定位信息（餐桌号、顾客、时间），保持 errors.Is 可用
type detailed struct {
	err    *Error
	detail string
}

func (d *detailed) Error() string { return d.err.Message + ": " + d.detail }
func (d *detailed) Unwrap() error { return d.err }

// Detail 附加定位信息
func Detail(err *Error, format string, args ...interface{}) error {
	return &detailed{err: err, detail: fmt.Sprintf(format, args...)}
}

// As 从错误链中提取业务错误
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// DetailOf 返回附加的定位信息，没有时为空
func DetailOf(err error) string {
	var d *detailed
	if errors.As(err, &d) {
		return d.detail
	}
	return ""
}
