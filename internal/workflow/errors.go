package workflow

import (
	"errors"
	"fmt"
)

// ErrorCode 错误分类
type ErrorCode string

const (
	CodeNotFound                ErrorCode = "NotFound"
	CodeInvalidTransition       ErrorCode = "InvalidTransition"
	CodePreconditionFailed      ErrorCode = "PreconditionFailed"
	CodeImmutableInCurrentState ErrorCode = "ImmutableInCurrentState"
	CodeInfrastructureFailure   ErrorCode = "InfrastructureFailure"
	CodeConcurrentModification  ErrorCode = "ConcurrentModification"
)

// Error 工作流错误
// 调用方错误(NotFound/InvalidTransition/PreconditionFailed/ImmutableInCurrentState)
// 可由调用方修正输入后重试,InfrastructureFailure 表示持久化层故障
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 按错误码匹配,使 errors.Is(err, ErrNotFound) 对任意 NotFound 错误成立
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// 哨兵错误,仅用于 errors.Is 比较
var (
	ErrNotFound                = &Error{Code: CodeNotFound, Message: "record not found"}
	ErrInvalidTransition       = &Error{Code: CodeInvalidTransition, Message: "invalid transition"}
	ErrPreconditionFailed      = &Error{Code: CodePreconditionFailed, Message: "precondition failed"}
	ErrImmutableInCurrentState = &Error{Code: CodeImmutableInCurrentState, Message: "record is immutable in its current state"}
	ErrInfrastructureFailure   = &Error{Code: CodeInfrastructureFailure, Message: "infrastructure failure"}
	ErrConcurrentModification  = &Error{Code: CodeConcurrentModification, Message: "record was modified concurrently"}
)

// NewError 创建工作流错误
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Infrastructure 把持久化层错误包装为 InfrastructureFailure
// 已经是工作流错误的保持原样
func Infrastructure(op string, err error) error {
	if err == nil {
		return nil
	}
	var werr *Error
	if errors.As(err, &werr) {
		return err
	}
	return &Error{Code: CodeInfrastructureFailure, Message: op, Err: err}
}

// CodeOf 返回错误码,非工作流错误视为基础设施故障
func CodeOf(err error) ErrorCode {
	var werr *Error
	if errors.As(err, &werr) {
		return werr.Code
	}
	return CodeInfrastructureFailure
}

// IsCallerError 调用方可修正的错误
func IsCallerError(err error) bool {
	switch CodeOf(err) {
	case CodeNotFound, CodeInvalidTransition, CodePreconditionFailed, CodeImmutableInCurrentState:
		return true
	}
	return false
}

func notFound(kind Kind, id string) *Error {
	return NewError(CodeNotFound, fmt.Sprintf("%s record %s not found", kind, id))
}

func invalidTransition(current Status, t Transition) *Error {
	return NewError(CodeInvalidTransition, fmt.Sprintf("cannot %s record in %s status", t, current))
}
