package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxNotesLength 备注最大字符数
	MaxNotesLength = 4000
	// MaxBatchSize 单次批量转换的最大记录数
	MaxBatchSize = 1000
	// MaxIDLength 记录 ID 最大长度,与数据库列宽一致
	MaxIDLength = 64
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateRecordID 验证记录 ID 格式
func ValidateRecordID(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if len(id) > MaxIDLength {
		return ErrIDTooLong
	}
	if !idPattern.MatchString(id) {
		return ErrInvalidIDFormat
	}
	return nil
}

// ValidateNotes 验证备注长度,按字符计
func ValidateNotes(notes string) error {
	if utf8.RuneCountInString(strings.TrimSpace(notes)) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// ValidateBatch 验证批量请求的 ID 列表
// 格式不合法的 ID 由调用方按不存在处理,这里只限制数量
func ValidateBatch(ids []string) error {
	if len(ids) == 0 {
		return ErrEmptyBatch
	}
	if len(ids) > MaxBatchSize {
		return &ValidationError{Code: "BATCH_TOO_LARGE", Message: fmt.Sprintf("batch exceeds %d records", MaxBatchSize)}
	}
	return nil
}

// 错误定义
var (
	ErrEmptyID         = &ValidationError{Code: "EMPTY_ID", Message: "id cannot be empty"}
	ErrInvalidIDFormat = &ValidationError{Code: "INVALID_ID_FORMAT", Message: "id contains invalid characters"}
	ErrIDTooLong       = &ValidationError{Code: "ID_TOO_LONG", Message: "id exceeds maximum length"}
	ErrNotesTooLong    = &ValidationError{Code: "NOTES_TOO_LONG", Message: "notes exceed maximum length"}
	ErrEmptyBatch      = &ValidationError{Code: "EMPTY_BATCH", Message: "ids cannot be empty"}
)

// ValidationError 验证错误
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
