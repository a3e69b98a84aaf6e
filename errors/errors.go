package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode định danh lỗi ở mức nghiệp vụ, trả về cho client
type ErrorCode string

const (
	// Auth errors
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidToken    ErrorCode = "INVALID_TOKEN"
	ErrCodeMissingToken    ErrorCode = "MISSING_TOKEN"
	ErrCodeInvalidPassword ErrorCode = "INVALID_PASSWORD"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeInvalidRole     ErrorCode = "INVALID_ROLE"

	// Lookup errors
	ErrCodeUserNotFound    ErrorCode = "USER_NOT_FOUND"
	ErrCodePGNotFound      ErrorCode = "PG_NOT_FOUND"
	ErrCodeRoomNotFound    ErrorCode = "ROOM_NOT_FOUND"
	ErrCodeBedNotFound     ErrorCode = "BED_NOT_FOUND"
	ErrCodeBookingNotFound ErrorCode = "BOOKING_NOT_FOUND"

	// Database errors
	ErrCodeDBError ErrorCode = "DB_ERROR"

	// Validation errors
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeRequiredField ErrorCode = "REQUIRED_FIELD"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"

	// Business errors
	ErrCodeBedUnavailable   ErrorCode = "BED_UNAVAILABLE"
	ErrCodeRoomFull         ErrorCode = "ROOM_FULL"
	ErrCodeDuplicate        ErrorCode = "DUPLICATE"
	ErrCodeInvalidOperation ErrorCode = "INVALID_OPERATION"
	ErrCodeNotEligible      ErrorCode = "NOT_ELIGIBLE"
	ErrCodeStorageDisabled  ErrorCode = "STORAGE_DISABLED"
)

// Kind phân loại lỗi để tầng HTTP chọn status code
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindForbidden
	KindNotFound
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// AppError định nghĩa lỗi của ứng dụng
type AppError struct {
	Kind    Kind
	Code    ErrorCode
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		return fmt.Sprintf("[%s] %s (%s)", e.Code, e.Message, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError tạo một AppError mới
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation tạo lỗi validation theo từng field, fields có thể nil
func Validation(message string, fields map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Code: ErrCodeValidation, Message: message, Fields: fields}
}

// FieldError lỗi validation cho một field
func FieldError(field, message string) *AppError {
	return Validation(message, map[string]string{field: message})
}

func Conflict(code ErrorCode, message string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Code: ErrCodeForbidden, Message: message}
}

func NotFound(code ErrorCode, message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: message}
}

func Unauthorized(code ErrorCode, message string, err error) *AppError {
	return &AppError{Kind: KindUnauthorized, Code: code, Message: message, Err: err}
}

// Internal bọc lỗi không mong muốn, thường đến từ tầng lưu trữ
func Internal(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Code: ErrCodeDBError, Message: message, Err: err}
}

// IsAppError kiểm tra xem error có phải là AppError không
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError lấy AppError từ error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// KindOf trả về KindInternal nếu err không phải AppError
func KindOf(err error) Kind {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Kind
	}
	return KindInternal
}

// HasCode kiểm tra err có phải AppError mang code tương ứng
func HasCode(err error, code ErrorCode) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}
