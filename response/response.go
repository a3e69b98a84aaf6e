package response

import (
	"net/http"

	"synca/errors"

	"github.com/gin-gonic/gin"
)

// Response định nghĩa cấu trúc response
type Response struct {
	Code   int               `json:"code"`
	Mess   string            `json:"mess"`
	Data   interface{}       `json:"data,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
	Total  *int              `json:"total,omitempty"`
}

// Success trả về response thành công
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: 1,
		Mess: "Success",
		Data: data,
	})
}

// Created dùng cho các thao tác tạo mới
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code: 1,
		Mess: "Created",
		Data: data,
	})
}

func SuccessWithTotal(c *gin.Context, data interface{}, total int) {
	c.JSON(http.StatusOK, Response{
		Code:  1,
		Mess:  "Success",
		Data:  data,
		Total: &total,
	})
}

// Message thành công kèm thông điệp riêng (vd kết quả duyệt booking)
func Message(c *gin.Context, mess string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: 1,
		Mess: mess,
		Data: data,
	})
}

// Fail chuyển lỗi service thành HTTP status theo Kind của AppError
func Fail(c *gin.Context, err error) {
	appErr := errors.GetAppError(err)
	if appErr == nil {
		ServerError(c)
		return
	}
	c.JSON(StatusOf(appErr.Kind), Response{
		Code:   0,
		Mess:   messageOf(appErr),
		Errors: appErr.Fields,
	})
}

func StatusOf(kind errors.Kind) int {
	switch kind {
	case errors.KindValidation:
		return http.StatusBadRequest
	case errors.KindConflict:
		return http.StatusConflict
	case errors.KindForbidden:
		return http.StatusForbidden
	case errors.KindNotFound:
		return http.StatusNotFound
	case errors.KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// lỗi nội bộ không lộ chi tiết ra ngoài
func messageOf(appErr *errors.AppError) string {
	if appErr.Kind == errors.KindInternal {
		return "Internal server error"
	}
	return appErr.Message
}

// BadRequest trả về response lỗi bad request
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Code: 0,
		Mess: message,
	})
}

// ServerError trả về response lỗi server
func ServerError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, Response{
		Code: 0,
		Mess: "Internal server error",
	})
}

// Unauthorized trả về response chưa xác thực
func Unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, Response{
		Code: 0,
		Mess: "Authentication required",
	})
}

// Forbidden trả về response không có quyền
func Forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, Response{
		Code: 0,
		Mess: "Permission denied",
	})
}

// NotFound trả về response không tìm thấy
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, Response{
		Code: 0,
		Mess: "Not found",
	})
}
