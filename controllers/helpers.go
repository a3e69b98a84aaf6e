package controllers

import (
	stderrors "errors"
	"io"
	"strconv"

	"synca/response"

	"github.com/gin-gonic/gin"
)

// paramID đọc :name dạng số dương, tự trả 400 khi sai
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// bindJSON body rỗng được chấp nhận, các field giữ giá trị zero
func bindJSON(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindJSON(target); err != nil && !stderrors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}
