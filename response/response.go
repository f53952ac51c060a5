package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success 直接返回数据
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SuccessWithMessage 返回 {"success": true, "id": .., "message": ..}
func SuccessWithMessage(c *gin.Context, message string, id interface{}) {
	body := gin.H{"success": true, "message": message}
	if id != nil {
		body["id"] = id
	}
	c.JSON(http.StatusOK, body)
}

// Error 返回 {"error": msg}
func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}
