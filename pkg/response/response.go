package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/pkg/logger"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func JSON(c *gin.Context, status int, msg string, data interface{}) {
	c.JSON(status, Response{Code: status, Message: msg, Data: data})
}

func Success(c *gin.Context, data interface{}) { JSON(c, http.StatusOK, "success", data) }

func Created(c *gin.Context, data interface{}) { JSON(c, http.StatusCreated, "created", data) }

func Accepted(c *gin.Context, msg string, data interface{}) { JSON(c, http.StatusAccepted, msg, data) }

// Error 以 status 终止请求
func Error(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Response{Code: status, Message: msg})
}

func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, msg) }

func Unauthorized(c *gin.Context, msg string) { Error(c, http.StatusUnauthorized, msg) }

func NotFound(c *gin.Context, msg string) { Error(c, http.StatusNotFound, msg) }

func Unprocessable(c *gin.Context, msg string) { Error(c, http.StatusUnprocessableEntity, msg) }

func Locked(c *gin.Context, msg string) { Error(c, http.StatusLocked, msg) }

// InternalError 记录原始错误，对外只返回通用信息
func InternalError(c *gin.Context, err error) {
	logger.Error("internal error", zap.String("path", c.FullPath()), zap.Error(err))
	_ = c.Error(err)
	Error(c, http.StatusInternalServerError, "internal server error")
}
