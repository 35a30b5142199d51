package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/social-feed/internal/api/middleware"
	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/response"
)

// Handler 聚合所有 HTTP handler 依赖的服务
type Handler struct {
	graphService      service.GraphService
	messageService    service.MessageService
	engagementService service.EngagementService
	feedService       service.FeedService
	accountService    service.AccountService
}

func New(graph service.GraphService, messages service.MessageService, engagement service.EngagementService, feed service.FeedService, accounts service.AccountService) *Handler {
	return &Handler{
		graphService:      graph,
		messageService:    messages,
		engagementService: engagement,
		feedService:       feed,
		accountService:    accounts,
	}
}

// WriteError 领域错误 -> HTTP 状态码
func WriteError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &ve):
		response.Unprocessable(c, describe(ve))
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidOperation):
		response.Unprocessable(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		response.Locked(c, err.Error())
	case errors.Is(err, service.ErrUnauthenticated):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrAlreadyExists):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPasswordMismatch), errors.Is(err, service.ErrInvalidActivationCode):
		response.Error(c, http.StatusNotAcceptable, err.Error())
	case errors.Is(err, service.ErrBlocked), errors.Is(err, service.ErrInactive):
		response.Error(c, http.StatusForbidden, err.Error())
	default:
		response.InternalError(c, err)
	}
}

func describe(ve validator.ValidationErrors) string {
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// bindError 请求体格式错误：校验失败 422，JSON 本身坏掉 400
func bindError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		WriteError(c, err)
		return
	}
	response.BadRequest(c, err.Error())
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Unprocessable(c, fmt.Sprintf("invalid %s %q", name, c.Param(name)))
		return 0, false
	}
	return id, true
}

func currentUser(c *gin.Context) (*model.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "unauthenticated")
	}
	return u, ok
}
