package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/pkg/response"
)

// Me 当前用户资料
// @Summary 当前用户资料（含关注与粉丝）
// @Tags 用户
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} response.Response{data=service.Profile}
// @Failure 401 {object} response.Response
// @Router /api/users/me [get]
func (h *Handler) Me(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	p, err := h.graphService.Profile(c.Request.Context(), u.ID)
	if err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, gin.H{"user": p})
}

// GetUser 用户资料
// @Summary 查询用户资料
// @Tags 用户
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=service.Profile}
// @Failure 404 {object} response.Response
// @Router /api/users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.graphService.Profile(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, gin.H{"user": p})
}
