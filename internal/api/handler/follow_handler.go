package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/pkg/response"
)

// Follow 关注
// @Summary 关注用户
// @Tags 关系链
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "被关注用户ID"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response "不能关注自己"
// @Failure 423 {object} response.Response "已关注"
// @Router /api/users/{id}/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	target, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.graphService.Follow(c.Request.Context(), u.ID, target); err != nil {
		WriteError(c, err)
		return
	}
	response.Created(c, gin.H{"result": true})
}

// Unfollow 取消关注
// @Summary 取消关注
// @Tags 关系链
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "被关注用户ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 423 {object} response.Response "未关注"
// @Router /api/users/{id}/follow [delete]
func (h *Handler) Unfollow(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	target, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.graphService.Unfollow(c.Request.Context(), u.ID, target); err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, gin.H{"result": true})
}

// ListFollowing 查询某用户关注的人
// @Summary 查询关注列表
// @Tags 关系链
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=[]model.UserSummary}
// @Failure 404 {object} response.Response
// @Router /api/users/{id}/following [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.graphService.ListFollowing(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, list)
}

// ListFollowers 查询某用户的粉丝
// @Summary 查询粉丝列表
// @Tags 关系链
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=[]model.UserSummary}
// @Failure 404 {object} response.Response
// @Router /api/users/{id}/followers [get]
func (h *Handler) ListFollowers(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.graphService.ListFollowers(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, list)
}
