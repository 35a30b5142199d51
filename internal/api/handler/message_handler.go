package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/pkg/response"
)

type createMessageRequest struct {
	Content string `json:"tweet_data" binding:"required"`
}

// CreateMessage 发推
// @Summary 发布推文
// @Tags 推文
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body createMessageRequest true "推文内容"
// @Success 201 {object} response.Response
// @Failure 422 {object} response.Response "内容为空或超长"
// @Router /api/tweets [post]
func (h *Handler) CreateMessage(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	m, err := h.messageService.Create(c.Request.Context(), u.ID, req.Content)
	if err != nil {
		WriteError(c, err)
		return
	}
	response.Created(c, gin.H{"result": true, "tweet_id": m.ID})
}

// DeleteMessage 删推，只有作者可以
// @Summary 删除推文
// @Tags 推文
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "推文ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 423 {object} response.Response "不是作者"
// @Router /api/tweets/{id} [delete]
func (h *Handler) DeleteMessage(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.messageService.Delete(c.Request.Context(), u.ID, id); err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, gin.H{"result": true})
}

// Feed 关注对象的推文，按时间倒序
// @Summary 信息流
// @Tags 推文
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "每页数量，0 表示全部"
// @Param offset query int false "偏移"
// @Success 200 {object} response.Response{data=[]model.FeedEntry}
// @Router /api/tweets [get]
func (h *Handler) Feed(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var page model.Page
	if err := c.ShouldBindQuery(&page); err != nil {
		bindError(c, err)
		return
	}
	entries, err := h.feedService.AssembleFeed(c.Request.Context(), u.ID, page)
	if err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, gin.H{"tweets": entries})
}

// Like 点赞
// @Summary 点赞
// @Tags 点赞
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "推文ID"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 423 {object} response.Response "已点赞"
// @Router /api/tweets/{id}/likes [post]
func (h *Handler) Like(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.engagementService.Like(c.Request.Context(), u.ID, id); err != nil {
		WriteError(c, err)
		return
	}
	response.Created(c, gin.H{"result": true})
}

// Unlike 取消点赞
// @Summary 取消点赞
// @Tags 点赞
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "推文ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 423 {object} response.Response "未点赞"
// @Router /api/tweets/{id}/likes [delete]
func (h *Handler) Unlike(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.engagementService.Unlike(c.Request.Context(), u.ID, id); err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, gin.H{"result": true})
}
