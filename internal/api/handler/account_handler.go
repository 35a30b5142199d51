package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/response"
)

type registerRequest struct {
	Email      string `json:"email" binding:"required,email,max=120"`
	Password   string `json:"password" binding:"required,min=1,max=128"`
	RePassword string `json:"re_password" binding:"required"`
}

type activationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"activation_code" binding:"required,len=8,numeric"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register 注册；未验证的账号再次注册会重发验证码
// @Summary 注册
// @Tags 账号
// @Accept json
// @Produce json
// @Param request body registerRequest true "注册信息"
// @Success 201 {object} response.Response
// @Success 202 {object} response.Response "已重发验证码"
// @Failure 403 {object} response.Response "账号被封禁"
// @Failure 406 {object} response.Response "两次密码不一致"
// @Failure 409 {object} response.Response "账号已存在"
// @Router /api/users/user/create [put]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.accountService.Register(c.Request.Context(), service.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		RePassword: req.RePassword,
	})
	if err != nil {
		WriteError(c, err)
		return
	}
	if res.Resent {
		response.Accepted(c, "account exists, a new activation code was sent", gin.H{"email": res.User.Email})
		return
	}
	response.Created(c, gin.H{"id": res.User.ID, "name": res.User.Username, "email": res.User.Email})
}

// Activate 用邮箱验证码激活
// @Summary 激活账号
// @Tags 账号
// @Accept json
// @Produce json
// @Param request body activationRequest true "邮箱与验证码"
// @Success 202 {object} response.Response
// @Failure 406 {object} response.Response "验证码错误"
// @Router /api/users/user/activation [post]
func (h *Handler) Activate(c *gin.Context) {
	var req activationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.accountService.Activate(c.Request.Context(), req.Email, req.Code); err != nil {
		WriteError(c, err)
		return
	}
	response.Accepted(c, "your account was successfully activated", nil)
}

// Login 返回 api key 与 JWT
// @Summary 登录
// @Tags 账号
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response{data=service.LoginResult}
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response "账号未激活"
// @Router /api/users/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.accountService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, res)
}
