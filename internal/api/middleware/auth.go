package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/service"
)

const (
	APIKeyHeader   = "api-key"
	currentUserKey = "current_user"
)

// Auth 解析 api-key 头或 Bearer token，失败由 onErr 处理
func Auth(accounts service.AccountService, onErr func(*gin.Context, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var (
			u   *model.User
			err error
		)
		if key := c.GetHeader(APIKeyHeader); key != "" {
			u, err = accounts.ResolveAPIKey(ctx, key)
		} else if tok, ok := bearer(c.GetHeader("Authorization")); ok {
			u, err = accounts.ResolveToken(ctx, tok)
		} else {
			err = &service.Error{Kind: service.ErrUnauthenticated, Detail: "missing credentials"}
		}
		if err != nil {
			onErr(c, err)
			c.Abort()
			return
		}
		c.Set(currentUserKey, u)
		c.Next()
	}
}

func bearer(h string) (string, bool) {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

// CurrentUser 仅在 Auth 之后的 handler 中可用
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*model.User)
	return u, ok
}
