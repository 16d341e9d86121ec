package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/takezo-code/kanban-auth/internal/core/auth"
	"github.com/takezo-code/kanban-auth/internal/domain"
	resp "github.com/takezo-code/kanban-auth/internal/transport/http/response"
)

const KeyIdentity = "identity"

// AuthJWT 验 access token，通过后把调用方身份放进 context。
// requireRole 非空时顺带做角色闸门（401 与 403 分开报）。
func AuthJWT(tok *auth.TokenService, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		identity, err := tok.VerifyAccessToken(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			msg := "invalid token"
			if err == auth.ErrTokenExpired {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, msg))
			return
		}
		if requireRole != "" && identity.Role != requireRole {
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set(KeyIdentity, identity)
		c.Set("userId", identity.UserID)
		c.Set("role", identity.Role)
		c.Next()
	}
}

// Caller 从 context 取已验证身份；只在 AuthJWT 之后的链路里用
func Caller(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(KeyIdentity)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}
