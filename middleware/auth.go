package middleware

import (
	"strings"

	"synca/models"
	"synca/response"
	"synca/services"

	"github.com/gin-gonic/gin"
)

const (
	ActorKey    = "actor"
	UserIDKey   = "userID"
	UserRoleKey = "userRole"
)

// bearerToken lấy token từ header Authorization, websocket dùng query ?token=
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return c.Query("token")
}

// AuthMiddleware xử lý authentication, roles rỗng nghĩa là mọi role
func AuthMiddleware(tokens *services.TokenManager, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := tokens.ParseToken(bearerToken(c))
		if err != nil {
			response.Fail(c, err)
			c.Abort()
			return
		}

		// Kiểm tra role nếu có yêu cầu
		if len(roles) > 0 {
			hasRole := false
			for _, role := range roles {
				if role == actor.Role {
					hasRole = true
					break
				}
			}
			if !hasRole {
				response.Forbidden(c)
				c.Abort()
				return
			}
		}

		// Lưu thông tin user vào context
		setActor(c, actor)
		c.Next()
	}
}

// OptionalAuth gắn actor nếu token hợp lệ, không chặn khách
func OptionalAuth(tokens *services.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if actor, err := tokens.ParseToken(token); err == nil {
				setActor(c, actor)
			}
		}
		c.Next()
	}
}

func setActor(c *gin.Context, actor *services.Actor) {
	c.Set(ActorKey, actor)
	c.Set(UserIDKey, actor.ID)
	c.Set(UserRoleKey, actor.Role)
}

// CurrentActor trả về nil khi request chưa đăng nhập
func CurrentActor(c *gin.Context) *services.Actor {
	v, ok := c.Get(ActorKey)
	if !ok {
		return nil
	}
	actor, _ := v.(*services.Actor)
	return actor
}

// ErrorHandler xử lý lỗi gắn qua c.Error khi handler chưa ghi response
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			response.Fail(c, c.Errors.Last().Err)
		}
	}
}
