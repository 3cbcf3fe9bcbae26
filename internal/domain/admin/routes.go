package admin

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the unauthenticated admin endpoints behind guards.
func (h *AuthHandler) RegisterRoutes(admin *gin.RouterGroup, guards ...gin.HandlerFunc) {
	admin.POST("/login", append(guards, h.Login)...)
}
