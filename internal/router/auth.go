package router

import (
	"github.com/Payphone-Digital/vidtube/internal/dto"
	"github.com/gin-gonic/gin"
)

func (r *Router) authRoutes(version *gin.RouterGroup) {
	users := version.Group("/users")
	{
		// Public routes (no authentication required)
		users.POST("/register", r.authHandler.Register)
		users.POST("/login", r.authHandler.Login)
		users.POST("/refresh-token", r.authHandler.RefreshToken)

		protected := users.Group("")
		protected.Use(r.jwtMw.RequireAuth())
		{
			protected.POST("/logout", r.authHandler.Logout)
			protected.POST("/change-password",
				r.validMw.ValidateRequestBody(func() any { return &dto.ChangePasswordRequest{} }),
				r.userHandler.ChangePassword)
		}
	}
}
