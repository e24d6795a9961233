package router

import (
	"github.com/Payphone-Digital/vidtube/internal/dto"
	"github.com/gin-gonic/gin"
)

func (r *Router) userRoutes(version *gin.RouterGroup) {
	users := version.Group("/users")
	{
		users.GET("/c/:username", r.jwtMw.OptionalAuth(), r.userHandler.ChannelProfile)

		protected := users.Group("")
		protected.Use(r.jwtMw.RequireAuth())
		{
			protected.GET("/current-user", r.userHandler.CurrentUser)
			protected.PATCH("/update-account",
				r.validMw.ValidateRequestBody(func() any { return &dto.UpdateAccountRequest{} }),
				r.userHandler.UpdateAccount)
			protected.PATCH("/avatar", r.userHandler.UpdateAvatar)
			protected.PATCH("/cover-image", r.userHandler.UpdateCoverImage)
		}
	}
}
