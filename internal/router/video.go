package router

import "github.com/gin-gonic/gin"

func (r *Router) videoRoutes(version *gin.RouterGroup) {
	videos := version.Group("/videos")
	{
		videos.GET("", r.jwtMw.OptionalAuth(), r.videoHandler.List)
		videos.GET("/:videoId", r.jwtMw.OptionalAuth(), r.videoHandler.GetByID)

		protected := videos.Group("")
		protected.Use(r.jwtMw.RequireAuth())
		{
			protected.POST("", r.videoHandler.Publish)
			protected.PATCH("/:videoId", r.videoHandler.Update)
			protected.DELETE("/:videoId", r.videoHandler.Delete)
			protected.PATCH("/toggle/publish/:videoId", r.videoHandler.TogglePublish)
		}
	}
}

func (r *Router) subscriptionRoutes(version *gin.RouterGroup) {
	subscriptions := version.Group("/subscriptions")
	subscriptions.Use(r.jwtMw.RequireAuth())
	{
		subscriptions.POST("/c/:channelId", r.subscriptionHandler.Toggle)
	}
}
