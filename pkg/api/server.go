package api

import "github.com/gin-gonic/gin"

// NewServer configures the gin engine with the ingestion routes.
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/pull_feeds", handler.PullFeeds)
	r.POST("/pull_feeds", handler.PullFeeds)
	r.GET("/get_recommendation", handler.GetRecommendation)
	r.GET("/health", handler.Health)

	return r
}
