package handlers

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires every route under /api.
func NewRouter(jobs *JobHandler, apps *ApplicationHandler, origins []string) *gin.Engine {
	r := gin.Default()
	config := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Actor"}
	r.Use(cors.New(config))

	api := r.Group("/api")
	{
		api.GET("/health", HealthCheck)

		// Job Routes
		api.GET("/jobs", jobs.ListJobs)
		api.POST("/jobs", jobs.CreateJob)
		api.POST("/jobs/extract", jobs.ParseJob)
		api.GET("/jobs/:id", jobs.GetJob)
		api.PUT("/jobs/:id", jobs.UpdateJob)
		api.DELETE("/jobs/:id", jobs.DeleteJob)
		api.GET("/jobs/:id/pipeline", jobs.GetPipeline)

		// Application Routes
		api.GET("/applications", apps.ListApplications)
		api.POST("/applications", apps.CreateApplication)
		api.GET("/applications/:id", apps.GetApplication)
		api.PATCH("/applications/:id/status", apps.UpdateStatus)
		api.PATCH("/applications/:id/scorecard", apps.UpdateScorecard)
		api.POST("/applications/:id/scorecard/draft", apps.DraftSummary)
	}
	return r
}
