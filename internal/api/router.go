package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	_ "go-linerecord-pipeline/docs"
	"go-linerecord-pipeline/internal/api/handler"
	"go-linerecord-pipeline/pkg/router"
)

func RegisterRoutes(r *router.Router, h *handler.JobHandler) {
	r.POST("/api/v1/jobs", h.CreateJob)
	r.GET("/api/v1/jobs", h.ListJobs)
	// More specific routes first
	r.GET("/api/v1/jobs/*/errors", h.GetJobErrors)
	r.GET("/api/v1/jobs/*/results", h.GetJobResults)
	r.GET("/api/v1/jobs/*/metrics", h.GetJobMetrics)
	// Generic job route last
	r.GET("/api/v1/jobs/*", h.GetJob)

	r.Mount("/swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
