package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/justsurfingit/hiring-pipeline/internal/database"
	"github.com/justsurfingit/hiring-pipeline/internal/dtos"
	"github.com/justsurfingit/hiring-pipeline/internal/services"
)

type ApplicationHandler struct {
	ApplicationService *services.ApplicationService
}

func NewApplicationHandler(a *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{ApplicationService: a}
}

// ListApplications is GET /applications?jobId=&stage=&q=&minRating=
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	var q dtos.ApplicationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	filter := database.ApplicationFilter{Stage: q.Stage, Query: q.Query, MinRating: q.MinRating}
	if q.JobID != "" {
		jobID, err := uuid.Parse(q.JobID)
		if err != nil {
			badRequest(c, err)
			return
		}
		filter.JobID = jobID
	}
	apps, err := h.ApplicationService.ListApplications(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, "Applications retrieved", apps)
}

func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	app, err := h.ApplicationService.GetApplication(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, "Application retrieved", app)
}

func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	var req dtos.ApplicationCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	app, err := h.ApplicationService.CreateApplication(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusCreated, "Application created", app)
}

// UpdateStatus is PATCH /applications/:id/status
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dtos.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	app, err := h.ApplicationService.TransitionStatus(c.Request.Context(), id, &req, actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, "Status updated", app)
}

// UpdateScorecard is PATCH /applications/:id/scorecard
func (h *ApplicationHandler) UpdateScorecard(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dtos.ScorecardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	app, err := h.ApplicationService.UpdateScorecard(c.Request.Context(), id, &req, actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, "Scorecard updated", app)
}

// DraftSummary is POST /applications/:id/scorecard/draft
func (h *ApplicationHandler) DraftSummary(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	summary, err := h.ApplicationService.DraftScorecardSummary(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, "Summary drafted", gin.H{"summary": summary})
}
