package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/hiring-pipeline/internal/dtos"
	"github.com/justsurfingit/hiring-pipeline/internal/models"
	"github.com/justsurfingit/hiring-pipeline/internal/pipeline"
	"github.com/justsurfingit/hiring-pipeline/internal/services"
)

type JobHandler struct {
	LLMService *services.LLMService
	JobService *services.JobService
}

// NewJobHandler creates the handler with dependencies
func NewJobHandler(llm *services.LLMService, j *services.JobService) *JobHandler {
	return &JobHandler{
		LLMService: llm,
		JobService: j,
	}
}

// ParseJob is the POST /jobs/extract endpoint
func (h *JobHandler) ParseJob(c *gin.Context) {
	var req dtos.JobExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	extracted, err := h.LLMService.ExtractJobDetails(c.Request.Context(), req.RawHTML)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, "Job details extracted", extracted)
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.JobService.ListJobs(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, "Jobs retrieved", jobs)
}

func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	job, err := h.JobService.GetJob(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, "Job retrieved", job)
}

func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	job, err := h.JobService.CreateJob(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusCreated, "Job created", job)
}

func (h *JobHandler) UpdateJob(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dtos.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	job, err := h.JobService.UpdateJob(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, "Job updated", job)
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.JobService.DeleteJob(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, "Job deleted successfully", nil)
}

// PipelineView is the board returned by GET /jobs/:id/pipeline.
type PipelineView struct {
	Job    *models.Job   `json:"job"`
	Stages pipeline.View `json:"stages"`
}

func (h *JobHandler) GetPipeline(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	job, view, err := h.JobService.Pipeline(c.Request.Context(), id, c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, "Pipeline retrieved", PipelineView{Job: job, Stages: view})
}
