package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/justsurfingit/hiring-pipeline/internal/database"
	"github.com/justsurfingit/hiring-pipeline/internal/dtos"
	"github.com/justsurfingit/hiring-pipeline/internal/models"
	"github.com/justsurfingit/hiring-pipeline/internal/pipeline"
)

type JobStore interface {
	FindJobs(ctx context.Context) ([]models.Job, error)
	FindJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	CreateJob(ctx context.Context, job *models.Job) error
	SaveJob(ctx context.Context, job *models.Job) error
	DeleteJob(ctx context.Context, id uuid.UUID) error
	FindApplications(ctx context.Context, f database.ApplicationFilter) ([]models.Application, error)
}

type JobService struct {
	Store JobStore
}

func NewJobService(store JobStore) *JobService {
	return &JobService{
		Store: store,
	}
}

func (s *JobService) ListJobs(ctx context.Context) ([]models.Job, error) {
	return s.Store.FindJobs(ctx)
}

func (s *JobService) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return s.Store.FindJob(ctx, id)
}

func (s *JobService) CreateJob(ctx context.Context, req *dtos.JobRequest) (*models.Job, error) {
	job := &models.Job{}
	if err := applyJobRequest(job, req); err != nil {
		return nil, err
	}
	if err := s.Store.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	log.Printf("[Job %s] created with stages %v", job.ID, []string(job.Stages))
	return job, nil
}

// UpdateJob replaces the editable fields of a job. Stages that still hold
// applications cannot be removed.
func (s *JobService) UpdateJob(ctx context.Context, id uuid.UUID, req *dtos.JobRequest) (*models.Job, error) {
	job, err := s.Store.FindJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", id, err)
	}
	if err := applyJobRequest(job, req); err != nil {
		return nil, err
	}
	if err := s.Store.SaveJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobService) DeleteJob(ctx context.Context, id uuid.UUID) error {
	if err := s.Store.DeleteJob(ctx, id); err != nil {
		return fmt.Errorf("job %s: %w", id, err)
	}
	log.Printf("[Job %s] deleted", id)
	return nil
}

// Pipeline builds the board for a job, filtered by candidate name or email.
func (s *JobService) Pipeline(ctx context.Context, id uuid.UUID, filter string) (*models.Job, pipeline.View, error) {
	job, err := s.Store.FindJob(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("job %s: %w", id, err)
	}
	apps, err := s.Store.FindApplications(ctx, database.ApplicationFilter{JobID: job.ID})
	if err != nil {
		return nil, nil, err
	}
	return job, pipeline.BuildView(job, apps, filter), nil
}

func applyJobRequest(job *models.Job, req *dtos.JobRequest) error {
	stages, err := pipeline.CheckJob(pipeline.JobInput{
		Title:                 req.Title,
		Description:           req.Description,
		Location:              req.Location,
		Type:                  req.Type,
		Department:            req.Department,
		Stages:                req.Stages,
		NotificationTemplates: req.NotificationTemplates,
	})
	if err != nil {
		return err
	}
	job.Title = req.Title
	job.Description = req.Description
	job.Location = orDefault(req.Location, "Not Specified")
	job.Type = orDefault(req.Type, "Full-time")
	job.Department = orDefault(req.Department, "General")
	job.Stages = datatypes.NewJSONSlice(stages)
	templates := req.NotificationTemplates
	if templates == nil {
		templates = models.NotificationTemplates{}
	}
	job.NotificationTemplates = datatypes.NewJSONType(templates)
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
