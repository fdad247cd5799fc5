package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/justsurfingit/hiring-pipeline/internal/database"
	"github.com/justsurfingit/hiring-pipeline/internal/dtos"
	"github.com/justsurfingit/hiring-pipeline/internal/models"
	"github.com/justsurfingit/hiring-pipeline/internal/pipeline"
)

// ApplicationStore is the persistence the pipeline engine runs on.
type ApplicationStore interface {
	FindApplications(ctx context.Context, f database.ApplicationFilter) ([]models.Application, error)
	FindApplication(ctx context.Context, id uuid.UUID) (*models.Application, error)
	CreateApplication(ctx context.Context, app *models.Application) error
	SaveApplication(ctx context.Context, app *models.Application) error
	FindJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// Dispatcher hands a stage notification off without waiting for it.
type Dispatcher interface {
	Dispatch(app models.Application, job models.Job, stage string)
}

type ApplicationService struct {
	Store    ApplicationStore
	Notifier Dispatcher
	LLM      *LLMService
	Matcher  *MatcherService
	Now      func() time.Time
}

func NewApplicationService(store ApplicationStore, notifier Dispatcher, llm *LLMService) *ApplicationService {
	return &ApplicationService{
		Store:    store,
		Notifier: notifier,
		LLM:      llm,
		Matcher:  NewMatcherService(store),
		Now:      time.Now,
	}
}

func (s *ApplicationService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *ApplicationService) ListApplications(ctx context.Context, f database.ApplicationFilter) ([]models.Application, error) {
	return s.Store.FindApplications(ctx, f)
}

func (s *ApplicationService) GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	return s.Store.FindApplication(ctx, id)
}

// CreateApplication opens an application in the first stage of its job.
// A candidate may apply to the same job only once.
func (s *ApplicationService) CreateApplication(ctx context.Context, req *dtos.ApplicationCreationRequest) (*models.Application, error) {
	job, err := s.Store.FindJob(ctx, req.JobID)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", req.JobID, err)
	}
	displayName, email := CandidateAddress(req.CandidateEmail)
	name := req.CandidateName
	if strings.TrimSpace(name) == "" {
		name = displayName
	}
	if s.Matcher != nil {
		existing, err := s.Matcher.FindApplicant(ctx, job.ID, email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%s already applied (application %s): %w", email, existing.ID, pipeline.ErrConflict)
		}
	}
	app, err := pipeline.NewApplication(job, pipeline.CandidateInput{
		CandidateName:  name,
		CandidateEmail: email,
		ResumeURL:      req.ResumeURL,
		CoverLetter:    req.CoverLetter,
	}, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.Store.CreateApplication(ctx, app); err != nil {
		return nil, err
	}
	log.Printf("[Application %s] created for job %s in %q", app.ID, job.ID, app.Status)
	return app, nil
}

// TransitionStatus validates and applies a stage change, then hands any
// enabled stage notification to the dispatcher. The status and its history
// entry are written together or not at all.
func (s *ApplicationService) TransitionStatus(ctx context.Context, id uuid.UUID, req *dtos.StatusChangeRequest, actor string) (*models.Application, error) {
	app, err := s.Store.FindApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("application %s: %w", id, err)
	}
	job, err := s.Store.FindJob(ctx, app.JobID)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", app.JobID, err)
	}
	if err := pipeline.Validate(job, app, req.To); err != nil {
		return nil, err
	}

	logPrefix := fmt.Sprintf("[Transition app=%s]", app.ID)
	from := app.Status
	pipeline.Apply(app, pipeline.Transition{To: req.To, Note: req.Note, Actor: actor}, s.now())
	if err := s.Store.SaveApplication(ctx, app); err != nil {
		log.Printf("%s ❌ %s -> %s not saved: %v", logPrefix, from, req.To, err)
		return nil, err
	}
	log.Printf("%s ⚡ %s -> %s", logPrefix, from, req.To)

	if _, ok := job.Template(req.To); ok && app.CandidateEmail != "" && s.Notifier != nil {
		s.Notifier.Dispatch(*app, *job, req.To)
	}
	return app, nil
}

// UpdateScorecard replaces the application's scorecard.
func (s *ApplicationService) UpdateScorecard(ctx context.Context, id uuid.UUID, req *dtos.ScorecardRequest, actor string) (*models.Application, error) {
	app, err := s.Store.FindApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("application %s: %w", id, err)
	}
	in := pipeline.ScorecardInput{Rating: req.Rating, Summary: req.Summary}
	for _, c := range req.Competencies {
		in.Competencies = append(in.Competencies, pipeline.CompetencyInput{Key: c.Key, Rating: c.Rating, Notes: c.Notes})
	}
	if err := pipeline.MergeScorecard(app, in, actor, s.now()); err != nil {
		return nil, err
	}
	if err := s.Store.SaveApplication(ctx, app); err != nil {
		log.Printf("[Scorecard app=%s] ❌ not saved: %v", app.ID, err)
		return nil, err
	}
	log.Printf("[Scorecard app=%s] ✅ rating=%d", app.ID, app.Scorecard.Rating)
	return app, nil
}

// DraftScorecardSummary asks the LLM for a summary of the stored scorecard.
// Nothing is written back.
func (s *ApplicationService) DraftScorecardSummary(ctx context.Context, id uuid.UUID) (string, error) {
	app, err := s.Store.FindApplication(ctx, id)
	if err != nil {
		return "", fmt.Errorf("application %s: %w", id, err)
	}
	if app.Scorecard == nil {
		return "", &pipeline.ValidationError{Fields: map[string]string{"scorecard": "application has no scorecard yet"}}
	}
	job, err := s.Store.FindJob(ctx, app.JobID)
	if err != nil {
		return "", fmt.Errorf("job %s: %w", app.JobID, err)
	}
	return s.LLM.DraftScorecardSummary(ctx, job, app)
}
