package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/justsurfingit/hiring-pipeline/internal/models"
)

// CandidateInput carries the fields needed to open an application.
type CandidateInput struct {
	CandidateName  string `json:"candidateName" validate:"required"`
	CandidateEmail string `json:"candidateEmail" validate:"required,email"`
	ResumeURL      string `json:"resumeUrl" validate:"omitempty,url"`
	CoverLetter    string `json:"coverLetter"`
}

// NewApplication opens an application for job in the first stage of its catalog.
// History starts empty; the first entry is written by the first transition.
func NewApplication(job *models.Job, in CandidateInput, now time.Time) (*models.Application, error) {
	if job == nil {
		return nil, fmt.Errorf("job: %w", ErrNotFound)
	}
	in.CandidateName = strings.TrimSpace(in.CandidateName)
	in.CandidateEmail = strings.TrimSpace(in.CandidateEmail)
	if err := check(in); err != nil {
		return nil, err
	}
	return &models.Application{
		JobID:          job.ID,
		CandidateName:  in.CandidateName,
		CandidateEmail: in.CandidateEmail,
		ResumeURL:      in.ResumeURL,
		CoverLetter:    in.CoverLetter,
		AppliedAt:      now,
		Status:         CatalogOf(job).Initial(),
		StageHistory:   []models.StageHistoryEntry{},
	}, nil
}

// JobInput carries the editable fields of a job posting.
type JobInput struct {
	Title                 string                       `json:"title" validate:"required"`
	Description           string                       `json:"description" validate:"required"`
	Location              string                       `json:"location"`
	Type                  string                       `json:"type"`
	Department            string                       `json:"department"`
	Stages                []string                     `json:"stages"`
	NotificationTemplates models.NotificationTemplates `json:"notificationTemplates"`
}

// CheckJob validates a job payload and returns the stages to store, filling in
// the default catalog when none are given.
func CheckJob(in JobInput) ([]string, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	stages := in.Stages
	if len(stages) == 0 {
		stages = models.DefaultStages
	}
	c, err := NewCatalog(stages)
	if err != nil {
		return nil, err
	}
	for stage := range in.NotificationTemplates {
		if !c.Contains(stage) {
			return nil, invalidField("notificationTemplates", fmt.Sprintf("stage %q is not in the catalog", stage))
		}
	}
	return c.Stages(), nil
}
