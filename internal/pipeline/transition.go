package pipeline

import (
	"fmt"
	"time"

	"github.com/justsurfingit/hiring-pipeline/internal/models"
)

// Transition is a requested stage change.
type Transition struct {
	To    string
	Note  string
	Actor string
}

// Validate decides whether app may move to target within job's catalog.
// Same-stage requests fail with ErrNoChange so history only records real moves.
func Validate(job *models.Job, app *models.Application, target string) error {
	if job == nil {
		return fmt.Errorf("job: %w", ErrNotFound)
	}
	if app == nil {
		return fmt.Errorf("application: %w", ErrNotFound)
	}
	if app.JobID != job.ID {
		return fmt.Errorf("application %s does not belong to job %s: %w", app.ID, job.ID, ErrNotFound)
	}
	if !CatalogOf(job).Contains(target) {
		return fmt.Errorf("stage %q is not in the job's catalog: %w", target, ErrInvalidStage)
	}
	if app.Status == target {
		return fmt.Errorf("application is already in %q: %w", target, ErrNoChange)
	}
	return nil
}

// Apply moves app to t.To and appends the matching history entry.
// Validate must have accepted the transition first.
func Apply(app *models.Application, t Transition, now time.Time) models.StageHistoryEntry {
	entry := models.StageHistoryEntry{
		ApplicationID: app.ID,
		From:          app.Status,
		To:            t.To,
		ChangedAt:     now,
		ChangedBy:     t.Actor,
		Note:          t.Note,
	}
	app.Status = t.To
	app.StageHistory = append(app.StageHistory, entry)
	return entry
}
