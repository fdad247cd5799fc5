package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/justsurfingit/hiring-pipeline/internal/models"
)

func testJob(stages ...string) *models.Job {
	return &models.Job{
		ID:     uuid.New(),
		Title:  "Backend Engineer",
		Stages: datatypes.NewJSONSlice(stages),
	}
}

func testApp(job *models.Job, status string) *models.Application {
	return &models.Application{
		ID:             uuid.New(),
		JobID:          job.ID,
		CandidateName:  "Anna Lee",
		CandidateEmail: "anna@example.com",
		Status:         status,
	}
}

func TestValidateAcceptsEveryOtherCatalogStage(t *testing.T) {
	job := testJob(models.DefaultStages...)
	for _, from := range models.DefaultStages {
		for _, to := range models.DefaultStages {
			app := testApp(job, from)
			err := Validate(job, app, to)
			if from == to {
				if !errors.Is(err, ErrNoChange) {
					t.Errorf("%s -> %s: expected ErrNoChange, got %v", from, to, err)
				}
				continue
			}
			if err != nil {
				t.Errorf("%s -> %s: expected ok, got %v", from, to, err)
			}
		}
	}
}

func TestValidateRejections(t *testing.T) {
	job := testJob("applied", "onsite", "hired")
	other := testJob("applied")

	tests := []struct {
		name   string
		job    *models.Job
		app    *models.Application
		target string
		want   error
	}{
		{"stage outside catalog", job, testApp(job, "applied"), "rejected", ErrInvalidStage},
		{"same stage", job, testApp(job, "applied"), "applied", ErrNoChange},
		{"missing job", nil, testApp(job, "applied"), "onsite", ErrNotFound},
		{"missing application", job, nil, "onsite", ErrNotFound},
		{"application of another job", job, testApp(other, "applied"), "onsite", ErrNotFound},
		{"empty target", job, testApp(job, "applied"), "", ErrInvalidStage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.job, tt.app, tt.target)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestApplyAppendsOneEntry(t *testing.T) {
	job := testJob("applied", "onsite", "hired")
	app := testApp(job, "applied")
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	entry := Apply(app, Transition{To: "onsite", Note: "good call", Actor: "rita"}, now)

	if app.Status != "onsite" {
		t.Fatalf("expected status onsite, got %s", app.Status)
	}
	if len(app.StageHistory) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(app.StageHistory))
	}
	got := app.StageHistory[0]
	if got != entry {
		t.Fatalf("returned entry %+v differs from appended %+v", entry, got)
	}
	if got.From != "applied" || got.To != "onsite" || got.Note != "good call" {
		t.Fatalf("unexpected entry %+v", got)
	}
	if got.ChangedBy != "rita" || !got.ChangedAt.Equal(now) {
		t.Fatalf("unexpected actor/time %+v", got)
	}
}

func TestApplyKeepsEarlierEntries(t *testing.T) {
	job := testJob("applied", "onsite", "hired")
	app := testApp(job, "applied")
	now := time.Now()

	Apply(app, Transition{To: "onsite"}, now)
	first := app.StageHistory[0]
	Apply(app, Transition{To: "hired"}, now.Add(time.Hour))
	Apply(app, Transition{To: "applied"}, now.Add(2*time.Hour))

	if len(app.StageHistory) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(app.StageHistory))
	}
	if app.StageHistory[0] != first {
		t.Fatalf("first entry changed: %+v", app.StageHistory[0])
	}
	last := app.StageHistory[2]
	if last.From != "hired" || last.To != app.Status {
		t.Fatalf("last entry %+v does not match status %s", last, app.Status)
	}
}
