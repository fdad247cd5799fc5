package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/justsurfingit/hiring-pipeline/internal/models"
	"github.com/justsurfingit/hiring-pipeline/internal/pipeline"
)

// createTestStore opens a fresh SQLite database in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", filepath.Join(t.TempDir(), "test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewStore(db)
}

func seedJob(t *testing.T, s *Store, stages ...string) *models.Job {
	t.Helper()
	job := &models.Job{
		Title:       "Platform Engineer",
		Description: "Keep the lights on",
		Stages:      datatypes.NewJSONSlice(stages),
	}
	if err := s.CreateJob(context.Background(), job); err != nil {
		t.Fatalf("failed to create job: %v", err)
	}
	return job
}

func seedApp(t *testing.T, s *Store, job *models.Job, name, email string) *models.Application {
	t.Helper()
	app, err := pipeline.NewApplication(job, pipeline.CandidateInput{CandidateName: name, CandidateEmail: email}, time.Now())
	if err != nil {
		t.Fatalf("failed to build application: %v", err)
	}
	if err := s.CreateApplication(context.Background(), app); err != nil {
		t.Fatalf("failed to create application: %v", err)
	}
	return app
}

func TestSaveApplicationAppendsHistory(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	job := seedJob(t, s, "applied", "onsite", "hired")
	app := seedApp(t, s, job, "Anna Lee", "anna@example.com")

	for _, to := range []string{"onsite", "hired"} {
		loaded, err := s.FindApplication(ctx, app.ID)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		pipeline.Apply(loaded, pipeline.Transition{To: to, Note: "moved to " + to}, time.Now())
		if err := s.SaveApplication(ctx, loaded); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := s.FindApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != "hired" {
		t.Fatalf("expected status hired, got %s", got.Status)
	}
	if len(got.StageHistory) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(got.StageHistory))
	}
	if h := got.StageHistory[0]; h.From != "applied" || h.To != "onsite" || h.Note != "moved to onsite" {
		t.Fatalf("unexpected first entry %+v", h)
	}
	if h := got.StageHistory[1]; h.From != "onsite" || h.To != "hired" {
		t.Fatalf("unexpected second entry %+v", h)
	}
}

func TestSaveApplicationReplacesScorecard(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	job := seedJob(t, s, "applied")
	app := seedApp(t, s, job, "Bob Han", "bob@example.com")

	inputs := []pipeline.ScorecardInput{
		{Rating: 2, Summary: "first", Competencies: []pipeline.CompetencyInput{{Key: "Communication", Rating: 2}}},
		{Rating: 5, Summary: "second"},
	}
	for _, in := range inputs {
		loaded, err := s.FindApplication(ctx, app.ID)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if err := pipeline.MergeScorecard(loaded, in, "", time.Now()); err != nil {
			t.Fatalf("merge: %v", err)
		}
		if err := s.SaveApplication(ctx, loaded); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	var count int64
	s.DB.Model(&models.Scorecard{}).Where("application_id = ?", app.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single scorecard row, got %d", count)
	}
	got, _ := s.FindApplication(ctx, app.ID)
	if got.Scorecard == nil || got.Scorecard.Rating != 5 || got.Scorecard.Summary != "second" {
		t.Fatalf("unexpected scorecard %+v", got.Scorecard)
	}
	if len(got.Scorecard.Competencies) != 0 {
		t.Fatalf("expected competencies to be replaced, got %v", got.Scorecard.Competencies)
	}
}

func TestFindApplicationsFilters(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	job := seedJob(t, s, "applied", "onsite")
	other := seedJob(t, s, "applied")

	anna := seedApp(t, s, job, "Anna Lee", "anna@example.com")
	bob := seedApp(t, s, job, "Bob Han", "bob@example.com")
	seedApp(t, s, job, "Cid", "cid@example.com")
	seedApp(t, s, other, "Dana", "dana@example.com")

	bob.CoverLetter = "I love 100% uptime"
	pipeline.Apply(bob, pipeline.Transition{To: "onsite"}, time.Now())
	if err := pipeline.MergeScorecard(bob, pipeline.ScorecardInput{Rating: 4}, "", time.Now()); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if err := s.SaveApplication(ctx, bob); err != nil {
		t.Fatalf("save bob: %v", err)
	}
	if err := pipeline.MergeScorecard(anna, pipeline.ScorecardInput{Rating: 2}, "", time.Now()); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if err := s.SaveApplication(ctx, anna); err != nil {
		t.Fatalf("save anna: %v", err)
	}

	tests := []struct {
		name   string
		filter ApplicationFilter
		want   int
	}{
		{"all", ApplicationFilter{}, 4},
		{"by job", ApplicationFilter{JobID: job.ID}, 3},
		{"by stage", ApplicationFilter{JobID: job.ID, Stage: "onsite"}, 1},
		{"by name any case", ApplicationFilter{Query: "AN"}, 3},
		{"by cover letter", ApplicationFilter{Query: "uptime"}, 1},
		{"literal percent", ApplicationFilter{Query: "100%"}, 1},
		{"min rating", ApplicationFilter{MinRating: 3}, 1},
		{"min rating low", ApplicationFilter{MinRating: 1}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apps, err := s.FindApplications(ctx, tt.filter)
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if len(apps) != tt.want {
				t.Fatalf("expected %d applications, got %d", tt.want, len(apps))
			}
		})
	}
}

func TestFindApplicationNotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.FindApplication(context.Background(), uuid.New())
	if !errors.Is(err, pipeline.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, err = s.FindJob(context.Background(), uuid.New())
	if !errors.Is(err, pipeline.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveJobKeepsOccupiedStages(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	job := seedJob(t, s, "applied", "onsite", "hired")
	app := seedApp(t, s, job, "Anna Lee", "anna@example.com")
	pipeline.Apply(app, pipeline.Transition{To: "onsite"}, time.Now())
	if err := s.SaveApplication(ctx, app); err != nil {
		t.Fatalf("save: %v", err)
	}

	job.Stages = datatypes.NewJSONSlice([]string{"applied", "hired"})
	if err := s.SaveJob(ctx, job); !errors.Is(err, pipeline.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	job.Stages = datatypes.NewJSONSlice([]string{"onsite", "hired", "offer"})
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("expected catalog change to succeed: %v", err)
	}
	got, _ := s.FindJob(ctx, job.ID)
	if len(got.Stages) != 3 || got.Stages[2] != "offer" {
		t.Fatalf("unexpected stages %v", got.Stages)
	}
}

func TestDeleteJobForbiddenWithApplications(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	busy := seedJob(t, s, "applied")
	seedApp(t, s, busy, "Anna Lee", "anna@example.com")
	idle := seedJob(t, s, "applied")

	if err := s.DeleteJob(ctx, busy.ID); !errors.Is(err, pipeline.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := s.DeleteJob(ctx, idle.ID); err != nil {
		t.Fatalf("delete idle job: %v", err)
	}
	if _, err := s.FindJob(ctx, idle.ID); !errors.Is(err, pipeline.ErrNotFound) {
		t.Fatalf("expected deleted job to be gone, got %v", err)
	}
	if err := s.DeleteJob(ctx, uuid.New()); !errors.Is(err, pipeline.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNotificationTemplatesRoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	job := &models.Job{
		Title:       "Designer",
		Description: "Pixels",
		Stages:      datatypes.NewJSONSlice([]string{"applied", "offer"}),
		NotificationTemplates: datatypes.NewJSONType(models.NotificationTemplates{
			"offer": {Subject: "Offer for {{jobTitle}}", Body: "Hi {{candidateName}}", Enabled: true},
		}),
	}
	if err := s.CreateJob(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := s.FindJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	tpl, ok := got.Template("offer")
	if !ok || tpl.Subject != "Offer for {{jobTitle}}" {
		t.Fatalf("unexpected template %+v (ok=%v)", tpl, ok)
	}
	if _, ok := got.Template("applied"); ok {
		t.Fatalf("expected no template for applied")
	}
}

func TestSaveApplicationRollsBackWhenHistoryInsertFails(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	job := seedJob(t, s, "applied", "onsite", "hired")
	app := seedApp(t, s, job, "Anna Lee", "anna@example.com")

	err := s.DB.Callback().Create().Before("gorm:create").Register("test:fail_history", func(db *gorm.DB) {
		if db.Statement.Schema != nil && db.Statement.Schema.Table == "stage_history_entries" {
			db.AddError(errors.New("disk full"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	loaded, err := s.FindApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	pipeline.Apply(loaded, pipeline.Transition{To: "onsite", Note: "lost"}, time.Now())
	if err := s.SaveApplication(ctx, loaded); !errors.Is(err, pipeline.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if id := loaded.StageHistory[len(loaded.StageHistory)-1].ID; id != 0 {
		t.Fatalf("expected unsaved entry to keep ID 0, got %d", id)
	}

	var status string
	if err := s.DB.Model(&models.Application{}).Where("id = ?", app.ID).Pluck("status", &status).Error; err != nil {
		t.Fatalf("read status: %v", err)
	}
	if status != "applied" {
		t.Fatalf("status change survived the rollback: %s", status)
	}
	var entries int64
	s.DB.Model(&models.StageHistoryEntry{}).Where("application_id = ?", app.ID).Count(&entries)
	if entries != 0 {
		t.Fatalf("expected no history rows, got %d", entries)
	}
}

func TestCreateApplicationRejectsSameCandidateTwice(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	job := seedJob(t, s, "applied", "onsite")
	seedApp(t, s, job, "Anna Lee", "anna@example.com")

	dup, err := pipeline.NewApplication(job, pipeline.CandidateInput{CandidateName: "Anna L.", CandidateEmail: "anna@example.com"}, time.Now())
	if err != nil {
		t.Fatalf("build application: %v", err)
	}
	if err := s.CreateApplication(ctx, dup); !errors.Is(err, pipeline.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	other := seedJob(t, s, "applied")
	seedApp(t, s, other, "Anna Lee", "anna@example.com")
}

func TestSaveApplicationRejectsStageRemovedFromCatalog(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	job := seedJob(t, s, "applied", "onsite", "hired")
	app := seedApp(t, s, job, "Anna Lee", "anna@example.com")

	loaded, err := s.FindApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if err := pipeline.Validate(job, loaded, "onsite"); err != nil {
		t.Fatalf("validate: %v", err)
	}

	// The catalog changes between validation and the write.
	job.Stages = datatypes.NewJSONSlice([]string{"applied", "hired"})
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("save job: %v", err)
	}

	pipeline.Apply(loaded, pipeline.Transition{To: "onsite"}, time.Now())
	if err := s.SaveApplication(ctx, loaded); !errors.Is(err, pipeline.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	got, _ := s.FindApplication(ctx, app.ID)
	if got.Status != "applied" || len(got.StageHistory) != 0 {
		t.Fatalf("rejected save changed state: %+v", got)
	}
}
