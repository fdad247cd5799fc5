package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/justsurfingit/hiring-pipeline/internal/models"
	"github.com/justsurfingit/hiring-pipeline/internal/pipeline"
)

// ApplicationFilter narrows FindApplications. Zero values are ignored.
type ApplicationFilter struct {
	JobID     uuid.UUID
	Stage     string
	Query     string // substring of name, email or cover letter, any case
	MinRating int    // scorecard rating threshold; unscored applications never match
}

// Store is the gorm-backed persistence for jobs and applications. Errors it
// returns are wrapped in the pipeline taxonomy.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) withHistory(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).
		Preload("StageHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Scorecard")
}

func (s *Store) FindApplications(ctx context.Context, f ApplicationFilter) ([]models.Application, error) {
	q := s.withHistory(ctx).Model(&models.Application{})
	if f.JobID != uuid.Nil {
		q = q.Where("job_id = ?", f.JobID)
	}
	if f.Stage != "" {
		q = q.Where("status = ?", f.Stage)
	}
	if f.Query != "" {
		like := "%" + escapeLike(strings.ToLower(f.Query)) + "%"
		q = q.Where(`(LOWER(candidate_name) LIKE ? ESCAPE '\' OR LOWER(candidate_email) LIKE ? ESCAPE '\' OR LOWER(cover_letter) LIKE ? ESCAPE '\')`, like, like, like)
	}
	if f.MinRating > 0 {
		q = q.Where("EXISTS (SELECT 1 FROM scorecards WHERE scorecards.application_id = applications.id AND scorecards.rating >= ?)", f.MinRating)
	}

	apps := []models.Application{}
	if err := q.Order("applied_at").Order("created_at").Find(&apps).Error; err != nil {
		return nil, translate(err)
	}
	return apps, nil
}

func (s *Store) FindApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := s.withHistory(ctx).First(&app, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &app, nil
}

func (s *Store) CreateApplication(ctx context.Context, app *models.Application) error {
	return translate(s.DB.WithContext(ctx).Omit(clause.Associations).Create(app).Error)
}

// SaveApplication writes app and everything appended to it since it was
// loaded (history entries and a replaced scorecard) in one transaction.
func (s *Store) SaveApplication(ctx context.Context, app *models.Application) error {
	var pending []int
	for i := range app.StageHistory {
		if app.StageHistory[i].ID == 0 {
			pending = append(pending, i)
		}
	}
	newScorecard := app.Scorecard != nil && app.Scorecard.ID == 0

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The catalog may have changed since the transition was validated.
		var job models.Job
		if err := tx.Select("id", "stages").First(&job, "id = ?", app.JobID).Error; err != nil {
			return err
		}
		if !pipeline.CatalogOf(&job).Contains(app.Status) {
			return fmt.Errorf("stage %q was removed from job %s: %w", app.Status, job.ID, pipeline.ErrConflict)
		}
		if err := tx.Omit(clause.Associations).Save(app).Error; err != nil {
			return err
		}
		for _, i := range pending {
			entry := &app.StageHistory[i]
			entry.ApplicationID = app.ID
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
		}
		if newScorecard {
			sc := app.Scorecard
			sc.ApplicationID = app.ID
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "application_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"rating", "competencies", "summary", "updated_at", "updated_by"}),
			}).Create(sc).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// The transaction rolled back, so nothing appended here was stored.
		for _, i := range pending {
			app.StageHistory[i].ID = 0
		}
		if newScorecard {
			app.Scorecard.ID = 0
		}
		return translate(err)
	}
	return nil
}

func (s *Store) FindJobs(ctx context.Context) ([]models.Job, error) {
	jobs := []models.Job{}
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, translate(err)
	}
	return jobs, nil
}

func (s *Store) FindJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := s.DB.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &job, nil
}

func (s *Store) CreateJob(ctx context.Context, job *models.Job) error {
	return translate(s.DB.WithContext(ctx).Create(job).Error)
}

// SaveJob updates job, refusing catalogs that drop a stage some application
// of the job is still in.
func (s *Store) SaveJob(ctx context.Context, job *models.Job) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var occupied []string
		err := tx.Model(&models.Application{}).
			Where("job_id = ?", job.ID).
			Distinct().Pluck("status", &occupied).Error
		if err != nil {
			return err
		}
		catalog := pipeline.CatalogOf(job)
		for _, stage := range occupied {
			if !catalog.Contains(stage) {
				return fmt.Errorf("stage %q still has applications: %w", stage, pipeline.ErrConflict)
			}
		}
		return tx.Save(job).Error
	})
	return translate(err)
}

// DeleteJob removes a job that no application refers to.
func (s *Store) DeleteJob(ctx context.Context, id uuid.UUID) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.Job
		if err := tx.First(&job, "id = ?", id).Error; err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.Application{}).Where("job_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("job has %d applications: %w", count, pipeline.ErrConflict)
		}
		return tx.Delete(&job).Error
	})
	return translate(err)
}

// translate maps gorm errors onto the pipeline taxonomy.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pipeline.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", pipeline.ErrConflict, err)
	case errors.Is(err, pipeline.ErrConflict), errors.Is(err, pipeline.ErrNotFound):
		return err
	default:
		return fmt.Errorf("%w: %v", pipeline.ErrPersistence, err)
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
