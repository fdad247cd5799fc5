package pipeline

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/justsurfingit/hiring-pipeline/internal/models"
)

func TestMergeScorecardRejectsOutOfRange(t *testing.T) {
	job := testJob("applied", "onsite")
	app := testApp(job, "applied")
	prior := &models.Scorecard{Rating: 3, Summary: "solid"}
	app.Scorecard = prior

	tests := []struct {
		name  string
		in    ScorecardInput
		field string
	}{
		{"rating above range", ScorecardInput{Rating: 6}, "rating"},
		{"rating missing", ScorecardInput{Rating: 0}, "rating"},
		{"competency above range", ScorecardInput{Rating: 4, Competencies: []CompetencyInput{{Key: "Communication", Rating: 9}}}, "competencies[0].rating"},
		{"competency negative", ScorecardInput{Rating: 4, Competencies: []CompetencyInput{{Key: "Culture Fit", Rating: -1}}}, "competencies[0].rating"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MergeScorecard(app, tt.in, "", time.Now())
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Fatalf("expected field %q in %v", tt.field, verr.Fields)
			}
			if app.Scorecard != prior {
				t.Fatalf("scorecard replaced despite validation failure")
			}
		})
	}
}

func TestMergeScorecardReplacesWholesale(t *testing.T) {
	job := testJob("applied")
	app := testApp(job, "applied")
	app.Scorecard = &models.Scorecard{
		Rating:       2,
		Summary:      "old",
		Competencies: []models.Competency{{Key: "Technical Skills", Rating: 2}},
	}
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	err := MergeScorecard(app, ScorecardInput{Rating: 5, Summary: "strong hire"}, "sam", now)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	sc := app.Scorecard
	if sc.Rating != 5 || sc.Summary != "strong hire" || sc.UpdatedBy != "sam" || !sc.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected scorecard %+v", sc)
	}
	if len(sc.Competencies) != 0 {
		t.Fatalf("expected prior competencies to be discarded, got %v", sc.Competencies)
	}
	if sc.ApplicationID != app.ID {
		t.Fatalf("scorecard not linked to application")
	}
}

func TestMergeScorecardIsIdempotent(t *testing.T) {
	job := testJob("applied")
	app := testApp(job, "applied")
	in := ScorecardInput{
		Rating: 4,
		Competencies: []CompetencyInput{
			{Key: "Communication", Rating: 5, Notes: "clear"},
			{Key: "Problem-Solving", Notes: "not assessed"},
		},
		Summary: "recommend onsite",
	}

	if err := MergeScorecard(app, in, "", time.Unix(100, 0)); err != nil {
		t.Fatalf("first merge: %v", err)
	}
	first := *app.Scorecard
	if err := MergeScorecard(app, in, "", time.Unix(200, 0)); err != nil {
		t.Fatalf("second merge: %v", err)
	}
	second := *app.Scorecard

	if second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Fatalf("expected updatedAt to move")
	}
	first.UpdatedAt, second.UpdatedAt = time.Time{}, time.Time{}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("scorecards differ beyond updatedAt:\n%+v\n%+v", first, second)
	}
}
