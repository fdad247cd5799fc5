package pipeline

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"

	"github.com/justsurfingit/hiring-pipeline/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so errors line up with request bodies.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// CompetencyInput is one scored competency. Rating 0 means not rated.
type CompetencyInput struct {
	Key    string `json:"key"`
	Rating int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Notes  string `json:"notes"`
}

// ScorecardInput is the payload of a scorecard update.
type ScorecardInput struct {
	Rating       int               `json:"rating" validate:"gte=1,lte=5"`
	Competencies []CompetencyInput `json:"competencies" validate:"dive"`
	Summary      string            `json:"summary"`
}

// MergeScorecard replaces app's scorecard wholesale. On a validation failure
// app is left untouched.
func MergeScorecard(app *models.Application, in ScorecardInput, actor string, now time.Time) error {
	if err := check(in); err != nil {
		return err
	}
	competencies := make([]models.Competency, 0, len(in.Competencies))
	for _, c := range in.Competencies {
		competencies = append(competencies, models.Competency{Key: c.Key, Rating: c.Rating, Notes: c.Notes})
	}
	app.Scorecard = &models.Scorecard{
		ApplicationID: app.ID,
		Rating:        in.Rating,
		Competencies:  datatypes.NewJSONSlice(competencies),
		Summary:       in.Summary,
		UpdatedAt:     now,
		UpdatedBy:     actor,
	}
	return nil
}

// check runs struct validation and folds the result into a *ValidationError.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Fields: map[string]string{"payload": err.Error()}}
	}
	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[fieldPath(fe)] = describe(fe)
	}
	return out
}

// fieldPath drops the struct name from the namespace: "ScorecardInput.rating" -> "rating".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
