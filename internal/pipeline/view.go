package pipeline

import (
	"strings"

	"github.com/justsurfingit/hiring-pipeline/internal/models"
)

// StageGroup is one column of the pipeline board.
type StageGroup struct {
	Stage        string               `json:"stage"`
	Applications []models.Application `json:"applications"`
}

// View is the board for one job: a group per catalog stage, in catalog order.
type View []StageGroup

// BuildView keeps the applications of job that match filter and groups them by
// status. Every catalog stage gets a group, empty or not, and input order is
// kept inside each group. Applications whose status is outside the catalog
// cannot be placed and are left out.
func BuildView(job *models.Job, apps []models.Application, filter string) View {
	stages := CatalogOf(job).Stages()
	view := make(View, len(stages))
	index := make(map[string]int, len(stages))
	for i, s := range stages {
		view[i] = StageGroup{Stage: s, Applications: []models.Application{}}
		index[s] = i
	}
	for _, app := range apps {
		if app.JobID != job.ID || !Matches(&app, filter) {
			continue
		}
		i, ok := index[app.Status]
		if !ok {
			continue
		}
		view[i].Applications = append(view[i].Applications, app)
	}
	return view
}

// Matches reports whether the candidate's name or email contains filter,
// ignoring case. An empty filter matches everything.
func Matches(app *models.Application, filter string) bool {
	if filter == "" {
		return true
	}
	q := strings.ToLower(filter)
	return strings.Contains(strings.ToLower(app.CandidateName), q) ||
		strings.Contains(strings.ToLower(app.CandidateEmail), q)
}

// Group returns the applications in stage, or nil if stage is not on the board.
func (v View) Group(stage string) []models.Application {
	for _, g := range v {
		if g.Stage == stage {
			return g.Applications
		}
	}
	return nil
}

// Flatten concatenates the groups in board order.
func (v View) Flatten() []models.Application {
	var out []models.Application
	for _, g := range v {
		out = append(out, g.Applications...)
	}
	return out
}
