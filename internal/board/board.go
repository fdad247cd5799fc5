// Package board keeps a client-side copy of a job's pipeline and applies
// stage moves optimistically until the server confirms or rejects them.
package board

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justsurfingit/hiring-pipeline/internal/models"
	"github.com/justsurfingit/hiring-pipeline/internal/pipeline"
)

// Move is a stage change that has been shown locally but not yet confirmed.
type Move struct {
	ApplicationID uuid.UUID
	From          string
	To            string
	Note          string
	StartedAt     time.Time
}

// Mover sends a stage change to the server and returns its authoritative record.
type Mover interface {
	MoveApplication(ctx context.Context, id uuid.UUID, to, note string) (*models.Application, error)
}

// Board holds the confirmed server state and at most one pending move per
// application. The optimistic view is always confirmed state with the pending
// moves applied on top.
type Board struct {
	Now func() time.Time

	mu        sync.Mutex
	job       models.Job
	order     []uuid.UUID
	confirmed map[uuid.UUID]models.Application
	pending   map[uuid.UUID]Move
}

func New(job models.Job, apps []models.Application) *Board {
	b := &Board{Now: time.Now}
	b.Load(job, apps)
	return b
}

// Load replaces the confirmed state and drops every pending move.
func (b *Board) Load(job models.Job, apps []models.Application) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.job = job
	b.order = make([]uuid.UUID, 0, len(apps))
	b.confirmed = make(map[uuid.UUID]models.Application, len(apps))
	b.pending = make(map[uuid.UUID]Move)
	for _, app := range apps {
		if _, seen := b.confirmed[app.ID]; !seen {
			b.order = append(b.order, app.ID)
		}
		b.confirmed[app.ID] = clone(app)
	}
}

// Begin records a pending move and makes it visible in the optimistic view.
// Only one move per application may be outstanding.
func (b *Board) Begin(id uuid.UUID, to, note string) (Move, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, busy := b.pending[id]; busy {
		return Move{}, fmt.Errorf("application %s: %w", id, pipeline.ErrTransitionPending)
	}
	app, ok := b.confirmed[id]
	if !ok {
		return Move{}, fmt.Errorf("application %s: %w", id, pipeline.ErrNotFound)
	}
	if err := pipeline.Validate(&b.job, &app, to); err != nil {
		return Move{}, err
	}
	m := Move{ApplicationID: id, From: app.Status, To: to, Note: note, StartedAt: b.now()}
	b.pending[id] = m
	return m, nil
}

// Confirm adopts the server's record for an application and clears its
// pending move. The server's history replaces the provisional entry.
func (b *Board) Confirm(app models.Application) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.confirmed[app.ID]; !ok {
		return fmt.Errorf("application %s: %w", app.ID, pipeline.ErrNotFound)
	}
	b.confirmed[app.ID] = clone(app)
	delete(b.pending, app.ID)
	return nil
}

// Rollback discards the pending move of an application, if any.
func (b *Board) Rollback(id uuid.UUID) (Move, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.pending[id]
	delete(b.pending, id)
	return m, ok
}

func (b *Board) pendingMove(id uuid.UUID) (Move, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.pending[id]
	return m, ok
}

// Application returns the optimistic record of one application.
func (b *Board) Application(id uuid.UUID) (models.Application, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.confirmed[id]; !ok {
		return models.Application{}, false
	}
	return b.optimistic(id), true
}

// Applications returns every optimistic record in load order.
func (b *Board) Applications() []models.Application {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Application, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.optimistic(id))
	}
	return out
}

// View groups the optimistic records by stage.
func (b *Board) View(filter string) pipeline.View {
	apps := b.Applications()
	b.mu.Lock()
	job := b.job
	b.mu.Unlock()
	return pipeline.BuildView(&job, apps, filter)
}

// Move runs one optimistic stage change against the server: the change is
// shown at once, then confirmed with the server's record or rolled back.
func (b *Board) Move(ctx context.Context, m Mover, id uuid.UUID, to, note string) (*models.Application, error) {
	if _, err := b.Begin(id, to, note); err != nil {
		return nil, err
	}
	app, err := m.MoveApplication(ctx, id, to, note)
	if err != nil {
		b.Rollback(id)
		return nil, err
	}
	if err := b.Confirm(*app); err != nil {
		b.Rollback(id)
		return nil, err
	}
	return app, nil
}

// optimistic must be called with mu held.
func (b *Board) optimistic(id uuid.UUID) models.Application {
	app := clone(b.confirmed[id])
	if m, ok := b.pending[id]; ok {
		pipeline.Apply(&app, pipeline.Transition{To: m.To, Note: m.Note}, m.StartedAt)
	}
	return app
}

func (b *Board) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

func clone(app models.Application) models.Application {
	app.StageHistory = append([]models.StageHistoryEntry(nil), app.StageHistory...)
	if app.Scorecard != nil {
		sc := *app.Scorecard
		sc.Competencies = append(sc.Competencies[:0:0], sc.Competencies...)
		app.Scorecard = &sc
	}
	return app
}
