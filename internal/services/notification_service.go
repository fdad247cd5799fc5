package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/justsurfingit/hiring-pipeline/internal/models"
)

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, msg Email) error
}

// NotifyResult reports the outcome of one notification. Failures are advisory.
type NotifyResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NotificationService emails candidates when they enter a stage whose
// template is enabled. Delivery is best effort and never fails a transition.
type NotificationService struct {
	Sender  Sender
	Timeout time.Duration

	wg sync.WaitGroup
}

func NewNotificationService(sender Sender, timeout time.Duration) *NotificationService {
	return &NotificationService{Sender: sender, Timeout: timeout}
}

// Notify renders and sends the template for stage. It never returns an error
// and never panics; the outcome is described by the result.
func (s *NotificationService) Notify(ctx context.Context, app *models.Application, job *models.Job, stage string) (res NotifyResult) {
	defer func() {
		if r := recover(); r != nil {
			res = NotifyResult{Success: false, Message: fmt.Sprintf("notification panicked: %v", r)}
		}
	}()

	if s == nil || s.Sender == nil {
		return NotifyResult{Success: false, Message: "Notifications not configured"}
	}
	tpl, ok := job.Template(stage)
	if !ok {
		return NotifyResult{Success: false, Message: "Email template not enabled"}
	}
	if strings.TrimSpace(app.CandidateEmail) == "" {
		return NotifyResult{Success: false, Message: "No candidate email"}
	}

	subject, body := Render(tpl, app, job)
	if err := s.Sender.Send(ctx, Email{To: app.CandidateEmail, Subject: subject, Body: body}); err != nil {
		return NotifyResult{Success: false, Message: err.Error()}
	}
	return NotifyResult{Success: true, Message: "Email sent successfully"}
}

// Dispatch sends the notification in the background with its own timeout,
// detached from the caller's request.
func (s *NotificationService) Dispatch(app models.Application, job models.Job, stage string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout())
		defer cancel()

		logPrefix := fmt.Sprintf("[Notify app=%s stage=%s]", app.ID, stage)
		res := s.Notify(ctx, &app, &job, stage)
		if !res.Success {
			log.Printf("%s ⚠️ not sent: %s", logPrefix, res.Message)
			return
		}
		log.Printf("%s ✅ %s", logPrefix, res.Message)
	}()
}

// Wait blocks until every dispatched notification has finished.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

func (s *NotificationService) timeout() time.Duration {
	if s.Timeout <= 0 {
		return 15 * time.Second
	}
	return s.Timeout
}

// Render substitutes every {{candidateName}} and {{jobTitle}} in the template.
func Render(tpl models.NotificationTemplate, app *models.Application, job *models.Job) (subject, body string) {
	r := strings.NewReplacer(
		"{{candidateName}}", app.CandidateName,
		"{{jobTitle}}", job.Title,
	)
	return r.Replace(tpl.Subject), r.Replace(tpl.Body)
}
