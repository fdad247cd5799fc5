package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"mime"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

// Email is a rendered plain-text message for one recipient.
type Email struct {
	To      string
	Subject string
	Body    string
}

// EmailService sends candidate emails through the Gmail API.
type EmailService struct {
	GmailClient *gmail.Service
	From        string
}

func NewEmailService(gmailClient *gmail.Service, from string) *EmailService {
	return &EmailService{
		GmailClient: gmailClient,
		From:        from,
	}
}

// Send delivers msg, retrying transient API failures.
func (s *EmailService) Send(ctx context.Context, msg Email) error {
	if s == nil || s.GmailClient == nil {
		return errors.New("gmail client not configured")
	}
	raw := base64.URLEncoding.EncodeToString(buildRFC822(s.From, msg))

	return retry(ctx, 3, 1*time.Second, func() error {
		_, err := s.GmailClient.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
		return err
	})
}

func buildRFC822(from string, msg Email) []byte {
	var b strings.Builder
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", from)
	}
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// --- HELPERS ---

// retry executes a function with exponential backoff
func retry(ctx context.Context, attempts int, sleep time.Duration, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = f()
		if err == nil {
			return nil
		}
		// Client errors (bad address, revoked token) will not heal by retrying
		if isPermanentError(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		log.Printf("⚠️ API Error: %v. Retrying in %v...", err, sleep)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		sleep *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}

func isPermanentError(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code >= 400 && gErr.Code < 500 && gErr.Code != 429
	}
	return false
}
