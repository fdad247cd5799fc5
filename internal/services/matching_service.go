package services

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/justsurfingit/hiring-pipeline/internal/database"
	"github.com/justsurfingit/hiring-pipeline/internal/models"
)

// MatcherService recognises a candidate who already applied to a job.
type MatcherService struct {
	Store ApplicationStore
}

func NewMatcherService(store ApplicationStore) *MatcherService {
	return &MatcherService{Store: store}
}

// CandidateAddress splits a raw address header into display name and address.
// e.g. "Anna Lee <Anna@Example.com>" -> name="Anna Lee", addr="anna@example.com"
func CandidateAddress(raw string) (name, addr string) {
	parsed, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", strings.ToLower(strings.TrimSpace(raw)) // Fallback; validation reports it later
	}
	return strings.TrimSpace(parsed.Name), strings.ToLower(parsed.Address)
}

// FindApplicant returns the application of rawAddress for jobID, or nil.
func (s *MatcherService) FindApplicant(ctx context.Context, jobID uuid.UUID, rawAddress string) (*models.Application, error) {
	_, addr := CandidateAddress(rawAddress)
	if addr == "" {
		return nil, nil
	}
	apps, err := s.Store.FindApplications(ctx, database.ApplicationFilter{JobID: jobID, Query: addr})
	if err != nil {
		return nil, err
	}
	for i := range apps {
		// The query is a substring match; "ann@x.com" also hits "joann@x.com".
		if _, existing := CandidateAddress(apps[i].CandidateEmail); existing == addr {
			return &apps[i], nil
		}
	}
	return nil, nil
}
