package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/justsurfingit/hiring-pipeline/internal/dtos"
	"github.com/justsurfingit/hiring-pipeline/internal/models"
)

// ErrLLMDisabled is returned by every LLM feature when no API key is configured.
var ErrLLMDisabled = errors.New("llm features are disabled")

type LLMService struct {
	Client llms.Model
}

// NewLLMService initializes the Gemini client. An empty key yields a service
// whose features report ErrLLMDisabled.
func NewLLMService(ctx context.Context, apiKey, model string) (*LLMService, error) {
	if apiKey == "" {
		log.Println("⚠️  GEMINI_API_KEY is empty. LLM features disabled.")
		return &LLMService{}, nil
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &LLMService{
		Client: llm,
	}, nil
}

func (s *LLMService) Enabled() bool {
	return s != nil && s.Client != nil
}

const jobExtractionPrompt = `
You are an expert Job Data Extraction Agent. Your task is to analyze the provided raw HTML/Text from a job posting and extract structured data for a hiring team's applicant tracker.

### INSTRUCTIONS:
1. **Analyze** the text to identify the core job details.
2. **Ignore** navigation menus, footers, "similar jobs" lists, and site advertisements.
3. **Extract** the following fields strictly.
4. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "title": "Job title (e.g., Senior Backend Engineer)",
    "description": "A clean summary of the job. Focus on Responsibilities and Requirements. Remove HTML tags.",
    "location": "Job location or 'Remote'",
    "type": "Full-time, Part-time, Contract or Internship",
    "department": "Team or department (e.g., Engineering)"
}

### CONSTRAINT:
If a piece of information is missing, set the value to an empty string. Do not hallucinate or guess.

### RAW CONTENT:
%s
`

// ExtractJobDetails takes raw posting HTML and returns the fields of a job.
func (s *LLMService) ExtractJobDetails(ctx context.Context, rawHTML string) (*dtos.JobExtraction, error) {
	if !s.Enabled() {
		return nil, ErrLLMDisabled
	}
	rawHTML = truncate(rawHTML, maxPostingBytes)

	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, fmt.Sprintf(jobExtractionPrompt, rawHTML))
	if err != nil {
		return nil, err
	}

	var out dtos.JobExtraction
	if err := json.Unmarshal([]byte(stripCodeFence(resp)), &out); err != nil {
		return nil, fmt.Errorf("parse extraction: %w", err)
	}
	return &out, nil
}

const scorecardSummaryPrompt = `
You are helping a hiring panel write up an interview scorecard for the role "%s".
Write a concise overall summary (3-5 sentences) of the candidate %s based only on the ratings and notes below.
Ratings are on a 1-5 scale; a rating of 0 means the competency was not assessed.
Return plain text only.

Overall rating: %d
Competencies:
%s
Current summary: %s
`

// DraftScorecardSummary proposes an overall summary from the scorecard notes.
func (s *LLMService) DraftScorecardSummary(ctx context.Context, job *models.Job, app *models.Application) (string, error) {
	if !s.Enabled() {
		return "", ErrLLMDisabled
	}
	sc := app.Scorecard
	var lines strings.Builder
	for _, c := range sc.Competencies {
		fmt.Fprintf(&lines, "- %s (%d): %s\n", c.Key, c.Rating, c.Notes)
	}
	prompt := fmt.Sprintf(scorecardSummaryPrompt, job.Title, app.CandidateName, sc.Rating, lines.String(), sc.Summary)

	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}

const maxPostingBytes = 20000

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// stripCodeFence removes a ```json ... ``` wrapper the model sometimes adds anyway.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
