package dtos

import "github.com/justsurfingit/hiring-pipeline/internal/models"

type JobExtractionRequest struct {
	RawHTML string `json:"rawHtml" binding:"required"`
	URL     string `json:"url"`
}

// JobExtraction is what the LLM pulls out of a posting to pre-fill a job.
type JobExtraction struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Type        string `json:"type"`
	Department  string `json:"department"`
}

type JobRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`

	// Optional Fields
	Location              string                       `json:"location"`
	Type                  string                       `json:"type"`
	Department            string                       `json:"department"`
	Stages                []string                     `json:"stages"` // Defaults to the standard pipeline if empty
	NotificationTemplates models.NotificationTemplates `json:"notificationTemplates"`
}
