package dtos

import "github.com/google/uuid"

type ApplicationCreationRequest struct {
	JobID          uuid.UUID `json:"jobId" binding:"required"`
	CandidateName  string    `json:"candidateName"`
	CandidateEmail string    `json:"candidateEmail"`
	ResumeURL      string    `json:"resumeUrl"`
	CoverLetter    string    `json:"coverLetter"`
}

type StatusChangeRequest struct {
	To   string `json:"to" binding:"required"`
	Note string `json:"note"`
}

type CompetencyRequest struct {
	Key    string `json:"key"`
	Rating int    `json:"rating"`
	Notes  string `json:"notes"`
}

type ScorecardRequest struct {
	Rating       int                 `json:"rating"`
	Competencies []CompetencyRequest `json:"competencies"`
	Summary      string              `json:"summary"`
}

// ApplicationQuery holds the list filters of GET /api/applications.
type ApplicationQuery struct {
	JobID     string `form:"jobId"`
	Stage     string `form:"stage"`
	Query     string `form:"q"`
	MinRating int    `form:"minRating" binding:"omitempty,gte=0,lte=5"`
}
