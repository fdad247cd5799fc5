package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Default catalog used when a job is created without explicit stages.
const (
	StageApplied     = "applied"
	StagePhoneScreen = "phone_screen"
	StageOnsite      = "onsite"
	StageOffer       = "offer"
	StageHired       = "hired"
	StageRejected    = "rejected"
)

var DefaultStages = []string{StageApplied, StagePhoneScreen, StageOnsite, StageOffer, StageHired, StageRejected}

// NotificationTemplate is the email sent to a candidate when they enter a stage.
type NotificationTemplate struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Enabled bool   `json:"enabled"`
}

type NotificationTemplates map[string]NotificationTemplate

type Job struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	Location    string `gorm:"default:'Not Specified'" json:"location"`
	Type        string `gorm:"default:'Full-time'" json:"type"`
	Department  string `gorm:"default:'General'" json:"department"`

	// Stages is ordered for presentation only; membership is what transitions check.
	Stages                datatypes.JSONSlice[string]               `gorm:"not null" json:"stages"`
	NotificationTemplates datatypes.JSONType[NotificationTemplates] `json:"notificationTemplates"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// Template returns the enabled template for a stage, if any.
func (j *Job) Template(stage string) (NotificationTemplate, bool) {
	tpl, ok := j.NotificationTemplates.Data()[stage]
	if !ok || !tpl.Enabled {
		return NotificationTemplate{}, false
	}
	return tpl, true
}

type Application struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Weak reference; the job's catalog is always looked up, never copied.
	JobID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_job_candidate" json:"jobId"`

	// One application per candidate address and job; the address is stored lowercased.
	CandidateName  string    `gorm:"not null" json:"candidateName"`
	CandidateEmail string    `gorm:"not null;uniqueIndex:idx_job_candidate" json:"candidateEmail"`
	ResumeURL      string    `json:"resumeUrl"`
	CoverLetter    string    `gorm:"type:text" json:"coverLetter"`
	AppliedAt      time.Time `json:"appliedAt"`

	Status       string              `gorm:"not null;index" json:"status"`
	StageHistory []StageHistoryEntry `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"stageHistory"`
	Scorecard    *Scorecard          `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"scorecard"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// StageHistoryEntry is one accepted transition. Rows are only ever inserted;
// the autoincrement ID fixes their order.
type StageHistoryEntry struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	ApplicationID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	From          string    `json:"from"`
	To            string    `gorm:"not null" json:"to"`
	ChangedAt     time.Time `gorm:"not null" json:"changedAt"`
	ChangedBy     string    `json:"changedBy,omitempty"`
	Note          string    `gorm:"type:text" json:"note,omitempty"`
}

// Competency ratings of 0 mean "not rated".
type Competency struct {
	Key    string `json:"key"`
	Rating int    `json:"rating"`
	Notes  string `json:"notes"`
}

type Scorecard struct {
	ID            uint                            `gorm:"primaryKey" json:"-"`
	ApplicationID uuid.UUID                       `gorm:"type:uuid;not null;uniqueIndex" json:"-"`
	Rating        int                             `gorm:"not null;index" json:"rating"`
	Competencies  datatypes.JSONSlice[Competency] `json:"competencies"`
	Summary       string                          `gorm:"type:text" json:"summary"`
	UpdatedAt     time.Time                       `gorm:"autoUpdateTime:false" json:"updatedAt"`
	UpdatedBy     string                          `json:"updatedBy,omitempty"`
}
