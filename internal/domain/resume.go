package domain

import (
	"time"

	"resume-builder/internal/model"
	"resume-builder/internal/scoring"
)

// ResumeRecord is a stored résumé together with the last ATS score computed
// for it.
type ResumeRecord struct {
	ID        string          `json:"id"`
	Document  model.Document  `json:"document"`
	ATS       *scoring.Result `json:"ats,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
