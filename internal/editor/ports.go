package editor

import (
	"context"

	"resume-builder/internal/model"
	"resume-builder/internal/scoring"
)

// LocalStore is the single local persistence slot.
type LocalStore interface {
	Save(ctx context.Context, doc model.Document) error
	Load(ctx context.Context) (model.Document, bool, error)
}

// Remote is the backend the session talks to in remote mode.
type Remote interface {
	// Save stores doc, overwriting the record with id when id is set, and
	// returns the confirmed id.
	Save(ctx context.Context, doc model.Document, id string) (string, error)
	Score(ctx context.Context, id string) (scoring.Result, error)
	ParseJobDescription(ctx context.Context, text string) ([]string, error)
	Coverage(ctx context.Context, doc model.Document, keywords []string) (scoring.Coverage, error)
}
