package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"resume-builder/internal/model"
	"resume-builder/internal/scoring"
)

// ErrPDFUnavailable is returned when no PDF renderer is configured.
var ErrPDFUnavailable = errors.New("pdf export is not available")

var pdfMagic = []byte("%PDF")

// ExportPDF renders doc with templateID and prints it to PDF. Rendering is
// retried with exponential backoff, and output without a PDF signature
// counts as a failed attempt.
func (s *Service) ExportPDF(ctx context.Context, doc model.Document, templateID string) ([]byte, error) {
	if s.pdf == nil {
		return nil, ErrPDFUnavailable
	}
	preview, err := s.Preview(ctx, doc, templateID)
	if err != nil {
		return nil, err
	}

	var pdfBytes []byte
	var renderErr error
	for i := 0; i < s.pdfAttempts; i++ {
		pdfBytes, renderErr = s.pdf.RenderHTMLToPDF(ctx, preview.HTML)
		if renderErr == nil {
			if bytes.HasPrefix(pdfBytes, pdfMagic) {
				return pdfBytes, nil
			}
			renderErr = fmt.Errorf("invalid pdf output (%d bytes)", len(pdfBytes))
		}
		s.log.Warn(ctx, "pdf render attempt failed", "attempt", i+1, "error", renderErr)
		if i < s.pdfAttempts-1 {
			select {
			case <-time.After(s.backoff(i)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("rendering failed after %d attempts: %w", s.pdfAttempts, renderErr)
}

// ExportPDFByID exports a stored résumé.
func (s *Service) ExportPDFByID(ctx context.Context, id, templateID string) ([]byte, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.ExportPDF(ctx, rec.Document, templateID)
}

// JSONExport is the portable copy of a stored résumé.
type JSONExport struct {
	model.Document
	ATS        *scoring.Result `json:"ats,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	ExportedAt time.Time       `json:"exported_at"`
}

func (s *Service) ExportJSON(ctx context.Context, id string) (*JSONExport, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	doc := rec.Document
	doc.ID = rec.ID
	return &JSONExport{
		Document:   doc,
		ATS:        rec.ATS,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
		ExportedAt: s.now().UTC(),
	}, nil
}
