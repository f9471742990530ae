package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"resume-builder/internal/domain"
	"resume-builder/internal/locale"
	"resume-builder/internal/logging"
	"resume-builder/internal/model"
	"resume-builder/internal/render"
	"resume-builder/internal/scoring"
)

// ErrInvalidInput marks request problems the caller can fix.
var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

type ResumeStore interface {
	Save(ctx context.Context, rec *domain.ResumeRecord) error
	Get(ctx context.Context, id string) (*domain.ResumeRecord, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	// Encrypted reports whether contact fields are sealed at rest.
	Encrypted() bool
}

type KeywordExtractor interface {
	ExtractKeywords(ctx context.Context, jobDescription string) ([]string, error)
}

type PDFRenderer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

type Deps struct {
	Store   ResumeStore
	Presets *locale.Registry
	// Rubric defaults to scoring.DefaultRubric.
	Rubric *scoring.Rubric
	// Extractor is optional; without it keywords come from the local extractor.
	Extractor KeywordExtractor
	PDF       PDFRenderer
	Logger    logging.Logger
	Local     LocalModeSettings
}

type Service struct {
	store     ResumeStore
	presets   *locale.Registry
	rubric    scoring.Rubric
	extractor KeywordExtractor
	pdf       PDFRenderer
	log       logging.Logger
	now       func() time.Time

	pdfAttempts int
	backoff     func(attempt int) time.Duration
	localMu     sync.RWMutex
	local       LocalModeSettings
}

func NewService(d Deps) *Service {
	s := &Service{
		store:       d.Store,
		presets:     d.Presets,
		rubric:      scoring.DefaultRubric(),
		extractor:   d.Extractor,
		pdf:         d.PDF,
		log:         d.Logger,
		now:         time.Now,
		pdfAttempts: 3,
		backoff:     func(i int) time.Duration { return time.Duration(1<<i) * time.Second },
		local:       d.Local,
	}
	if d.Rubric != nil {
		s.rubric = *d.Rubric
	}
	if s.log == nil {
		s.log = logging.Nop()
	}
	if s.presets == nil {
		s.presets = locale.NewRegistry(locale.Embedded(), s.log)
	}
	if s.local == (LocalModeSettings{}) {
		s.local = DefaultLocalModeSettings()
	}
	return s
}

func (s *Service) Rubric() scoring.Rubric {
	return s.rubric
}

// resolveLocale replaces an unknown locale with the catalog default and
// reports the fallback as a soft notice.
func (s *Service) resolveLocale(ctx context.Context, doc model.Document) (model.Document, *locale.Preset, string) {
	p, err := s.presets.Catalog().Resolve(doc.Locale)
	if err == nil {
		return doc, p, ""
	}
	var uerr *locale.UnknownLocaleError
	if errors.As(err, &uerr) {
		s.log.Info(ctx, "unknown locale, using default preset", "locale", doc.Locale, "fallback", uerr.Fallback)
	}
	doc.Locale = p.Code
	return doc, p, err.Error()
}

// Save scores and stores doc. A document without an id gets a new one;
// saving again with the same id overwrites the record.
func (s *Service) Save(ctx context.Context, doc model.Document) (*domain.ResumeRecord, error) {
	if doc.ID == "" {
		doc.ID = model.NewID()
	}
	doc, _, _ = s.resolveLocale(ctx, doc)
	doc = model.EnsureIDs(model.Normalize(doc))

	now := s.now().UTC()
	ats := s.rubric.Score(doc)
	rec := &domain.ResumeRecord{ID: doc.ID, Document: doc, ATS: &ats, CreatedAt: now, UpdatedAt: now}
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save resume: %w", err)
	}
	s.log.Info(ctx, "resume saved", "id", rec.ID, "locale", doc.Locale)
	return rec, nil
}

// Update overwrites an existing record. Unknown ids are not created.
func (s *Service) Update(ctx context.Context, id string, doc model.Document) (*domain.ResumeRecord, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	doc.ID = id
	return s.Save(ctx, doc)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.ResumeRecord, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "resume deleted", "id", id)
	return nil
}

// Score scores a stored record and keeps the result on it.
func (s *Service) Score(ctx context.Context, id string) (scoring.Result, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return scoring.Result{}, err
	}
	res := s.rubric.Score(rec.Document)
	rec.ATS = &res
	rec.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, rec); err != nil {
		s.log.Warn(ctx, "unable to store ats score (non-fatal)", "id", id, "error", err)
	}
	return res, nil
}

// JDResult is the outcome of parsing a job description.
type JDResult struct {
	Keywords    []string               `json:"keywords"`
	TopKeywords []scoring.KeywordCount `json:"top_keywords"`
	Source      string                 `json:"source"`
}

const (
	SourceAI        = "ai"
	SourceHeuristic = "heuristic"
)

// ParseJobDescription extracts keywords with the AI extractor when one is
// configured and the local extractor otherwise or when it fails.
func (s *Service) ParseJobDescription(ctx context.Context, text string) (JDResult, error) {
	if strings.TrimSpace(text) == "" {
		return JDResult{}, invalid("job description text is empty")
	}
	res := JDResult{TopKeywords: scoring.TopKeywords(text, 10), Source: SourceHeuristic}
	if s.extractor != nil {
		kws, err := s.extractor.ExtractKeywords(ctx, text)
		if err == nil {
			res.Keywords, res.Source = kws, SourceAI
			return res, nil
		}
		s.log.Warn(ctx, "ai keyword extraction failed, using heuristic", "error", err)
	}
	res.Keywords = scoring.ExtractKeywords(text)
	return res, nil
}

func (s *Service) Coverage(doc model.Document, keywords []string) (scoring.Coverage, error) {
	cov, err := scoring.ComputeCoverage(doc, keywords)
	if errors.Is(err, scoring.ErrNoKeywords) {
		return cov, invalid("keywords must not be empty")
	}
	return cov, err
}

// ValidationReport combines locale advisories with completeness checks.
type ValidationReport struct {
	Valid   bool                     `json:"valid"`
	Locale  string                   `json:"locale"`
	Issues  []string                 `json:"issues"`
	Missing []string                 `json:"missing"`
	Stages  []*StageValidationResult `json:"stages"`
	Notice  string                   `json:"notice,omitempty"`
}

func (s *Service) Validate(ctx context.Context, doc model.Document) ValidationReport {
	doc, preset, notice := s.resolveLocale(ctx, doc)
	stages, missing := CheckCompleteness(doc)
	return ValidationReport{
		Valid:   len(missing) == 0,
		Locale:  preset.Code,
		Issues:  locale.Validate(doc, preset),
		Missing: missing,
		Stages:  stages,
		Notice:  notice,
	}
}

// SectionOrder computes the visible sections for a locale. An unknown locale
// yields the default order.
func (s *Service) SectionOrder(code string, optional, overrides map[string]bool) []string {
	return locale.ComputeSectionOrder(s.presets.Catalog().Lookup(code), optional, overrides)
}

func (s *Service) Locales() []locale.LocaleInfo {
	return s.presets.Catalog().Locales()
}

func (s *Service) Presets() map[string]*locale.Preset {
	return s.presets.Catalog().Presets()
}

func (s *Service) OptionalFields(code string) (locale.OptionalFieldsResponse, error) {
	return s.presets.Catalog().OptionalFields(code)
}

// Preview renders doc with the section labels of its locale.
func (s *Service) Preview(ctx context.Context, doc model.Document, templateID string) (render.Rendered, error) {
	_, preset, _ := s.resolveLocale(ctx, doc)
	return render.Render(doc, templateID, render.WithLabels(preset.SectionLabels()))
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
