// Package editor coordinates edits to one résumé draft: it keeps the live
// snapshot, debounces preview and coverage work, and routes saves to local
// or remote persistence.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"resume-builder/internal/logging"
	"resume-builder/internal/model"
	"resume-builder/internal/mutation"
	"resume-builder/internal/scoring"
)

const DefaultDebounce = 300 * time.Millisecond

type Mode int

const (
	ModeLocalOnly Mode = iota
	ModeRemote
)

func (m Mode) String() string {
	if m == ModeRemote {
		return "remote"
	}
	return "local-only"
}

type Config struct {
	Debounce  time.Duration
	Mode      Mode
	Local     LocalStore
	Remote    Remote
	Scheduler Scheduler
	// Rubric scores documents locally. Defaults to scoring.DefaultRubric.
	Rubric *scoring.Rubric
	Logger logging.Logger

	// OnPreview receives the debounced snapshot each time the quiet period ends.
	OnPreview func(model.Document)
	// OnCoverage receives coverage of the debounced snapshot when keywords are set.
	OnCoverage func(scoring.Coverage)
}

// SaveResult is the outcome of an explicit save.
type SaveResult struct {
	ID    string         `json:"id,omitempty"`
	Score scoring.Result `json:"score"`
	Mode  string         `json:"mode"`
}

type Session struct {
	cfg    Config
	rubric scoring.Rubric
	log    logging.Logger
	tokens tokens

	mu        sync.Mutex
	mode      Mode
	live      model.Document
	debounced model.Document
	id        string
	keywords  []string
	timer     Timer
	gen       uint64
	closed    bool
	// version counts accepted edits.
	version uint64

	// saveMu serialises writes to the local slot; written is the version
	// last stored there.
	saveMu  sync.Mutex
	written uint64
}

func NewSession(doc model.Document, cfg Config) *Session {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = realScheduler{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	rubric := scoring.DefaultRubric()
	if cfg.Rubric != nil {
		rubric = *cfg.Rubric
	}
	return &Session{
		cfg:       cfg,
		rubric:    rubric,
		log:       cfg.Logger,
		mode:      cfg.Mode,
		live:      doc,
		debounced: doc,
		id:        doc.ID,
	}
}

func (s *Session) Live() model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// Debounced returns the snapshot last handed to the preview.
func (s *Session) Debounced() model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debounced
}

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches persistence for subsequent saves. Nothing already stored
// is moved between stores.
func (s *Session) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

func (s *Session) Keywords() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keywords
}

// SetKeywords replaces the keyword set and schedules a coverage refresh.
func (s *Session) SetKeywords(keywords []string) {
	s.mu.Lock()
	s.keywords = keywords
	s.scheduleLocked()
	s.mu.Unlock()
}

// Apply sets the field at path on the live snapshot.
func (s *Session) Apply(ctx context.Context, path string, value any) (model.Document, error) {
	return s.mutate(ctx, func(doc model.Document) (model.Document, error) {
		return mutation.ApplyPathUpdate(doc, path, value)
	})
}

func (s *Session) Append(ctx context.Context, key string, item any) (model.Document, error) {
	return s.mutate(ctx, func(doc model.Document) (model.Document, error) {
		return mutation.AppendArrayItem(doc, key, item)
	})
}

func (s *Session) Remove(ctx context.Context, key string, index int) (model.Document, error) {
	return s.mutate(ctx, func(doc model.Document) (model.Document, error) {
		return mutation.RemoveArrayItem(doc, key, index)
	})
}

// mutate applies fn to the live snapshot. A rejected edit leaves the live
// snapshot as it was. In local-only mode the new snapshot is written to the
// local slot straight away.
func (s *Session) mutate(ctx context.Context, fn func(model.Document) (model.Document, error)) (model.Document, error) {
	s.mu.Lock()
	next, err := fn(s.live)
	if err != nil {
		cur := s.live
		s.mu.Unlock()
		return cur, err
	}
	s.live = next
	s.version++
	version := s.version
	s.scheduleLocked()
	persist := s.mode == ModeLocalOnly && s.cfg.Local != nil
	s.mu.Unlock()

	if persist {
		if err := s.writeLocal(ctx, next, version); err != nil {
			s.log.Warn(ctx, "local autosave failed", "error", err)
		}
	}
	return next, nil
}

// scheduleLocked cancels any pending debounce and starts a new quiet period.
func (s *Session) scheduleLocked() {
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = s.cfg.Scheduler.AfterFunc(s.cfg.Debounce, func() { s.fire(gen) })
}

// writeLocal stores doc in the local slot unless a newer version is already
// there.
func (s *Session) writeLocal(ctx context.Context, doc model.Document, version uint64) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if version < s.written {
		return nil
	}
	if err := s.cfg.Local.Save(ctx, doc); err != nil {
		return err
	}
	s.written = version
	return nil
}

// fire runs the debounced work for gen at most once.
func (s *Session) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.closed {
		s.mu.Unlock()
		return
	}
	s.gen++
	s.timer = nil
	s.debounced = s.live
	snap, keywords := s.debounced, s.keywords
	s.mu.Unlock()

	if s.cfg.OnPreview != nil {
		s.cfg.OnPreview(snap)
	}
	if s.cfg.OnCoverage != nil && len(keywords) > 0 {
		cov, err := scoring.ComputeCoverage(snap, keywords)
		if err != nil {
			return
		}
		s.cfg.OnCoverage(cov)
	}
}

// Flush runs a pending debounce now.
func (s *Session) Flush() {
	s.mu.Lock()
	if s.timer == nil {
		s.mu.Unlock()
		return
	}
	s.timer.Stop()
	gen := s.gen
	s.mu.Unlock()
	s.fire(gen)
}

// Close cancels a pending debounce. Edits after Close are still applied but
// no longer trigger previews.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.closed = true
}

// Restore replaces the live snapshot with the local slot, if it holds one.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	if s.cfg.Local == nil {
		return false, nil
	}
	doc, ok, err := s.cfg.Local.Load(ctx)
	if err != nil || !ok {
		return false, err
	}
	s.mu.Lock()
	s.live, s.debounced = doc, doc
	if doc.ID != "" {
		s.id = doc.ID
	}
	s.mu.Unlock()
	return true, nil
}

// Save persists the live snapshot and scores it.
//
// In local-only mode the snapshot goes to the local slot and is scored
// locally. In remote mode it is sent to the backend, and only once the id is
// confirmed is the score requested for that id; a failing score request
// falls back to local scoring. A failing save returns *NetworkError.
func (s *Session) Save(ctx context.Context) (SaveResult, error) {
	s.mu.Lock()
	snap, mode, id, version := s.live, s.mode, s.id, s.version
	s.mu.Unlock()

	if mode == ModeLocalOnly || s.cfg.Remote == nil {
		if s.cfg.Local != nil {
			if err := s.writeLocal(ctx, snap, version); err != nil {
				return SaveResult{}, fmt.Errorf("save local draft: %w", err)
			}
		}
		return SaveResult{ID: id, Score: s.scoreLocal(snap), Mode: ModeLocalOnly.String()}, nil
	}

	token := s.tokens.next(opSave)
	confirmed, err := s.cfg.Remote.Save(ctx, snap, id)
	if err != nil {
		s.log.Warn(ctx, "remote save failed", "error", err)
		if !s.tokens.current(opSave, token) {
			return SaveResult{}, ErrStaleResponse
		}
		return SaveResult{}, &NetworkError{Op: "save", Err: err}
	}
	s.confirm(confirmed, s.tokens.current(opSave, token))

	score, err := s.cfg.Remote.Score(ctx, confirmed)
	if err != nil {
		s.log.Warn(ctx, "remote score failed, scoring locally", "id", confirmed, "error", err)
		score = s.scoreLocal(snap)
	}
	if !s.tokens.current(opSave, token) {
		return SaveResult{}, ErrStaleResponse
	}
	return SaveResult{ID: confirmed, Score: score, Mode: ModeRemote.String()}, nil
}

// confirm records the backend id. The answer to the latest save always wins;
// a stale one may only fill in a missing id so that later saves overwrite
// instead of creating a second record.
func (s *Session) confirm(id string, current bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id != "" && s.id != id && !current {
		return
	}
	s.id = id
	if s.live.ID != id {
		next := s.live
		next.ID = id
		s.live = next
	}
}

func (s *Session) scoreLocal(doc model.Document) scoring.Result {
	res := s.rubric.Score(doc)
	res.Rubric = scoring.RubricLocal
	return res
}

// ParseJobDescription extracts keywords from text and makes them the
// session's keyword set. Remote extraction falls back to the local extractor.
func (s *Session) ParseJobDescription(ctx context.Context, text string) ([]string, error) {
	if s.Mode() == ModeLocalOnly || s.cfg.Remote == nil {
		kws := scoring.ExtractKeywords(text)
		s.SetKeywords(kws)
		return kws, nil
	}

	token := s.tokens.next(opParse)
	kws, err := s.cfg.Remote.ParseJobDescription(ctx, text)
	if err != nil {
		s.log.Warn(ctx, "remote keyword extraction failed, using local extractor", "error", err)
		kws = scoring.ExtractKeywords(text)
	}
	if !s.tokens.current(opParse, token) {
		return nil, ErrStaleResponse
	}
	s.SetKeywords(kws)
	return kws, nil
}

// CheckCoverage computes coverage of the live snapshot against keywords, or
// against the session's keyword set when keywords is empty.
func (s *Session) CheckCoverage(ctx context.Context, keywords []string) (scoring.Coverage, error) {
	s.mu.Lock()
	snap, mode := s.live, s.mode
	if len(keywords) == 0 {
		keywords = s.keywords
	}
	s.mu.Unlock()

	if len(keywords) == 0 {
		return scoring.Coverage{}, scoring.ErrNoKeywords
	}
	if mode == ModeLocalOnly || s.cfg.Remote == nil {
		return scoring.ComputeCoverage(snap, keywords)
	}

	token := s.tokens.next(opCoverage)
	cov, err := s.cfg.Remote.Coverage(ctx, snap, keywords)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return scoring.Coverage{}, err
		}
		s.log.Warn(ctx, "remote coverage failed, computing locally", "error", err)
		cov, err = scoring.ComputeCoverage(snap, keywords)
		if err != nil {
			return scoring.Coverage{}, err
		}
	}
	if !s.tokens.current(opCoverage, token) {
		return scoring.Coverage{}, ErrStaleResponse
	}
	return cov, nil
}
