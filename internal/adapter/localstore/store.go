// Package localstore keeps the local-only draft in an encrypted SQLite slot.
package localstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"resume-builder/internal/cryptox"
	"resume-builder/internal/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	slotCurrent = "current"
	saltKey     = "salt"

	DefaultMaxAge = 24 * time.Hour
)

// ErrEmpty is returned when the slot holds nothing or only an expired entry.
var ErrEmpty = errors.New("local slot is empty")

// Entry is the content of the slot.
type Entry struct {
	Document    model.Document
	LastUpdated time.Time
	LocalOnly   bool
}

type Store struct {
	db     *sql.DB
	key    []byte
	maxAge time.Duration
	now    func() time.Time
}

type Option func(*Store)

// WithMaxAge sets how long an entry survives. Zero or less keeps entries forever.
func WithMaxAge(d time.Duration) Option {
	return func(s *Store) { s.maxAge = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// RunMigrations applies the embedded schema.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("migrate local store: %w", err)
	}
	return nil
}

// Open opens (or creates) the database at dsn, migrates it and unlocks it
// with passphrase.
func Open(ctx context.Context, dsn, passphrase string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	s, err := New(ctx, db, passphrase, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New unlocks an already migrated database. The salt is created on first use.
func New(ctx context.Context, db *sql.DB, passphrase string, opts ...Option) (*Store, error) {
	s := &Store{db: db, maxAge: DefaultMaxAge, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	salt, err := s.salt(ctx)
	if err != nil {
		return nil, err
	}
	s.key = cryptox.DeriveMasterKey([]byte(passphrase), salt)
	return s, nil
}

func (s *Store) salt(ctx context.Context) ([]byte, error) {
	var salt []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, saltKey).Scan(&salt)
	if err == nil {
		return salt, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", saltKey, err)
	}

	salt, err = cryptox.NewSalt()
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, saltKey, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to set metadata[%s]: %w", saltKey, err)
	}
	return salt, nil
}

// Save overwrites the slot with doc, stamped with the current time.
func (s *Store) Save(ctx context.Context, doc model.Document) error {
	ct, nonce, err := cryptox.EncryptEntry(doc, s.key)
	if err != nil {
		return fmt.Errorf("encryption error: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO local_documents (slot, ciphertext, nonce, last_updated, is_local_only)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(slot) DO UPDATE SET
			ciphertext = excluded.ciphertext,
			nonce = excluded.nonce,
			last_updated = excluded.last_updated,
			is_local_only = excluded.is_local_only
	`, slotCurrent, ct, nonce, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save local document: %w", err)
	}
	return nil
}

// Get returns the slot. Entries older than the configured max age are
// deleted and reported as ErrEmpty.
func (s *Store) Get(ctx context.Context) (Entry, error) {
	var (
		ct, nonce []byte
		updated   int64
		localOnly int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT ciphertext, nonce, last_updated, is_local_only FROM local_documents WHERE slot = ?`, slotCurrent,
	).Scan(&ct, &nonce, &updated, &localOnly)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrEmpty
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to load local document: %w", err)
	}

	e := Entry{LastUpdated: time.UnixMilli(updated), LocalOnly: localOnly != 0}
	if s.maxAge > 0 && s.now().Sub(e.LastUpdated) > s.maxAge {
		if err := s.Clear(ctx); err != nil {
			return Entry{}, err
		}
		return Entry{}, ErrEmpty
	}

	if err := cryptox.DecryptEntry(ct, nonce, s.key, &e.Document); err != nil {
		return Entry{}, fmt.Errorf("error decrypting local document: %w", err)
	}
	e.Document = model.Normalize(e.Document)
	return e, nil
}

// Load returns the stored document and whether one was found.
func (s *Store) Load(ctx context.Context) (model.Document, bool, error) {
	e, err := s.Get(ctx)
	if errors.Is(err, ErrEmpty) {
		return model.Document{}, false, nil
	}
	if err != nil {
		return model.Document{}, false, err
	}
	return e.Document, true, nil
}

// Clear empties the slot.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM local_documents WHERE slot = ?`, slotCurrent); err != nil {
		return fmt.Errorf("failed to clear local document: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
