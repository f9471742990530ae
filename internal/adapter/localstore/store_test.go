package localstore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/model"
)

func openStore(t *testing.T, dsn string, opts ...Option) *Store {
	t.Helper()
	s, err := Open(context.Background(), dsn, "correct horse", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func draft() model.Document {
	doc := model.NewDocument("US")
	doc.Contact.FullName = "Jane Doe"
	doc.Skills = []string{"Go"}
	doc.Experience = []*model.Experience{{ID: "e1", Company: "Acme"}}
	return doc
}

func TestStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "local.db"))

	_, found, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Save(ctx, draft()))

	got, found, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, draft(), got)

	entry, err := s.Get(ctx)
	require.NoError(t, err)
	assert.True(t, entry.LocalOnly)
	assert.WithinDuration(t, time.Now(), entry.LastUpdated, time.Minute)
}

func TestStore_SingleSlotOverwrite(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "local.db"))

	first := draft()
	second := draft()
	second.Summary = "updated"
	require.NoError(t, s.Save(ctx, first))
	require.NoError(t, s.Save(ctx, second))

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM local_documents`).Scan(&n))
	assert.Equal(t, 1, n)

	got, _, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Summary)
}

func TestStore_EncryptedAtRest(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, s.Save(ctx, draft()))

	var ct []byte
	require.NoError(t, s.db.QueryRow(`SELECT ciphertext FROM local_documents`).Scan(&ct))
	assert.NotContains(t, string(ct), "Jane Doe")
}

func TestStore_ReopenKeepsSalt(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "local.db")

	s, err := Open(ctx, dsn, "pass")
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, draft()))
	require.NoError(t, s.Close())

	again := openStore(t, dsn)
	_, err = again.Get(ctx)
	assert.Error(t, err, "different passphrase must not decrypt")

	s2, err := Open(ctx, dsn, "pass")
	require.NoError(t, err)
	defer s2.Close()
	got, found, err := s2.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Jane Doe", got.Contact.FullName)
}

func TestStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	s := openStore(t, filepath.Join(t.TempDir(), "local.db"), WithClock(clock), WithMaxAge(24*time.Hour))
	require.NoError(t, s.Save(ctx, draft()))

	now = now.Add(23 * time.Hour)
	_, found, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)

	now = now.Add(2 * time.Hour)
	_, err = s.Get(ctx)
	assert.ErrorIs(t, err, ErrEmpty)

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM local_documents`).Scan(&n))
	assert.Zero(t, n, "expired entry is discarded")
}

func TestStore_NoExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	s := openStore(t, filepath.Join(t.TempDir(), "local.db"),
		WithClock(func() time.Time { return now }), WithMaxAge(0))
	require.NoError(t, s.Save(ctx, draft()))

	now = now.Add(30 * 24 * time.Hour)
	_, found, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, s.Save(ctx, draft()))
	require.NoError(t, s.Clear(ctx))

	_, err := s.Get(ctx)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))
}

const saltQuery = `SELECT value FROM metadata WHERE key = ?`

func TestNew_SaltQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(saltQuery)).WithArgs(saltKey).WillReturnError(errors.New("disk I/O error"))

	_, err = New(context.Background(), db, "pass")
	assert.ErrorContains(t, err, "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNew_CreatesSalt(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(saltQuery)).WithArgs(saltKey).WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO metadata").WithArgs(saltKey, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(1, 1))

	_, err = New(context.Background(), db, "pass")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func mockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery(regexp.QuoteMeta(saltQuery)).WithArgs(saltKey).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte("0123456789abcdef")))
	s, err := New(context.Background(), db, "pass")
	require.NoError(t, err)
	return s, mock
}

func TestStore_SaveError(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectExec("INSERT INTO local_documents").WillReturnError(errors.New("database is locked"))

	err := s.Save(context.Background(), draft())
	assert.ErrorContains(t, err, "failed to save local document")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LoadError(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectQuery("SELECT ciphertext, nonce").WithArgs(slotCurrent).WillReturnError(errors.New("database is locked"))

	_, found, err := s.Load(context.Background())
	assert.False(t, found)
	assert.ErrorContains(t, err, "failed to load local document")
	assert.NoError(t, mock.ExpectationsWereMet())
}
