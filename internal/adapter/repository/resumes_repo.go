package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"resume-builder/internal/domain"
	"resume-builder/internal/model"
	"resume-builder/internal/scoring"
)

type ResumesRepo struct {
	pool   *pgxpool.Pool
	cipher contactCipher
}

// NewResumesRepo returns a Postgres backed repository. fieldKey seals the
// contact fields listed in EncryptedContactFields; nil stores them as is.
func NewResumesRepo(pool *pgxpool.Pool, fieldKey []byte) *ResumesRepo {
	return &ResumesRepo{pool: pool, cipher: contactCipher{key: fieldKey}}
}

// Save upserts rec by id. created_at of an existing row is kept and written
// back into rec.
func (r *ResumesRepo) Save(ctx context.Context, rec *domain.ResumeRecord) error {
	if r.pool == nil {
		return ErrNoDatabase
	}

	doc, err := r.cipher.seal(rec.Document)
	if err != nil {
		return err
	}
	docB, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	var atsB []byte
	if rec.ATS != nil {
		if atsB, err = json.Marshal(rec.ATS); err != nil {
			return fmt.Errorf("marshal ats: %w", err)
		}
	}

	err = r.pool.QueryRow(ctx, `INSERT INTO resumes (id, locale, document, ats, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET locale = EXCLUDED.locale, document = EXCLUDED.document, ats = EXCLUDED.ats, updated_at = EXCLUDED.updated_at
		RETURNING created_at`,
		rec.ID, rec.Document.Locale, docB, atsB, rec.CreatedAt, rec.UpdatedAt).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert resume %s: %w", rec.ID, err)
	}
	return nil
}

func (r *ResumesRepo) Get(ctx context.Context, id string) (*domain.ResumeRecord, error) {
	if r.pool == nil {
		return nil, ErrNoDatabase
	}

	rec := &domain.ResumeRecord{ID: id}
	var docB, atsB []byte
	err := r.pool.QueryRow(ctx, `SELECT document, ats, created_at, updated_at FROM resumes WHERE id = $1`, id).
		Scan(&docB, &atsB, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get resume %s: %w", id, err)
	}

	var doc model.Document
	if err := json.Unmarshal(docB, &doc); err != nil {
		return nil, fmt.Errorf("decode resume %s: %w", id, err)
	}
	if rec.Document, err = r.cipher.open(model.Normalize(doc)); err != nil {
		return nil, err
	}
	if len(atsB) > 0 {
		var ats scoring.Result
		if err := json.Unmarshal(atsB, &ats); err != nil {
			return nil, fmt.Errorf("decode ats %s: %w", id, err)
		}
		rec.ATS = &ats
	}
	return rec, nil
}

func (r *ResumesRepo) Ping(ctx context.Context) error {
	if r.pool == nil {
		return ErrNoDatabase
	}
	var one int
	return r.pool.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func (r *ResumesRepo) Encrypted() bool {
	return r.cipher.enabled()
}

// Delete removes the record. Deleting an unknown id reports ErrNotFound.
func (r *ResumesRepo) Delete(ctx context.Context, id string) error {
	if r.pool == nil {
		return ErrNoDatabase
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete resume %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
