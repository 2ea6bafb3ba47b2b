package analyses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const analysisColumns = `id, custom_prompt, result, status, model, created_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var (
		a            Analysis
		customPrompt sql.NullString
		result       sql.NullString
		completedAt  sql.NullTime
	)
	if err := row.Scan(&a.ID, &customPrompt, &result, &a.Status, &a.Model, &a.CreatedAt, &completedAt); err != nil {
		return Analysis{}, err
	}
	if customPrompt.Valid {
		a.CustomPrompt = &customPrompt.String
	}
	if result.Valid {
		a.Result = &result.String
	}
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	return a, nil
}

// Create inserts the analysis and its document links in one transaction.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertAnalysis = `
INSERT INTO analyses (id, custom_prompt, result, status, model, created_at, completed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err = tx.ExecContext(
		ctx,
		insertAnalysis,
		analysis.ID,
		nullString(analysis.CustomPrompt),
		nullString(analysis.Result),
		analysis.Status,
		analysis.Model,
		analysis.CreatedAt,
		nullTime(analysis.CompletedAt),
	); err != nil {
		return err
	}

	const insertLink = `INSERT INTO analysis_documents (analysis_id, document_id, position) VALUES ($1, $2, $3)`
	for i, docID := range analysis.DocumentIDs {
		if _, err = tx.ExecContext(ctx, insertLink, analysis.ID, docID, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetByID fetches an analysis and its document ids.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	if _, err := uuid.Parse(analysisID); err != nil {
		return Analysis{}, ErrNotFound
	}
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE id = $1`
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, analysisID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}

	links, err := r.documentIDs(ctx, []string{a.ID})
	if err != nil {
		return Analysis{}, err
	}
	a.DocumentIDs = links[a.ID]
	return a, nil
}

// List returns analyses newest first with their document ids.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + analysisColumns + ` FROM analyses ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, len(out))
	for i, a := range out {
		ids[i] = a.ID
	}
	links, err := r.documentIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].DocumentIDs = links[out[i].ID]
	}
	return out, nil
}

func (r *PGRepo) documentIDs(ctx context.Context, analysisIDs []string) (map[string][]string, error) {
	placeholders := make([]string, len(analysisIDs))
	args := make([]any, len(analysisIDs))
	for i, id := range analysisIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `SELECT analysis_id, document_id FROM analysis_documents WHERE analysis_id IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY analysis_id, position`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make(map[string][]string, len(analysisIDs))
	for rows.Next() {
		var analysisID, documentID string
		if err := rows.Scan(&analysisID, &documentID); err != nil {
			return nil, err
		}
		links[analysisID] = append(links[analysisID], documentID)
	}
	return links, rows.Err()
}

// Count returns the number of analyses.
func (r *PGRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateState writes a status transition.
func (r *PGRepo) UpdateState(ctx context.Context, analysisID string, state State) error {
	const query = `
UPDATE analyses
SET status = $2, result = $3, model = $4, completed_at = $5
WHERE id = $1`
	res, err := r.DB.ExecContext(
		ctx,
		query,
		analysisID,
		state.Status,
		nullString(state.Result),
		state.Model,
		nullTime(state.CompletedAt),
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// Delete removes an analysis; its document links cascade.
func (r *PGRepo) Delete(ctx context.Context, analysisID string) error {
	if _, err := uuid.Parse(analysisID); err != nil {
		return ErrNotFound
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM analyses WHERE id = $1`, analysisID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
