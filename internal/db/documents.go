package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

// AddCVDocument records an archived CV as the candidate's current document.
// Earlier documents are kept with is_current cleared.
func (db *DB) AddCVDocument(ctx context.Context, doc *types.CVDocument) (*types.CVDocument, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var version int
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM cv_documents WHERE candidate_id = $1`,
		doc.CandidateID,
	).Scan(&version); err != nil {
		return nil, fmt.Errorf("failed to compute document version: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE cv_documents SET is_current = FALSE WHERE candidate_id = $1 AND is_current`,
		doc.CandidateID,
	); err != nil {
		return nil, fmt.Errorf("failed to supersede documents: %w", err)
	}

	out := *doc
	err = tx.QueryRow(ctx,
		`INSERT INTO cv_documents (candidate_id, file_path, file_name, file_type, version, is_current)
		 VALUES ($1, $2, $3, $4, $5, TRUE)
		 RETURNING id, version, is_current, uploaded_at`,
		doc.CandidateID, doc.FilePath, doc.FileName, nullIfEmpty(doc.FileType), version,
	).Scan(&out.ID, &out.Version, &out.IsCurrent, &out.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &out, nil
}

// ListCVDocuments returns a candidate's documents, newest first.
func (db *DB) ListCVDocuments(ctx context.Context, candidateID string) ([]types.CVDocument, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, candidate_id, file_path, file_name, COALESCE(file_type, ''), version, is_current, uploaded_at
		 FROM cv_documents WHERE candidate_id = $1 ORDER BY version DESC`,
		candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.CVDocument, error) {
		var d types.CVDocument
		err := row.Scan(&d.ID, &d.CandidateID, &d.FilePath, &d.FileName, &d.FileType, &d.Version, &d.IsCurrent, &d.UploadedAt)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}
	return docs, nil
}
