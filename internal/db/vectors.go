package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

// CandidateNeighbor is a candidate row returned by a nearest-neighbor query.
// Distance is the pgvector cosine distance in [0, 2].
type CandidateNeighbor struct {
	ID              string
	FirstName       string
	LastName        string
	Email           *string
	Location        *string
	Summary         string
	Title           string // most recent experience entry
	Company         string
	ExperienceCount int
	Distance        float64
}

// PositionNeighbor is a position row returned by a nearest-neighbor query.
type PositionNeighbor struct {
	ID          string
	Title       string
	Company     string
	Location    string
	Description string
	Experience  string
	Distance    float64
}

const candidateNeighborColumns = `
	c.id, c.first_name, c.last_name, c.email, c.location, COALESCE(c.summary, ''),
	COALESCE((SELECT e.title FROM candidate_experience e WHERE e.candidate_id = c.id ORDER BY e.order_index LIMIT 1), ''),
	COALESCE((SELECT e.company FROM candidate_experience e WHERE e.candidate_id = c.id ORDER BY e.order_index LIMIT 1), ''),
	(SELECT COUNT(*) FROM candidate_experience e WHERE e.candidate_id = c.id)`

// NearestCandidates returns up to k embedded candidates closest to the position's
// embedding, nearest first. A position without an embedding yields no rows.
func (db *DB) NearestCandidates(ctx context.Context, positionID string, k int) ([]CandidateNeighbor, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+candidateNeighborColumns+`, c.embedding <=> p.embedding AS distance
		 FROM candidates c, positions p
		 WHERE c.embedding IS NOT NULL AND p.embedding IS NOT NULL AND p.id = $1
		 ORDER BY distance
		 LIMIT $2`,
		positionID, k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearest candidates: %w", err)
	}
	return collectCandidateNeighbors(rows)
}

// NearestCandidatesToVector ranks embedded candidates against an arbitrary vector.
func (db *DB) NearestCandidatesToVector(ctx context.Context, vec []float32, k int) ([]CandidateNeighbor, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+candidateNeighborColumns+`, c.embedding <=> $1 AS distance
		 FROM candidates c
		 WHERE c.embedding IS NOT NULL
		 ORDER BY distance
		 LIMIT $2`,
		pgvector.NewVector(vec), k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates by vector: %w", err)
	}
	return collectCandidateNeighbors(rows)
}

func collectCandidateNeighbors(rows pgx.Rows) ([]CandidateNeighbor, error) {
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (CandidateNeighbor, error) {
		var n CandidateNeighbor
		err := row.Scan(&n.ID, &n.FirstName, &n.LastName, &n.Email, &n.Location, &n.Summary,
			&n.Title, &n.Company, &n.ExperienceCount, &n.Distance)
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan candidate neighbor: %w", err)
	}
	return out, nil
}

// NearestPositions returns up to k embedded positions closest to the candidate's
// embedding, nearest first.
func (db *DB) NearestPositions(ctx context.Context, candidateID string, k int) ([]PositionNeighbor, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT p.id, p.title, p.company, COALESCE(p.location, ''), p.description,
		        COALESCE(p.experience, ''), p.embedding <=> c.embedding AS distance
		 FROM positions p, candidates c
		 WHERE p.embedding IS NOT NULL AND c.embedding IS NOT NULL AND c.id = $1
		 ORDER BY distance
		 LIMIT $2`,
		candidateID, k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearest positions: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (PositionNeighbor, error) {
		var n PositionNeighbor
		err := row.Scan(&n.ID, &n.Title, &n.Company, &n.Location, &n.Description, &n.Experience, &n.Distance)
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan position neighbor: %w", err)
	}
	return out, nil
}
