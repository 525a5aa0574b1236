package db

import (
	"context"
	"fmt"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

// DefaultApplicationStatus is used when a link is created without a status.
const DefaultApplicationStatus = "shortlisted"

// LinkCandidate associates a candidate with a position. Linking an existing pair
// is a no-op; created reports whether a new row was inserted.
func (db *DB) LinkCandidate(ctx context.Context, link types.CandidatePosition) (created bool, err error) {
	status := link.ApplicationStatus
	if status == "" {
		status = DefaultApplicationStatus
	}
	result, err := db.pool.Exec(ctx,
		`INSERT INTO candidate_positions (candidate_id, position_id, application_status, notes)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (candidate_id, position_id) DO NOTHING`,
		link.CandidateID, link.PositionID, status, nullIfEmpty(link.Notes),
	)
	if err != nil {
		return false, fmt.Errorf("failed to link candidate %s to %s: %w", link.CandidateID, link.PositionID, err)
	}
	return result.RowsAffected() > 0, nil
}

// AssociatedCandidateIDs returns the candidates already linked to a position.
func (db *DB) AssociatedCandidateIDs(ctx context.Context, positionID string) ([]string, error) {
	ids, err := db.queryStrings(ctx,
		`SELECT candidate_id FROM candidate_positions WHERE position_id = $1 ORDER BY candidate_id`,
		positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list associated candidates: %w", err)
	}
	return ids, nil
}

// AssociatedPositionIDs returns the positions a candidate is already linked to.
func (db *DB) AssociatedPositionIDs(ctx context.Context, candidateID string) ([]string, error) {
	ids, err := db.queryStrings(ctx,
		`SELECT position_id FROM candidate_positions WHERE candidate_id = $1 ORDER BY position_id`,
		candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list associated positions: %w", err)
	}
	return ids, nil
}
