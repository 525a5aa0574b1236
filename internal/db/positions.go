package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

// -----------------------------------------------------------------------------
// Position Methods
// -----------------------------------------------------------------------------

// PositionStatusOpen is the status assigned to new positions.
const PositionStatusOpen = "open"

// CreatePosition inserts a position with its requirements, responsibilities and
// skills in one transaction and returns the generated ID.
func (db *DB) CreatePosition(ctx context.Context, p *types.PositionProfile) (string, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('position_id_seq')`).Scan(&seq); err != nil {
		return "", fmt.Errorf("failed to allocate position id: %w", err)
	}
	id := FormatID(PositionPrefix, seq)

	status := p.Status
	if status == "" {
		status = PositionStatusOpen
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO positions (id, status, title, company, location, work_arrangement, experience,
		                        description, compensation, urgency, contact_name, contact_email,
		                        embedding, embedding_text)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		id, status, p.Title, p.Company, nullIfEmpty(p.Location), nullIfEmpty(p.WorkArrangement),
		nullIfEmpty(p.Experience), p.Description, nullIfEmpty(p.Compensation), nullIfEmpty(p.Urgency),
		nullIfEmpty(p.ContactName), nullIfEmpty(p.ContactEmail), toVector(p.Embedding), nullIfEmpty(p.EmbeddingText),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert position: %w", err)
	}

	for i, r := range p.Requirements {
		if _, err := tx.Exec(ctx,
			`INSERT INTO position_requirements (position_id, requirement, is_required, order_index)
			 VALUES ($1, $2, $3, $4)`,
			id, r.Text, r.IsRequired, i,
		); err != nil {
			return "", fmt.Errorf("failed to insert requirement: %w", err)
		}
	}

	for i, r := range p.Responsibilities {
		if _, err := tx.Exec(ctx,
			`INSERT INTO position_responsibilities (position_id, responsibility, order_index)
			 VALUES ($1, $2, $3)`,
			id, r, i,
		); err != nil {
			return "", fmt.Errorf("failed to insert responsibility: %w", err)
		}
	}

	for i, s := range p.Skills {
		if _, err := tx.Exec(ctx,
			`INSERT INTO position_skills (position_id, skill_name, order_index) VALUES ($1, $2, $3)`,
			id, s, i,
		); err != nil {
			return "", fmt.Errorf("failed to insert position skill: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

// GetPosition loads a position with its child rows. Returns nil, nil when the
// position does not exist.
func (db *DB) GetPosition(ctx context.Context, id string) (*types.PositionProfile, error) {
	var p types.PositionProfile
	var location, arrangement, experience, compensation, urgency *string
	var contactName, contactEmail, embeddingText *string
	var embedding *pgvector.Vector

	err := db.pool.QueryRow(ctx,
		`SELECT id, status, title, company, location, work_arrangement, experience, description,
		        compensation, urgency, contact_name, contact_email, embedding, embedding_text, created_at
		 FROM positions WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Status, &p.Title, &p.Company, &location, &arrangement, &experience,
		&p.Description, &compensation, &urgency, &contactName, &contactEmail, &embedding,
		&embeddingText, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	p.Location, p.WorkArrangement, p.Experience = deref(location), deref(arrangement), deref(experience)
	p.Compensation, p.Urgency = deref(compensation), deref(urgency)
	p.ContactName, p.ContactEmail = deref(contactName), deref(contactEmail)
	p.EmbeddingText = deref(embeddingText)
	p.Embedding = fromVector(embedding)

	rows, err := db.pool.Query(ctx,
		`SELECT requirement, is_required FROM position_requirements
		 WHERE position_id = $1 ORDER BY order_index`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load requirements: %w", err)
	}
	p.Requirements, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Requirement, error) {
		var r types.Requirement
		err := row.Scan(&r.Text, &r.IsRequired)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan requirements: %w", err)
	}

	p.Responsibilities, err = db.queryStrings(ctx,
		`SELECT responsibility FROM position_responsibilities WHERE position_id = $1 ORDER BY order_index`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load responsibilities: %w", err)
	}

	p.Skills, err = db.queryStrings(ctx,
		`SELECT skill_name FROM position_skills WHERE position_id = $1 ORDER BY order_index`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load position skills: %w", err)
	}

	return &p, nil
}

// PositionSummary is a lightweight position row for listings.
type PositionSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Company      string `json:"company"`
	Status       string `json:"status"`
	HasEmbedding bool   `json:"has_embedding"`
}

const (
	listPositionsSQL = `SELECT id, title, company, status, embedding IS NOT NULL
		 FROM positions ORDER BY ` + idOrder + ` LIMIT $1`
	unembeddedPositionsSQL = `SELECT id FROM positions WHERE embedding IS NULL ORDER BY ` + idOrder
)

// ListPositions returns positions ordered by ID number.
func (db *DB) ListPositions(ctx context.Context, limit int) ([]PositionSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		listPositionsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	defer rows.Close()

	var out []PositionSummary
	for rows.Next() {
		var s PositionSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Company, &s.Status, &s.HasEmbedding); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListPositionsWithoutEmbedding returns the IDs of positions not yet embedded.
func (db *DB) ListPositionsWithoutEmbedding(ctx context.Context) ([]string, error) {
	ids, err := db.queryStrings(ctx, unembeddedPositionsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list unembedded positions: %w", err)
	}
	return ids, nil
}

// UpdatePositionEmbedding stores a position's vector and canonical text.
func (db *DB) UpdatePositionEmbedding(ctx context.Context, id string, vec []float32, text string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE positions SET embedding = $2, embedding_text = $3, updated_at = NOW() WHERE id = $1`,
		id, toVector(vec), nullIfEmpty(text),
	)
	if err != nil {
		return fmt.Errorf("failed to update position embedding: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("position not found: %s", id)
	}
	return nil
}
