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
// Candidate Methods
// -----------------------------------------------------------------------------

const candidateEmailConstraint = "candidates_email_key"

// CandidateStatusActive is the status assigned to new candidates.
const CandidateStatusActive = "active"

// CreateCandidate inserts a candidate and all child rows in one transaction and
// returns the generated ID. An email collision returns *DuplicateEmailError.
func (db *DB) CreateCandidate(ctx context.Context, c *types.CandidateProfile) (string, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('candidate_id_seq')`).Scan(&seq); err != nil {
		return "", fmt.Errorf("failed to allocate candidate id: %w", err)
	}
	id := FormatID(CandidatePrefix, seq)

	status := c.Status
	if status == "" {
		status = CandidateStatusActive
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO candidates (id, status, first_name, last_name, email, phone, location,
		                         linkedin, github, summary, embedding, embedding_text)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id, status, c.FirstName, c.LastName, c.Email, c.Phone, c.Location,
		c.LinkedIn, c.GitHub, nullIfEmpty(c.Summary), toVector(c.Embedding), nullIfEmpty(c.EmbeddingText),
	)
	if err != nil {
		if c.Email != nil && isUniqueViolation(err, candidateEmailConstraint) {
			_ = tx.Rollback(ctx)
			dup := &DuplicateEmailError{Email: *c.Email}
			if existing, lookupErr := db.FindCandidateIDByEmail(ctx, *c.Email); lookupErr == nil {
				dup.ExistingID = existing
			}
			return "", dup
		}
		return "", fmt.Errorf("failed to insert candidate: %w", err)
	}

	for i, skill := range c.Skills {
		if _, err := tx.Exec(ctx,
			`INSERT INTO candidate_skills (candidate_id, skill_name, order_index) VALUES ($1, $2, $3)`,
			id, skill, i,
		); err != nil {
			return "", fmt.Errorf("failed to insert skill: %w", err)
		}
	}

	for i, e := range c.Experience {
		if _, err := tx.Exec(ctx,
			`INSERT INTO candidate_experience (candidate_id, title, company, location, start_date,
			                                   end_date, responsibilities, order_index)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			id, e.Title, e.Company, nullIfEmpty(e.Location), nullIfEmpty(e.StartDate),
			nullIfEmpty(e.EndDate), e.Responsibilities, i,
		); err != nil {
			return "", fmt.Errorf("failed to insert experience: %w", err)
		}
	}

	for i, e := range c.Education {
		if _, err := tx.Exec(ctx,
			`INSERT INTO candidate_education (candidate_id, degree, field_of_study, institution,
			                                  location, start_date, end_date, status, order_index)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			id, e.Degree, nullIfEmpty(e.FieldOfStudy), e.Institution, nullIfEmpty(e.Location),
			nullIfEmpty(e.StartDate), nullIfEmpty(e.EndDate), nullIfEmpty(e.Status), i,
		); err != nil {
			return "", fmt.Errorf("failed to insert education: %w", err)
		}
	}

	for i, cert := range c.Certifications {
		if _, err := tx.Exec(ctx,
			`INSERT INTO candidate_certifications (candidate_id, name, issuer, year, order_index)
			 VALUES ($1, $2, $3, $4, $5)`,
			id, cert.Name, nullIfEmpty(cert.Issuer), cert.Year, i,
		); err != nil {
			return "", fmt.Errorf("failed to insert certification: %w", err)
		}
	}

	for i, lang := range c.Languages {
		if _, err := tx.Exec(ctx,
			`INSERT INTO candidate_languages (candidate_id, language, proficiency, order_index)
			 VALUES ($1, $2, $3, $4)`,
			id, lang.Language, string(lang.Proficiency), i,
		); err != nil {
			return "", fmt.Errorf("failed to insert language: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

// FindCandidateIDByEmail returns the ID of the candidate with email, or "" when
// there is none.
func (db *DB) FindCandidateIDByEmail(ctx context.Context, email string) (string, error) {
	var id string
	err := db.pool.QueryRow(ctx, `SELECT id FROM candidates WHERE email = $1`, email).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up candidate by email: %w", err)
	}
	return id, nil
}

// GetCandidate loads a candidate with all child rows. Returns nil, nil when the
// candidate does not exist.
func (db *DB) GetCandidate(ctx context.Context, id string) (*types.CandidateProfile, error) {
	var c types.CandidateProfile
	var summary, embeddingText *string
	var embedding *pgvector.Vector

	err := db.pool.QueryRow(ctx,
		`SELECT id, status, first_name, last_name, email, phone, location, linkedin, github,
		        summary, embedding, embedding_text, created_at
		 FROM candidates WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Status, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Location,
		&c.LinkedIn, &c.GitHub, &summary, &embedding, &embeddingText, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	c.Summary = deref(summary)
	c.EmbeddingText = deref(embeddingText)
	c.Embedding = fromVector(embedding)

	if err := db.loadCandidateRelations(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (db *DB) loadCandidateRelations(ctx context.Context, c *types.CandidateProfile) error {
	skills, err := db.queryStrings(ctx,
		`SELECT skill_name FROM candidate_skills WHERE candidate_id = $1 ORDER BY order_index`, c.ID)
	if err != nil {
		return fmt.Errorf("failed to load skills: %w", err)
	}
	c.Skills = skills

	rows, err := db.pool.Query(ctx,
		`SELECT title, company, location, start_date, end_date, responsibilities
		 FROM candidate_experience WHERE candidate_id = $1 ORDER BY order_index`, c.ID)
	if err != nil {
		return fmt.Errorf("failed to load experience: %w", err)
	}
	c.Experience, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Experience, error) {
		var e types.Experience
		var location, start, end *string
		err := row.Scan(&e.Title, &e.Company, &location, &start, &end, &e.Responsibilities)
		e.Location, e.StartDate, e.EndDate = deref(location), deref(start), deref(end)
		return e, err
	})
	if err != nil {
		return fmt.Errorf("failed to scan experience: %w", err)
	}

	rows, err = db.pool.Query(ctx,
		`SELECT degree, field_of_study, institution, location, start_date, end_date, status
		 FROM candidate_education WHERE candidate_id = $1 ORDER BY order_index`, c.ID)
	if err != nil {
		return fmt.Errorf("failed to load education: %w", err)
	}
	c.Education, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Education, error) {
		var e types.Education
		var field, location, start, end, status *string
		err := row.Scan(&e.Degree, &field, &e.Institution, &location, &start, &end, &status)
		e.FieldOfStudy, e.Location = deref(field), deref(location)
		e.StartDate, e.EndDate, e.Status = deref(start), deref(end), deref(status)
		return e, err
	})
	if err != nil {
		return fmt.Errorf("failed to scan education: %w", err)
	}

	rows, err = db.pool.Query(ctx,
		`SELECT name, issuer, year FROM candidate_certifications
		 WHERE candidate_id = $1 ORDER BY order_index`, c.ID)
	if err != nil {
		return fmt.Errorf("failed to load certifications: %w", err)
	}
	c.Certifications, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Certification, error) {
		var cert types.Certification
		var issuer *string
		err := row.Scan(&cert.Name, &issuer, &cert.Year)
		cert.Issuer = deref(issuer)
		return cert, err
	})
	if err != nil {
		return fmt.Errorf("failed to scan certifications: %w", err)
	}

	rows, err = db.pool.Query(ctx,
		`SELECT language, proficiency FROM candidate_languages
		 WHERE candidate_id = $1 ORDER BY order_index`, c.ID)
	if err != nil {
		return fmt.Errorf("failed to load languages: %w", err)
	}
	c.Languages, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Language, error) {
		var l types.Language
		var proficiency string
		err := row.Scan(&l.Language, &proficiency)
		l.Proficiency = types.Proficiency(proficiency)
		return l, err
	})
	if err != nil {
		return fmt.Errorf("failed to scan languages: %w", err)
	}

	return nil
}

// CandidateSummary is a lightweight candidate row for listings.
type CandidateSummary struct {
	ID           string  `json:"id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Email        *string `json:"email,omitempty"`
	Status       string  `json:"status"`
	HasEmbedding bool    `json:"has_embedding"`
}

const (
	listCandidatesSQL = `SELECT id, first_name, last_name, email, status, embedding IS NOT NULL
		 FROM candidates ORDER BY ` + idOrder + ` LIMIT $1`
	unembeddedCandidatesSQL = `SELECT id FROM candidates WHERE embedding IS NULL ORDER BY ` + idOrder
)

// ListCandidates returns candidates ordered by ID number.
func (db *DB) ListCandidates(ctx context.Context, limit int) ([]CandidateSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		listCandidatesSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var out []CandidateSummary
	for rows.Next() {
		var s CandidateSummary
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Status, &s.HasEmbedding); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListCandidatesWithoutEmbedding returns the IDs of candidates not yet embedded.
func (db *DB) ListCandidatesWithoutEmbedding(ctx context.Context) ([]string, error) {
	ids, err := db.queryStrings(ctx, unembeddedCandidatesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list unembedded candidates: %w", err)
	}
	return ids, nil
}

// UpdateCandidateEmbedding stores a candidate's vector and canonical text.
func (db *DB) UpdateCandidateEmbedding(ctx context.Context, id string, vec []float32, text string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE candidates SET embedding = $2, embedding_text = $3, updated_at = NOW() WHERE id = $1`,
		id, toVector(vec), nullIfEmpty(text),
	)
	if err != nil {
		return fmt.Errorf("failed to update candidate embedding: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("candidate not found: %s", id)
	}
	return nil
}
