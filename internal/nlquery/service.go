// Package nlquery answers natural-language questions about the recruiting
// database: classify, generate SQL, gate, execute, then answer from the rows.
package nlquery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonathan/hiring-pipeline/internal/db"
	"github.com/jonathan/hiring-pipeline/internal/llm"
	"github.com/jonathan/hiring-pipeline/internal/logger"
	"github.com/jonathan/hiring-pipeline/internal/prompts"
	"github.com/jonathan/hiring-pipeline/internal/sqlgate"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

var tracer = otel.Tracer("github.com/jonathan/hiring-pipeline/internal/nlquery")

// ErrEmptyQuestion is returned by Ask for a blank question.
var ErrEmptyQuestion = errors.New("question cannot be empty")

// Category is the classifier's verdict on a question.
type Category string

const (
	Conversational Category = "conversational"
	Vague          Category = "vague"
	Clear          Category = "clear"
)

// Executor runs a gated statement. *db.DB implements it with a read-only
// transaction.
type Executor interface {
	QueryRows(ctx context.Context, sql string) (*db.QueryResult, error)
}

// SchemaSource describes the live schema for SQL generation. *db.DB implements it.
type SchemaSource interface {
	DescribeSchema(ctx context.Context) (string, error)
}

// Options bounds how many rows reach the answer prompt and the response.
type Options struct {
	AnswerRows  int
	PreviewRows int
}

// DefaultOptions returns the row limits used when none are configured.
func DefaultOptions() Options {
	return Options{AnswerRows: 50, PreviewRows: 10}
}

// Answer is the response to one question. SQL and Trace are empty when no
// statement was executed.
type Answer struct {
	Answer   string            `json:"answer"`
	Category Category          `json:"category"`
	SQL      string            `json:"sql,omitempty"`
	RowCount int               `json:"row_count"`
	Results  []map[string]any  `json:"results"`
	Trace    *types.QueryTrace `json:"trace,omitempty"`
}

// Service is the NL-to-SQL pipeline.
type Service struct {
	client llm.Client
	exec   Executor
	schema SchemaSource
	opts   Options

	mu          sync.Mutex
	schemaCache string
}

// NewService creates a Service. Non-positive row limits fall back to DefaultOptions.
func NewService(client llm.Client, exec Executor, schema SchemaSource, opts Options) *Service {
	def := DefaultOptions()
	if opts.AnswerRows <= 0 {
		opts.AnswerRows = def.AnswerRows
	}
	if opts.PreviewRows < 0 {
		opts.PreviewRows = def.PreviewRows
	}
	return &Service{client: client, exec: exec, schema: schema, opts: opts}
}

// Ask runs the whole pipeline. Every failure after classification is turned
// into a templated answer; the only error returned is ErrEmptyQuestion.
func (s *Service) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	ctx, span := tracer.Start(ctx, "nlquery.Ask")
	defer span.End()
	log := logger.Ctx(ctx)

	category, reply := s.Classify(ctx, question)
	span.SetAttributes(attribute.String("category", string(category)))
	if category != Clear {
		log.Info().Str("category", string(category)).Msg("question needs no query")
		return &Answer{Answer: reply, Category: category, Results: []map[string]any{}}, nil
	}

	sql, err := s.GenerateSQL(ctx, question)
	if err != nil {
		return s.failed(ctx, span, err), nil
	}

	result, err := s.Execute(ctx, sql)
	if err != nil {
		return s.failed(ctx, span, err), nil
	}

	text, err := s.GenerateAnswer(ctx, question, sql, result)
	if err != nil {
		return s.failed(ctx, span, err), nil
	}

	preview := result.Rows
	if len(preview) > s.opts.PreviewRows {
		preview = preview[:s.opts.PreviewRows]
	}
	return &Answer{
		Answer:   text,
		Category: Clear,
		SQL:      sql,
		RowCount: len(result.Rows),
		Results:  preview,
		Trace: &types.QueryTrace{
			Question: question,
			SQL:      sql,
			RowCount: len(result.Rows),
			Columns:  result.Columns,
		},
	}, nil
}

// Classify asks the generative backend whether the question is conversational,
// vague or clear. Conversational and vague questions come back with a canned
// reply. A classifier failure counts as clear.
func (s *Service) Classify(ctx context.Context, question string) (Category, string) {
	prompt, err := prompts.Render(prompts.NLQuery, "classify", map[string]string{"Question": question})
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("classifier prompt unavailable, treating question as clear")
		return Clear, ""
	}

	verdict, err := s.client.GenerateContent(ctx, prompt, llm.TierLite, llm.WithMaxTokens(10))
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("question classification failed, treating question as clear")
		return Clear, ""
	}

	switch upper := strings.ToUpper(verdict); {
	case strings.Contains(upper, "CONVERSATIONAL"):
		return Conversational, prompts.MustGet(prompts.NLQuery, "conversational-reply")
	case strings.Contains(upper, "VAGUE"):
		return Vague, prompts.MustGet(prompts.NLQuery, "vague-reply")
	}
	return Clear, ""
}

// GenerateSQL produces one sanitized statement for the question. The result
// has not been gated yet.
func (s *Service) GenerateSQL(ctx context.Context, question string) (sql string, err error) {
	ctx, span := tracer.Start(ctx, "nlquery.GenerateSQL")
	defer func() { endSpan(span, err) }()

	schema, err := s.loadSchema(ctx)
	if err != nil {
		return "", err
	}

	system, err := prompts.Render(prompts.NLQuery, "sql-system", map[string]string{
		"Schema":   schema,
		"Examples": formatExamples(WorkedExamples),
	})
	if err != nil {
		return "", err
	}
	prompt, err := prompts.Render(prompts.NLQuery, "sql-user", map[string]string{"Question": question})
	if err != nil {
		return "", err
	}

	raw, err := s.client.GenerateContent(ctx, prompt, llm.TierAdvanced,
		llm.WithSystemPrompt(system), llm.WithMaxTokens(500), llm.WithTemperature(0))
	if err != nil {
		return "", &GenerationError{Stage: "sql", Err: err}
	}

	sql = sqlgate.Sanitize(raw)
	logger.Ctx(ctx).Info().Str("sql", sql).Msg("generated SQL")
	return sql, nil
}

// Execute gates sql and runs it. A gate rejection is returned as
// *sqlgate.RejectionError and the statement never reaches the database.
func (s *Service) Execute(ctx context.Context, sql string) (result *db.QueryResult, err error) {
	ctx, span := tracer.Start(ctx, "nlquery.Execute")
	defer func() { endSpan(span, err) }()

	if err := sqlgate.Validate(sql); err != nil {
		return nil, err
	}

	result, err = s.exec.QueryRows(ctx, sql)
	if err != nil {
		return nil, &ExecutionError{Err: err}
	}
	span.SetAttributes(attribute.Int("row_count", len(result.Rows)))
	logger.Ctx(ctx).Info().Int("row_count", len(result.Rows)).Msg("query executed")
	return result, nil
}

// GenerateAnswer writes a grounded answer from the rows. An empty result never
// reaches the generative backend.
func (s *Service) GenerateAnswer(ctx context.Context, question, sql string, result *db.QueryResult) (string, error) {
	if result == nil || len(result.Rows) == 0 {
		return prompts.MustGet(prompts.NLQuery, "no-results"), nil
	}

	shown := result.Rows
	if len(shown) > s.opts.AnswerRows {
		shown = shown[:s.opts.AnswerRows]
	}

	prompt, err := prompts.Render(prompts.NLQuery, "answer-user", map[string]string{
		"Question": question,
		"SQL":      sql,
		"RowCount": strconv.Itoa(len(result.Rows)),
		"Shown":    strconv.Itoa(len(shown)),
		"Rows":     formatRows(shown),
	})
	if err != nil {
		return "", err
	}

	text, err := s.client.GenerateContent(ctx, prompt, llm.TierAdvanced,
		llm.WithSystemPrompt(prompts.MustGet(prompts.NLQuery, "answer-system")), llm.WithMaxTokens(1000))
	if err != nil {
		return "", &GenerationError{Stage: "answer", Err: err}
	}
	return strings.TrimSpace(text), nil
}

func (s *Service) loadSchema(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schemaCache != "" {
		return s.schemaCache, nil
	}
	schema, err := s.schema.DescribeSchema(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to describe schema: %w", err)
	}
	s.schemaCache = schema
	return schema, nil
}

// failed logs err and returns the templated answer for it.
func (s *Service) failed(ctx context.Context, span trace.Span, err error) *Answer {
	key := templateFor(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, key)
	logger.Ctx(ctx).Error().Err(err).Str("template", key).Msg("question could not be answered")
	return &Answer{
		Answer:   prompts.MustGet(prompts.NLQuery, key),
		Category: Clear,
		Results:  []map[string]any{},
	}
}

func formatRows(rows []map[string]any) string {
	var sb strings.Builder
	for _, row := range rows {
		b, err := json.Marshal(row)
		if err != nil {
			fmt.Fprintf(&sb, "%v\n", row)
			continue
		}
		sb.Write(b)
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
