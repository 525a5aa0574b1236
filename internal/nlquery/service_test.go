package nlquery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hiring-pipeline/internal/db"
	"github.com/jonathan/hiring-pipeline/internal/llm"
)

// scriptedClient answers each pipeline step from a fixed script.
type scriptedClient struct {
	classify    string
	classifyErr error
	sql         string
	sqlErr      error
	answer      string
	answerErr   error

	sqlSystem     string
	answerPrompts []string
}

func (c *scriptedClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier, opts ...llm.Option) (string, error) {
	switch {
	case strings.HasPrefix(prompt, "Classify"):
		return c.classify, c.classifyErr
	case strings.HasSuffix(prompt, "SQL:"):
		c.sqlSystem = llm.SystemPrompt(opts...)
		return c.sql, c.sqlErr
	default:
		c.answerPrompts = append(c.answerPrompts, prompt)
		return c.answer, c.answerErr
	}
}

func (c *scriptedClient) GenerateJSON(context.Context, string, llm.ModelTier, ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (c *scriptedClient) GetModel(tier llm.ModelTier) string { return string(tier) }

func (c *scriptedClient) Close() error { return nil }

type fakeDB struct {
	result    *db.QueryResult
	err       error
	schemaErr error
	executed  []string
	described int
}

func (f *fakeDB) QueryRows(_ context.Context, sql string) (*db.QueryResult, error) {
	f.executed = append(f.executed, sql)
	return f.result, f.err
}

func (f *fakeDB) DescribeSchema(context.Context) (string, error) {
	f.described++
	if f.schemaErr != nil {
		return "", f.schemaErr
	}
	return "candidates(id, first_name, last_name)", nil
}

func rows(n int) *db.QueryResult {
	res := &db.QueryResult{Columns: []string{"id", "first_name"}}
	for i := 1; i <= n; i++ {
		res.Rows = append(res.Rows, map[string]any{"id": fmt.Sprintf("candidate_%03d", i), "first_name": "Ada"})
	}
	return res
}

func newService(client *scriptedClient, store *fakeDB, opts Options) *Service {
	return NewService(client, store, store, opts)
}

func TestAsk_AnswersClearQuestion(t *testing.T) {
	client := &scriptedClient{
		classify: "CLEAR",
		sql:      "```sql\nSELECT id, first_name FROM candidates;\n```",
		answer:   "  The query found 12 candidates.  ",
	}
	store := &fakeDB{result: rows(12)}

	ans, err := newService(client, store, DefaultOptions()).Ask(context.Background(), "How many candidates are there?")
	require.NoError(t, err)

	assert.Equal(t, Clear, ans.Category)
	assert.Equal(t, "The query found 12 candidates.", ans.Answer)
	assert.Equal(t, "SELECT id, first_name FROM candidates", ans.SQL)
	assert.Equal(t, []string{"SELECT id, first_name FROM candidates"}, store.executed)
	assert.Equal(t, 12, ans.RowCount)
	assert.Len(t, ans.Results, 10)
	require.NotNil(t, ans.Trace)
	assert.Equal(t, "How many candidates are there?", ans.Trace.Question)
	assert.Equal(t, []string{"id", "first_name"}, ans.Trace.Columns)

	assert.Contains(t, client.sqlSystem, "candidates(id, first_name, last_name)")
	assert.Contains(t, client.sqlSystem, "candidate_skills")
	require.Len(t, client.answerPrompts, 1)
	assert.Contains(t, client.answerPrompts[0], "Results (12 rows, showing up to 12)")
}

func TestAsk_ConversationalSkipsQuery(t *testing.T) {
	client := &scriptedClient{classify: "conversational"}
	store := &fakeDB{}

	ans, err := newService(client, store, DefaultOptions()).Ask(context.Background(), "hi there")
	require.NoError(t, err)

	assert.Equal(t, Conversational, ans.Category)
	assert.Contains(t, ans.Answer, "Hello!")
	assert.Empty(t, ans.SQL)
	assert.Nil(t, ans.Trace)
	assert.NotNil(t, ans.Results)
	assert.Empty(t, store.executed)
	assert.Zero(t, store.described)
}

func TestAsk_VagueAsksForDetail(t *testing.T) {
	client := &scriptedClient{classify: "VAGUE"}

	ans, err := newService(client, &fakeDB{}, DefaultOptions()).Ask(context.Background(), "show me")
	require.NoError(t, err)
	assert.Equal(t, Vague, ans.Category)
	assert.Contains(t, ans.Answer, "more specific")
}

func TestAsk_ClassifierFailureProceeds(t *testing.T) {
	client := &scriptedClient{
		classifyErr: errors.New("quota exceeded"),
		sql:         "SELECT id FROM positions",
		answer:      "One position.",
	}
	store := &fakeDB{result: rows(1)}

	ans, err := newService(client, store, DefaultOptions()).Ask(context.Background(), "positions?")
	require.NoError(t, err)
	assert.Equal(t, "One position.", ans.Answer)
	assert.Len(t, store.executed, 1)
}

func TestAsk_EmptyResult(t *testing.T) {
	client := &scriptedClient{classify: "CLEAR", sql: "SELECT id FROM candidates WHERE false"}
	store := &fakeDB{result: &db.QueryResult{Columns: []string{"id"}}}

	ans, err := newService(client, store, DefaultOptions()).Ask(context.Background(), "Who knows COBOL?")
	require.NoError(t, err)
	assert.Equal(t, "No matching records found in the database.", ans.Answer)
	assert.Zero(t, ans.RowCount)
	assert.Empty(t, client.answerPrompts)
}

func TestAsk_GateRejections(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{"mutation", "DELETE FROM candidates", "I can only answer questions that retrieve information"},
		{"chained", "SELECT 1; DROP TABLE candidates", "couldn't generate a valid database query"},
		{"forbidden keyword", "SELECT * FROM candidates WHERE EXISTS (SELECT 1) OR GRANT", "couldn't generate a valid database query"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &scriptedClient{classify: "CLEAR", sql: tt.sql}
			store := &fakeDB{result: rows(1)}

			ans, err := newService(client, store, DefaultOptions()).Ask(context.Background(), "do something")
			require.NoError(t, err)
			assert.Contains(t, ans.Answer, tt.want)
			assert.Empty(t, ans.SQL)
			assert.Empty(t, store.executed)
		})
	}
}

func TestAsk_ErrorsNeverLeak(t *testing.T) {
	tests := []struct {
		name   string
		client *scriptedClient
		store  *fakeDB
		want   string
	}{
		{
			name:   "execution error",
			client: &scriptedClient{classify: "CLEAR", sql: "SELECT nope FROM candidates"},
			store:  &fakeDB{err: errors.New(`ERROR: column "nope" does not exist (SQLSTATE 42703)`)},
			want:   "I had trouble processing that question",
		},
		{
			name:   "sql generation error",
			client: &scriptedClient{classify: "CLEAR", sqlErr: errors.New("backend 503")},
			store:  &fakeDB{},
			want:   "I had trouble processing that question",
		},
		{
			name:   "answer generation error",
			client: &scriptedClient{classify: "CLEAR", sql: "SELECT 1", answerErr: errors.New("backend 503")},
			store:  &fakeDB{result: rows(1)},
			want:   "I had trouble processing that question",
		},
		{
			name:   "schema unavailable",
			client: &scriptedClient{classify: "CLEAR"},
			store:  &fakeDB{schemaErr: errors.New("connection refused")},
			want:   "unexpected error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ans, err := newService(tt.client, tt.store, DefaultOptions()).Ask(context.Background(), "Who applied?")
			require.NoError(t, err)
			assert.Contains(t, ans.Answer, tt.want)
			assert.NotContains(t, ans.Answer, "SQLSTATE")
			assert.NotContains(t, ans.Answer, "503")
			assert.NotContains(t, ans.Answer, "refused")
		})
	}
}

func TestAsk_EmptyQuestion(t *testing.T) {
	_, err := newService(&scriptedClient{}, &fakeDB{}, DefaultOptions()).Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestAsk_SchemaIsCached(t *testing.T) {
	client := &scriptedClient{classify: "CLEAR", sql: "SELECT 1", answer: "ok"}
	store := &fakeDB{result: rows(1)}
	svc := newService(client, store, DefaultOptions())

	for i := 0; i < 3; i++ {
		_, err := svc.Ask(context.Background(), "count")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, store.described)
}

func TestGenerateAnswer_CapsContextRows(t *testing.T) {
	client := &scriptedClient{answer: "five"}
	svc := newService(client, &fakeDB{}, Options{AnswerRows: 2, PreviewRows: 1})

	_, err := svc.GenerateAnswer(context.Background(), "q", "SELECT 1", rows(5))
	require.NoError(t, err)
	require.Len(t, client.answerPrompts, 1)
	prompt := client.answerPrompts[0]
	assert.Contains(t, prompt, "Results (5 rows, showing up to 2)")
	assert.Contains(t, prompt, "candidate_002")
	assert.NotContains(t, prompt, "candidate_003")
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(&scriptedClient{}, &fakeDB{}, &fakeDB{}, Options{AnswerRows: 0, PreviewRows: -1})
	assert.Equal(t, DefaultOptions(), svc.opts)
}

func TestExamples(t *testing.T) {
	groups := Examples()
	require.Len(t, groups, 3)
	for _, g := range groups {
		assert.NotEmpty(t, g.Questions, g.Category)
	}

	text := formatExamples(WorkedExamples)
	assert.Equal(t, 3, strings.Count(text, "Q: "))
	assert.Contains(t, text, "candidate_positions")
}
