// Package extraction runs the per-category generative extraction of a CV. Each
// category is requested and decoded independently: a failed category yields its
// neutral value and never aborts the others.
package extraction

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/hiring-pipeline/internal/llm"
	"github.com/jonathan/hiring-pipeline/internal/logger"
	"github.com/jonathan/hiring-pipeline/internal/prompts"
)

var tracer = otel.Tracer("github.com/jonathan/hiring-pipeline/internal/extraction")

// Category names one extraction prompt.
type Category string

// Extraction categories.
const (
	CategoryPersonalInfo   Category = "personal-info"
	CategorySkills         Category = "skills"
	CategoryExperience     Category = "experience"
	CategoryEducation      Category = "education"
	CategoryCertifications Category = "certifications"
	CategoryLanguages      Category = "languages"
	CategorySummary        Category = "summary"
)

// Categories lists every category in reporting order.
var Categories = []Category{
	CategoryPersonalInfo,
	CategorySkills,
	CategoryExperience,
	CategoryEducation,
	CategoryCertifications,
	CategoryLanguages,
	CategorySummary,
}

// Key is the JSON key a wrapped response uses for the category.
func (c Category) Key() string {
	if c == CategoryPersonalInfo {
		return "personal_info"
	}
	return string(c)
}

// Prompt input limits, in characters.
const (
	personalInfoChars = 2000
	summaryChars      = 3000
	summaryMaxTokens  = 200
	defaultWorkers    = 3
)

// Failure records why a category fell back to its neutral value.
type Failure struct {
	Category Category
	Err      error
}

// Result holds the raw, unvalidated category outputs. Values are decoded JSON
// (maps, slices, strings, float64) and must pass through the validation package.
type Result struct {
	PersonalInfo   map[string]any
	Skills         any
	Experience     any
	Education      any
	Certifications any
	Languages      any
	Summary        string
	Failures       []Failure
}

// Failed reports whether cat fell back to its neutral value.
func (r *Result) Failed(cat Category) bool {
	for _, f := range r.Failures {
		if f.Category == cat {
			return true
		}
	}
	return false
}

// Extractor issues category prompts against a generative backend.
type Extractor struct {
	client  llm.Client
	workers int
}

// NewExtractor creates an Extractor running up to three categories at a time.
func NewExtractor(client llm.Client) *Extractor {
	return &Extractor{client: client, workers: defaultWorkers}
}

// WithConcurrency sets how many categories run at once. Values below 1 mean 1.
func (e *Extractor) WithConcurrency(n int) *Extractor {
	if n < 1 {
		n = 1
	}
	e.workers = n
	return e
}

// Extract runs every category over text. It never returns an error; see
// Result.Failures for the categories that degraded.
func (e *Extractor) Extract(ctx context.Context, text string) *Result {
	ctx, span := tracer.Start(ctx, "extraction.Extract")
	defer span.End()

	res := &Result{}
	var mu sync.Mutex
	fail := func(cat Category, err error) {
		logger.Ctx(ctx).Warn().Str("category", string(cat)).Err(err).Msg("extraction category failed, using empty result")
		mu.Lock()
		res.Failures = append(res.Failures, Failure{Category: cat, Err: err})
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(e.workers)

	g.Go(func() error {
		m, err := e.object(ctx, CategoryPersonalInfo, truncate(text, personalInfoChars))
		if err != nil {
			fail(CategoryPersonalInfo, err)
			return nil
		}
		res.PersonalInfo = m
		return nil
	})

	lists := []struct {
		cat Category
		dst *any
	}{
		{CategorySkills, &res.Skills},
		{CategoryExperience, &res.Experience},
		{CategoryEducation, &res.Education},
		{CategoryCertifications, &res.Certifications},
		{CategoryLanguages, &res.Languages},
	}
	for _, l := range lists {
		g.Go(func() error {
			v, err := e.list(ctx, l.cat, text)
			if err != nil {
				fail(l.cat, err)
				return nil
			}
			*l.dst = v
			return nil
		})
	}

	g.Go(func() error {
		summary, err := e.summary(ctx, text)
		if err != nil {
			fail(CategorySummary, err)
			return nil
		}
		res.Summary = summary
		return nil
	})

	_ = g.Wait()

	order := make(map[Category]int, len(Categories))
	for i, c := range Categories {
		order[c] = i
	}
	sort.Slice(res.Failures, func(i, j int) bool {
		return order[res.Failures[i].Category] < order[res.Failures[j].Category]
	})

	span.SetAttributes(attribute.Int("extraction.failed_categories", len(res.Failures)))
	return res
}

func (e *Extractor) generateJSON(ctx context.Context, cat Category, text string) (string, error) {
	prompt, err := prompts.Render(prompts.Extraction, string(cat), map[string]string{"Text": text})
	if err != nil {
		return "", err
	}
	system := prompts.MustGet(prompts.Extraction, "system")
	return e.client.GenerateJSON(ctx, prompt, llm.TierStandard, llm.WithSystemPrompt(system))
}

func (e *Extractor) list(ctx context.Context, cat Category, text string) (any, error) {
	resp, err := e.generateJSON(ctx, cat, text)
	if err != nil {
		return nil, err
	}
	v, shape, err := decodeList(cat, resp)
	if err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Debug().Str("category", string(cat)).Stringer("shape", shape).Msg("decoded category")
	return v, nil
}

func (e *Extractor) object(ctx context.Context, cat Category, text string) (map[string]any, error) {
	resp, err := e.generateJSON(ctx, cat, text)
	if err != nil {
		return nil, err
	}
	return decodeObject(cat, resp)
}

func (e *Extractor) summary(ctx context.Context, text string) (string, error) {
	prompt, err := prompts.Render(prompts.Extraction, string(CategorySummary), map[string]string{
		"Text": truncate(text, summaryChars),
	})
	if err != nil {
		return "", err
	}
	out, err := e.client.GenerateContent(ctx, prompt, llm.TierLite, llm.WithMaxTokens(summaryMaxTokens))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
