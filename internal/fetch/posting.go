package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/hiring-pipeline/internal/logger"
)

// Posting is a job posting page reduced to text.
type Posting struct {
	URL      string   `json:"url"`
	Platform Platform `json:"platform"`
	Title    string   `json:"title,omitempty"`
	Text     string   `json:"text"`
	Rendered bool     `json:"rendered"`
}

// PostingOptions controls JobPosting.
type PostingOptions struct {
	HTTP           *Options
	UseBrowser     bool
	BrowserTimeout time.Duration
}

// renderPage is replaced in tests.
var renderPage = WithBrowser

// JobPosting fetches a posting and extracts its description with platform
// selectors. When UseBrowser is set and the text is too short or the platform
// renders client-side, the page is rendered headlessly and extracted again; a failed render keeps the HTTP text.
func JobPosting(ctx context.Context, urlStr string, opts PostingOptions) (*Posting, error) {
	platform := DetectPlatform(urlStr)
	log := logger.Ctx(ctx).With().Str("url", urlStr).Str("platform", string(platform)).Logger()

	result, err := URL(ctx, urlStr, opts.HTTP)
	if err != nil {
		return nil, err
	}

	content := PlatformContentSelectors(platform)
	noise := PlatformNoiseSelectors(platform)

	text, err := ExtractMainText(result.HTML, content, noise...)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "content extraction failed", Cause: err}
	}
	posting := &Posting{
		URL:      urlStr,
		Platform: platform,
		Title:    PageTitle(result.HTML),
		Text:     text,
	}

	if opts.UseBrowser && (platform.ClientRendered() || ShouldUseBrowser(text)) {
		log.Info().Int("chars", len(text)).Msg("posting text too short, rendering in browser")
		html, err := renderPage(ctx, urlStr, opts.BrowserTimeout)
		if err != nil {
			log.Warn().Err(err).Msg("browser rendering failed, keeping HTTP content")
		} else if rendered, err := ExtractMainText(html, content, noise...); err == nil && len(rendered) > len(text) {
			posting.Text = rendered
			posting.Rendered = true
			if title := PageTitle(html); title != "" {
				posting.Title = title
			}
		}
	}

	if posting.Text == "" {
		return nil, &Error{URL: urlStr, Message: fmt.Sprintf("no text found on %s page", platform)}
	}

	log.Debug().Int("chars", len(posting.Text)).Bool("rendered", posting.Rendered).Msg("fetched job posting")
	return posting, nil
}
