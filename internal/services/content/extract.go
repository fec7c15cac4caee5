package content

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/common"
	"github.com/ternarybob/vestigo/internal/interfaces"
)

// Service is the content service: a rate-limited fetcher plus pure HTML to
// markdown extraction
type Service struct {
	*Fetcher
	logger arbor.ILogger
}

// NewService creates the content service from the content config
func NewService(cfg *common.ContentConfig, logger arbor.ILogger) (*Service, error) {
	fetcher, err := NewFetcher(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Service{
		Fetcher: fetcher,
		logger:  logger,
	}, nil
}

// mainContentSelector prefers the semantic content region over the full body
const mainContentSelector = "main, article, .content, .main-content, #content, #main"

// ExtractText pulls the usable text out of one fetched page: the title from
// the usual places and the main content converted to markdown. Performs no
// I/O.
func (s *Service) ExtractText(raw string, sourceURL string) (*interfaces.ExtractedContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", sourceURL, err)
	}

	title := extractTitle(doc)

	// Chrome elements only add navigation noise to the markdown
	doc.Find("script, style, nav, footer, aside, header").Remove()

	selection := doc.Find(mainContentSelector).First()
	if selection.Length() == 0 {
		selection = doc.Find("body")
	}

	converter := md.NewConverter(sourceURL, true, nil)
	markdown := strings.TrimSpace(converter.Convert(selection))
	if markdown == "" {
		return nil, fmt.Errorf("no usable content extracted from %s", sourceURL)
	}

	s.logger.Debug().
		Str("source_url", sourceURL).
		Str("title", title).
		Int("markdown_size", len(markdown)).
		Msg("Content extracted")

	return &interfaces.ExtractedContent{
		Title:    title,
		Markdown: markdown,
	}, nil
}

// extractTitle tries the title tag, Open Graph, then the first heading
func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if ogTitle, exists := doc.Find("meta[property='og:title']").Attr("content"); exists {
		if title := strings.TrimSpace(ogTitle); title != "" {
			return title
		}
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return "Untitled"
}
