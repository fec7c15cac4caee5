package interfaces

import "context"

// ExtractedContent is the usable text pulled out of one fetched page
type ExtractedContent struct {
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
}

// ContentService fetches a page and extracts its main text content.
// Fetch returns a StatusError for non-2xx responses so the executor can
// classify retryability; ExtractText is pure and never performs I/O.
type ContentService interface {
	Fetch(ctx context.Context, url string) (string, error)
	ExtractText(raw string, sourceURL string) (*ExtractedContent, error)
}
