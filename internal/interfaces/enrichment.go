package interfaces

import "context"

// EnrichmentKind tags how an enrichment response was interpreted
type EnrichmentKind string

const (
	// EnrichmentStructured - the response parsed as the requested JSON shape
	EnrichmentStructured EnrichmentKind = "structured"
	// EnrichmentFreeform - the response was free text; fields were extracted best-effort
	EnrichmentFreeform EnrichmentKind = "freeform"
)

// EnrichmentResult is the tagged outcome of a deep-dive enrichment call.
// A well-formed structured response is preferred; the freeform fallback
// extraction must never fail the enclosing phase on its own.
type EnrichmentResult struct {
	Kind       EnrichmentKind `json:"kind"`
	Overview   string         `json:"overview"`
	SourceURLs []string       `json:"source_urls"`
	Raw        string         `json:"raw,omitempty"`
}

// EnrichmentService generates the research reports that drive the workflow.
// The core treats responses opaquely except for the source URL list carried
// by DeepDive results.
type EnrichmentService interface {
	// DeepDive gathers a company overview plus a prioritized source URL list
	DeepDive(ctx context.Context, companyName string) (*EnrichmentResult, error)

	// CompetitorAnalysis produces a free-text competitor report for the company
	CompetitorAnalysis(ctx context.Context, companyName string) (string, error)

	// MarketingAnalysis reports how competitors market into the company's segment
	MarketingAnalysis(ctx context.Context, companyName string) (string, error)

	// HealthCheck verifies the provider is reachable and authenticated
	HealthCheck(ctx context.Context) error

	Close() error
}
