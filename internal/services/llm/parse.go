package llm

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/ternarybob/vestigo/internal/interfaces"
)

// maxSourceURLs caps how many discovered URLs feed the extraction phase
const maxSourceURLs = 10

// deepDivePayload is the JSON shape requested by the deep-dive prompt
type deepDivePayload struct {
	Overview   string   `json:"overview"`
	SourceURLs []string `json:"source_urls"`
}

var (
	codeFenceRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	urlRegex       = regexp.MustCompile(`https?://[^\s<>"')\]]+`)
)

// assetExtensions are path suffixes that mark a URL as a page asset rather
// than a content page. Asset URLs are never worth extracting.
var assetExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".ico",
	".css", ".js", ".woff", ".woff2", ".ttf", ".eot",
	".mp4", ".mp3", ".webm", ".zip", ".gz",
}

// ParseDeepDive interprets a deep-dive model response. A response that
// unmarshals to the requested JSON shape with a non-empty overview is
// structured; anything else falls back to treating the whole response as the
// overview and scraping URLs out of the text. The fallback always produces a
// result.
func ParseDeepDive(response string) *interfaces.EnrichmentResult {
	if payload, ok := parseStructured(response); ok {
		return &interfaces.EnrichmentResult{
			Kind:       interfaces.EnrichmentStructured,
			Overview:   strings.TrimSpace(payload.Overview),
			SourceURLs: filterSourceURLs(payload.SourceURLs),
		}
	}

	return &interfaces.EnrichmentResult{
		Kind:       interfaces.EnrichmentFreeform,
		Overview:   strings.TrimSpace(response),
		SourceURLs: filterSourceURLs(urlRegex.FindAllString(response, -1)),
		Raw:        response,
	}
}

// parseStructured tries the requested JSON shape, unwrapping a markdown code
// fence if the model added one
func parseStructured(response string) (*deepDivePayload, bool) {
	candidate := strings.TrimSpace(response)
	if match := codeFenceRegex.FindStringSubmatch(candidate); match != nil {
		candidate = match[1]
	}

	var payload deepDivePayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return nil, false
	}
	if strings.TrimSpace(payload.Overview) == "" {
		return nil, false
	}
	return &payload, true
}

// filterSourceURLs keeps well-formed, deduplicated content page URLs, capped
// at maxSourceURLs
func filterSourceURLs(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	urls := make([]string, 0, len(candidates))

	for _, candidate := range candidates {
		cleaned := strings.TrimRight(strings.TrimSpace(candidate), ".,;")
		if cleaned == "" {
			continue
		}

		parsed, err := url.Parse(cleaned)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			continue
		}
		if isAssetURL(parsed) {
			continue
		}

		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}

		urls = append(urls, cleaned)
		if len(urls) == maxSourceURLs {
			break
		}
	}

	return urls
}

func isAssetURL(parsed *url.URL) bool {
	path := strings.ToLower(parsed.Path)
	for _, ext := range assetExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
