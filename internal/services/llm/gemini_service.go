package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/common"
	"github.com/ternarybob/vestigo/internal/interfaces"
	"google.golang.org/genai"
)

// GeminiService implements the enrichment service against the Gemini API.
// Every research report is one prompt, one completion; the deep dive
// additionally parses the response for the source URL list.
type GeminiService struct {
	config  *common.LLMConfig
	logger  arbor.ILogger
	client  *genai.Client
	timeout time.Duration
}

// NewGeminiService creates a Gemini-backed enrichment service.
// The API key comes from config (VESTIGO_GOOGLE_API_KEY or GEMINI_API_KEY
// override the file value).
func NewGeminiService(config *common.Config, logger arbor.ILogger) (*GeminiService, error) {
	if config.LLM.GoogleAPIKey == "" {
		return nil, fmt.Errorf("Google API key is required for enrichment (set VESTIGO_GOOGLE_API_KEY or llm.google_api_key in config)")
	}

	timeout, err := time.ParseDuration(config.LLM.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid llm timeout %q: %w", config.LLM.Timeout, err)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.LLM.GoogleAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	service := &GeminiService{
		config:  &config.LLM,
		logger:  logger,
		client:  client,
		timeout: timeout,
	}

	logger.Info().
		Str("model", config.LLM.Model).
		Dur("timeout", timeout).
		Msg("Gemini enrichment service initialized")

	return service, nil
}

// DeepDive gathers a company overview and the prioritized source URL list.
// A response that parses as the requested JSON shape is used directly;
// anything else goes through the freeform fallback, which never fails on
// its own.
func (s *GeminiService) DeepDive(ctx context.Context, companyName string) (*interfaces.EnrichmentResult, error) {
	response, err := s.generate(ctx, deepDivePrompt(companyName))
	if err != nil {
		return nil, err
	}

	result := ParseDeepDive(response)

	s.logger.Info().
		Str("company", companyName).
		Str("kind", string(result.Kind)).
		Int("source_urls", len(result.SourceURLs)).
		Msg("Deep dive completed")

	return result, nil
}

// CompetitorAnalysis produces a free-text competitor report
func (s *GeminiService) CompetitorAnalysis(ctx context.Context, companyName string) (string, error) {
	return s.generate(ctx, competitorAnalysisPrompt(companyName))
}

// MarketingAnalysis reports how competitors market into the company's segment
func (s *GeminiService) MarketingAnalysis(ctx context.Context, companyName string) (string, error) {
	return s.generate(ctx, marketingAnalysisPrompt(companyName))
}

// generate runs one prompt through the model and returns the response text
func (s *GeminiService) generate(ctx context.Context, prompt string) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(s.config.Temperature)),
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := s.client.Models.GenerateContent(genCtx, s.config.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("content generation failed: %w", err)
	}

	var response strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from model")
	}

	s.logger.Debug().
		Int("prompt_length", len(prompt)).
		Int("response_length", response.Len()).
		Dur("duration", time.Since(startTime)).
		Msg("Content generation completed")

	return response.String(), nil
}

// HealthCheck exercises the model with a lightweight probe
func (s *GeminiService) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("genai client is not initialized")
	}

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	contents := []*genai.Content{genai.NewContentFromText("health check probe", genai.RoleUser)}
	if _, err := s.client.Models.GenerateContent(probeCtx, s.config.Model, contents, nil); err != nil {
		return fmt.Errorf("model health check failed: %w", err)
	}

	return nil
}

// Close releases the service. The genai client holds no persistent
// connections that need explicit teardown.
func (s *GeminiService) Close() error {
	return nil
}
