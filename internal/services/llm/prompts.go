package llm

import "fmt"

// deepDivePrompt asks for a structured overview plus the source URLs most
// worth extracting. The JSON shape is requested, not guaranteed; ParseDeepDive
// handles responses that come back as free text.
func deepDivePrompt(companyName string) string {
	return fmt.Sprintf(`You are a B2B sales researcher preparing a prospect brief.

Research the company %q and respond with a JSON object of this exact shape:

{
  "overview": "<a thorough markdown prospect overview: what the company does, its products and services, target customers, scale, recent news, and notable technology choices>",
  "source_urls": ["<url>", "..."]
}

The source_urls list must contain 5 to 10 publicly accessible web page URLs
that best support the overview: the company website, product pages, press
coverage, and industry analyses. List content pages only. Do not include
links to images, stylesheets, scripts, or other page assets.

Respond with the JSON object and nothing else.`, companyName)
}

// competitorAnalysisPrompt asks for a free-text competitor report
func competitorAnalysisPrompt(companyName string) string {
	return fmt.Sprintf(`You are a B2B sales researcher preparing a prospect brief.

Write a markdown competitor analysis for the company %q. Identify its main
competitors, compare their positioning, pricing approach, and product
strengths against %[1]q, and close with the competitive pressures most likely
to influence a purchasing decision at %[1]q.`, companyName)
}

// marketingAnalysisPrompt asks how competitors market into the segment
func marketingAnalysisPrompt(companyName string) string {
	return fmt.Sprintf(`You are a B2B sales researcher preparing a prospect brief.

Write a markdown marketing analysis for the segment that %q operates in.
Describe how vendors in this segment reach and persuade buyers like %[1]q:
channels, messaging themes, content strategies, and events. Finish with the
openings this leaves for a new vendor approaching %[1]q.`, companyName)
}
