package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple title", "Acme Pricing Page", "acme-pricing-page"},
		{"punctuation stripped", "Acme, Inc. - About Us!", "acme-inc-about-us"},
		{"collapses whitespace", "Acme   Product    Overview", "acme-product-overview"},
		{"empty title", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.title))
		})
	}
}

func TestExtractedFileName(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		sourceURL string
		want      string
	}{
		{"title wins", "Acme Pricing", "https://acme.com/pricing", "acme-pricing.md"},
		{"untitled falls back to url", "Untitled", "https://acme.com/about/team", "acme.com_about_team.md"},
		{"empty title falls back to url", "", "https://acme.com/", "acme.com.md"},
		{"unparseable url", "", "://not a url", "extracted_content.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractedFileName(tt.title, tt.sourceURL))
		})
	}
}
