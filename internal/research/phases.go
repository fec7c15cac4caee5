package research

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ternarybob/vestigo/internal/common"
	"github.com/ternarybob/vestigo/internal/models"
)

// buildItems creates the work items for one phase. A phase's inputs come
// from its predecessors' committed outputs: the deep dive's source URLs feed
// extraction, and persisted documents feed upload. Zero inputs produce zero
// items, which is a successful (empty) phase, not a failure.
func (o *Orchestrator) buildItems(ctx context.Context, run *jobRun, phase models.PhaseName) ([]*Item, error) {
	job := run.job

	switch phase {
	case models.PhaseDeepDive:
		return []*Item{o.deepDiveItem(run)}, nil

	case models.PhaseCompetitorAnalysis:
		return []*Item{o.analysisItem(run, phase, "competitor_analysis",
			fmt.Sprintf("%s_Competitor_Analysis.md", job.CompanyName),
			o.enricher.CompetitorAnalysis)}, nil

	case models.PhaseMarketingAnalysis:
		return []*Item{o.analysisItem(run, phase, "marketing_analysis",
			fmt.Sprintf("%s_Marketing_Analysis.md", job.CompanyName),
			o.enricher.MarketingAnalysis)}, nil

	case models.PhaseContentExtraction:
		items := make([]*Item, 0, len(run.sourceURLs))
		for _, sourceURL := range run.sourceURLs {
			items = append(items, o.extractionItem(run, sourceURL))
		}
		return items, nil

	case models.PhaseArtifactUpload:
		docs, err := o.documents.GetDocumentsByJob(ctx, job.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list documents for upload: %w", err)
		}
		items := make([]*Item, 0, len(docs))
		for _, doc := range docs {
			items = append(items, o.uploadItem(run, doc))
		}
		return items, nil

	default:
		return nil, fmt.Errorf("unknown phase: %s", phase)
	}
}

// deepDiveItem runs the deep-dive enrichment call, records the discovered
// source URLs for the extraction phase, and persists the overview document.
func (o *Orchestrator) deepDiveItem(run *jobRun) *Item {
	job := run.job
	return &Item{
		Spec: o.newItemSpec(run, models.PhaseDeepDive, "deep_dive", "enrichment:deep_dive", models.ItemCritical, false),
		Call: func(ctx context.Context, _ *models.Credential) error {
			result, err := o.enricher.DeepDive(ctx, job.CompanyName)
			if err != nil {
				return err
			}

			run.sourceURLs = result.SourceURLs

			if result.Overview == "" {
				return NewFailure(models.FailurePermanent, fmt.Errorf("deep dive produced no overview"))
			}

			return o.documents.SaveDocument(ctx, &models.Document{
				ID:        common.NewDocumentID(),
				JobID:     job.ID,
				Title:     fmt.Sprintf("%s Prospect Overview", job.CompanyName),
				FileName:  fmt.Sprintf("%s_Prospect_Overview.md", job.CompanyName),
				Content:   result.Overview,
				CreatedAt: time.Now(),
			})
		},
	}
}

// analysisItem runs one free-text enrichment report and persists it
func (o *Orchestrator) analysisItem(run *jobRun, phase models.PhaseName, name, fileName string, generate func(context.Context, string) (string, error)) *Item {
	job := run.job
	return &Item{
		Spec: o.newItemSpec(run, phase, name, "enrichment:"+name, models.ItemCritical, false),
		Call: func(ctx context.Context, _ *models.Credential) error {
			report, err := generate(ctx, job.CompanyName)
			if err != nil {
				return err
			}
			if report == "" {
				return NewFailure(models.FailurePermanent, fmt.Errorf("%s produced no report", name))
			}

			return o.documents.SaveDocument(ctx, &models.Document{
				ID:        common.NewDocumentID(),
				JobID:     job.ID,
				Title:     strings.TrimSuffix(fileName, ".md"),
				FileName:  fileName,
				Content:   report,
				CreatedAt: time.Now(),
			})
		},
	}
}

// extractionItem fetches one source URL and persists its extracted content.
// A single failed URL in a batch is best-effort: recorded, never phase-fatal.
func (o *Orchestrator) extractionItem(run *jobRun, sourceURL string) *Item {
	job := run.job
	return &Item{
		Spec: o.newItemSpec(run, models.PhaseContentExtraction, "extract "+sourceURL, sourceURL, models.ItemBestEffort, false),
		Call: func(ctx context.Context, _ *models.Credential) error {
			raw, err := o.content.Fetch(ctx, sourceURL)
			if err != nil {
				return err
			}

			extracted, err := o.content.ExtractText(raw, sourceURL)
			if err != nil {
				return err
			}

			fileName := extractedFileName(extracted.Title, sourceURL)
			return o.documents.SaveDocument(ctx, &models.Document{
				ID:        common.NewDocumentID(),
				JobID:     job.ID,
				Title:     extracted.Title,
				FileName:  fileName,
				SourceURL: sourceURL,
				Content:   extracted.Markdown,
				CreatedAt: time.Now(),
			})
		},
	}
}

// uploadItem uploads one persisted document to the artifact store
func (o *Orchestrator) uploadItem(run *jobRun, doc *models.Document) *Item {
	job := run.job
	return &Item{
		Spec: o.newItemSpec(run, models.PhaseArtifactUpload, "upload "+doc.FileName, doc.FileName, models.ItemBestEffort, true),
		Call: func(ctx context.Context, cred *models.Credential) error {
			_, err := o.artifacts.UploadText(ctx, cred, job.FolderID, doc.FileName, doc.Content)
			return err
		},
	}
}

func (o *Orchestrator) newItemSpec(run *jobRun, phase models.PhaseName, name, target string, class models.ItemClass, needsAuth bool) *models.WorkItem {
	return &models.WorkItem{
		ID:          common.NewItemID(),
		Phase:       phase,
		Name:        name,
		Target:      target,
		Class:       class,
		PrincipalID: run.job.PrincipalID,
		NeedsAuth:   needsAuth,
		MaxAttempts: o.maxAttempts,
		Status:      models.ItemPending,
	}
}

var slugCleaner = regexp.MustCompile(`[^\w\s-]`)
var slugDashes = regexp.MustCompile(`[-\s]+`)

// slugify reduces a title to a safe file name stem
func slugify(text string) string {
	text = slugCleaner.ReplaceAllString(text, "")
	text = strings.TrimSpace(strings.ToLower(text))
	return slugDashes.ReplaceAllString(text, "-")
}

// extractedFileName names an extracted page from its title, falling back to
// a URL-derived name when the page had no usable title
func extractedFileName(title, sourceURL string) string {
	if slug := slugify(title); slug != "" && slug != "untitled" {
		return slug + ".md"
	}

	parsed, err := url.Parse(sourceURL)
	if err != nil || parsed.Host == "" {
		return "extracted_content.md"
	}

	stem := parsed.Host + strings.ReplaceAll(parsed.Path, "/", "_")
	return strings.Trim(stem, "_") + ".md"
}
