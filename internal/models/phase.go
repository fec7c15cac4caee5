package models

import "fmt"

// PhaseName identifies one ordered step of the research workflow
type PhaseName string

const (
	PhaseDeepDive           PhaseName = "deep_dive"
	PhaseCompetitorAnalysis PhaseName = "competitor_analysis"
	PhaseMarketingAnalysis  PhaseName = "marketing_analysis"
	PhaseContentExtraction  PhaseName = "content_extraction"
	PhaseArtifactUpload     PhaseName = "artifact_upload"
)

// Title returns the human-readable phase name used in progress messages
func (p PhaseName) Title() string {
	switch p {
	case PhaseDeepDive:
		return "Prospect Deep Dive"
	case PhaseCompetitorAnalysis:
		return "Competitor Analysis"
	case PhaseMarketingAnalysis:
		return "Marketing Analysis"
	case PhaseContentExtraction:
		return "Content Extraction"
	case PhaseArtifactUpload:
		return "Artifact Upload"
	default:
		return string(p)
	}
}

// DefaultPhaseSequence is the fixed workflow every research job executes
func DefaultPhaseSequence() []PhaseName {
	return []PhaseName{
		PhaseDeepDive,
		PhaseCompetitorAnalysis,
		PhaseMarketingAnalysis,
		PhaseContentExtraction,
		PhaseArtifactUpload,
	}
}

// PhaseStatus is the aggregate outcome of one phase, derived from its items
type PhaseStatus string

const (
	PhaseSucceeded          PhaseStatus = "succeeded"
	PhasePartiallySucceeded PhaseStatus = "partially_succeeded"
	PhaseFailed             PhaseStatus = "failed"
)

// PhaseResult aggregates per-item outcomes for one completed phase.
// Status is failed iff a critical item failed, partially_succeeded iff only
// best-effort items failed, succeeded otherwise (including zero items).
type PhaseResult struct {
	Phase         PhaseName     `json:"phase"`
	Status        PhaseStatus   `json:"status"`
	Items         []ItemOutcome `json:"items"`
	FailureReason FailureReason `json:"failure_reason,omitempty"`
	FailureDetail string        `json:"failure_detail,omitempty"`
}

// Summary returns a one-line item breakdown for progress reporting
func (r *PhaseResult) Summary() string {
	succeeded, failed := 0, 0
	for _, item := range r.Items {
		if item.Status == ItemSucceeded {
			succeeded++
		} else {
			failed++
		}
	}
	if failed == 0 {
		return fmt.Sprintf("%s completed (%d items)", r.Phase.Title(), len(r.Items))
	}
	return fmt.Sprintf("%s completed with failures (%d succeeded, %d failed)", r.Phase.Title(), succeeded, failed)
}
