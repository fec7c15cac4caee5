package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle state of a research job
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// ResearchJob is the orchestrator-owned record for one end-to-end research
// request. It is created on submission and mutated only by the orchestrator;
// once Status reaches succeeded or failed it is never modified again.
//
// PhaseIndex is monotonically non-decreasing: phases execute strictly in the
// order listed in Phases and a phase never starts before its predecessor
// reaches a terminal state.
type ResearchJob struct {
	ID          string      `json:"id" badgerhold:"key"`
	PrincipalID string      `json:"principal_id"`
	CompanyName string      `json:"company_name"`
	FolderID    string      `json:"folder_id"`
	FolderName  string      `json:"folder_name"`
	Phases      []PhaseName `json:"phases"`
	PhaseIndex  int         `json:"phase_index"`
	Status      JobStatus   `json:"status"`
	Progress    string      `json:"progress"`
	ResultLink  string      `json:"result_link,omitempty"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	StartedAt   time.Time   `json:"started_at,omitempty"`
	FinishedAt  time.Time   `json:"finished_at,omitempty"`
}

// NewResearchJob creates a queued job with the fixed phase sequence
func NewResearchJob(principalID, companyName, folderID, folderName string, phases []PhaseName) *ResearchJob {
	return &ResearchJob{
		ID:          uuid.New().String(),
		PrincipalID: principalID,
		CompanyName: companyName,
		FolderID:    folderID,
		FolderName:  folderName,
		Phases:      phases,
		PhaseIndex:  0,
		Status:      JobStatusQueued,
		Progress:    "Research job queued",
		CreatedAt:   time.Now(),
	}
}

// CurrentPhase returns the phase at PhaseIndex, or "" when the sequence is exhausted
func (j *ResearchJob) CurrentPhase() PhaseName {
	if j.PhaseIndex < 0 || j.PhaseIndex >= len(j.Phases) {
		return ""
	}
	return j.Phases[j.PhaseIndex]
}

// IsTerminal returns true once the job has succeeded or failed
func (j *ResearchJob) IsTerminal() bool {
	return j.Status == JobStatusSucceeded || j.Status == JobStatusFailed
}

// Snapshot produces the committed view written to the status store after
// every transition. Readers only ever observe these values, never the
// orchestrator's in-flight state.
func (j *ResearchJob) Snapshot() *JobSnapshot {
	snap := &JobSnapshot{
		JobID:      j.ID,
		Status:     j.Status,
		PhaseIndex: j.PhaseIndex,
		Phase:      string(j.CurrentPhase()),
		Progress:   j.Progress,
		ResultLink: j.ResultLink,
		Error:      j.Error,
		UpdatedAt:  time.Now(),
		FinishedAt: j.FinishedAt,
	}
	if snap.Phase == "" && len(j.Phases) > 0 {
		snap.Phase = string(j.Phases[len(j.Phases)-1])
	}
	return snap
}

// JobSnapshot is the read-model served to the status-polling boundary.
// One snapshot per job id; overwritten on every committed transition.
type JobSnapshot struct {
	JobID      string    `json:"job_id" badgerhold:"key"`
	Status     JobStatus `json:"status"`
	PhaseIndex int       `json:"phase_index"`
	Phase      string    `json:"phase"`
	Progress   string    `json:"progress"`
	ResultLink string    `json:"result_link,omitempty"`
	Error      string    `json:"error,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}
