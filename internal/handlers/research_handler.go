package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/interfaces"
	"github.com/ternarybob/vestigo/internal/models"
	"github.com/ternarybob/vestigo/internal/research"
)

// ResearchHandler handles HTTP requests for research job submission, status
// polling, and cancellation
type ResearchHandler struct {
	orchestrator interfaces.ResearchOrchestrator
	snapshots    interfaces.JobStatusStore
	validate     *validator.Validate
	logger       arbor.ILogger
}

// NewResearchHandler creates a new ResearchHandler
func NewResearchHandler(orchestrator interfaces.ResearchOrchestrator, snapshots interfaces.JobStatusStore, logger arbor.ILogger) *ResearchHandler {
	return &ResearchHandler{
		orchestrator: orchestrator,
		snapshots:    snapshots,
		validate:     validator.New(),
		logger:       logger,
	}
}

// SubmitRequest is the body for POST /api/research
type SubmitRequest struct {
	CompanyName string `json:"company_name" validate:"required,min=1,max=200"`
	FolderName  string `json:"folder_name" validate:"omitempty,max=200"`
}

// SubmitHandler handles POST /api/research
func (h *ResearchHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	principalID := r.Header.Get("X-Principal-ID")
	if principalID == "" {
		WriteError(w, http.StatusBadRequest, "X-Principal-ID header is required")
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if req.FolderName == "" {
		req.FolderName = fmt.Sprintf("%s Research", req.CompanyName)
	}

	jobID, err := h.orchestrator.Submit(r.Context(), principalID, req.CompanyName, req.FolderName)
	if err != nil {
		h.writeSubmitError(w, principalID, err)
		return
	}

	WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": jobID,
		"status": string(models.JobStatusQueued),
	})
}

// writeSubmitError maps submission failures to HTTP statuses: auth problems
// are the caller's to fix, setup failures are upstream
func (h *ResearchHandler) writeSubmitError(w http.ResponseWriter, principalID string, err error) {
	switch {
	case errors.Is(err, interfaces.ErrNotAuthenticated):
		WriteError(w, http.StatusUnauthorized, "No credential stored for principal. Capture credentials first via POST /api/auth/credentials.")
	case errors.Is(err, interfaces.ErrRenewalFailed):
		WriteError(w, http.StatusUnauthorized, "Stored credential could not be renewed. Capture credentials again via POST /api/auth/credentials.")
	default:
		var failure *research.Failure
		if errors.As(err, &failure) && failure.Reason == models.FailureSetup {
			WriteError(w, http.StatusBadGateway, "Research setup failed: "+failure.Err.Error())
			return
		}
		h.logger.Error().Err(err).Str("principal_id", principalID).Msg("Research submission failed")
		WriteError(w, http.StatusInternalServerError, "Failed to submit research job")
	}
}

// StatusJobHandler handles GET /api/research/status?id=<job_id>
func (h *ResearchHandler) StatusJobHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	jobID := r.URL.Query().Get("id")
	if jobID == "" {
		WriteError(w, http.StatusBadRequest, "id query parameter is required")
		return
	}

	snapshot, err := h.snapshots.GetSnapshot(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			// Unknown ids get a status payload, not an error
			WriteJSON(w, http.StatusOK, map[string]string{
				"job_id": jobID,
				"status": "unknown",
			})
			return
		}
		h.logger.Error().Err(err).Str("job_id", jobID).Msg("Failed to read job snapshot")
		WriteError(w, http.StatusInternalServerError, "Failed to read job status")
		return
	}

	WriteJSON(w, http.StatusOK, snapshot)
}

// CancelHandler handles POST /api/research/cancel?id=<job_id>
func (h *ResearchHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	jobID := r.URL.Query().Get("id")
	if jobID == "" {
		WriteError(w, http.StatusBadRequest, "id query parameter is required")
		return
	}

	if !h.orchestrator.Cancel(jobID) {
		WriteError(w, http.StatusNotFound, "Job not found or already finished: "+jobID)
		return
	}

	WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": jobID,
		"status": "cancelling",
	})
}
