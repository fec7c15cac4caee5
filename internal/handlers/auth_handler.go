package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/interfaces"
	"github.com/ternarybob/vestigo/internal/models"
)

// AuthHandler handles credential capture for principals
type AuthHandler struct {
	credentials interfaces.CredentialManager
	validate    *validator.Validate
	logger      arbor.ILogger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(credentials interfaces.CredentialManager, logger arbor.ILogger) *AuthHandler {
	return &AuthHandler{
		credentials: credentials,
		validate:    validator.New(),
		logger:      logger,
	}
}

// CaptureRequest is the body for POST /api/auth/credentials. Expiry may be
// given as an absolute RFC 3339 timestamp or as seconds from now.
type CaptureRequest struct {
	PrincipalID  string    `json:"principal_id" validate:"required"`
	AccessToken  string    `json:"access_token" validate:"required"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry"`
	ExpiresIn    int       `json:"expires_in" validate:"omitempty,min=1"`
}

// CaptureHandler handles POST /api/auth/credentials
func (h *AuthHandler) CaptureHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req CaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	expiry := req.Expiry
	if expiry.IsZero() && req.ExpiresIn > 0 {
		expiry = time.Now().Add(time.Duration(req.ExpiresIn) * time.Second)
	}
	if expiry.IsZero() {
		WriteError(w, http.StatusBadRequest, "Either expiry or expires_in is required")
		return
	}

	cred := &models.Credential{
		PrincipalID:  req.PrincipalID,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		TokenType:    req.TokenType,
		Expiry:       expiry,
	}

	if err := h.credentials.StoreCredential(r.Context(), cred); err != nil {
		h.logger.Error().Err(err).Str("principal_id", req.PrincipalID).Msg("Failed to store credential")
		WriteError(w, http.StatusInternalServerError, "Failed to store credential")
		return
	}

	WriteSuccess(w, "Credential stored for "+req.PrincipalID)
}
