package server

import "net/http"

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Research jobs
	mux.HandleFunc("/api/research", s.app.ResearchHandler.SubmitHandler)              // POST - submit a research job
	mux.HandleFunc("/api/research/status", s.app.ResearchHandler.StatusJobHandler)    // GET - poll job status
	mux.HandleFunc("/api/research/cancel", s.app.ResearchHandler.CancelHandler)       // POST - request cancellation

	// API routes - Authentication
	mux.HandleFunc("/api/auth/credentials", s.app.AuthHandler.CaptureHandler) // POST - capture credentials

	// API routes - Application status
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler) // GET - application status
	mux.HandleFunc("/api/health", s.app.StatusHandler.GetHealthHandler) // GET - provider health probe

	return mux
}
