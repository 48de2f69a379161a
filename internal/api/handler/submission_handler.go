package handler

import (
	"encoding/json"
	"net/http"

	"algoarena/internal/api/middleware"
	"algoarena/internal/app/service"
	"algoarena/internal/common"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

func NewSubmissionHandler(ss *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator) // All submission routes require auth
	r.Post("/", h.createSubmission)
	r.Post("/run", h.runCode)
	r.Get("/run/{jobID}", h.getRunResult)
	r.Get("/problem/{problemID}", h.getSubmission)
}

func (h *SubmissionHandler) createSubmission(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	jobID, err := h.submissionService.Submit(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID}) // Accepted (202) as it's async
}

func (h *SubmissionHandler) runCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	jobID, err := h.submissionService.Run(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

func (h *SubmissionHandler) getRunResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	results, ok, err := h.submissionService.GetRunResult(r.Context(), jobID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if !ok {
		// Still in the queue or running; the client keeps polling.
		common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "pending"})
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{"status": "done", "results": results})
}

func (h *SubmissionHandler) getSubmission(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	problemID := chi.URLParam(r, "problemID")

	submission, err := h.submissionService.GetSubmission(r.Context(), userID, problemID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, submission)
}
