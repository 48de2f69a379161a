package handler

import (
	"encoding/json"
	"net/http"

	"algoarena/internal/api/middleware"
	"algoarena/internal/app/service"
	"algoarena/internal/common"

	"github.com/go-chi/chi/v5"
)

type ProblemHandler struct {
	problemService *service.ProblemService
}

func NewProblemHandler(ps *service.ProblemService) *ProblemHandler {
	return &ProblemHandler{problemService: ps}
}

func (h *ProblemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listProblems)            // GET /api/v1/problems
	r.Get("/{problemSlug}", h.getProblem) // GET /api/v1/problems/two-sum

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.Authenticator)
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Post("/", h.createProblem) // POST /api/v1/problems
	})
}

func (h *ProblemHandler) listProblems(w http.ResponseWriter, r *http.Request) {
	problems, err := h.problemService.ListProblems(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problems)
}

func (h *ProblemHandler) getProblem(w http.ResponseWriter, r *http.Request) {
	problemSlug := chi.URLParam(r, "problemSlug")

	problem, err := h.problemService.GetProblem(r.Context(), problemSlug)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) createProblem(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	problem, err := h.problemService.CreateProblem(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, problem)
}
