package service

import (
	"context"
	"log"
	"time"

	"algoarena/internal/common"
	"algoarena/internal/domain/model"
	"algoarena/internal/domain/repository"
	"algoarena/internal/judge"
	"algoarena/internal/platform/queue"
	"algoarena/internal/progress"

	"github.com/google/uuid"
)

// SubmissionService is the thin enqueue boundary for judge jobs. Grading
// itself happens in the worker; this layer validates, fast-path checks
// credits, and durably queues the job.
type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	problemRepo    repository.ProblemRepository
	userRepo       repository.UserRepository
	jobQueue       queue.JobQueue
	runResults     queue.RunResultStore
}

func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	probRepo repository.ProblemRepository,
	userRepo repository.UserRepository,
	jobQueue queue.JobQueue,
	runResults queue.RunResultStore,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: subRepo,
		problemRepo:    probRepo,
		userRepo:       userRepo,
		jobQueue:       jobQueue,
		runResults:     runResults,
	}
}

type SubmitRequest struct {
	ProblemID string `json:"problem_id"`
	Language  string `json:"language"`
	Code      string `json:"code"`
}

// Submit validates and enqueues a grading job, returning the job id once the
// job is durably queued. The worker re-checks credits authoritatively; the
// check here only spares the user a queued job that is certain to be
// rejected.
func (s *SubmissionService) Submit(ctx context.Context, userID string, req SubmitRequest) (string, error) {
	if req.Code == "" {
		return "", common.Errorf("code is required: %w", common.ErrValidation)
	}
	if _, ok := judge.LookupLanguage(req.Language); !ok {
		return "", common.Errorf("unsupported language %q: %w", req.Language, common.ErrBadRequest)
	}
	problem, err := s.problemRepo.FindByID(ctx, req.ProblemID)
	if err != nil {
		return "", common.Errorf("problem not found: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", common.Errorf("user not found: %w", err)
	}
	if !user.IsPro() && !progress.CreditsStale(user.CreditsResetAt, time.Now()) && user.SubmissionCredits <= 0 {
		return "", common.Errorf("no submission credits left today: %w", common.ErrQuotaExceeded)
	}

	job := &model.JudgeJob{
		ID:        uuid.NewString(),
		Type:      model.JobTypeSubmission,
		UserID:    userID,
		ProblemID: problem.ID,
		Language:  req.Language,
		Code:      req.Code,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		return "", common.Errorf("failed to enqueue submission job: %w", err)
	}

	log.Printf("INFO: Submission job %s enqueued for user %s, problem %s.", job.ID, userID, problem.ID)
	return job.ID, nil
}

type RunRequest struct {
	ProblemID    string   `json:"problem_id"`
	Language     string   `json:"language"`
	Code         string   `json:"code"`
	CustomInputs []string `json:"custom_inputs,omitempty"`
}

// Run enqueues a run-code job against the problem's visible examples, or
// the caller's custom inputs. No submission record is written for runs.
func (s *SubmissionService) Run(ctx context.Context, userID string, req RunRequest) (string, error) {
	if req.Code == "" {
		return "", common.Errorf("code is required: %w", common.ErrValidation)
	}
	if _, ok := judge.LookupLanguage(req.Language); !ok {
		return "", common.Errorf("unsupported language %q: %w", req.Language, common.ErrBadRequest)
	}
	if _, err := s.problemRepo.FindByID(ctx, req.ProblemID); err != nil {
		return "", common.Errorf("problem not found: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", common.Errorf("user not found: %w", err)
	}
	if !user.IsPro() && !progress.CreditsStale(user.CreditsResetAt, time.Now()) && user.RunCredits <= 0 {
		return "", common.Errorf("no run credits left today: %w", common.ErrQuotaExceeded)
	}

	job := &model.JudgeJob{
		ID:        uuid.NewString(),
		Type:      model.JobTypeRun,
		UserID:    userID,
		ProblemID: req.ProblemID,
		Language:  req.Language,
		Code:      req.Code,
		Inputs:    req.CustomInputs,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		return "", common.Errorf("failed to enqueue run job: %w", err)
	}
	return job.ID, nil
}

// GetSubmission returns the single current submission for (user, problem),
// or common.ErrNotFound as the explicit "no submission yet" signal.
func (s *SubmissionService) GetSubmission(ctx context.Context, userID, problemID string) (*model.Submission, error) {
	return s.submissionRepo.FindByUserAndProblem(ctx, userID, problemID)
}

// GetRunResult returns the stored outcome of a run job; ok is false while
// the job is still in flight.
func (s *SubmissionService) GetRunResult(ctx context.Context, jobID string) ([]model.RunResult, bool, error) {
	return s.runResults.Get(ctx, jobID)
}
