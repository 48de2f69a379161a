package service

import (
	"context"

	"algoarena/internal/common"
	"algoarena/internal/domain/model"
	"algoarena/internal/domain/repository"
	"algoarena/internal/judge"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type ProblemService struct {
	problemRepo repository.ProblemRepository
}

func NewProblemService(problemRepo repository.ProblemRepository) *ProblemService {
	return &ProblemService{problemRepo: problemRepo}
}

// ListProblems returns the catalog in its stored order, without test cases.
func (s *ProblemService) ListProblems(ctx context.Context) ([]model.Problem, error) {
	return s.problemRepo.List(ctx)
}

// GetProblem returns a problem by slug with its visible examples attached.
// Hidden test cases are never included.
func (s *ProblemService) GetProblem(ctx context.Context, problemSlug string) (*model.Problem, error) {
	problem, err := s.problemRepo.FindBySlug(ctx, problemSlug)
	if err != nil {
		return nil, common.Errorf("problem %q: %w", problemSlug, err)
	}
	examples, err := s.problemRepo.GetExamples(ctx, problem.ID)
	if err != nil {
		return nil, common.Errorf("failed to fetch examples for %q: %w", problemSlug, err)
	}
	problem.Examples = examples
	problem.TestCases = nil
	return problem, nil
}

type CreateProblemRequest struct {
	Title       string                  `json:"title"`
	SortOrder   int                     `json:"sort_order"`
	Description string                  `json:"description"`
	Difficulty  model.ProblemDifficulty `json:"difficulty"`
	Topic       string                  `json:"topic"`
	StarterCode map[string]string       `json:"starter_code"`
	Examples    []model.Example         `json:"examples"`
	TestCases   []model.TestCase        `json:"test_cases"`
}

// CreateProblem inserts a new problem. The slug is derived from the title
// and is immutable after creation; a problem must carry at least one hidden
// test case before it can be submitted against.
func (s *ProblemService) CreateProblem(ctx context.Context, req CreateProblemRequest) (*model.Problem, error) {
	if req.Title == "" {
		return nil, common.Errorf("title is required: %w", common.ErrValidation)
	}
	if len(req.TestCases) == 0 {
		return nil, common.Errorf("at least one hidden test case is required: %w", common.ErrValidation)
	}
	for lang := range req.StarterCode {
		if _, ok := judge.LookupLanguage(lang); !ok {
			return nil, common.Errorf("unsupported starter code language %q: %w", lang, common.ErrValidation)
		}
	}

	problem := &model.Problem{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Slug:        slug.Make(req.Title),
		SortOrder:   req.SortOrder,
		Description: req.Description,
		Difficulty:  req.Difficulty,
		Topic:       req.Topic,
		StarterCode: req.StarterCode,
	}
	for i := range req.Examples {
		ex := req.Examples[i]
		ex.ID = uuid.NewString()
		ex.ProblemID = problem.ID
		ex.SortOrder = i
		problem.Examples = append(problem.Examples, ex)
	}
	for i := range req.TestCases {
		tc := req.TestCases[i]
		tc.ID = uuid.NewString()
		tc.ProblemID = problem.ID
		tc.SortOrder = i
		problem.TestCases = append(problem.TestCases, tc)
	}

	if err := s.problemRepo.Create(ctx, problem); err != nil {
		return nil, common.Errorf("failed to create problem: %w", err)
	}
	return problem, nil
}
