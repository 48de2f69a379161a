package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"algoarena/internal/common"
	"algoarena/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ProblemRepository interface {
	Create(ctx context.Context, problem *model.Problem) error
	FindByID(ctx context.Context, id string) (*model.Problem, error)
	FindBySlug(ctx context.Context, slug string) (*model.Problem, error)
	List(ctx context.Context) ([]model.Problem, error)
	GetExamples(ctx context.Context, problemID string) ([]model.Example, error)
	// GetHiddenTestCases returns the grading cases in their stored order.
	GetHiddenTestCases(ctx context.Context, problemID string) ([]model.TestCase, error)
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

const problemColumns = `id, title, slug, sort_order, description, difficulty, topic, starter_code, created_at, updated_at`

func scanProblem(scan func(dest ...any) error) (*model.Problem, error) {
	problem := &model.Problem{}
	var starterCode []byte
	err := scan(
		&problem.ID, &problem.Title, &problem.Slug, &problem.SortOrder,
		&problem.Description, &problem.Difficulty, &problem.Topic,
		&starterCode, &problem.CreatedAt, &problem.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(starterCode) > 0 {
		if err := json.Unmarshal(starterCode, &problem.StarterCode); err != nil {
			return nil, fmt.Errorf("invalid starter_code payload: %w", err)
		}
	}
	return problem, nil
}

func (r *pgProblemRepository) Create(ctx context.Context, problem *model.Problem) error {
	starterCode, err := json.Marshal(problem.StarterCode)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Create: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Create: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO problems (id, title, slug, sort_order, description, difficulty, topic, starter_code)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = tx.ExecContext(ctx, query,
		problem.ID, problem.Title, problem.Slug, problem.SortOrder,
		problem.Description, problem.Difficulty, problem.Topic, starterCode,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("problem with slug %q already exists: %w", problem.Slug, common.ErrConflict)
		}
		return fmt.Errorf("pgProblemRepository.Create: %w", err)
	}

	for _, ex := range problem.Examples {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO examples (id, problem_id, input, expected_output, explanation, sort_order)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			ex.ID, problem.ID, ex.Input, ex.ExpectedOutput, ex.Explanation, ex.SortOrder,
		)
		if err != nil {
			return fmt.Errorf("pgProblemRepository.Create example: %w", err)
		}
	}
	for _, tc := range problem.TestCases {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO test_cases (id, problem_id, input, expected_output, sort_order)
			 VALUES ($1, $2, $3, $4, $5)`,
			tc.ID, problem.ID, tc.Input, tc.ExpectedOutput, tc.SortOrder,
		)
		if err != nil {
			return fmt.Errorf("pgProblemRepository.Create test case: %w", err)
		}
	}

	return tx.Commit()
}

func (r *pgProblemRepository) FindByID(ctx context.Context, id string) (*model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE id = $1`
	problem, err := scanProblem(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.FindByID: %w", err)
	}
	return problem, nil
}

func (r *pgProblemRepository) FindBySlug(ctx context.Context, slug string) (*model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE slug = $1`
	problem, err := scanProblem(r.db.QueryRowContext(ctx, query, slug).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.FindBySlug: %w", err)
	}
	return problem, nil
}

func (r *pgProblemRepository) List(ctx context.Context) ([]model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems ORDER BY sort_order ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.List: %w", err)
	}
	defer rows.Close()

	var problems []model.Problem
	for rows.Next() {
		problem, err := scanProblem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("pgProblemRepository.List: %w", err)
		}
		problems = append(problems, *problem)
	}
	return problems, rows.Err()
}

func (r *pgProblemRepository) GetExamples(ctx context.Context, problemID string) ([]model.Example, error) {
	query := `SELECT id, problem_id, input, expected_output, explanation, sort_order, created_at
	          FROM examples WHERE problem_id = $1 ORDER BY sort_order ASC`
	rows, err := r.db.QueryContext(ctx, query, problemID)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.GetExamples: %w", err)
	}
	defer rows.Close()

	var examples []model.Example
	for rows.Next() {
		var ex model.Example
		err := rows.Scan(&ex.ID, &ex.ProblemID, &ex.Input, &ex.ExpectedOutput, &ex.Explanation, &ex.SortOrder, &ex.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("pgProblemRepository.GetExamples: %w", err)
		}
		examples = append(examples, ex)
	}
	return examples, rows.Err()
}

func (r *pgProblemRepository) GetHiddenTestCases(ctx context.Context, problemID string) ([]model.TestCase, error) {
	query := `SELECT id, problem_id, input, expected_output, sort_order, created_at
	          FROM test_cases WHERE problem_id = $1 ORDER BY sort_order ASC`
	rows, err := r.db.QueryContext(ctx, query, problemID)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.GetHiddenTestCases: %w", err)
	}
	defer rows.Close()

	var cases []model.TestCase
	for rows.Next() {
		var tc model.TestCase
		err := rows.Scan(&tc.ID, &tc.ProblemID, &tc.Input, &tc.ExpectedOutput, &tc.SortOrder, &tc.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("pgProblemRepository.GetHiddenTestCases: %w", err)
		}
		cases = append(cases, tc)
	}
	return cases, rows.Err()
}
