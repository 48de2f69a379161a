package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"algoarena/internal/common"
	"algoarena/internal/domain/model"
)

type SubmissionRepository interface {
	// Upsert writes the submission for its (user, problem) pair, fully
	// overwriting any prior attempt. Concurrent submissions for the same
	// pair resolve as last-write-wins on the upsert key.
	Upsert(ctx context.Context, sub *model.Submission) error
	// FindByUserAndProblem returns common.ErrNotFound when the user has no
	// submission yet for the problem; that is a signal, not a failure.
	FindByUserAndProblem(ctx context.Context, userID, problemID string) (*model.Submission, error)
	ListByUser(ctx context.Context, userID string) ([]model.Submission, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) Upsert(ctx context.Context, sub *model.Submission) error {
	var failedCase []byte
	if sub.FailedTestCase != nil {
		var err error
		failedCase, err = json.Marshal(sub.FailedTestCase)
		if err != nil {
			return fmt.Errorf("pgSubmissionRepository.Upsert: %w", err)
		}
	}

	// failed_test_case is written unconditionally, so a newly Accepted
	// verdict clears the detail left by an earlier failing attempt.
	query := `INSERT INTO submissions
	              (id, user_id, problem_id, language, code, verdict, runtime_ms, memory_kb,
	               passed_test_cases, total_test_cases, stderr, failed_test_case, submitted_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
	          ON CONFLICT (user_id, problem_id) DO UPDATE SET
	              language = EXCLUDED.language,
	              code = EXCLUDED.code,
	              verdict = EXCLUDED.verdict,
	              runtime_ms = EXCLUDED.runtime_ms,
	              memory_kb = EXCLUDED.memory_kb,
	              passed_test_cases = EXCLUDED.passed_test_cases,
	              total_test_cases = EXCLUDED.total_test_cases,
	              stderr = EXCLUDED.stderr,
	              failed_test_case = EXCLUDED.failed_test_case,
	              submitted_at = EXCLUDED.submitted_at,
	              updated_at = NOW()`
	_, err := r.db.ExecContext(ctx, query,
		sub.ID, sub.UserID, sub.ProblemID, sub.Language, sub.Code, sub.Verdict,
		sub.RuntimeMs, sub.MemoryKb, sub.PassedTestCases, sub.TotalTestCases,
		sub.Stderr, failedCase, sub.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Upsert: %w", err)
	}
	return nil
}

const submissionColumns = `id, user_id, problem_id, language, code, verdict, runtime_ms, memory_kb,
	passed_test_cases, total_test_cases, stderr, failed_test_case, submitted_at, updated_at`

func scanSubmission(scan func(dest ...any) error) (*model.Submission, error) {
	sub := &model.Submission{}
	var failedCase []byte
	err := scan(
		&sub.ID, &sub.UserID, &sub.ProblemID, &sub.Language, &sub.Code, &sub.Verdict,
		&sub.RuntimeMs, &sub.MemoryKb, &sub.PassedTestCases, &sub.TotalTestCases,
		&sub.Stderr, &failedCase, &sub.SubmittedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(failedCase) > 0 {
		sub.FailedTestCase = &model.FailedTestCase{}
		if err := json.Unmarshal(failedCase, sub.FailedTestCase); err != nil {
			return nil, fmt.Errorf("invalid failed_test_case payload: %w", err)
		}
	}
	return sub, nil
}

func (r *pgSubmissionRepository) FindByUserAndProblem(ctx context.Context, userID, problemID string) (*model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE user_id = $1 AND problem_id = $2`
	sub, err := scanSubmission(r.db.QueryRowContext(ctx, query, userID, problemID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.FindByUserAndProblem: %w", err)
	}
	return sub, nil
}

func (r *pgSubmissionRepository) ListByUser(ctx context.Context, userID string) ([]model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE user_id = $1 ORDER BY submitted_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByUser: %w", err)
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListByUser: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}
