package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"algoarena/internal/common"
	"algoarena/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)

	// ResetDailyCredits refills both pools, guarded in SQL so concurrent
	// workers cannot double-reset within the same calendar day.
	ResetDailyCredits(ctx context.Context, userID string, now time.Time) error
	// ConsumeSubmissionCredit atomically decrements the pool, only while it
	// is still above zero. Returns false when no credit was available.
	ConsumeSubmissionCredit(ctx context.Context, userID string) (bool, error)
	ConsumeRunCredit(ctx context.Context, userID string) (bool, error)

	// AddSolvedProblem inserts the problem into the solved set if absent
	// (returning true), otherwise replaces the history entry's solve time.
	AddSolvedProblem(ctx context.Context, userID, problemID string, solvedAt time.Time) (bool, error)
	CountSolvedProblems(ctx context.Context, userID string) (int, error)
	ListSolvedProblemIDs(ctx context.Context, userID string) ([]string, error)
	// ListSolveHistory returns history entries ordered by solve time ascending.
	ListSolveHistory(ctx context.Context, userID string) ([]model.SolvedProblem, error)
	UpdateProgress(ctx context.Context, userID string, streak int, lastSolvedAt time.Time, solvedCount int) error

	GetLeaderboard(ctx context.Context, limit int) ([]model.User, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, username, email, hashed_password, role, tier,
	run_credits, submission_credits, credits_reset_at,
	solved_count, streak, last_solved_at, created_at, updated_at`

func (r *pgUserRepository) scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.Role, &user.Tier,
		&user.RunCredits, &user.SubmissionCredits, &user.CreditsResetAt,
		&user.SolvedCount, &user.Streak, &user.LastSolvedAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, username, email, hashed_password, role, tier,
	              run_credits, submission_credits, credits_reset_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.HashedPassword, user.Role, user.Tier,
		user.RunCredits, user.SubmissionCredits, user.CreditsResetAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("user with given username or email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByUsername: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) ResetDailyCredits(ctx context.Context, userID string, now time.Time) error {
	// Calendar-day comparison, not elapsed hours: the guard fires as soon as
	// the stored reset day differs from today's (UTC) date.
	query := `UPDATE users
	          SET run_credits = $2, submission_credits = $3, credits_reset_at = $4, updated_at = NOW()
	          WHERE id = $1
	            AND (credits_reset_at AT TIME ZONE 'UTC')::date <> ($4 AT TIME ZONE 'UTC')::date`
	_, err := r.db.ExecContext(ctx, query, userID, 3, 3, now.UTC())
	if err != nil {
		return fmt.Errorf("pgUserRepository.ResetDailyCredits: %w", err)
	}
	return nil
}

func (r *pgUserRepository) ConsumeSubmissionCredit(ctx context.Context, userID string) (bool, error) {
	// Atomic conditional update: never a read-modify-write of the whole
	// document, so concurrent jobs for the same user cannot lose updates.
	query := `UPDATE users
	          SET submission_credits = submission_credits - 1, updated_at = NOW()
	          WHERE id = $1 AND submission_credits > 0 AND tier <> $2`
	res, err := r.db.ExecContext(ctx, query, userID, model.TierPro)
	if err != nil {
		return false, fmt.Errorf("pgUserRepository.ConsumeSubmissionCredit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pgUserRepository.ConsumeSubmissionCredit: %w", err)
	}
	return n > 0, nil
}

func (r *pgUserRepository) ConsumeRunCredit(ctx context.Context, userID string) (bool, error) {
	query := `UPDATE users
	          SET run_credits = run_credits - 1, updated_at = NOW()
	          WHERE id = $1 AND run_credits > 0 AND tier <> $2`
	res, err := r.db.ExecContext(ctx, query, userID, model.TierPro)
	if err != nil {
		return false, fmt.Errorf("pgUserRepository.ConsumeRunCredit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pgUserRepository.ConsumeRunCredit: %w", err)
	}
	return n > 0, nil
}

func (r *pgUserRepository) AddSolvedProblem(ctx context.Context, userID, problemID string, solvedAt time.Time) (bool, error) {
	insert := `INSERT INTO solved_problems (user_id, problem_id, solved_at)
	           VALUES ($1, $2, $3)
	           ON CONFLICT (user_id, problem_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, insert, userID, problemID, solvedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("pgUserRepository.AddSolvedProblem: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pgUserRepository.AddSolvedProblem: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	// Already in the set: replace the history entry's solve time.
	update := `UPDATE solved_problems SET solved_at = $3 WHERE user_id = $1 AND problem_id = $2`
	if _, err := r.db.ExecContext(ctx, update, userID, problemID, solvedAt.UTC()); err != nil {
		return false, fmt.Errorf("pgUserRepository.AddSolvedProblem: %w", err)
	}
	return false, nil
}

func (r *pgUserRepository) CountSolvedProblems(ctx context.Context, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM solved_problems WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgUserRepository.CountSolvedProblems: %w", err)
	}
	return count, nil
}

func (r *pgUserRepository) ListSolvedProblemIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT problem_id FROM solved_problems WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.ListSolvedProblemIDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgUserRepository.ListSolvedProblemIDs: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *pgUserRepository) ListSolveHistory(ctx context.Context, userID string) ([]model.SolvedProblem, error) {
	query := `SELECT user_id, problem_id, solved_at
	          FROM solved_problems WHERE user_id = $1 ORDER BY solved_at ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.ListSolveHistory: %w", err)
	}
	defer rows.Close()

	var history []model.SolvedProblem
	for rows.Next() {
		var entry model.SolvedProblem
		if err := rows.Scan(&entry.UserID, &entry.ProblemID, &entry.SolvedAt); err != nil {
			return nil, fmt.Errorf("pgUserRepository.ListSolveHistory: %w", err)
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

func (r *pgUserRepository) UpdateProgress(ctx context.Context, userID string, streak int, lastSolvedAt time.Time, solvedCount int) error {
	query := `UPDATE users
	          SET streak = $2, last_solved_at = $3, solved_count = $4, updated_at = NOW()
	          WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, userID, streak, lastSolvedAt.UTC(), solvedCount)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdateProgress: %w", err)
	}
	return nil
}

func (r *pgUserRepository) GetLeaderboard(ctx context.Context, limit int) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
	          ORDER BY solved_count DESC, streak DESC, username ASC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.GetLeaderboard: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user := model.User{}
		err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.Role, &user.Tier,
			&user.RunCredits, &user.SubmissionCredits, &user.CreditsResetAt,
			&user.SolvedCount, &user.Streak, &user.LastSolvedAt, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("pgUserRepository.GetLeaderboard: %w", err)
		}
		user.HashedPassword = ""
		users = append(users, user)
	}
	return users, rows.Err()
}
