package service

import (
	"context"
	"time"

	"algoarena/internal/common"
	"algoarena/internal/domain/model"
	"algoarena/internal/domain/repository"
	"algoarena/internal/progress"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

type Profile struct {
	User             *model.User `json:"user"`
	SolvedProblemIDs []string    `json:"solved_problem_ids"`
	Streak           int         `json:"streak"`
}

// GetProfile returns the user with their solved set. The streak is
// recomputed from the solve history with the same rule the worker applies
// incrementally, so the two can never drift apart.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, common.Errorf("failed to load user: %w", err)
	}
	user.HashedPassword = ""

	solvedIDs, err := s.userRepo.ListSolvedProblemIDs(ctx, userID)
	if err != nil {
		return nil, common.Errorf("failed to load solved set: %w", err)
	}

	history, err := s.userRepo.ListSolveHistory(ctx, userID)
	if err != nil {
		return nil, common.Errorf("failed to load solve history: %w", err)
	}
	solveTimes := make([]time.Time, len(history))
	for i, entry := range history {
		solveTimes[i] = entry.SolvedAt
	}

	return &Profile{
		User:             user,
		SolvedProblemIDs: solvedIDs,
		Streak:           progress.StreakFromHistory(solveTimes),
	}, nil
}

// GetLeaderboard ranks users by solved count.
func (s *UserService) GetLeaderboard(ctx context.Context, limit int) ([]model.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	return s.userRepo.GetLeaderboard(ctx, limit)
}
