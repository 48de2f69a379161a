package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	TierFree = "free"
	TierPro  = "pro"
)

type User struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	HashedPassword    string     `json:"-"` // Not exposed
	Role              string     `json:"role"`
	Tier              string     `json:"tier"`
	RunCredits        int        `json:"run_credits"`
	SubmissionCredits int        `json:"submission_credits"`
	CreditsResetAt    time.Time  `json:"credits_reset_at"`
	SolvedCount       int        `json:"solved_count"`
	Streak            int        `json:"streak"`
	LastSolvedAt      *time.Time `json:"last_solved_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// IsPro reports whether the user is on the unlimited tier and therefore
// exempt from daily credit accounting.
func (u *User) IsPro() bool {
	return u.Tier == TierPro
}

// SolvedProblem is one entry of a user's solve history, keyed by problem id.
// Re-solving the same problem replaces the entry rather than appending.
type SolvedProblem struct {
	UserID    string    `json:"user_id"`
	ProblemID string    `json:"problem_id"`
	SolvedAt  time.Time `json:"solved_at"`
}
