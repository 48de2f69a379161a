package model

import "time"

const (
	JobTypeSubmission = "submission"
	JobTypeRun        = "run"
)

// JudgeJob is the full unit of work carried on the queue. The payload is
// self-contained so workers never need a job table to start grading.
type JudgeJob struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	ProblemID string    `json:"problem_id"`
	Language  string    `json:"language"`
	Code      string    `json:"code"`
	Inputs    []string  `json:"inputs,omitempty"` // Custom inputs for run jobs
	Attempts  int       `json:"attempts,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
