package model

import "time"

type ProblemDifficulty string

const (
	DifficultyEasy   ProblemDifficulty = "Easy"
	DifficultyMedium ProblemDifficulty = "Medium"
	DifficultyHard   ProblemDifficulty = "Hard"
)

type Problem struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"` // Globally unique, immutable after creation
	SortOrder   int               `json:"sort_order"`
	Description string            `json:"description"`
	Difficulty  ProblemDifficulty `json:"difficulty"`
	Topic       string            `json:"topic"`
	StarterCode map[string]string `json:"starter_code,omitempty"` // Keyed by language tag
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Examples    []Example         `json:"examples,omitempty"`   // Public test cases
	TestCases   []TestCase        `json:"test_cases,omitempty"` // Hidden test cases (never exposed to users)
}

type Example struct {
	ID             string    `json:"id"`
	ProblemID      string    `json:"problem_id"`
	Input          string    `json:"input"`
	ExpectedOutput string    `json:"expected_output"`
	Explanation    *string   `json:"explanation,omitempty"`
	SortOrder      int       `json:"sort_order"`
	CreatedAt      time.Time `json:"created_at"`
}

type TestCase struct { // Hidden test cases
	ID             string    `json:"id"`
	ProblemID      string    `json:"problem_id"`
	Input          string    `json:"input"`
	ExpectedOutput string    `json:"expected_output"`
	SortOrder      int       `json:"sort_order"`
	CreatedAt      time.Time `json:"created_at"`
}
