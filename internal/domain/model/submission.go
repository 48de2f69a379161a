package model

import "time"

type Verdict string

// Sandbox and system failures fold into VerdictRuntimeError with a
// "System Error: " stderr prefix, so every classification lands on one of
// these.
const (
	VerdictAccepted          Verdict = "Accepted"
	VerdictWrongAnswer       Verdict = "WrongAnswer"
	VerdictTimeLimitExceeded Verdict = "TimeLimitExceeded"
	VerdictCompilationError  Verdict = "CompilationError"
	VerdictRuntimeError      Verdict = "RuntimeError"
)

// FailedTestCase records the first hidden test case (in stored order) that
// failed classification. Nil on Accepted submissions.
type FailedTestCase struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// Submission is the single persisted attempt for a (user, problem) pair.
// A new submission overwrites the prior one; the record is written once per
// job, after all test cases have run or a failure short-circuited execution.
type Submission struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	ProblemID       string          `json:"problem_id"`
	Language        string          `json:"language"`
	Code            string          `json:"code"`
	Verdict         Verdict         `json:"verdict"`
	RuntimeMs       int             `json:"runtime_ms"` // Max observed across executed cases
	MemoryKb        int             `json:"memory_kb"`  // Max observed across executed cases
	PassedTestCases int             `json:"passed_test_cases"`
	TotalTestCases  int             `json:"total_test_cases"`
	Stderr          *string         `json:"stderr,omitempty"` // stderr/compile text
	FailedTestCase  *FailedTestCase `json:"failed_test_case,omitempty"`
	SubmittedAt     time.Time       `json:"submitted_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// RunResult is the outcome of running code against one visible example or
// custom input. Run results are short-lived and never enter the submissions
// table.
type RunResult struct {
	Input        string  `json:"input"`
	Expected     *string `json:"expected,omitempty"`
	Actual       *string `json:"actual,omitempty"`
	Verdict      Verdict `json:"verdict"`
	RuntimeMs    int     `json:"runtime_ms"`
	MemoryKb     int     `json:"memory_kb"`
	Stderr       *string `json:"stderr,omitempty"`
	CompileError *string `json:"compile_error,omitempty"`
}
