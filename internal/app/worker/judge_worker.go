package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"algoarena/internal/common"
	"algoarena/internal/domain/model"
	"algoarena/internal/domain/repository"
	"algoarena/internal/judge"
	"algoarena/internal/platform/queue"
	"algoarena/internal/progress"
)

// maxJobAttempts bounds re-queues of a job whose authoritative record could
// not be written. Past this the outcome is dropped and logged.
const maxJobAttempts = 3

// SandboxExecutor is the sandbox client surface the worker depends on, kept
// narrow so tests can substitute a fake.
type SandboxExecutor interface {
	Execute(ctx context.Context, source, language, stdin string) (*judge.ExecutionResult, error)
}

// JudgeWorker consumes judge jobs from the queue and grades them one at a
// time: each hidden test case runs sequentially in stored order with early
// exit on the first non-pass, then the outcome is durably recorded and the
// user's progress updated.
type JudgeWorker struct {
	queue          queue.JobQueue
	runResults     queue.RunResultStore
	sandbox        SandboxExecutor
	userRepo       repository.UserRepository
	problemRepo    repository.ProblemRepository
	submissionRepo repository.SubmissionRepository
	now            func() time.Time
}

func NewJudgeWorker(
	q queue.JobQueue,
	runResults queue.RunResultStore,
	sandbox SandboxExecutor,
	userRepo repository.UserRepository,
	problemRepo repository.ProblemRepository,
	submissionRepo repository.SubmissionRepository,
) *JudgeWorker {
	return &JudgeWorker{
		queue:          q,
		runResults:     runResults,
		sandbox:        sandbox,
		userRepo:       userRepo,
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
		now:            time.Now,
	}
}

func (w *JudgeWorker) Start(ctx context.Context) {
	log.Println("Judge worker started.")
	for {
		select {
		case <-ctx.Done():
			log.Println("Judge worker stopping...")
			return
		default:
			job, err := w.queue.Dequeue(ctx, 5*time.Second)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					continue
				}
				log.Printf("ERROR: Failed to dequeue judge job: %v", err)
				time.Sleep(5 * time.Second) // Wait before retrying on queue errors
				continue
			}
			if job == nil {
				continue
			}

			log.Printf("Worker picked up job %s (type: %s)", job.ID, job.Type)
			if err := w.ProcessJob(ctx, job); err != nil {
				log.Printf("ERROR: Job %s failed: %v", job.ID, err)
			}
		}
	}
}

// ProcessJob runs one dequeued job to completion.
func (w *JudgeWorker) ProcessJob(ctx context.Context, job *model.JudgeJob) error {
	switch job.Type {
	case model.JobTypeSubmission:
		return w.processSubmission(ctx, job)
	case model.JobTypeRun:
		return w.processRun(ctx, job)
	default:
		return fmt.Errorf("unknown job type %q for job %s", job.Type, job.ID)
	}
}

// caseRun is the aggregate outcome of iterating the hidden test cases.
type caseRun struct {
	verdict      model.Verdict
	passed       int
	maxRuntimeMs int
	maxMemoryKb  int
	stderr       *string
	failedCase   *model.FailedTestCase
}

func (w *JudgeWorker) processSubmission(ctx context.Context, job *model.JudgeJob) error {
	now := w.now()

	user, err := w.userRepo.FindByID(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve user %s: %w", job.UserID, err)
	}

	// Authoritative quota re-check, before any sandbox calls. The HTTP layer
	// pre-checks as a UX fast path only.
	if !user.IsPro() {
		if progress.CreditsStale(user.CreditsResetAt, now) {
			if err := w.userRepo.ResetDailyCredits(ctx, user.ID, now); err != nil {
				return fmt.Errorf("failed to reset daily credits for user %s: %w", user.ID, err)
			}
			user.SubmissionCredits = progress.DailySubmissionQuota
		}
		// A re-queued job already passed admission on its first attempt; its
		// credit was consumed then and must not gate or decrement again.
		if user.SubmissionCredits <= 0 && job.Attempts == 0 {
			return fmt.Errorf("user %s has no submission credits left: %w", user.ID, common.ErrQuotaExceeded)
		}
	}

	if _, err := w.problemRepo.FindByID(ctx, job.ProblemID); err != nil {
		return fmt.Errorf("failed to resolve problem %s: %w", job.ProblemID, err)
	}
	testCases, err := w.problemRepo.GetHiddenTestCases(ctx, job.ProblemID)
	if err != nil {
		return fmt.Errorf("failed to fetch test cases for problem %s: %w", job.ProblemID, err)
	}
	if len(testCases) == 0 {
		return fmt.Errorf("problem %s has no hidden test cases: %w", job.ProblemID, common.ErrProblemData)
	}

	run := w.runHiddenCases(ctx, job, testCases)

	// Ledger update happens exactly once per accepted job, before the credit
	// decrement and the submission upsert, and is idempotent against the
	// same job being processed twice.
	if run.verdict == model.VerdictAccepted {
		if err := w.recordSolve(ctx, user, job.ProblemID, now); err != nil {
			return fmt.Errorf("failed to record solve for user %s: %w", user.ID, err)
		}
	}

	if !user.IsPro() && job.Attempts == 0 {
		ok, err := w.userRepo.ConsumeSubmissionCredit(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to consume submission credit for user %s: %w", user.ID, err)
		}
		if !ok {
			// Raced to zero between the check and the decrement; the quota
			// check already passed, so the job proceeds.
			log.Printf("WARN: Submission credit for user %s was already exhausted.", user.ID)
		}
	}

	submission := &model.Submission{
		ID:              job.ID,
		UserID:          job.UserID,
		ProblemID:       job.ProblemID,
		Language:        job.Language,
		Code:            job.Code,
		Verdict:         run.verdict,
		RuntimeMs:       run.maxRuntimeMs,
		MemoryKb:        run.maxMemoryKb,
		PassedTestCases: run.passed,
		TotalTestCases:  len(testCases),
		Stderr:          run.stderr,
		FailedTestCase:  run.failedCase,
		SubmittedAt:     now,
	}
	if err := w.submissionRepo.Upsert(ctx, submission); err != nil {
		// The authoritative record failed after the ledger already committed;
		// put the job back on the queue so a later attempt reconciles. The
		// ledger update is idempotent, so the retry is safe.
		w.requeueJob(ctx, job)
		return fmt.Errorf("failed to upsert submission for (%s, %s): %w", job.UserID, job.ProblemID, err)
	}

	log.Printf("INFO: Job %s completed with verdict %s (%d/%d passed).",
		job.ID, run.verdict, run.passed, len(testCases))
	return nil
}

// requeueJob pushes the job back to the tail of the queue for another
// attempt, dropping it once the attempt cap is reached.
func (w *JudgeWorker) requeueJob(ctx context.Context, job *model.JudgeJob) {
	job.Attempts++
	if job.Attempts >= maxJobAttempts {
		log.Printf("ERROR: Job %s exhausted %d attempts, dropping.", job.ID, job.Attempts)
		return
	}
	if err := w.queue.Enqueue(ctx, job); err != nil {
		log.Printf("ERROR: Failed to re-queue job %s: %v", job.ID, err)
	} else {
		log.Printf("INFO: Job %s re-queued (attempt %d).", job.ID, job.Attempts+1)
	}
}

// runHiddenCases iterates the hidden test cases strictly in stored order,
// stopping at the first non-pass. Sandbox/system failures per case convert
// into a RuntimeError-class verdict with a system-prefixed message so the
// job still completes and a record is still written.
func (w *JudgeWorker) runHiddenCases(ctx context.Context, job *model.JudgeJob, testCases []model.TestCase) caseRun {
	run := caseRun{verdict: model.VerdictAccepted}

	for _, tc := range testCases {
		driver := judge.Synthesize(job.Code, job.Language, tc.Input)
		// Deterministic routing: synthesized drivers bind arguments inside
		// the program, so stdin must be suppressed entirely.
		stdin := tc.Input
		if driver.Synthesized {
			stdin = ""
		}

		res, err := w.sandbox.Execute(ctx, driver.Source, job.Language, stdin)
		if err != nil {
			msg := "System Error: " + err.Error()
			run.verdict = model.VerdictRuntimeError
			run.stderr = &msg
			run.failedCase = &model.FailedTestCase{Input: tc.Input, Expected: tc.ExpectedOutput}
			return run
		}

		if ms := res.RuntimeMs(); ms > run.maxRuntimeMs {
			run.maxRuntimeMs = ms
		}
		if res.Memory > run.maxMemoryKb {
			run.maxMemoryKb = res.Memory
		}

		verdict := judge.Classify(res, tc.ExpectedOutput)
		if verdict != model.VerdictAccepted {
			run.verdict = verdict
			run.failedCase = &model.FailedTestCase{
				Input:    tc.Input,
				Expected: tc.ExpectedOutput,
				Actual:   judge.NormalizeOutput(res.Stdout),
			}
			if out := errorText(res, verdict); out != "" {
				run.stderr = &out
			}
			return run
		}
		run.passed++
	}
	return run
}

func errorText(res *judge.ExecutionResult, verdict model.Verdict) string {
	if verdict == model.VerdictCompilationError {
		return res.CompileOutput
	}
	return res.Stderr
}

// recordSolve applies the credit & progress ledger for an accepted job:
// idempotent solved-set insertion, solved count as set cardinality, and the
// shared streak rule applied to the new solve time.
func (w *JudgeWorker) recordSolve(ctx context.Context, user *model.User, problemID string, solvedAt time.Time) error {
	added, err := w.userRepo.AddSolvedProblem(ctx, user.ID, problemID, solvedAt)
	if err != nil {
		return err
	}
	if !added {
		log.Printf("INFO: Problem %s already in solved set for user %s.", problemID, user.ID)
	}

	count, err := w.userRepo.CountSolvedProblems(ctx, user.ID)
	if err != nil {
		return err
	}
	streak := progress.AdvanceStreak(user.LastSolvedAt, user.Streak, solvedAt)
	return w.userRepo.UpdateProgress(ctx, user.ID, streak, solvedAt, count)
}

func (w *JudgeWorker) processRun(ctx context.Context, job *model.JudgeJob) error {
	now := w.now()

	user, err := w.userRepo.FindByID(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve user %s: %w", job.UserID, err)
	}
	if !user.IsPro() {
		if progress.CreditsStale(user.CreditsResetAt, now) {
			if err := w.userRepo.ResetDailyCredits(ctx, user.ID, now); err != nil {
				return fmt.Errorf("failed to reset daily credits for user %s: %w", user.ID, err)
			}
			user.RunCredits = progress.DailyRunQuota
		}
		if user.RunCredits <= 0 {
			return fmt.Errorf("user %s has no run credits left: %w", user.ID, common.ErrQuotaExceeded)
		}
	}

	type runInput struct {
		input    string
		expected *string
	}
	var inputs []runInput
	if len(job.Inputs) > 0 {
		for _, in := range job.Inputs {
			inputs = append(inputs, runInput{input: in})
		}
	} else {
		examples, err := w.problemRepo.GetExamples(ctx, job.ProblemID)
		if err != nil {
			return fmt.Errorf("failed to fetch examples for problem %s: %w", job.ProblemID, err)
		}
		if len(examples) == 0 {
			return fmt.Errorf("problem %s has no runnable examples: %w", job.ProblemID, common.ErrProblemData)
		}
		for _, ex := range examples {
			expected := ex.ExpectedOutput
			inputs = append(inputs, runInput{input: ex.Input, expected: &expected})
		}
	}

	results := make([]model.RunResult, 0, len(inputs))
	for _, in := range inputs {
		driver := judge.Synthesize(job.Code, job.Language, in.input)
		stdin := in.input
		if driver.Synthesized {
			stdin = ""
		}

		res, err := w.sandbox.Execute(ctx, driver.Source, job.Language, stdin)
		if err != nil {
			msg := "System Error: " + err.Error()
			results = append(results, model.RunResult{
				Input:    in.input,
				Expected: in.expected,
				Verdict:  model.VerdictRuntimeError,
				Stderr:   &msg,
			})
			break
		}

		result := model.RunResult{
			Input:     in.input,
			Expected:  in.expected,
			RuntimeMs: res.RuntimeMs(),
			MemoryKb:  res.Memory,
			Verdict:   model.VerdictAccepted,
		}
		actual := judge.NormalizeOutput(res.Stdout)
		result.Actual = &actual
		if in.expected != nil {
			result.Verdict = judge.Classify(res, *in.expected)
		} else if v := judge.Classify(res, res.Stdout); v != model.VerdictAccepted {
			// No expected output to compare: only error conditions count.
			result.Verdict = v
		}
		if result.Verdict == model.VerdictCompilationError {
			result.CompileError = &res.CompileOutput
		} else if res.Stderr != "" {
			result.Stderr = &res.Stderr
		}
		results = append(results, result)
	}

	if err := w.runResults.Put(ctx, job.ID, results); err != nil {
		w.requeueJob(ctx, job)
		return fmt.Errorf("failed to store run results for job %s: %w", job.ID, err)
	}

	// Run credits are consumed post-execution; they are not refunded on a
	// failing run.
	if !user.IsPro() {
		if _, err := w.userRepo.ConsumeRunCredit(ctx, user.ID); err != nil {
			log.Printf("ERROR: Failed to consume run credit for user %s: %v", user.ID, err)
		}
	}

	log.Printf("INFO: Run job %s completed with %d result(s).", job.ID, len(results))
	return nil
}
