package judge

import (
	"strings"

	"algoarena/internal/domain/model"
)

// NormalizeOutput trims leading/trailing whitespace and normalizes all line
// terminators to "\n". Equality checks are exact string equality after this;
// no numeric tolerance, no whitespace-insensitive diffing beyond line
// endings. Normalizing twice is a no-op.
func NormalizeOutput(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}

// Classify interprets one execution record against an expected output.
// First match wins:
//  1. compilation-failure status or non-empty compiler output
//  2. time-limit status
//  3. non-empty stderr or a status in the runtime-error range
//  4. normalized output mismatch
//  5. pass
func Classify(res *ExecutionResult, expected string) model.Verdict {
	if res.Status.ID == StatusCompileErr || strings.TrimSpace(res.CompileOutput) != "" {
		return model.VerdictCompilationError
	}
	if res.Status.ID == StatusTimeLimit {
		return model.VerdictTimeLimitExceeded
	}
	if strings.TrimSpace(res.Stderr) != "" ||
		(res.Status.ID >= statusRuntimeErrLow && res.Status.ID <= statusRuntimeErrHigh) {
		return model.VerdictRuntimeError
	}
	if NormalizeOutput(res.Stdout) != NormalizeOutput(expected) {
		return model.VerdictWrongAnswer
	}
	return model.VerdictAccepted
}
