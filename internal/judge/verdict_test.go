package judge

import (
	"testing"

	"algoarena/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func result(statusID int, stdout, stderr, compileOutput string) *ExecutionResult {
	r := &ExecutionResult{Stdout: stdout, Stderr: stderr, CompileOutput: compileOutput}
	r.Status.ID = statusID
	return r
}

func TestNormalizeOutput(t *testing.T) {
	assert.Equal(t, "a\nb", NormalizeOutput("  a\r\nb  \n"))
	assert.Equal(t, "a\nb", NormalizeOutput("a\rb"))

	// Idempotence: normalize(normalize(x)) == normalize(x).
	raw := " \r\n[1,2]\r\n3\r "
	assert.Equal(t, NormalizeOutput(raw), NormalizeOutput(NormalizeOutput(raw)))
}

func TestClassifyCompilationError(t *testing.T) {
	assert.Equal(t, model.VerdictCompilationError,
		Classify(result(StatusCompileErr, "", "", "main.c:1: error"), "x"))

	// Non-empty compile output wins even with an otherwise clean status.
	assert.Equal(t, model.VerdictCompilationError,
		Classify(result(StatusAccepted, "x", "", "warning: treated as error"), "x"))
}

func TestClassifyTimeLimitExceeded(t *testing.T) {
	assert.Equal(t, model.VerdictTimeLimitExceeded,
		Classify(result(StatusTimeLimit, "", "", ""), "x"))
}

func TestClassifyRuntimeError(t *testing.T) {
	assert.Equal(t, model.VerdictRuntimeError,
		Classify(result(StatusAccepted, "x", "TypeError: boom", ""), "x"))

	for id := statusRuntimeErrLow; id <= statusRuntimeErrHigh; id++ {
		assert.Equal(t, model.VerdictRuntimeError,
			Classify(result(id, "x", "", ""), "x"), "status id %d", id)
	}
}

func TestClassifyWrongAnswer(t *testing.T) {
	assert.Equal(t, model.VerdictWrongAnswer,
		Classify(result(StatusAccepted, "[0,2]", "", ""), "[0,1]"))
}

func TestClassifyPassNormalizesLineEndings(t *testing.T) {
	assert.Equal(t, model.VerdictAccepted,
		Classify(result(StatusAccepted, "[0,1]\r\n", "", ""), " [0,1]\n"))
}

func TestClassifyOrderCompilationBeatsTimeLimit(t *testing.T) {
	// Classification order is fixed: compile output is checked before the
	// time-limit status.
	r := result(StatusTimeLimit, "", "", "compile boom")
	assert.Equal(t, model.VerdictCompilationError, Classify(r, "x"))
}
