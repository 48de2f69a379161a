package judge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJavaScriptFunction(t *testing.T) {
	sig := extractJavaScript("function twoSum(nums, target) {\n  return [];\n}")
	require.NotNil(t, sig)
	assert.Equal(t, "twoSum", sig.Name)
	assert.Equal(t, []string{"nums", "target"}, sig.Params)
}

func TestExtractJavaScriptArrow(t *testing.T) {
	sig := extractJavaScript("const isValid = (s) => {\n  return true;\n};")
	require.NotNil(t, sig)
	assert.Equal(t, "isValid", sig.Name)
	assert.Equal(t, []string{"s"}, sig.Params)
}

func TestExtractPythonDef(t *testing.T) {
	sig := extractPython("def two_sum(nums, target):\n    return []\n")
	require.NotNil(t, sig)
	assert.Equal(t, "two_sum", sig.Name)
	assert.Equal(t, []string{"nums", "target"}, sig.Params)
}

func TestExtractPythonTypeHints(t *testing.T) {
	sig := extractPython("def search(nums: list, target: int = 0):\n    pass\n")
	require.NotNil(t, sig)
	assert.Equal(t, []string{"nums", "target"}, sig.Params)
}

func TestSynthesizeJavaScriptBindsArguments(t *testing.T) {
	src := "function twoSum(nums, target) { return [0, 1]; }"
	d := Synthesize(src, "javascript", "nums = [2,7,11,15], target = 9")

	require.True(t, d.Synthesized)
	assert.Contains(t, d.Source, src)
	assert.Contains(t, d.Source, "const __arg0 = [2,7,11,15];")
	assert.Contains(t, d.Source, "const __arg1 = 9;")
	assert.Contains(t, d.Source, "twoSum(__arg0, __arg1)")
	assert.Contains(t, d.Source, "JSON.stringify(__result)")
	assert.Contains(t, d.Source, "process.exit(1)")
}

func TestSynthesizePythonBindsArguments(t *testing.T) {
	src := "def two_sum(nums, target):\n    return [0, 1]\n"
	d := Synthesize(src, "python", "nums = [2,7,11,15], target = 9")

	require.True(t, d.Synthesized)
	assert.Contains(t, d.Source, "__arg0 = json.loads('[2,7,11,15]')")
	assert.Contains(t, d.Source, "__arg1 = json.loads('9')")
	assert.Contains(t, d.Source, "two_sum(__arg0, __arg1)")
	assert.Contains(t, d.Source, "sys.exit(1)")
}

func TestSynthesizeNoSignatureFallsBackToRawSource(t *testing.T) {
	src := "console.log('hello');"
	d := Synthesize(src, "javascript", "n = 5")

	// The split between structured binding and raw stdin must be
	// deterministic: unmodified source means stdin routing downstream.
	assert.False(t, d.Synthesized)
	assert.Equal(t, src, d.Source)
}

func TestSynthesizeUnsupportedLanguagePassesThrough(t *testing.T) {
	src := "#include <iostream>\nint main() { return 0; }"
	d := Synthesize(src, "cpp", "n = 5")
	assert.False(t, d.Synthesized)
	assert.Equal(t, src, d.Source)
}

func TestSynthesizeMissingArgumentsBindNull(t *testing.T) {
	d := Synthesize("function f(a, b) { return a; }", "javascript", "a = 1")
	require.True(t, d.Synthesized)
	assert.Contains(t, d.Source, "const __arg1 = null;")
}

func TestSynthesizedDriverDoesNotDuplicateUserCode(t *testing.T) {
	src := "function f(a) { return a; }"
	d := Synthesize(src, "javascript", "a = 1")
	require.True(t, d.Synthesized)
	assert.Equal(t, 1, strings.Count(d.Source, "function f(a)"))
}
