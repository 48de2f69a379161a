package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTestInputSimple(t *testing.T) {
	args := ParseTestInput("n = 5")
	require.Len(t, args, 1)
	assert.Equal(t, "n", args[0].Name)
	assert.Equal(t, "5", args[0].Value)
}

func TestParseTestInputNestedCommas(t *testing.T) {
	args := ParseTestInput("nums = [1,2,3], target = 5")
	require.Len(t, args, 2)
	assert.Equal(t, Argument{Name: "nums", Value: "[1,2,3]"}, args[0])
	assert.Equal(t, Argument{Name: "target", Value: "5"}, args[1])
}

func TestParseTestInputDeepNesting(t *testing.T) {
	args := ParseTestInput("matrix = [[1,2],[3,4]], k = 2, s = \"a,b\"")
	require.Len(t, args, 3)
	assert.Equal(t, "[[1,2],[3,4]]", args[0].Value)
	assert.Equal(t, "2", args[1].Value)
	assert.Equal(t, `"a,b"`, args[2].Value)
}

func TestParseTestInputCommaInsideString(t *testing.T) {
	args := ParseTestInput(`s = "hello, world", t = 'x,y'`)
	require.Len(t, args, 2)
	assert.Equal(t, `"hello, world"`, args[0].Value)
	assert.Equal(t, `'x,y'`, args[1].Value)
}

func TestParseTestInputUnnamedValue(t *testing.T) {
	args := ParseTestInput("[1,2,3]")
	require.Len(t, args, 1)
	assert.Equal(t, "", args[0].Name)
	assert.Equal(t, "[1,2,3]", args[0].Value)
}

func TestParseTestInputEmpty(t *testing.T) {
	assert.Nil(t, ParseTestInput(""))
	assert.Nil(t, ParseTestInput("   "))
}
