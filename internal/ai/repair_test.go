package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONClean(t *testing.T) {
	parsed, err := ParseJSON(`{"content": "hello", "tag": "ethics"}`)
	require.NoError(t, err)
	assert.Equal(t, "hello", parsed["content"])
	assert.Equal(t, "ethics", parsed["tag"])
}

func TestParseJSONCodeFence(t *testing.T) {
	raw := "```json\n{\"content\": \"hello\"}\n```"
	parsed, err := ParseJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, "hello", parsed["content"])
}

func TestParseJSONLeadingProse(t *testing.T) {
	raw := `Here is the JSON you asked for:
{"content": "hello"}`
	parsed, err := ParseJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, "hello", parsed["content"])
}

func TestParseJSONSplitArray(t *testing.T) {
	// A known model failure mode: one array emitted as several
	raw := `{"posts": ["first post"], ["second post"]}`
	parsed, err := ParseJSON(raw)
	require.NoError(t, err)

	posts, ok := parsed["posts"].([]interface{})
	require.True(t, ok)
	require.Len(t, posts, 2)
	assert.Equal(t, "first post", posts[0])
	assert.Equal(t, "second post", posts[1])
}

func TestParseJSONTrailingComma(t *testing.T) {
	raw := `{"tensions": ["a", "b",], "agreements": ["c"],}`
	parsed, err := ParseJSON(raw)
	require.NoError(t, err)

	tensions, ok := parsed["tensions"].([]interface{})
	require.True(t, ok)
	assert.Len(t, tensions, 2)
}

func TestParseJSONUnrepairable(t *testing.T) {
	_, err := ParseJSON(`I cannot answer that question.`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseJSONRepairIsSingleShot(t *testing.T) {
	// Still broken after both repairs: must fail, not loop
	_, err := ParseJSON(`{"content": "unterminated`)
	assert.ErrorIs(t, err, ErrParse)
}
