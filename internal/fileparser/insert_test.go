package fileparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertTokensWithinSentence(t *testing.T) {
	c := Tokenize("A. B. C.")
	got, expansion, err := InsertTokens(c, 0, 2, " X")
	require.NoError(t, err)
	assert.Equal(t, 0, expansion)
	assert.Equal(t, "A X. B. C.", Serialize(got))
}

func TestInsertTokensSplitsSentenceOnInternalDelimiter(t *testing.T) {
	c := Tokenize("A. B.")
	got, expansion, err := InsertTokens(c, 0, 2, " one. two")
	require.NoError(t, err)
	assert.Equal(t, 1, expansion)
	assert.Equal(t, "A one. two. B.", Serialize(got))
}

func TestInsertTokensScenarioTwoSecondWriter(t *testing.T) {
	c := Tokenize("A. B.")
	got, expansion, err := InsertTokens(c, 1, 2, " Z")
	require.NoError(t, err)
	assert.Equal(t, 0, expansion)
	assert.Equal(t, "A. B Z.", Serialize(got))
}

func TestInsertTokensRejectsAppendWithoutDelimiter(t *testing.T) {
	c := Tokenize("hello")
	_, _, err := InsertTokens(c, 1, 1, " world")
	assert.Error(t, err)
}

func TestInsertTokensWordIndexOutOfRange(t *testing.T) {
	c := Tokenize("A.")
	_, _, err := InsertTokens(c, 0, 5, "x")
	assert.Error(t, err)
}

func TestInsertTokensAppendsNewSentenceAfterComplete(t *testing.T) {
	c := Tokenize("A.")
	got, expansion, err := InsertTokens(c, 1, 1, "B.")
	require.NoError(t, err)
	assert.Equal(t, 0, expansion)
	assert.Equal(t, "A. B.", Serialize(got))
}

func TestInsertTokensIntoEmptyFile(t *testing.T) {
	c := Tokenize("")
	got, expansion, err := InsertTokens(c, 0, 1, "Hello.")
	require.NoError(t, err)
	assert.Equal(t, 0, expansion)
	assert.Equal(t, "Hello.", Serialize(got))
}

func TestInsertTokensKInternalDelimitersCreateKNewSentences(t *testing.T) {
	c := Tokenize("A.")
	got, expansion, err := InsertTokens(c, 0, 1, "X. Y. Z")
	require.NoError(t, err)
	assert.Equal(t, 2, expansion)
	assert.Equal(t, 3, got.SentenceCount())
}
