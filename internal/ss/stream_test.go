package ss

import (
	"context"
	"testing"

	"github.com/shraw06/docsplusplus/internal/fileparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamEmitsAllNonWhitespaceTokensInOrder(t *testing.T) {
	content := fileparser.Tokenize("A. B.")

	var texts []string
	err := Stream(context.Background(), content, func(tok StreamToken) error {
		texts = append(texts, tok.Text)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", ".", "B", "."}, texts)
}

func TestStreamHintsTrailingSpaceBetweenWordsAndAcrossNonFinalSentence(t *testing.T) {
	content := fileparser.Tokenize("A. B.")

	var hints []bool
	err := Stream(context.Background(), content, func(tok StreamToken) error {
		hints = append(hints, tok.NeedsTrailingSpace)
		return nil
	})
	require.NoError(t, err)
	// tokens in order: "A", ".", "B", "."
	// "A" -> next is "." (delimiter, not word), and "A" is not the final
	// real token of sentence 0 -> false
	// "." -> next real token is "B" (word) -> true
	// "B" -> next is "." (delimiter); sentence 1 is the final sentence -> false
	// "." -> last token overall, no next -> false
	assert.Equal(t, []bool{false, true, false, false}, hints)
}

func TestStreamStopsOnContextCancel(t *testing.T) {
	content := fileparser.Tokenize("A. B. C.")
	ctx, cancel := context.WithCancel(context.Background())

	count := 0
	err := Stream(ctx, content, func(tok StreamToken) error {
		count++
		if count == 1 {
			cancel()
		}
		return nil
	})
	assert.Error(t, err)
	assert.Equal(t, 1, count)
}

func TestStreamPropagatesEmitError(t *testing.T) {
	content := fileparser.Tokenize("A.")
	boom := assert.AnError
	err := Stream(context.Background(), content, func(tok StreamToken) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}
