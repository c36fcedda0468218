package ss

import (
	"context"
	"time"

	"github.com/shraw06/docsplusplus/internal/fileparser"
)

// StreamToken is one token emitted by Stream, paired with the
// needs_trailing_space hint consumers use to reassemble text without
// re-running the tokenizer's spacing rules themselves.
type StreamToken struct {
	Text               string
	NeedsTrailingSpace bool
}

// tokenPace is the delay Stream waits between emitting successive tokens.
const tokenPace = 100 * time.Millisecond

// Stream walks content's tokens in order and calls emit once per token
// other than whitespace and newlines (sentence delimiters are emitted),
// pausing tokenPace after each. NeedsTrailingSpace is set when the next
// emitted token is a word, or when the token ends a sentence that is not
// the last one. It stops early if ctx is cancelled.
func Stream(ctx context.Context, content fileparser.Content, emit func(StreamToken) error) error {
	for si, sentence := range content.Sentences {
		for ti, tok := range sentence.Tokens {
			if tok.Kind == fileparser.KindWhitespace || tok.Kind == fileparser.KindNewline {
				continue
			}

			next := nextRealToken(content, si, ti)
			last := si < len(content.Sentences)-1 && ti == lastRealTokenIndex(sentence)

			needsSpace := false
			switch {
			case next != nil && (next.Kind == fileparser.KindWord):
				needsSpace = true
			case last:
				needsSpace = true
			}

			if err := emit(StreamToken{Text: tok.Text, NeedsTrailingSpace: needsSpace}); err != nil {
				return err
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(tokenPace):
			}
		}
	}
	return nil
}

// nextRealToken returns the next non-whitespace, non-newline token after
// (si, ti) in content, or nil if tok is the last such token in the file.
func nextRealToken(content fileparser.Content, si, ti int) *fileparser.Token {
	sentence := content.Sentences[si]
	for j := ti + 1; j < len(sentence.Tokens); j++ {
		if t := sentence.Tokens[j]; t.Kind != fileparser.KindWhitespace && t.Kind != fileparser.KindNewline {
			return &t
		}
	}
	for k := si + 1; k < len(content.Sentences); k++ {
		for _, t := range content.Sentences[k].Tokens {
			if t.Kind != fileparser.KindWhitespace && t.Kind != fileparser.KindNewline {
				return &t
			}
		}
	}
	return nil
}

// lastRealTokenIndex returns the token index of the last non-whitespace,
// non-newline token in sentence.
func lastRealTokenIndex(sentence fileparser.Sentence) int {
	idx := -1
	for i, t := range sentence.Tokens {
		if t.Kind != fileparser.KindWhitespace && t.Kind != fileparser.KindNewline {
			idx = i
		}
	}
	return idx
}
