package fileparser

import "github.com/shraw06/docsplusplus/internal/fserrors"

// InsertTokens implements insert_tokens(content, sentence_index, word_index):
// it splits text into the same token kinds Tokenize produces and splices
// them into the target sentence at the given 1-based real-word position.
//
// word_index is 1-based over the target sentence's real word tokens
// (delimiters count as real words; whitespace/newline tokens do not).
// Valid range is 1..=real_word_count+1.
//
// Appending past the last sentence is allowed only when sentenceIndex
// equals the current sentence count and either the file is empty or its
// last sentence already ends in a delimiter or newline.
//
// Returns the updated Content and the number of newly created sentences
// (for growing the caller's per-file lock vector).
func InsertTokens(c Content, sentenceIndex int, wordIndex int, text string) (Content, int, error) {
	count := c.SentenceCount()

	appending := sentenceIndex == count
	if appending {
		if count != 0 {
			last := c.Sentences[len(c.Sentences)-1]
			if !last.EndsComplete() {
				return c, 0, fserrors.ErrInvalidSentenceIdx
			}
		}
	} else if sentenceIndex < 0 || sentenceIndex >= count {
		return c, 0, fserrors.ErrInvalidSentenceIdx
	}

	sentences := make([]Sentence, len(c.Sentences))
	copy(sentences, c.Sentences)

	var targetIdx int
	var target Sentence
	var removing int // number of existing sentences the splice replaces

	switch {
	case count == 0:
		// Empty file special case: a single placeholder sentence stands in
		// for "zero sentences"; target it directly.
		targetIdx = 0
		if len(sentences) == 0 {
			sentences = []Sentence{{}}
		}
		target = sentences[0]
		removing = 1
	case appending:
		targetIdx = len(sentences)
		target = Sentence{}
		removing = 0
	default:
		targetIdx = sentenceIndex
		target = sentences[sentenceIndex]
		removing = 1
	}

	realCount := target.RealWordCount()
	if wordIndex < 1 || wordIndex > realCount+1 {
		return c, 0, fserrors.ErrInvalidWordIdx
	}

	pos := findInsertPos(target, wordIndex)
	before := append([]Token{}, target.Tokens[:pos]...)
	after := append([]Token{}, target.Tokens[pos:]...)

	contentParsed := Tokenize(text)
	cs := contentParsed.Sentences

	var newSentences []Sentence
	switch {
	case len(cs) == 1:
		merged := append(append(append([]Token{}, before...), cs[0].Tokens...), after...)
		newSentences = []Sentence{{Tokens: merged}}
	default:
		first := Sentence{Tokens: append(append([]Token{}, before...), cs[0].Tokens...)}
		newSentences = append(newSentences, first)
		newSentences = append(newSentences, cs[1:len(cs)-1]...)
		last := Sentence{Tokens: append(append([]Token{}, cs[len(cs)-1].Tokens...), after...)}
		newSentences = append(newSentences, last)
	}

	expansion := len(newSentences) - 1

	spliced := make([]Sentence, 0, len(sentences)-removing+len(newSentences))
	spliced = append(spliced, sentences[:targetIdx]...)
	spliced = append(spliced, newSentences...)
	spliced = append(spliced, sentences[targetIdx+removing:]...)

	return Content{Sentences: spliced}, expansion, nil
}

// ValidateSentenceIndex implements the lock-time validity check (§4.8): if
// the file has zero sentences only index 0 is valid; otherwise the index
// must be in [0, sentence_count], and equaling sentence_count (appending a
// brand new sentence) additionally requires the current last sentence to
// end in a delimiter or newline.
func ValidateSentenceIndex(c Content, idx int) error {
	count := c.SentenceCount()

	if count == 0 {
		if idx != 0 {
			return fserrors.ErrInvalidSentenceIdx
		}
		return nil
	}

	if idx < 0 || idx > count {
		return fserrors.ErrInvalidSentenceIdx
	}
	if idx == count {
		last := c.Sentences[len(c.Sentences)-1]
		if !last.EndsComplete() {
			return fserrors.ErrInvalidSentenceIdx
		}
	}
	return nil
}

// findInsertPos returns the token index marking the position of the
// wordIndex-th real-word token in s, or len(s.Tokens) if wordIndex is one
// past the last real word.
func findInsertPos(s Sentence, wordIndex int) int {
	count := 0
	for idx, tok := range s.Tokens {
		if tok.Kind == KindWhitespace || tok.Kind == KindNewline {
			continue
		}
		if count == wordIndex-1 {
			return idx
		}
		count++
	}
	return len(s.Tokens)
}
