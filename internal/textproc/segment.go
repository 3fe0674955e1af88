package textproc

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-ego/gse"
)

// DefaultStopWords are common function words and conjunctions that carry
// little topical signal.
var DefaultStopWords = []string{
	"的", "了", "在", "是", "我", "你", "他", "她", "它", "们",
	"这", "那", "之", "与", "和", "或", "虽然", "但是", "然而", "因此",
}

// Tokenizer splits text into word-level tokens.
type Tokenizer interface {
	Cut(text string) ([]string, error)
}

// Segmenter turns normalized text into a token sequence with stop words removed.
type Segmenter struct {
	tokenizer Tokenizer
	stopWords map[string]struct{}
}

func NewSegmenter(tokenizer Tokenizer, stopWords []string) *Segmenter {
	if stopWords == nil {
		stopWords = DefaultStopWords
	}
	set := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		set[w] = struct{}{}
	}
	return &Segmenter{tokenizer: tokenizer, stopWords: set}
}

func (s *Segmenter) IsStopWord(token string) bool {
	_, ok := s.stopWords[token]
	return ok
}

func (s *Segmenter) Segment(text string) ([]string, error) {
	text = keepWordRunes(text)
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	tokens, err := s.tokenizer.Cut(text)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if strings.TrimSpace(tok) == "" {
			continue
		}
		if s.IsStopWord(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out, nil
}

// keepWordRunes drops everything that is not a letter, number, underscore
// or whitespace.
func keepWordRunes(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, text)
}

// GseTokenizer segments Chinese text with a gse dictionary and HMM for
// words the dictionary does not know.
type GseTokenizer struct {
	seg gse.Segmenter
}

// NewGseTokenizer loads the embedded simplified Chinese dictionary, or the
// dictionary files at dictPath (comma separated) when set.
// Latin tokens keep their case: counting is codepoint-exact.
func NewGseTokenizer(dictPath string) (*GseTokenizer, error) {
	gse.ToLower = false

	t := &GseTokenizer{}
	var err error
	if dictPath == "" {
		err = t.seg.LoadDictEmbed()
	} else {
		err = t.seg.LoadDict(dictPath)
	}
	if err != nil {
		return nil, fmt.Errorf("load segmentation dictionary: %w", err)
	}
	return t, nil
}

func (t *GseTokenizer) Cut(text string) ([]string, error) {
	return t.seg.Cut(text, true), nil
}
