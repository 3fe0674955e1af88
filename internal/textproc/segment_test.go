package textproc

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spaceTokenizer cuts on whitespace and then into single runes for CJK
// runs, which is enough to drive the filtering logic deterministically.
type spaceTokenizer struct {
	calls int
}

func (s *spaceTokenizer) Cut(text string) ([]string, error) {
	s.calls++
	var out []string
	for i, field := range strings.Split(text, " ") {
		if i > 0 {
			out = append(out, " ")
		}
		if field != "" {
			out = append(out, field)
		}
	}
	return out, nil
}

type fixedTokenizer []string

func (f fixedTokenizer) Cut(string) ([]string, error) { return f, nil }

type failingTokenizer struct{}

func (failingTokenizer) Cut(string) ([]string, error) { return nil, errors.New("dictionary missing") }

func TestSegment_ScenarioWithStopWords(t *testing.T) {
	seg := NewSegmenter(fixedTokenizer{"的", "的", "的", " ", "猫", " ", "猫", " ", "狗"}, nil)

	tokens, err := seg.Segment("的的的 猫 猫 狗")
	require.NoError(t, err)
	assert.Equal(t, []string{"猫", "猫", "狗"}, tokens)

	assert.Equal(t, []WordCount{{Word: "猫", Count: 2}, {Word: "狗", Count: 1}}, Rank(tokens, TopN))
}

func TestSegment_StripsRemainingPunctuation(t *testing.T) {
	tok := &spaceTokenizer{}
	seg := NewSegmenter(tok, nil)

	tokens, err := seg.Segment("书，很好！ 书。")
	require.NoError(t, err)
	assert.Equal(t, []string{"书很好", "书"}, tokens)
}

func TestSegment_EmptyInputSkipsTokenizer(t *testing.T) {
	tok := &spaceTokenizer{}
	seg := NewSegmenter(tok, nil)

	for _, in := range []string{"", "   ", "，。！？"} {
		tokens, err := seg.Segment(in)
		require.NoError(t, err)
		assert.Empty(t, tokens)
		assert.NotNil(t, tokens)
	}
	assert.Zero(t, tok.calls)
}

func TestSegment_CustomStopWords(t *testing.T) {
	seg := NewSegmenter(fixedTokenizer{"go", "is", "fun"}, []string{"is"})
	tokens, err := seg.Segment("go is fun")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "fun"}, tokens)
	assert.False(t, seg.IsStopWord("的"))
}

func TestSegment_TokenizerError(t *testing.T) {
	seg := NewSegmenter(failingTokenizer{}, nil)
	_, err := seg.Segment("猫")
	require.Error(t, err)
}

func TestDefaultStopWords(t *testing.T) {
	assert.Len(t, DefaultStopWords, 20)
	seg := NewSegmenter(fixedTokenizer{}, nil)
	for _, w := range DefaultStopWords {
		assert.True(t, seg.IsStopWord(w), w)
	}
}

func TestGseTokenizer_StopWordsNeverSurvive(t *testing.T) {
	if testing.Short() {
		t.Skip("loads the full segmentation dictionary")
	}
	tok, err := NewGseTokenizer("")
	require.NoError(t, err)
	seg := NewSegmenter(tok, nil)

	for _, in := range []string{"我们的书很好", "虽然下雨了但是我们在公园", "Go语言是2009年发布的"} {
		tokens, err := seg.Segment(in)
		require.NoError(t, err)
		require.NotEmpty(t, tokens)
		for _, tok := range tokens {
			assert.False(t, seg.IsStopWord(tok), "stop word %q in %v", tok, tokens)
			assert.NotEqual(t, "", strings.TrimSpace(tok))
		}
	}
}

func TestGseTokenizer_Deterministic(t *testing.T) {
	if testing.Short() {
		t.Skip("loads the full segmentation dictionary")
	}
	tok, err := NewGseTokenizer("")
	require.NoError(t, err)

	first, err := tok.Cut("中华人民共和国成立了")
	require.NoError(t, err)
	second, err := tok.Cut("中华人民共和国成立了")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "中华人民共和国成立了", strings.Join(first, ""))
}

func TestGseTokenizer_KeepsLatinCase(t *testing.T) {
	if testing.Short() {
		t.Skip("loads the full segmentation dictionary")
	}
	tok, err := NewGseTokenizer("")
	require.NoError(t, err)
	seg := NewSegmenter(tok, nil)

	tokens, err := seg.Segment("Python和python")
	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "python"}, tokens)

	tokens, err = seg.Segment("Python和python以及GitHub")
	require.NoError(t, err)
	assert.Equal(t, []WordCount{
		{Word: "Python", Count: 1},
		{Word: "python", Count: 1},
		{Word: "以及", Count: 1},
		{Word: "GitHub", Count: 1},
	}, Rank(tokens, TopN))
}

func TestNewGseTokenizer_MissingDictionary(t *testing.T) {
	_, err := NewGseTokenizer(t.TempDir() + "/missing.txt")
	require.Error(t, err)
}
