package core

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/wordfreq/internal/httpx"
	"github.com/baxromumarov/wordfreq/internal/observability"
	"github.com/baxromumarov/wordfreq/internal/store"
	"github.com/baxromumarov/wordfreq/internal/textproc"
)

type fakeFetcher struct {
	body string
	err  error
	got  string
}

func (f *fakeFetcher) FetchHTML(_ context.Context, rawURL string) (string, error) {
	f.got = rawURL
	return f.body, f.err
}

// runeTokenizer cuts text into single runes, a stand-in for a dictionary.
type runeTokenizer struct{}

func (runeTokenizer) Cut(text string) ([]string, error) {
	return strings.Split(text, ""), nil
}

type panicTokenizer struct{}

func (panicTokenizer) Cut(string) ([]string, error) { panic("index out of range") }

type failTokenizer struct{}

func (failTokenizer) Cut(string) ([]string, error) { return nil, errors.New("dictionary not loaded") }

type fakeChart struct{ err error }

func (c fakeChart) Render(ranked []textproc.WordCount) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return "<div>chart</div>", nil
}

type fakeCloud struct {
	err error
	got map[string]int
}

func (c *fakeCloud) Render(freq map[string]int) ([]byte, error) {
	c.got = freq
	if c.err != nil {
		return nil, c.err
	}
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

type fakeRecorder struct {
	saved []*store.Analysis
	err   error
}

func (r *fakeRecorder) SaveAnalysis(_ context.Context, a *store.Analysis) error {
	r.saved = append(r.saved, a)
	return r.err
}

const catsPage = `<html><head><title>猫狗</title><script>var 猫 = 1;</script></head>
<body><p>猫，猫！狗的 123</p><p>猫 and dogs</p></body></html>`

func newRuneAnalyzer(f httpx.Fetcher, opts ...Option) *Analyzer {
	return NewAnalyzer(f, textproc.NewSegmenter(runeTokenizer{}, nil), opts...)
}

func TestAnalyze_RanksWords(t *testing.T) {
	f := &fakeFetcher{body: catsPage}
	a := newRuneAnalyzer(f)

	res, err := a.Analyze(context.Background(), Request{URL: "example.com/pets"})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/pets", f.got)
	assert.Equal(t, "https://example.com/pets", res.URL)
	assert.Equal(t, "猫狗", res.Title)
	require.NotEmpty(t, res.Ranked)
	assert.Equal(t, textproc.WordCount{Word: "猫", Count: 4}, res.Ranked[0])
	assert.Equal(t, 4, res.Frequencies["猫"])
	assert.NotContains(t, res.Frequencies, "的")
	assert.NotContains(t, res.Frequencies, "1")
	assert.Empty(t, res.Stages)
	assert.Empty(t, res.ChartHTML)
	assert.Nil(t, res.WordCloudPNG)

	for i := 1; i < len(res.Ranked); i++ {
		assert.GreaterOrEqual(t, res.Ranked[i-1].Count, res.Ranked[i].Count)
	}
}

func TestAnalyze_EmptyPage(t *testing.T) {
	a := newRuneAnalyzer(&fakeFetcher{body: ""})
	res, err := a.Analyze(context.Background(), Request{URL: "https://example.com", ShowIntermediate: true})
	require.NoError(t, err)
	assert.Empty(t, res.Ranked)
	assert.NotNil(t, res.Ranked)
	assert.Zero(t, res.TokenCount)
	for _, s := range res.Stages {
		if s.Name == "tokens" {
			assert.Equal(t, "[]", s.Preview)
			continue
		}
		assert.Empty(t, s.Preview, s.Name)
	}
}

func TestAnalyze_IntermediateStages(t *testing.T) {
	a := newRuneAnalyzer(&fakeFetcher{body: catsPage}, WithPreviewRunes(10))
	res, err := a.Analyze(context.Background(), Request{URL: "https://example.com", ShowIntermediate: true})
	require.NoError(t, err)

	names := make([]string, 0, len(res.Stages))
	for _, s := range res.Stages {
		names = append(names, s.Name)
		assert.LessOrEqual(t, len([]rune(s.Preview)), 10)
	}
	assert.Equal(t, []string{"html", "text", "cleaned", "normalized", "tokens"}, names)
	assert.True(t, res.Stages[0].Truncated)
	assert.Equal(t, len([]rune(catsPage)), res.Stages[0].Length)
}

func TestAnalyze_TopN(t *testing.T) {
	a := newRuneAnalyzer(&fakeFetcher{body: "<p>一二三四五六七八九十</p>"}, WithTopN(3))
	res, err := a.Analyze(context.Background(), Request{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, []textproc.WordCount{{Word: "一", Count: 1}, {Word: "二", Count: 1}, {Word: "三", Count: 1}}, res.Ranked)
	assert.Equal(t, 10, res.DistinctCount)
}

func TestAnalyze_CJKPunctuationOption(t *testing.T) {
	page := "<p>好，好。</p>"

	plain := newRuneAnalyzer(&fakeFetcher{body: page})
	res, err := plain.Analyze(context.Background(), Request{URL: "https://example.com", ShowIntermediate: true})
	require.NoError(t, err)
	assert.Equal(t, "好，好。", res.Stages[2].Preview)
	assert.Equal(t, []textproc.WordCount{{Word: "好", Count: 2}}, res.Ranked)

	wide := newRuneAnalyzer(&fakeFetcher{body: page}, WithCJKPunctuation(true))
	res, err = wide.Analyze(context.Background(), Request{URL: "https://example.com", ShowIntermediate: true})
	require.NoError(t, err)
	assert.Equal(t, "好好", res.Stages[2].Preview)
}

func TestAnalyze_Presenters(t *testing.T) {
	cloud := &fakeCloud{}
	a := newRuneAnalyzer(&fakeFetcher{body: catsPage}, WithChart(fakeChart{}), WithWordCloud(cloud))

	res, err := a.Analyze(context.Background(), Request{URL: "https://example.com", RenderChart: true, RenderWordCloud: true})
	require.NoError(t, err)
	assert.Equal(t, "<div>chart</div>", res.ChartHTML)
	assert.Equal(t, map[string]int(res.Frequencies), cloud.got)
	assert.True(t, strings.HasPrefix(res.WordCloudDataURI(), "data:image/png;base64,"))
}

func TestAnalyze_ErrorKinds(t *testing.T) {
	fetchErr := &httpx.FetchError{Status: http.StatusNotFound, Err: errors.New("status 404")}

	tests := []struct {
		name     string
		analyzer *Analyzer
		req      Request
		want     Kind
	}{
		{
			name:     "empty url",
			analyzer: newRuneAnalyzer(&fakeFetcher{}),
			req:      Request{URL: "  "},
			want:     KindInput,
		},
		{
			name:     "unsupported scheme",
			analyzer: newRuneAnalyzer(&fakeFetcher{}),
			req:      Request{URL: "ftp://example.com"},
			want:     KindInput,
		},
		{
			name:     "fetch failure",
			analyzer: newRuneAnalyzer(&fakeFetcher{err: fetchErr}),
			req:      Request{URL: "https://example.com/missing"},
			want:     KindFetch,
		},
		{
			name:     "segmentation failure",
			analyzer: NewAnalyzer(&fakeFetcher{body: "<p>猫</p>"}, textproc.NewSegmenter(failTokenizer{}, nil)),
			req:      Request{URL: "https://example.com"},
			want:     KindSegmentation,
		},
		{
			name:     "segmenter panic",
			analyzer: NewAnalyzer(&fakeFetcher{body: "<p>猫</p>"}, textproc.NewSegmenter(panicTokenizer{}, nil)),
			req:      Request{URL: "https://example.com"},
			want:     KindInternal,
		},
		{
			name:     "chart failure",
			analyzer: newRuneAnalyzer(&fakeFetcher{body: "<p>猫</p>"}, WithChart(fakeChart{err: errors.New("template")})),
			req:      Request{URL: "https://example.com", RenderChart: true},
			want:     KindRender,
		},
		{
			name:     "word cloud font missing",
			analyzer: newRuneAnalyzer(&fakeFetcher{body: "<p>猫</p>"}, WithWordCloud(&fakeCloud{err: errors.New("read font: no such file")})),
			req:      Request{URL: "https://example.com", RenderWordCloud: true},
			want:     KindRender,
		},
		{
			name:     "word cloud not configured",
			analyzer: newRuneAnalyzer(&fakeFetcher{body: "<p>猫</p>"}),
			req:      Request{URL: "https://example.com", RenderWordCloud: true},
			want:     KindRender,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.analyzer.Analyze(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, res)

			var se *StageError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.want, se.Kind)
			assert.Equal(t, tt.want, KindOf(err))
		})
	}
}

func TestAnalyze_FetchErrorKeepsCause(t *testing.T) {
	fetchErr := &httpx.FetchError{Status: http.StatusBadGateway, Err: errors.New("status 502")}
	_, err := newRuneAnalyzer(&fakeFetcher{err: fetchErr}).Analyze(context.Background(), Request{URL: "https://example.com"})

	var fe *httpx.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusBadGateway, fe.Status)
	assert.Contains(t, err.Error(), "status 502")
}

func TestAnalyze_RecordsHistory(t *testing.T) {
	rec := &fakeRecorder{}
	a := newRuneAnalyzer(&fakeFetcher{body: catsPage}, WithRecorder(rec))

	res, err := a.Analyze(context.Background(), Request{URL: "https://example.com"})
	require.NoError(t, err)
	require.Len(t, rec.saved, 1)
	assert.Equal(t, "https://example.com", rec.saved[0].URL)
	assert.Equal(t, "猫狗", rec.saved[0].Title)
	assert.Equal(t, store.TopWords(res.Ranked), rec.saved[0].TopWords)
	assert.Equal(t, res.TokenCount, rec.saved[0].TokenCount)
}

func TestAnalyze_RecorderFailureDoesNotFailRequest(t *testing.T) {
	before := observability.Snapshot().ErrorsByType[observability.ErrorStore]
	rec := &fakeRecorder{err: errors.New("db down")}
	a := newRuneAnalyzer(&fakeFetcher{body: catsPage}, WithRecorder(rec))

	res, err := a.Analyze(context.Background(), Request{URL: "https://example.com"})
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Equal(t, before+1, observability.Snapshot().ErrorsByType[observability.ErrorStore])
}

func TestAnalyze_NoRecordOnFailure(t *testing.T) {
	rec := &fakeRecorder{}
	a := newRuneAnalyzer(&fakeFetcher{err: errors.New("refused")}, WithRecorder(rec))
	_, err := a.Analyze(context.Background(), Request{URL: "https://example.com"})
	require.Error(t, err)
	assert.Empty(t, rec.saved)
}

func TestPreview(t *testing.T) {
	s := preview("text", "你好世界", 2)
	assert.Equal(t, Stage{Name: "text", Preview: "你好", Length: 4, Truncated: true}, s)

	s = preview("text", "你好", 0)
	assert.Equal(t, "你好", s.Preview)
	assert.False(t, s.Truncated)
}

func TestStageError(t *testing.T) {
	inner := errors.New("boom")
	err := &StageError{Kind: KindParse, Err: inner}
	assert.Equal(t, "parse: boom", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, KindInternal, KindOf(inner))
}

type fakePruner struct {
	calls chan time.Duration
}

func (p *fakePruner) DeleteOlderThan(_ context.Context, maxAge time.Duration) (int64, error) {
	p.calls <- maxAge
	return 2, nil
}

func TestRetentionService_RunsOnStart(t *testing.T) {
	p := &fakePruner{calls: make(chan time.Duration, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	NewRetentionService(p, 48*time.Hour).Start(ctx)

	select {
	case got := <-p.calls:
		assert.Equal(t, 48*time.Hour, got)
	case <-time.After(2 * time.Second):
		t.Fatal("retention cleanup did not run")
	}
}
