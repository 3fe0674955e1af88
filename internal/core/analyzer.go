package core

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/baxromumarov/wordfreq/internal/content"
	"github.com/baxromumarov/wordfreq/internal/httpx"
	"github.com/baxromumarov/wordfreq/internal/observability"
	"github.com/baxromumarov/wordfreq/internal/store"
	"github.com/baxromumarov/wordfreq/internal/textproc"
	"github.com/baxromumarov/wordfreq/internal/urlutil"
)

// Recorder persists finished analyses.
type Recorder interface {
	SaveAnalysis(ctx context.Context, a *store.Analysis) error
}

type ChartRenderer interface {
	Render(ranked []textproc.WordCount) (string, error)
}

type WordCloudRenderer interface {
	Render(freq map[string]int) ([]byte, error)
}

type Request struct {
	URL              string `json:"url"`
	ShowIntermediate bool   `json:"show_intermediate"`
	RenderChart      bool   `json:"-"`
	RenderWordCloud  bool   `json:"word_cloud"`
}

// Stage is a truncated view of one intermediate value.
type Stage struct {
	Name      string `json:"name"`
	Preview   string `json:"preview"`
	Length    int    `json:"length"`
	Truncated bool   `json:"truncated"`
}

type Result struct {
	URL           string                  `json:"url"`
	Title         string                  `json:"title"`
	Stages        []Stage                 `json:"stages,omitempty"`
	TokenCount    int                     `json:"token_count"`
	DistinctCount int                     `json:"distinct_count"`
	Ranked        []textproc.WordCount    `json:"ranked"`
	Frequencies   textproc.FrequencyTable `json:"-"`
	ChartHTML     string                  `json:"-"`
	WordCloudPNG  []byte                  `json:"-"`
	Duration      time.Duration           `json:"-"`
}

// WordCloudDataURI returns the PNG as an inline image source.
func (r *Result) WordCloudDataURI() string {
	if len(r.WordCloudPNG) == 0 {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(r.WordCloudPNG)
}

// Analyzer runs fetch, extraction, cleaning, segmentation and ranking for
// one URL, then hands the ranking to the presenters.
type Analyzer struct {
	fetcher      httpx.Fetcher
	segmenter    *textproc.Segmenter
	chart        ChartRenderer
	cloud        WordCloudRenderer
	recorder     Recorder
	topN         int
	previewRunes int
	stripCJK     bool
}

type Option func(*Analyzer)

func WithChart(c ChartRenderer) Option        { return func(a *Analyzer) { a.chart = c } }
func WithWordCloud(w WordCloudRenderer) Option { return func(a *Analyzer) { a.cloud = w } }
func WithRecorder(r Recorder) Option          { return func(a *Analyzer) { a.recorder = r } }

func WithTopN(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.topN = n
		}
	}
}

func WithPreviewRunes(n int) Option {
	return func(a *Analyzer) {
		if n >= 0 {
			a.previewRunes = n
		}
	}
}

// WithCJKPunctuation makes noise removal strip every Unicode punctuation
// and symbol rune instead of ASCII punctuation only.
func WithCJKPunctuation(on bool) Option { return func(a *Analyzer) { a.stripCJK = on } }

func NewAnalyzer(fetcher httpx.Fetcher, segmenter *textproc.Segmenter, opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher:      fetcher,
		segmenter:    segmenter,
		topN:         textproc.TopN,
		previewRunes: 200,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the whole pipeline. Any failure, including a panic in a
// library, comes back as a *StageError and no result is returned.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (res *Result, err error) {
	start := time.Now()
	observability.IncAnalysis()

	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = stageErr(KindInternal, fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			var se *StageError
			if !errors.As(err, &se) {
				se = stageErr(KindInternal, err)
				err = se
			}
			observability.IncError(metricLabel(se), string(se.Kind))
			slog.Error("analysis failed", "url", req.URL, "kind", se.Kind, "error", se.Err)
		}
	}()

	target, _, err := urlutil.Normalize(req.URL)
	if err != nil {
		return nil, stageErr(KindInput, err)
	}

	raw, err := a.fetcher.FetchHTML(ctx, target)
	if err != nil {
		return nil, stageErr(KindFetch, err)
	}

	res, err = a.process(raw, req)
	if err != nil {
		return nil, err
	}
	res.URL = target

	if err := a.present(res, req); err != nil {
		return nil, err
	}

	res.Duration = time.Since(start)
	observability.ObserveSuccess(res.TokenCount, res.Duration)
	slog.Info("analysis finished",
		"url", target,
		"tokens", res.TokenCount,
		"distinct", res.DistinctCount,
		"duration", res.Duration,
	)

	a.record(ctx, res)
	return res, nil
}

// process is the pure part of the pipeline, from raw HTML to ranked words.
func (a *Analyzer) process(raw string, req Request) (*Result, error) {
	res := &Result{}
	stage := func(name, value string) {
		if req.ShowIntermediate {
			res.Stages = append(res.Stages, preview(name, value, a.previewRunes))
		}
	}
	stage("html", raw)

	doc, err := content.Extract(raw)
	if err != nil {
		return nil, stageErr(KindParse, err)
	}
	res.Title = doc.Title
	stage("text", doc.Text)

	cleaned := textproc.RemoveNoise(doc.Text)
	if a.stripCJK {
		cleaned = textproc.RemoveAllPunctuation(doc.Text)
	}
	stage("cleaned", cleaned)

	normalized := textproc.NormalizeWhitespace(cleaned)
	stage("normalized", normalized)

	tokens, err := a.segmenter.Segment(normalized)
	if err != nil {
		return nil, stageErr(KindSegmentation, err)
	}
	stage("tokens", fmt.Sprint(tokens))

	res.TokenCount = len(tokens)
	res.DistinctCount = len(textproc.Count(tokens))
	res.Ranked = textproc.Rank(tokens, a.topN)
	res.Frequencies = textproc.Table(res.Ranked)
	return res, nil
}

func (a *Analyzer) present(res *Result, req Request) error {
	if req.RenderChart && a.chart != nil {
		html, err := a.chart.Render(res.Ranked)
		if err != nil {
			return stageErr(KindRender, err)
		}
		res.ChartHTML = html
	}
	if req.RenderWordCloud {
		if a.cloud == nil {
			return stageErr(KindRender, errors.New("word cloud rendering is not configured"))
		}
		png, err := a.cloud.Render(res.Frequencies)
		if err != nil {
			return stageErr(KindRender, err)
		}
		res.WordCloudPNG = png
		observability.IncWordCloud()
	}
	return nil
}

func (a *Analyzer) record(ctx context.Context, res *Result) {
	if a.recorder == nil {
		return
	}
	err := a.recorder.SaveAnalysis(ctx, &store.Analysis{
		URL:           res.URL,
		Title:         res.Title,
		TokenCount:    res.TokenCount,
		DistinctCount: res.DistinctCount,
		TopWords:      store.TopWords(res.Ranked),
		DurationMS:    res.Duration.Milliseconds(),
	})
	if err != nil {
		observability.IncError(observability.ErrorStore, "store")
		slog.Error("failed to record analysis", "url", res.URL, "error", err)
	}
}

func preview(name, value string, limit int) Stage {
	runes := []rune(value)
	s := Stage{Name: name, Preview: value, Length: len(runes)}
	if limit > 0 && len(runes) > limit {
		s.Preview = string(runes[:limit])
		s.Truncated = true
	}
	return s
}
