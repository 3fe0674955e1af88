package render

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/baxromumarov/wordfreq/internal/textproc"
)

// tooltipFormat renders "{label} : {value}" in ECharts notation.
const tooltipFormat = "{b} : {c}"

type ChartOptions struct {
	Title       string
	Height      string
	LabelRotate float64
}

// ChartPresenter renders ranked words as an ECharts bar chart page.
type ChartPresenter struct {
	opts ChartOptions
}

func NewChartPresenter(o ChartOptions) *ChartPresenter {
	if o.Height == "" {
		o.Height = "500px"
	}
	return &ChartPresenter{opts: o}
}

// Render returns a self-contained HTML document holding the chart.
func (p *ChartPresenter) Render(ranked []textproc.WordCount) (string, error) {
	labels := make([]string, 0, len(ranked))
	data := make([]opts.BarData, 0, len(ranked))
	for _, wc := range ranked {
		labels = append(labels, wc.Word)
		data = append(data, opts.BarData{Value: wc.Count})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: p.opts.Title,
			Width:     "100%",
			Height:    p.opts.Height,
		}),
		charts.WithTitleOpts(opts.Title{Title: p.opts.Title}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: tooltipFormat,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category",
			AxisLabel: &opts.AxisLabel{
				Interval: "0",
				Rotate:   p.opts.LabelRotate,
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
	)
	bar.SetXAxis(labels).AddSeries("词频", data)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}
	return buf.String(), nil
}
