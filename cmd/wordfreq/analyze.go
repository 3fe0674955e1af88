package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/baxromumarov/wordfreq/internal/config"
	"github.com/baxromumarov/wordfreq/internal/core"
	"github.com/baxromumarov/wordfreq/internal/httpx"
	"github.com/baxromumarov/wordfreq/internal/textproc"
)

// deps builds the fetcher and tokenizer for a run; tests swap it out.
type deps func(cfg config.Config) (httpx.Fetcher, textproc.Tokenizer, error)

func defaultDeps(cfg config.Config) (httpx.Fetcher, textproc.Tokenizer, error) {
	fetcher, err := httpx.New(cfg.Fetch.Backend, httpx.Options{
		UserAgent:     cfg.Fetch.UserAgent,
		Timeout:       cfg.Fetch.Timeout,
		RespectRobots: cfg.Fetch.RespectRobots,
	})
	if err != nil {
		return nil, nil, err
	}
	tokenizer, err := textproc.NewGseTokenizer(cfg.Segment.DictPath)
	if err != nil {
		return nil, nil, err
	}
	return fetcher, tokenizer, nil
}

type analyzeOptions struct {
	top    int
	asJSON bool
	stages bool
}

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd(build deps) *cobra.Command {
	var o analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Print the most frequent words of a web page",
		Long: `Analyze fetches the page at <url> and prints its most frequent words.

Examples:
  wordfreq analyze https://example.com/news
  wordfreq analyze --top 10 --json example.com
  wordfreq analyze --stages example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if o.top > 0 {
				cfg.Pipeline.TopN = o.top
			}

			fetcher, tokenizer, err := build(cfg)
			if err != nil {
				return err
			}
			analyzer := core.NewAnalyzer(fetcher, textproc.NewSegmenter(tokenizer, cfg.Segment.StopWords),
				core.WithTopN(cfg.Pipeline.TopN),
				core.WithPreviewRunes(cfg.Pipeline.PreviewRunes),
				core.WithCJKPunctuation(cfg.Pipeline.StripCJKPunctuation),
			)

			res, err := analyzer.Analyze(cmd.Context(), core.Request{URL: args[0], ShowIntermediate: o.stages})
			if err != nil {
				return fmt.Errorf("处理 URL 时出错: %w", err)
			}

			if o.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().IntVarP(&o.top, "top", "n", 0, "Number of words to print (default from config, 20)")
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&o.stages, "stages", false, "Also print truncated intermediate values")

	return cmd
}

func printResult(w io.Writer, res *core.Result) error {
	if res.Title != "" {
		fmt.Fprintf(w, "%s\n", res.Title)
	}
	fmt.Fprintf(w, "%s: %d tokens, %d distinct\n\n", res.URL, res.TokenCount, res.DistinctCount)

	for _, s := range res.Stages {
		fmt.Fprintf(w, "[%s] %s\n", s.Name, s.Preview)
	}
	if len(res.Stages) > 0 {
		fmt.Fprintln(w)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tWORD\tCOUNT")
	for i, wc := range res.Ranked {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", i+1, wc.Word, wc.Count)
	}
	return tw.Flush()
}
