package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/baxromumarov/wordfreq/internal/api"
	"github.com/baxromumarov/wordfreq/internal/config"
	"github.com/baxromumarov/wordfreq/internal/core"
	"github.com/baxromumarov/wordfreq/internal/httpx"
	"github.com/baxromumarov/wordfreq/internal/render"
	"github.com/baxromumarov/wordfreq/internal/store"
	"github.com/baxromumarov/wordfreq/internal/textproc"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher, err := httpx.New(cfg.Fetch.Backend, httpx.Options{
		UserAgent:     cfg.Fetch.UserAgent,
		Timeout:       cfg.Fetch.Timeout,
		RespectRobots: cfg.Fetch.RespectRobots,
	})
	if err != nil {
		slog.Error("failed to create fetcher", "error", err)
		os.Exit(1)
	}

	// The dictionary is loaded once and shared read-only by every request.
	start := time.Now()
	tokenizer, err := textproc.NewGseTokenizer(cfg.Segment.DictPath)
	if err != nil {
		slog.Error("failed to load segmentation dictionary", "error", err)
		os.Exit(1)
	}
	slog.Info("segmentation dictionary loaded", "took", time.Since(start))

	opts := []core.Option{
		core.WithTopN(cfg.Pipeline.TopN),
		core.WithPreviewRunes(cfg.Pipeline.PreviewRunes),
		core.WithCJKPunctuation(cfg.Pipeline.StripCJKPunctuation),
		core.WithChart(render.NewChartPresenter(render.ChartOptions{
			Title:       "词频统计",
			Height:      cfg.Chart.Height,
			LabelRotate: cfg.Chart.LabelRotate,
		})),
	}
	if cfg.WordCloud.FontPath != "" {
		opts = append(opts, core.WithWordCloud(render.NewWordCloudPresenter(render.WordCloudOptions{
			FontPath: cfg.WordCloud.FontPath,
			Width:    cfg.WordCloud.Width,
			Height:   cfg.WordCloud.Height,
		})))
	} else {
		slog.Warn("wordcloud.font_path is not set; word cloud rendering will fail")
	}

	var history api.HistoryLister
	if cfg.Database.URL != "" {
		dbStore, err := store.NewStore(cfg.Database.URL)
		if err != nil {
			slog.Error("failed to connect to store", "error", err)
			os.Exit(1)
		}
		defer dbStore.Close()

		if err := dbStore.RunMigrations(cfg.Database.MigrationsPath); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		opts = append(opts, core.WithRecorder(dbStore))
		history = dbStore
		core.NewRetentionService(dbStore, cfg.Database.Retention).Start(ctx)
	} else {
		slog.Info("DATABASE_URL not set; analysis history disabled")
	}

	analyzer := core.NewAnalyzer(fetcher, textproc.NewSegmenter(tokenizer, cfg.Segment.StopWords), opts...)

	srv, err := api.NewServer(analyzer, history, api.PageConfig{
		Title:            cfg.Page.Title,
		Icon:             cfg.Page.Icon,
		ExampleFile:      cfg.Page.ExampleFile,
		WebDir:           cfg.Server.WebDir,
		ShowIntermediate: cfg.Pipeline.ShowIntermediate,
		RenderWordCloud:  cfg.Pipeline.RenderWordCloud,
	})
	if err != nil {
		slog.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	slog.Info("starting server", "port", cfg.Server.Port, "fetch_backend", cfg.Fetch.Backend)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
