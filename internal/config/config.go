// Package config loads service settings from defaults, an optional YAML
// file, a .env file and the environment, in that order.
package config

import (
	"time"

	"github.com/baxromumarov/wordfreq/internal/httpx"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Segment   SegmentConfig   `yaml:"segment"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Chart     ChartConfig     `yaml:"chart"`
	WordCloud WordCloudConfig `yaml:"wordcloud"`
	Database  DatabaseConfig  `yaml:"database"`
	Page      PageConfig      `yaml:"page"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	WebDir string `yaml:"web_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type FetchConfig struct {
	Backend       string        `yaml:"backend"`
	UserAgent     string        `yaml:"user_agent"`
	Timeout       time.Duration `yaml:"timeout"`
	RespectRobots bool          `yaml:"respect_robots"`
}

type SegmentConfig struct {
	// DictPath is empty for the embedded dictionary.
	DictPath  string   `yaml:"dict_path"`
	StopWords []string `yaml:"stop_words"`
}

type PipelineConfig struct {
	TopN                int  `yaml:"top_n"`
	ShowIntermediate    bool `yaml:"show_intermediate"`
	PreviewRunes        int  `yaml:"preview_runes"`
	RenderWordCloud     bool `yaml:"render_word_cloud"`
	StripCJKPunctuation bool `yaml:"strip_cjk_punctuation"`
}

type ChartConfig struct {
	Height      string  `yaml:"height"`
	LabelRotate float64 `yaml:"label_rotate"`
}

type WordCloudConfig struct {
	FontPath string `yaml:"font_path"`
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MigrationsPath string        `yaml:"migrations_path"`
	Retention      time.Duration `yaml:"retention"`
}

type PageConfig struct {
	Title       string `yaml:"title"`
	Icon        string `yaml:"icon"`
	ExampleFile string `yaml:"example_file"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{Port: 8080, WebDir: "web"},
		Log:    LogConfig{Level: "info"},
		Fetch: FetchConfig{
			Backend:   httpx.BackendColly,
			UserAgent: httpx.DefaultUserAgent,
			Timeout:   15 * time.Second,
		},
		Pipeline: PipelineConfig{
			TopN:         20,
			PreviewRunes: 200,
		},
		Chart:     ChartConfig{Height: "500px", LabelRotate: 45},
		WordCloud: WordCloudConfig{Width: 800, Height: 400},
		Database: DatabaseConfig{
			MigrationsPath: "internal/store/schema.sql",
			Retention:      30 * 24 * time.Hour,
		},
		Page: PageConfig{
			Title:       "文本处理示例",
			Icon:        "📝",
			ExampleFile: "web/example.txt",
		},
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}
	if c.Pipeline.TopN < 1 || c.Pipeline.TopN > 100 {
		return ErrInvalidTopN
	}
	if c.Pipeline.PreviewRunes < 0 {
		return ErrInvalidPreview
	}
	switch c.Fetch.Backend {
	case httpx.BackendColly, httpx.BackendHTTP:
	default:
		return ErrUnknownBackend
	}
	if c.Fetch.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	if c.WordCloud.Width <= 0 || c.WordCloud.Height <= 0 {
		return ErrInvalidWordCloud
	}
	return nil
}
