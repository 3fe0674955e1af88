package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/baxromumarov/wordfreq/internal/core"
	"github.com/baxromumarov/wordfreq/internal/observability"
	"github.com/baxromumarov/wordfreq/internal/store"
)

const exampleMissing = "文件未找到"

type indexData struct {
	Page         PageConfig
	URL          string
	Show         bool
	Cloud        bool
	Result       *core.Result
	WordCloudSrc template.URL
	Error        string
	Example      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := indexData{
		Page:    s.page,
		URL:     q.Get("url"),
		Show:    s.page.ShowIntermediate,
		Cloud:   s.page.RenderWordCloud,
		Example: s.readExample(),
	}
	// checkbox values only arrive once the form has been submitted
	if q.Has("url") {
		data.Show = q.Get("show") == "on"
		data.Cloud = q.Get("cloud") == "on"
	}

	status := http.StatusOK
	if data.URL != "" {
		res, err := s.analyzer.Analyze(r.Context(), core.Request{
			URL:              data.URL,
			ShowIntermediate: data.Show,
			RenderChart:      true,
			RenderWordCloud:  data.Cloud,
		})
		if err != nil {
			data.Error = "处理 URL 时出错: " + err.Error()
			status = statusForKind(core.KindOf(err))
		} else {
			data.Result = res
			// data URIs are produced here, never from user input
			data.WordCloudSrc = template.URL(res.WordCloudDataURI())
		}
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		slog.Error("failed to render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) readExample() string {
	if s.page.ExampleFile == "" {
		return exampleMissing
	}
	b, err := os.ReadFile(s.page.ExampleFile)
	if err != nil {
		return exampleMissing
	}
	return string(b)
}

type AnalyzeRequest struct {
	URL              string `json:"url"`
	ShowIntermediate bool   `json:"show_intermediate"`
	WordCloud        bool   `json:"word_cloud"`
}

type AnalyzeResponse struct {
	*core.Result
	DurationMS   int64  `json:"duration_ms"`
	WordCloudPNG string `json:"word_cloud_png,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "URL is required")
		return
	}

	res, err := s.analyzer.Analyze(r.Context(), core.Request{
		URL:              req.URL,
		ShowIntermediate: req.ShowIntermediate,
		RenderWordCloud:  req.WordCloud,
	})
	if err != nil {
		kind := core.KindOf(err)
		respondJSON(w, statusForKind(kind), map[string]string{
			"error": err.Error(),
			"kind":  string(kind),
		})
		return
	}

	out := AnalyzeResponse{Result: res, DurationMS: res.Duration.Milliseconds()}
	if len(res.WordCloudPNG) > 0 {
		out.WordCloudPNG = base64.StdEncoding.EncodeToString(res.WordCloudPNG)
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		respondError(w, http.StatusNotFound, "History is disabled: no database configured")
		return
	}
	limit, offset := parsePagination(r, 20)

	items, total, err := s.history.ListAnalyses(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch history: "+err.Error())
		return
	}
	if items == nil {
		items = []store.Analysis{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, observability.Snapshot())
}

func statusForKind(kind core.Kind) int {
	switch kind {
	case core.KindInput:
		return http.StatusBadRequest
	case core.KindFetch:
		return http.StatusBadGateway
	case core.KindParse, core.KindSegmentation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func parsePagination(r *http.Request, defaultLimit int) (int, int) {
	q := r.URL.Query()
	limit := defaultLimit
	offset := 0

	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
