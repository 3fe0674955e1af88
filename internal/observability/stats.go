package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

type StatsSnapshot struct {
	AnalysesTotal      uint64            `json:"analyses_total"`
	AnalysesSucceeded  uint64            `json:"analyses_succeeded"`
	TokensSegmented    uint64            `json:"tokens_segmented"`
	WordCloudsRendered uint64            `json:"word_clouds_rendered"`
	ErrorsTotal        uint64            `json:"errors_total"`
	AnalysisSecondsAvg float64           `json:"analysis_seconds_avg"`
	ErrorsByType       map[string]uint64 `json:"errors_by_type,omitempty"`
	ErrorsByComponent  map[string]uint64 `json:"errors_by_component,omitempty"`
}

var (
	analysesTotal      uint64
	analysesSucceeded  uint64
	tokensSegmented    uint64
	wordCloudsRendered uint64
	errorsTotal        uint64

	analysisCount uint64
	analysisNanos uint64

	statsMu           sync.Mutex
	errorsByType      = map[string]uint64{}
	errorsByComponent = map[string]uint64{}
)

func IncAnalysis() {
	atomic.AddUint64(&analysesTotal, 1)
}

// ObserveSuccess records a completed analysis and how many tokens it produced.
func ObserveSuccess(tokens int, took time.Duration) {
	atomic.AddUint64(&analysesSucceeded, 1)
	if tokens > 0 {
		atomic.AddUint64(&tokensSegmented, uint64(tokens))
	}
	if took > 0 {
		atomic.AddUint64(&analysisCount, 1)
		atomic.AddUint64(&analysisNanos, uint64(took.Nanoseconds()))
	}
}

func IncWordCloud() {
	atomic.AddUint64(&wordCloudsRendered, 1)
}

func IncError(errType, component string) {
	if errType == "" {
		errType = "unknown"
	}
	if component == "" {
		component = "unknown"
	}
	atomic.AddUint64(&errorsTotal, 1)
	statsMu.Lock()
	errorsByType[errType]++
	errorsByComponent[component]++
	statsMu.Unlock()
}

func Snapshot() StatsSnapshot {
	statsMu.Lock()
	errorsTypeCopy := copyMap(errorsByType)
	errorsComponentCopy := copyMap(errorsByComponent)
	statsMu.Unlock()

	count := atomic.LoadUint64(&analysisCount)
	avg := 0.0
	if count > 0 {
		avg = float64(atomic.LoadUint64(&analysisNanos)) / float64(count) / 1e9
	}

	return StatsSnapshot{
		AnalysesTotal:      atomic.LoadUint64(&analysesTotal),
		AnalysesSucceeded:  atomic.LoadUint64(&analysesSucceeded),
		TokensSegmented:    atomic.LoadUint64(&tokensSegmented),
		WordCloudsRendered: atomic.LoadUint64(&wordCloudsRendered),
		ErrorsTotal:        atomic.LoadUint64(&errorsTotal),
		AnalysisSecondsAvg: avg,
		ErrorsByType:       errorsTypeCopy,
		ErrorsByComponent:  errorsComponentCopy,
	}
}

func copyMap(src map[string]uint64) map[string]uint64 {
	if len(src) == 0 {
		return map[string]uint64{}
	}
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
