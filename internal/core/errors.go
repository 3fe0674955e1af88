package core

import (
	"errors"
	"fmt"

	"github.com/baxromumarov/wordfreq/internal/observability"
)

// Kind names the pipeline stage an error came from.
type Kind string

const (
	KindInput        Kind = "input"
	KindFetch        Kind = "fetch"
	KindParse        Kind = "parse"
	KindSegmentation Kind = "segmentation"
	KindRender       Kind = "render"
	KindInternal     Kind = "internal"
)

// StageError is the only error type Analyze returns.
type StageError struct {
	Kind Kind
	Err  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// KindOf reports the stage of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func stageErr(kind Kind, err error) *StageError {
	return &StageError{Kind: kind, Err: err}
}

// metricLabel maps a stage error onto the observability error labels.
func metricLabel(se *StageError) string {
	switch se.Kind {
	case KindInput:
		return observability.ErrorInput
	case KindFetch:
		return observability.ClassifyFetchError(se.Err)
	case KindParse:
		return observability.ErrorParsing
	case KindSegmentation:
		return observability.ErrorSegmentation
	case KindRender:
		return observability.ErrorRender
	default:
		return observability.ClassifyError(se.Err)
	}
}
