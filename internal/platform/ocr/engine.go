// Package ocr runs multi-pass text recognition over preprocessed report
// images and returns the highest-confidence result.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// ErrRecognitionFailed is returned when every recognition pass failed or
// timed out. Fatal for the extraction path; callers fall back to manual entry.
var ErrRecognitionFailed = errors.New("recognition failed on all passes")

// ConfidenceFloor is the advisory confidence level below which callers
// should prompt for manual verification. Falling below it is a warning,
// never an error.
const ConfidenceFloor = 60.0

// Result is one recognition outcome: the text and the engine's self-reported
// confidence on a 0-100 scale.
type Result struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// LowConfidence reports whether the result sits below the advisory floor.
func (r Result) LowConfidence() bool {
	return r.Confidence < ConfidenceFloor
}

// passMode selects the page-segmentation assumption for one pass.
type passMode int

const (
	// modeProse is tuned for general document layout.
	modeProse passMode = iota
	// modeSparse is tuned for sparse, table-like layouts common on
	// printed lab reports.
	modeSparse
)

type pass struct {
	name string
	mode passMode
}

// passes are tried in order; the highest-confidence result wins.
var passes = []pass{
	{name: "prose", mode: modeProse},
	{name: "sparse", mode: modeSparse},
}

// recognizer runs a single scoped recognition pass. The production
// implementation wraps a tesseract client; tests substitute a fake.
type recognizer interface {
	recognize(img image.Image, mode passMode) (Result, error)
}

// Config tunes the engine. Zero values pick defaults.
type Config struct {
	// Workers bounds concurrent recognition passes across all requests.
	Workers int
	// PassTimeout is the deadline for a single pass; a timeout counts as
	// a pass failure and the next strategy is tried.
	PassTimeout time.Duration
}

// Engine dispatches recognition passes to a bounded worker pool so one slow
// document cannot stall unrelated requests.
type Engine struct {
	rec         recognizer
	sem         *semaphore.Weighted
	passTimeout time.Duration
	log         zerolog.Logger
}

// NewEngine builds the production engine backed by tesseract.
func NewEngine(cfg Config, log zerolog.Logger) *Engine {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	timeout := cfg.PassTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Engine{
		rec:         &tesseractRecognizer{},
		sem:         semaphore.NewWeighted(int64(workers)),
		passTimeout: timeout,
		log:         log,
	}
}

// Recognize runs every configured pass over the image and returns the result
// with the highest confidence. A low-confidence winner is returned as-is;
// only the failure of all passes is an error.
func (e *Engine) Recognize(ctx context.Context, img image.Image) (Result, error) {
	best := Result{Confidence: -1}
	var lastErr error

	for _, p := range passes {
		res, err := e.runPass(ctx, img, p)
		if err != nil {
			lastErr = err
			e.log.Warn().Str("pass", p.name).Err(err).Msg("recognition pass failed")
			continue
		}
		e.log.Debug().Str("pass", p.name).Float64("confidence", res.Confidence).Msg("recognition pass complete")
		if res.Confidence > best.Confidence {
			best = res
		}
	}

	if best.Confidence < 0 {
		return Result{}, fmt.Errorf("%w: last error: %v", ErrRecognitionFailed, lastErr)
	}
	return best, nil
}

// runPass executes one pass as a pooled unit of work under a deadline.
func (e *Engine) runPass(ctx context.Context, img image.Image, p pass) (Result, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return Result{}, fmt.Errorf("pass %s: acquire worker: %w", p.name, err)
	}
	defer e.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, e.passTimeout)
	defer cancel()

	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := e.rec.recognize(img, p.mode)
		done <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		return Result{}, fmt.Errorf("pass %s: %w", p.name, ctx.Err())
	case o := <-done:
		if o.err != nil {
			return Result{}, fmt.Errorf("pass %s: %w", p.name, o.err)
		}
		return o.res, nil
	}
}
