package ocr

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// fakeRecognizer scripts one outcome per pass mode.
type fakeRecognizer struct {
	results map[passMode]Result
	errs    map[passMode]error
	delays  map[passMode]time.Duration
	calls   []passMode
}

func (f *fakeRecognizer) recognize(_ image.Image, mode passMode) (Result, error) {
	f.calls = append(f.calls, mode)
	if d, ok := f.delays[mode]; ok {
		time.Sleep(d)
	}
	if err, ok := f.errs[mode]; ok {
		return Result{}, err
	}
	return f.results[mode], nil
}

func testEngine(rec recognizer, timeout time.Duration) *Engine {
	return &Engine{
		rec:         rec,
		sem:         semaphore.NewWeighted(2),
		passTimeout: timeout,
		log:         zerolog.Nop(),
	}
}

func testImage() image.Image {
	return image.NewGray(image.Rect(0, 0, 4, 4))
}

func TestRecognizePicksHighestConfidence(t *testing.T) {
	rec := &fakeRecognizer{results: map[passMode]Result{
		modeProse:  {Text: "prose text", Confidence: 55},
		modeSparse: {Text: "sparse text", Confidence: 83},
	}}
	res, err := testEngine(rec, time.Second).Recognize(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Text != "sparse text" || res.Confidence != 83 {
		t.Fatalf("picked %+v, want the sparse pass", res)
	}
	if len(rec.calls) != 2 {
		t.Fatalf("ran %d passes, want 2", len(rec.calls))
	}
}

func TestRecognizeSurvivesOneFailedPass(t *testing.T) {
	rec := &fakeRecognizer{
		results: map[passMode]Result{modeSparse: {Text: "still here", Confidence: 48}},
		errs:    map[passMode]error{modeProse: errors.New("tesseract exploded")},
	}
	res, err := testEngine(rec, time.Second).Recognize(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Text != "still here" {
		t.Fatalf("got %+v", res)
	}
	if !res.LowConfidence() {
		t.Error("confidence 48 should be below the advisory floor")
	}
}

func TestRecognizeAllPassesFail(t *testing.T) {
	rec := &fakeRecognizer{errs: map[passMode]error{
		modeProse:  errors.New("bad scan"),
		modeSparse: errors.New("worse scan"),
	}}
	_, err := testEngine(rec, time.Second).Recognize(context.Background(), testImage())
	if !errors.Is(err, ErrRecognitionFailed) {
		t.Fatalf("expected ErrRecognitionFailed, got %v", err)
	}
}

func TestRecognizeTimeoutCountsAsPassFailure(t *testing.T) {
	rec := &fakeRecognizer{
		results: map[passMode]Result{
			modeProse:  {Text: "never arrives", Confidence: 99},
			modeSparse: {Text: "fast result", Confidence: 42},
		},
		delays: map[passMode]time.Duration{modeProse: 200 * time.Millisecond},
	}
	res, err := testEngine(rec, 20*time.Millisecond).Recognize(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Text != "fast result" {
		t.Fatalf("timed-out pass leaked through: %+v", res)
	}
}

func TestRecognizeAllPassesTimeout(t *testing.T) {
	rec := &fakeRecognizer{
		results: map[passMode]Result{
			modeProse:  {Confidence: 90},
			modeSparse: {Confidence: 90},
		},
		delays: map[passMode]time.Duration{
			modeProse:  100 * time.Millisecond,
			modeSparse: 100 * time.Millisecond,
		},
	}
	_, err := testEngine(rec, 10*time.Millisecond).Recognize(context.Background(), testImage())
	if !errors.Is(err, ErrRecognitionFailed) {
		t.Fatalf("expected ErrRecognitionFailed, got %v", err)
	}
}

func TestRecognizeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &fakeRecognizer{results: map[passMode]Result{modeProse: {Confidence: 90}}}
	_, err := testEngine(rec, time.Second).Recognize(ctx, testImage())
	if !errors.Is(err, ErrRecognitionFailed) {
		t.Fatalf("expected ErrRecognitionFailed after cancellation, got %v", err)
	}
}

func TestLowConfidence(t *testing.T) {
	if (Result{Confidence: 60}).LowConfidence() {
		t.Error("60 is at the floor, not below it")
	}
	if !(Result{Confidence: 45}).LowConfidence() {
		t.Error("45 should be low confidence")
	}
}
