package analysis

import (
	"context"

	"github.com/medscan/medscan/internal/platform/docimage"
	"github.com/medscan/medscan/internal/platform/ocr"
)

// DocumentReader turns raw document bytes into recognized text with a
// confidence score. Faked in tests so the pipeline is exercisable without a
// tesseract install.
type DocumentReader interface {
	Read(ctx context.Context, data []byte) (ocr.Result, error)
}

// pipelineReader is the production reader: embedded PDF text layer when one
// is usable, otherwise preprocess and multi-pass recognition.
type pipelineReader struct {
	engine *ocr.Engine
}

// NewDocumentReader wires the preprocessing and recognition stages.
func NewDocumentReader(engine *ocr.Engine) DocumentReader {
	return &pipelineReader{engine: engine}
}

func (r *pipelineReader) Read(ctx context.Context, data []byte) (ocr.Result, error) {
	if text, ok := docimage.EmbeddedText(data); ok {
		// A digital text layer carries no recognition uncertainty.
		return ocr.Result{Text: text, Confidence: 100}, nil
	}
	img, err := docimage.Preprocess(data)
	if err != nil {
		return ocr.Result{}, err
	}
	return r.engine.Recognize(ctx, img)
}
