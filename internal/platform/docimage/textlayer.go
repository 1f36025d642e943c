package docimage

import (
	"bytes"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Digitally generated reports often carry a perfectly good text layer; when
// one is present and usable, recognition can be skipped entirely.

const (
	minUsableChars = 80
	// Share of single-character words above which extracted text is
	// treated as garbled header noise rather than real content.
	maxSingleCharRatio = 0.4
)

// EmbeddedText tries to pull a usable text layer out of a PDF. It returns
// ok=false for raster input, PDFs without a text layer, and text that fails
// the quality gate; the caller then falls back to OCR.
func EmbeddedText(data []byte) (text string, ok bool) {
	if !IsPDF(data) {
		return "", false
	}
	// The pdf parser is unforgiving with malformed files; a panic here just
	// means the OCR path takes over.
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", false
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", false
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", false
	}
	text = string(raw)
	if !UsableText(text) {
		return "", false
	}
	return text, true
}

// UsableText applies the quality gate for extracted text: long enough to
// hold at least a few results and not dominated by single-character noise.
func UsableText(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minUsableChars {
		return false
	}
	words := strings.Fields(trimmed)
	if len(words) == 0 {
		return false
	}
	single := 0
	for _, w := range words {
		if len(w) == 1 {
			single++
		}
	}
	return float64(single)/float64(len(words)) <= maxSingleCharRatio
}
