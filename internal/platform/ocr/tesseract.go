package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// charWhitelist restricts recognition to the vocabulary lab reports actually
// use: parameter names, numbers, units and light punctuation. Restricting
// the character set noticeably reduces confusions on noisy scans.
const charWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789.,:;()[]%/^<>+-= "

// tesseractRecognizer runs one scoped recognition pass per call: a client is
// created, configured, used once and closed unconditionally.
type tesseractRecognizer struct{}

func (tesseractRecognizer) recognize(img image.Image, mode passMode) (Result, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage("eng"); err != nil {
		return Result{}, fmt.Errorf("set language: %w", err)
	}
	psm := gosseract.PSM_AUTO
	if mode == modeSparse {
		psm = gosseract.PSM_SPARSE_TEXT
	}
	if err := client.SetPageSegMode(psm); err != nil {
		return Result{}, fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := client.SetWhitelist(charWhitelist); err != nil {
		return Result{}, fmt.Errorf("set whitelist: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Result{}, fmt.Errorf("encode image: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return Result{}, fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return Result{}, fmt.Errorf("recognize text: %w", err)
	}

	return Result{Text: text, Confidence: wordConfidence(client)}, nil
}

// wordConfidence averages per-word confidences; when no words were detected
// the pass reports zero confidence rather than failing.
func wordConfidence(client *gosseract.Client) float64 {
	boxes, err := client.GetBoundingBoxesVerbose()
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var total float64
	for _, b := range boxes {
		total += b.Confidence
	}
	return total / float64(len(boxes))
}
