// Package docimage turns uploaded lab documents (PDF or raster scans) into
// a single preprocessed image ready for recognition.
package docimage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
)

// ErrDecode marks an unreadable or corrupt document. Fatal for the request.
var ErrDecode = errors.New("unreadable document")

const (
	// Render well above screen resolution so small table print survives.
	pdfRenderDPI = 300.0

	// Contrast push applied after grayscale: values below the midpoint are
	// darkened further, values above lightened further.
	sigmoidMidpoint = 0.5
	sigmoidFactor   = 6.0
	contrastPercent = 15.0
)

var pdfMagic = []byte("%PDF-")

// IsPDF reports whether the document bytes carry the PDF magic header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// Preprocess decodes the document and returns one enhanced raster image.
// PDF input is rasterized page by page onto a white canvas; raster input is
// decoded directly. Corrupt input fails with ErrDecode.
func Preprocess(data []byte) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	if IsPDF(data) {
		img, err = rasterizePDF(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrDecode, err)
		}
	}
	if err != nil {
		return nil, err
	}
	return enhance(img), nil
}

// enhance applies the luminance grayscale conversion and the contrast push
// that separates ink from paper ahead of recognition.
func enhance(img image.Image) image.Image {
	gray := imaging.Grayscale(img)
	pushed := imaging.AdjustSigmoid(gray, sigmoidMidpoint, sigmoidFactor)
	return imaging.AdjustContrast(pushed, contrastPercent)
}

// rasterizePDF renders every page at high resolution and stacks them
// vertically on a white background, avoiding transparency artifacts.
func rasterizePDF(data []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer doc.Close()

	n := doc.NumPage()
	if n == 0 {
		return nil, fmt.Errorf("%w: pdf has no pages", ErrDecode)
	}

	pages := make([]image.Image, 0, n)
	width, height := 0, 0
	for i := 0; i < n; i++ {
		page, err := doc.ImageDPI(i, pdfRenderDPI)
		if err != nil {
			return nil, fmt.Errorf("%w: render page %d: %v", ErrDecode, i+1, err)
		}
		pages = append(pages, page)
		if w := page.Bounds().Dx(); w > width {
			width = w
		}
		height += page.Bounds().Dy()
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	y := 0
	for _, page := range pages {
		b := page.Bounds()
		dst := image.Rect(0, y, b.Dx(), y+b.Dy())
		draw.Draw(canvas, dst, page, b.Min, draw.Over)
		y += b.Dy()
	}
	return canvas, nil
}
