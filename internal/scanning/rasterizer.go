package scanning

import (
	"bytes"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Rasterizer renders the first page of a PDF byte buffer to a raster surface
type Rasterizer interface {
	RenderFirstPage(pdfData []byte) (image.Image, error)
}

// pdfRenderDPI renders at 2x the 72 DPI PDF point grid so small receipt
// text survives JPEG compression
const pdfRenderDPI = 144

// FitzRasterizer implements Rasterizer using MuPDF via go-fitz
type FitzRasterizer struct{}

// NewFitzRasterizer creates a new FitzRasterizer
func NewFitzRasterizer() *FitzRasterizer {
	return &FitzRasterizer{}
}

// RenderFirstPage renders page 1 of a PDF (most receipts are single page)
func (f *FitzRasterizer) RenderFirstPage(pdfData []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.ImageDPI(0, pdfRenderDPI)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}

// pdfPageCount inspects a PDF without rendering it. Failures are reported to
// the caller but never block rasterization.
func pdfPageCount(pdfData []byte) (int, error) {
	count, err := api.PageCount(bytes.NewReader(pdfData), nil)
	if err != nil {
		return 0, fmt.Errorf("counting PDF pages: %w", err)
	}
	return count, nil
}
