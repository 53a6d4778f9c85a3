package scanning

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"strings"

	"github.com/gen2brain/heic"
)

// InputFile is a user-supplied receipt file awaiting normalization
type InputFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// NormalizedPayload is the canonical form of one input file: a single still
// image for extraction plus the untouched source bytes for later export
type NormalizedPayload struct {
	ExtractionImage  []byte
	OriginalBytes    []byte
	OriginalMimeType string
}

var (
	// ErrUnsupportedType is returned for files that are neither images nor PDFs
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrRasterizerUnavailable is returned for PDF input when no rasterizer was wired
	ErrRasterizerUnavailable = errors.New("pdf rasterizer unavailable")
)

const jpegQuality = 80

// Normalizer converts input files into NormalizedPayloads. The rasterizer is
// an injected capability; when it is absent, PDF input fails rather than the
// whole process.
type Normalizer struct {
	rasterizer Rasterizer
}

// NewNormalizer creates a Normalizer. rasterizer may be nil.
func NewNormalizer(rasterizer Rasterizer) *Normalizer {
	return &Normalizer{rasterizer: rasterizer}
}

// Normalize converts one input file into a NormalizedPayload.
//
// Raster images pass through byte-identical, so the extraction backend sees
// the native encoding. HEIC/HEIF is the exception: the backends reject it,
// so it is decoded and re-encoded as JPEG. PDFs have their first page
// rendered and encoded as JPEG; pages 2+ never reach extraction.
func (n *Normalizer) Normalize(file InputFile) (*NormalizedPayload, error) {
	mimeType := strings.ToLower(strings.TrimSpace(file.ContentType))
	if mimeType == "" {
		mimeType = "image/jpeg" // default
	}

	switch {
	case mimeType == "application/pdf":
		img, err := n.renderFirstPage(file)
		if err != nil {
			return nil, err
		}
		jpegData, err := encodeJPEG(img)
		if err != nil {
			return nil, err
		}
		return &NormalizedPayload{
			ExtractionImage:  jpegData,
			OriginalBytes:    file.Data,
			OriginalMimeType: mimeType,
		}, nil

	case isHEICFormat(file.Data) || isHEICMimeType(mimeType):
		img, err := heic.Decode(bytes.NewReader(file.Data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		jpegData, err := encodeJPEG(img)
		if err != nil {
			return nil, err
		}
		return &NormalizedPayload{
			ExtractionImage:  jpegData,
			OriginalBytes:    file.Data,
			OriginalMimeType: mimeType,
		}, nil

	case strings.HasPrefix(mimeType, "image/"):
		// No transformation: extraction image and original are the same bytes
		return &NormalizedPayload{
			ExtractionImage:  file.Data,
			OriginalBytes:    file.Data,
			OriginalMimeType: mimeType,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}
}

// renderFirstPage rasterizes page 1 of a PDF via the injected capability
func (n *Normalizer) renderFirstPage(file InputFile) (image.Image, error) {
	if n.rasterizer == nil {
		return nil, ErrRasterizerUnavailable
	}

	if count, err := pdfPageCount(file.Data); err == nil && count > 1 {
		slog.Warn("Multi-page PDF, only the first page is scanned",
			"filename", file.Name,
			"pages", count,
		)
	}

	img, err := n.rasterizer.RenderFirstPage(file.Data)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}

// encodeJPEG encodes a raster surface as JPEG at the fixed quality factor
func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEICFormat checks if the image data is in HEIC/HEIF format
// HEIC files typically start with specific magic bytes
func isHEICFormat(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	// HEIC files carry an ftyp box at offset 4 with brand 'heic', 'heif',
	// 'mif1' or 'msf1'
	if string(data[4:8]) == "ftyp" {
		brand := string(data[8:12])
		if brand == "heic" || brand == "heif" || brand == "mif1" || brand == "msf1" {
			return true
		}
	}
	return false
}

// isHEICMimeType checks if the MIME type indicates HEIC/HEIF format
func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return mimeType == "image/heic" || mimeType == "image/heif" ||
		strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}
