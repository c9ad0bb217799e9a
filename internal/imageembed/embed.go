// Package imageembed turns user-selected image files into data URIs that
// can live inside a share link.
package imageembed

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif" // registers the GIF decoder
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/nfnt/resize"

	"github.com/starford/menushare/internal/apperr"
	"github.com/starford/menushare/internal/models"
)

// Options control how images are shrunk before embedding.
type Options struct {
	// MaxDimension bounds both width and height, in pixels.
	MaxDimension uint
	JPEGQuality  int
	MaxBytes     int64
}

// DefaultOptions keep embedded images small enough for a shareable link.
func DefaultOptions() Options {
	return Options{MaxDimension: 400, JPEGQuality: 75, MaxBytes: 5 << 20}
}

// Encoder embeds images according to its options.
type Encoder struct {
	opts Options
}

// NewEncoder creates an Encoder. Zero option fields take their defaults.
func NewEncoder(opts Options) *Encoder {
	def := DefaultOptions()
	if opts.MaxDimension == 0 {
		opts.MaxDimension = def.MaxDimension
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = def.JPEGQuality
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = def.MaxBytes
	}
	return &Encoder{opts: opts}
}

// Embed reads an image and returns it as a base64 data URI. PNG, JPEG and
// GIF images larger than MaxDimension are downscaled; WebP and SVG are
// embedded as they are.
func (e *Encoder) Embed(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, e.opts.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("imageembed: read: %w", err)
	}
	if int64(len(data)) > e.opts.MaxBytes {
		return "", fmt.Errorf("%w: larger than %d bytes", apperr.ErrUnsupportedImage, e.opts.MaxBytes)
	}

	mime := detect(data)
	switch mime {
	case "image/png", "image/jpeg", "image/gif":
		out, outMime, err := e.shrink(data, mime)
		if err != nil {
			return "", err
		}
		return dataURI(outMime, out), nil
	case "image/webp", "image/svg+xml":
		return dataURI(mime, data), nil
	default:
		return "", fmt.Errorf("%w: %s", apperr.ErrUnsupportedImage, mime)
	}
}

// Decoded rasters must stay within these bounds. Compressed size says
// little about pixel count, so they are checked from the header before the
// pixel buffer is allocated.
const (
	maxSide   = 8192
	maxPixels = 40_000_000
)

// shrink downsizes raster images that exceed MaxDimension. Images that
// already fit are returned untouched.
func (e *Encoder) shrink(data []byte, mime string) ([]byte, string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: decode header: %v", apperr.ErrUnsupportedImage, err)
	}
	if cfg.Width > maxSide || cfg.Height > maxSide || cfg.Width*cfg.Height > maxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d pixels exceeds %d per side or %d in total",
			apperr.ErrUnsupportedImage, cfg.Width, cfg.Height, maxSide, maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: decode: %v", apperr.ErrUnsupportedImage, err)
	}

	b := img.Bounds()
	maxDim := int(e.opts.MaxDimension)
	if b.Dx() <= maxDim && b.Dy() <= maxDim {
		return data, mime, nil
	}

	var resized image.Image
	if b.Dx() >= b.Dy() {
		resized = resize.Resize(e.opts.MaxDimension, 0, img, resize.Lanczos3)
	} else {
		resized = resize.Resize(0, e.opts.MaxDimension, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	switch mime {
	case "image/jpeg":
		err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: e.opts.JPEGQuality})
	default:
		// GIF frames become a still PNG; PNG keeps its transparency.
		mime = "image/png"
		err = png.Encode(&buf, resized)
	}
	if err != nil {
		return nil, "", fmt.Errorf("imageembed: encode: %w", err)
	}
	return buf.Bytes(), mime, nil
}

func detect(data []byte) string {
	prefix := data
	if len(prefix) > 1024 {
		prefix = prefix[:1024]
	}
	if bytes.Contains(prefix, []byte("<svg")) {
		return "image/svg+xml"
	}
	return strings.Split(http.DetectContentType(data), ";")[0]
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// KindOf classifies an image string: data URIs are uploads, anything else
// is treated as an external URL.
func KindOf(s string) models.ImageKind {
	if strings.HasPrefix(s, "data:") {
		return models.ImageKindUpload
	}
	return models.ImageKindURL
}

// DecodeDataURI parses a data:[<mediatype>];base64,<data> URI.
func DecodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", fmt.Errorf("%w: not a data URI", apperr.ErrUnsupportedImage)
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: missing comma separator", apperr.ErrUnsupportedImage)
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, "", fmt.Errorf("%w: only base64 data URIs are supported", apperr.ErrUnsupportedImage)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, "", fmt.Errorf("%w: invalid base64: %v", apperr.ErrUnsupportedImage, err)
		}
	}
	return data, strings.TrimSuffix(meta, ";base64"), nil
}
