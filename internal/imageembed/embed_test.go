package imageembed

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/starford/menushare/internal/apperr"
	"github.com/starford/menushare/internal/models"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestEmbedDownscalesWidePNG(t *testing.T) {
	e := NewEncoder(Options{MaxDimension: 400})
	uri, err := e.Embed(bytes.NewReader(pngBytes(t, 800, 200)))
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	data, mime, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatal(err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q", mime)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 400 || cfg.Height != 100 {
		t.Errorf("size = %dx%d, want 400x100", cfg.Width, cfg.Height)
	}
}

func TestEmbedDownscalesTallJPEG(t *testing.T) {
	e := NewEncoder(Options{MaxDimension: 100, JPEGQuality: 60})
	uri, err := e.Embed(bytes.NewReader(jpegBytes(t, 50, 300)))
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	data, mime, _ := DecodeDataURI(uri)
	if mime != "image/jpeg" {
		t.Errorf("mime = %q", mime)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Height != 100 {
		t.Errorf("height = %d, want 100", cfg.Height)
	}
}

func TestEmbedKeepsSmallImages(t *testing.T) {
	src := jpegBytes(t, 10, 10)
	uri, err := NewEncoder(Options{}).Embed(bytes.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	data, _, _ := DecodeDataURI(uri)
	if !bytes.Equal(data, src) {
		t.Error("small image was re-encoded")
	}
}

func TestEmbedSVG(t *testing.T) {
	svg := `<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg" width="1" height="1"></svg>`
	uri, err := NewEncoder(Options{}).Embed(strings.NewReader(svg))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(uri, "data:image/svg+xml;base64,") {
		t.Errorf("uri = %q", uri)
	}
}

func TestEmbedRejects(t *testing.T) {
	e := NewEncoder(Options{MaxBytes: 64})
	if _, err := e.Embed(strings.NewReader("just some text")); !errors.Is(err, apperr.ErrUnsupportedImage) {
		t.Errorf("text: err = %v", err)
	}
	if _, err := e.Embed(bytes.NewReader(pngBytes(t, 100, 100))); !errors.Is(err, apperr.ErrUnsupportedImage) {
		t.Errorf("oversized: err = %v", err)
	}
}

// blankPNG streams a valid all-black 8-bit grayscale PNG row by row, so
// huge dimensions cost little memory on the encoding side.
func blankPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var out bytes.Buffer
	out.WriteString("\x89PNG\r\n\x1a\n")
	chunk := func(typ string, data []byte) {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(data)))
		out.Write(n[:])
		crc := crc32.NewIEEE()
		crc.Write([]byte(typ))
		crc.Write(data)
		out.WriteString(typ)
		out.Write(data)
		binary.BigEndian.PutUint32(n[:], crc.Sum32())
		out.Write(n[:])
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], uint32(w))
	binary.BigEndian.PutUint32(ihdr[4:], uint32(h))
	ihdr[8] = 8 // bit depth, color type 0 (gray)
	chunk("IHDR", ihdr)

	var idat bytes.Buffer
	zw, err := zlib.NewWriterLevel(&idat, zlib.BestSpeed)
	if err != nil {
		t.Fatal(err)
	}
	row := make([]byte, w+1) // filter byte + pixels
	for y := 0; y < h; y++ {
		if _, err := zw.Write(row); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	chunk("IDAT", idat.Bytes())
	chunk("IEND", nil)
	return out.Bytes()
}

func TestEmbedRejectsHugePixelCounts(t *testing.T) {
	e := NewEncoder(Options{})

	huge := blankPNG(t, 12000, 12000)
	if int64(len(huge)) > DefaultOptions().MaxBytes {
		t.Fatalf("fixture is %d bytes, must fit the upload cap", len(huge))
	}
	if _, err := e.Embed(bytes.NewReader(huge)); !errors.Is(err, apperr.ErrUnsupportedImage) {
		t.Errorf("12000x12000: err = %v, want ErrUnsupportedImage", err)
	}

	if _, err := e.Embed(bytes.NewReader(blankPNG(t, 9000, 2))); !errors.Is(err, apperr.ErrUnsupportedImage) {
		t.Errorf("9000 wide: err = %v, want ErrUnsupportedImage", err)
	}

	uri, err := e.Embed(bytes.NewReader(blankPNG(t, 800, 600)))
	if err != nil {
		t.Fatalf("800x600: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Errorf("uri = %.40q", uri)
	}
}

func TestKindOf(t *testing.T) {
	if KindOf("data:image/png;base64,AAAA") != models.ImageKindUpload {
		t.Error("data URI should be an upload")
	}
	if KindOf("https://example.com/a.png") != models.ImageKindURL {
		t.Error("https URL should be a url")
	}
}

func TestDecodeDataURIErrors(t *testing.T) {
	for _, in := range []string{"https://x", "data:image/png;base64", "data:text/plain,hello", "data:image/png;base64,@@@"} {
		if _, _, err := DecodeDataURI(in); err == nil {
			t.Errorf("DecodeDataURI(%q) should fail", in)
		}
	}
}
