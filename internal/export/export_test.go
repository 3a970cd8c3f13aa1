package export

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	pimaging "github.com/ironsheep/pixelate-mcp/internal/imaging"
	"github.com/ironsheep/pixelate-mcp/internal/pixelate"
)

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.NRGBA
			if x < width/2 && y < height/2 {
				c = color.NRGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.NRGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.NRGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.NRGBA{255, 255, 255, 128} // Translucent white bottom-right
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

func newTestExporter(t *testing.T) *Exporter {
	t.Helper()
	e, err := NewExporter(pimaging.NewPNGCodec())
	if err != nil {
		t.Fatalf("NewExporter failed: %v", err)
	}
	return e
}

func testSettings(pixelSize int) pixelate.Settings {
	s := pixelate.DefaultSettings()
	s.PixelSize = pixelSize
	return s
}

func TestExport_DimensionsPerScale(t *testing.T) {
	e := newTestExporter(t)
	source := encodePNG(t, createPatternImage(60, 40))

	for _, scale := range []int{1, 2, 3, 4} {
		data, err := e.Export(source, testSettings(5), scale)
		if err != nil {
			t.Fatalf("Export scale %d failed: %v", scale, err)
		}
		cfg, err := png.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("output is not a PNG: %v", err)
		}
		if cfg.Width != 60*scale || cfg.Height != 40*scale {
			t.Errorf("scale %d: got %dx%d, want %dx%d",
				scale, cfg.Width, cfg.Height, 60*scale, 40*scale)
		}
	}
}

func TestExport_WatermarkIsApplied(t *testing.T) {
	e := newTestExporter(t)
	native := imaging.New(200, 100, color.NRGBA{255, 255, 255, 255})

	withMark, err := e.Render(native, testSettings(4), 2)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	plain := *e
	plain.Watermark = nil
	without, err := plain.Render(native, testSettings(4), 2)
	if err != nil {
		t.Fatalf("Render without watermark failed: %v", err)
	}

	fontSize, padding := Layout(400)
	changed := 0
	b := withMark.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if withMark.NRGBAAt(x, y) == without.NRGBAAt(x, y) {
				continue
			}
			changed++
			if x >= b.Max.X-padding+2 || y >= b.Max.Y-padding+2 {
				t.Fatalf("watermark pixel (%d,%d) inside the %dpx padding", x, y, padding)
			}
			if y < b.Max.Y-padding-2*fontSize {
				t.Fatalf("watermark pixel (%d,%d) too far above the bottom edge", x, y)
			}
		}
	}
	if changed == 0 {
		t.Error("watermark changed no pixels")
	}
}

func TestExport_DoesNotMutateNative(t *testing.T) {
	e := newTestExporter(t)
	native := createPatternImage(30, 30)
	pristine := append([]uint8(nil), native.Pix...)

	if _, err := e.Render(native, testSettings(7), 1); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.Equal(native.Pix, pristine) {
		t.Error("Render modified the native buffer")
	}
}

func TestExport_Errors(t *testing.T) {
	e := newTestExporter(t)
	source := encodePNG(t, createPatternImage(8, 8))

	if _, err := e.Export([]byte("garbage"), testSettings(2), 1); !errors.Is(err, pimaging.ErrDecode) {
		t.Errorf("garbage source: got %v, want ErrDecode", err)
	}
	if _, err := e.Export(source, testSettings(2), 0); !errors.Is(err, ErrInvalidScale) {
		t.Errorf("scale 0: got %v, want ErrInvalidScale", err)
	}
	if _, err := e.Export(source, testSettings(0), 1); !errors.Is(err, pixelate.ErrInvalidSettings) {
		t.Errorf("pixel size 0: got %v, want ErrInvalidSettings", err)
	}
}

func TestExportBatch_IsolatesFailures(t *testing.T) {
	e := newTestExporter(t)
	source := encodePNG(t, createPatternImage(16, 16))

	results := e.ExportBatch(source, testSettings(4), []int{1, -2, 2, 2, 4})
	if len(results) != 4 {
		t.Fatalf("expected 4 results (duplicates collapsed), got %d", len(results))
	}

	wantScales := []int{1, -2, 2, 4}
	for i, r := range results {
		if r.Scale != wantScales[i] {
			t.Errorf("result %d scale: got %d, want %d", i, r.Scale, wantScales[i])
		}
		if r.Scale < 1 {
			if !errors.Is(r.Err, ErrInvalidScale) || r.Data != nil {
				t.Errorf("scale %d: want ErrInvalidScale and no data, got err=%v", r.Scale, r.Err)
			}
			continue
		}
		if r.Err != nil {
			t.Errorf("scale %d failed: %v", r.Scale, r.Err)
		}
		if r.Width != 16*r.Scale || r.Height != 16*r.Scale {
			t.Errorf("scale %d: got %dx%d", r.Scale, r.Width, r.Height)
		}
	}
}

func TestExportBatch_OversizedScaleDoesNotStopBatch(t *testing.T) {
	e := newTestExporter(t)
	source := encodePNG(t, createPatternImage(8, 4))

	results := e.ExportBatch(source, testSettings(2), []int{1, 10_000_000, 2})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !errors.Is(results[1].Err, pixelate.ErrProcess) || results[1].Data != nil {
		t.Errorf("huge scale: want ErrProcess and no data, got err=%v", results[1].Err)
	}
	for _, i := range []int{0, 2} {
		r := results[i]
		if r.Err != nil {
			t.Errorf("scale %d failed: %v", r.Scale, r.Err)
		}
		if r.Width != 8*r.Scale || r.Height != 4*r.Scale {
			t.Errorf("scale %d: got %dx%d", r.Scale, r.Width, r.Height)
		}
	}
}

func TestExportBatch_DecodeFailureReportedPerScale(t *testing.T) {
	e := newTestExporter(t)
	results := e.ExportBatch([]byte("garbage"), testSettings(4), DefaultScales)
	if len(results) != len(DefaultScales) {
		t.Fatalf("expected %d results, got %d", len(DefaultScales), len(results))
	}
	for _, r := range results {
		if !errors.Is(r.Err, pimaging.ErrDecode) {
			t.Errorf("scale %d: got %v, want ErrDecode", r.Scale, r.Err)
		}
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("sunset", 2); got != "sunset-2x.png" {
		t.Errorf("FileName: got %s, want sunset-2x.png", got)
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteFile(dir, "sunset", 4, []byte("png bytes"))
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if path != filepath.Join(dir, "sunset-4x.png") {
		t.Errorf("path: got %s", path)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "png bytes" {
		t.Errorf("contents: got %q", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the final file in %s, found %d entries", dir, len(entries))
	}
}
