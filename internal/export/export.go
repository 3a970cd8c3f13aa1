package export

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/samber/lo"

	"github.com/ironsheep/pixelate-mcp/internal/imaging"
	"github.com/ironsheep/pixelate-mcp/internal/pixelate"
)

// DefaultScales are the export resolutions offered by default.
var DefaultScales = []int{1, 2, 4}

// Exporter renders settings at native resolution, upscales, watermarks and
// encodes. It holds no per-call state and may be shared.
type Exporter struct {
	Codec     imaging.Codec
	Watermark *Watermark // nil disables watermarking
}

// NewExporter returns an Exporter using codec and the standard watermark.
func NewExporter(codec imaging.Codec) (*Exporter, error) {
	wm, err := NewWatermark(WatermarkText)
	if err != nil {
		return nil, err
	}
	return &Exporter{Codec: codec, Watermark: wm}, nil
}

// Result is the outcome of exporting one scale. Exactly one of Data and Err
// is set.
type Result struct {
	Scale  int
	Width  int
	Height int
	Data   []byte
	Err    error
}

// Render runs the pipeline on an already decoded native buffer: pixelate at
// native size (grid included), upscale by scale, then stamp the watermark.
// native is not modified.
func (e *Exporter) Render(native *image.NRGBA, s pixelate.Settings, scale int) (*image.NRGBA, error) {
	if scale < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidScale, scale)
	}

	out, err := pixelate.Pixelate(native, s)
	if err != nil {
		return nil, err
	}

	out, err = Upscale(out, scale)
	if err != nil {
		return nil, err
	}

	if e.Watermark != nil {
		if err := e.Watermark.Stamp(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Export decodes source, renders it with s at the given scale and encodes the
// result. Each call starts from the source bytes, so export always reflects s
// regardless of any preview state.
func (e *Exporter) Export(source []byte, s pixelate.Settings, scale int) ([]byte, error) {
	r := e.ExportScale(source, s, scale)
	return r.Data, r.Err
}

// ExportScale is Export reporting the output dimensions alongside the data.
func (e *Exporter) ExportScale(source []byte, s pixelate.Settings, scale int) Result {
	res := Result{Scale: scale}
	if scale < 1 {
		res.Err = fmt.Errorf("%w: %d", ErrInvalidScale, scale)
		return res
	}

	native, err := e.Codec.Decode(source)
	if err != nil {
		res.Err = err
		return res
	}

	out, err := e.Render(native, s, scale)
	if err != nil {
		res.Err = err
		return res
	}

	data, err := e.Codec.Encode(out)
	if err != nil {
		res.Err = err
		return res
	}

	res.Width, res.Height = out.Bounds().Dx(), out.Bounds().Dy()
	res.Data = data
	return res
}

// ExportBatch exports source once per distinct scale, in order. Scales are
// processed sequentially and share nothing; a failing scale is reported in
// its Result and the remaining scales still run.
func (e *Exporter) ExportBatch(source []byte, s pixelate.Settings, scales []int) []Result {
	scales = lo.Uniq(scales)
	results := make([]Result, 0, len(scales))
	for _, scale := range scales {
		results = append(results, e.ExportScale(source, s, scale))
	}
	return results
}

// FileName returns the download name for an export: "<base>-<scale>x.png".
func FileName(base string, scale int) string {
	return fmt.Sprintf("%s-%dx.png", base, scale)
}

// WriteFile writes data to dir/FileName(base, scale) through a temporary file
// and a rename, so a partially written export is never visible. It returns
// the final path.
func WriteFile(dir, base string, scale int, data []byte) (path string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("unable to create destination folder %q: %w", dir, err)
	}

	name := FileName(base, scale)
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("could not create temporary destination %q: %w", name, err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("could not write %q: %w", name, err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("could not flush %q: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("could not close %q: %w", name, err)
	}

	path = filepath.Join(dir, name)
	if err = os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("could not rename destination file %q: %w", name, err)
	}
	return path, nil
}
