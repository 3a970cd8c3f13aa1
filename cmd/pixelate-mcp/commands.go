package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/anthonynsimon/bild/imgio"

	"github.com/ironsheep/pixelate-mcp/internal/export"
	"github.com/ironsheep/pixelate-mcp/internal/imaging"
	"github.com/ironsheep/pixelate-mcp/internal/pixelate"
	"github.com/ironsheep/pixelate-mcp/internal/presets"
	"github.com/ironsheep/pixelate-mcp/internal/server"
)

// SettingsFlags select pipeline settings. Flags left at their zero value
// keep the preset's value, or the default when no preset is given. --grid
// and --no-grid both override the preset.
type SettingsFlags struct {
	Preset          string `help:"Start from a built-in or saved preset" placeholder:"NAME" group:"settings"`
	PixelSize       int    `help:"Block edge length in pixels" placeholder:"N" group:"settings"`
	Sampling        string `help:"Block sampling: averaged or nearest" group:"settings"`
	Effect          string `help:"Color effect: normal, grayscale, duotone or posterize" group:"settings"`
	PaletteSize     int    `help:"Approximate palette size, 2-256" placeholder:"N" group:"settings"`
	Shape           string `help:"Block shape: square, circle, hex or isometric (only square is rendered)" group:"settings"`
	Grid            *bool  `help:"Draw grid lines on block boundaries" negatable:"" group:"settings"`
	Duotone1        string `help:"Duotone shadow color" placeholder:"#RRGGBB" group:"settings"`
	Duotone2        string `help:"Duotone highlight color" placeholder:"#RRGGBB" group:"settings"`
	PosterizeLevels int    `help:"Posterize levels per channel, 2-8" placeholder:"N" group:"settings"`
}

// Resolve layers the flags over the preset (if any) over the defaults and
// validates the result.
func (f *SettingsFlags) Resolve(repo presets.Repository) (pixelate.Settings, error) {
	s := pixelate.DefaultSettings()
	if f.Preset != "" {
		p, err := presets.Lookup(repo, f.Preset)
		if err != nil {
			return pixelate.Settings{}, err
		}
		s = p.Settings
	}

	if f.PixelSize != 0 {
		s.PixelSize = f.PixelSize
	}
	if f.Sampling != "" {
		s.Sampling = pixelate.Sampling(f.Sampling)
	}
	if f.Effect != "" {
		s.ColorEffect = pixelate.ColorEffect(f.Effect)
	}
	if f.PaletteSize != 0 {
		s.PaletteSize = f.PaletteSize
	}
	if f.Shape != "" {
		s.Shape = pixelate.Shape(f.Shape)
	}
	if f.Grid != nil {
		s.ShowGrid = *f.Grid
	}
	if f.Duotone1 != "" {
		s.DuotoneColor1 = f.Duotone1
	}
	if f.Duotone2 != "" {
		s.DuotoneColor2 = f.Duotone2
	}
	if f.PosterizeLevels != 0 {
		s.PosterizeLevels = f.PosterizeLevels
	}

	if err := s.Validate(); err != nil {
		return pixelate.Settings{}, err
	}
	return s, nil
}

func resolveSettings(g *Globals, f *SettingsFlags) (pixelate.Settings, error) {
	store, err := g.PresetStore()
	if err != nil {
		return pixelate.Settings{}, err
	}
	s, err := f.Resolve(store)
	if err != nil {
		return pixelate.Settings{}, err
	}
	if !s.Shape.Implemented() {
		g.Logger().Warn("shape not implemented, rendering squares", "shape", s.Shape)
	}
	return s, nil
}

// ServeCmd runs the MCP server.
type ServeCmd struct{}

func (c *ServeCmd) Run(g *Globals) error {
	logger := g.Logger()
	store, err := g.PresetStore()
	if err != nil {
		return err
	}

	logger.Info("starting pixelate-mcp", "version", Version, "built", BuildTime, "commit", GitCommit,
		"presets", store.Path())

	srv, err := server.New(server.Config{Presets: store, Logger: logger, Version: Version})
	if err != nil {
		return err
	}
	return srv.Run()
}

// RenderCmd writes a preview-equivalent render: native size, no watermark.
type RenderCmd struct {
	Input  string `arg:"" type:"existingfile" help:"Source image"`
	Output string `arg:"" type:"path" help:"Destination PNG file"`

	SettingsFlags
}

func (c *RenderCmd) Validate(kctx *kong.Context) error {
	if !strings.EqualFold(filepath.Ext(c.Output), ".png") {
		return fmt.Errorf("output %q must be a .png file", c.Output)
	}
	return nil
}

func (c *RenderCmd) Run(g *Globals) error {
	settings, err := resolveSettings(g, &c.SettingsFlags)
	if err != nil {
		return err
	}

	f, err := os.Open(c.Input)
	if err != nil {
		return fmt.Errorf("could not open source image %q: %w", c.Input, err)
	}
	defer f.Close()
	src, err := imaging.NewPNGCodec().DecodeReader(f)
	if err != nil {
		return err
	}
	out, err := pixelate.Pixelate(src, settings)
	if err != nil {
		return err
	}

	if err := imgio.Save(c.Output, out, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("could not write %q: %w", c.Output, err)
	}
	g.Logger().Info("rendered", "from", c.Input, "to", c.Output,
		"width", out.Bounds().Dx(), "height", out.Bounds().Dy())
	return nil
}

// ExportCmd writes <name>-<scale>x.png for each requested scale.
type ExportCmd struct {
	Input    string `arg:"" type:"existingfile" help:"Source image"`
	Scale    []int  `help:"Output scale factors" default:"1,2,4"`
	OutDir   string `help:"Destination folder" default:"." type:"path"`
	Name     string `help:"Base file name. Defaults to the input name without extension"`
	Compress bool   `help:"Use maximum PNG compression (slower, smaller files)"`

	SettingsFlags
}

func (c *ExportCmd) Validate(kctx *kong.Context) error {
	if len(c.Scale) == 0 {
		return fmt.Errorf("at least one --scale is required")
	}
	if c.Name == "" {
		base := filepath.Base(c.Input)
		c.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return nil
}

// bestCompression is an imgio.Encoder writing maximally compressed PNG.
func bestCompression(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, img)
}

// errExportFailed is returned when at least one scale could not be exported.
var errExportFailed = errors.New("export failed")

func (c *ExportCmd) Run(g *Globals) error {
	logger := g.Logger()
	settings, err := resolveSettings(g, &c.SettingsFlags)
	if err != nil {
		return err
	}

	source, err := imaging.ReadSource(c.Input)
	if err != nil {
		return err
	}
	codec := imaging.NewPNGCodec()
	if c.Compress {
		codec = imaging.NewCodecWithEncoder(bestCompression)
	}
	exporter, err := export.NewExporter(codec)
	if err != nil {
		return err
	}

	results := exporter.ExportBatch(source, settings, c.Scale)
	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			logger.Error("could not export scale", "scale", r.Scale, "error", r.Err)
			continue
		}
		path, err := export.WriteFile(c.OutDir, c.Name, r.Scale, r.Data)
		if err != nil {
			failed++
			logger.Error("could not write export", "scale", r.Scale, "error", err)
			continue
		}
		logger.Info("exported", "scale", r.Scale, "file", path, "width", r.Width, "height", r.Height)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d scales", errExportFailed, failed, len(results))
	}
	return nil
}

// PresetsCmd groups preset management.
type PresetsCmd struct {
	List   PresetsListCmd   `cmd:"" default:"1" help:"List built-in and saved presets"`
	Save   PresetsSaveCmd   `cmd:"" help:"Save settings flags as a named preset"`
	Delete PresetsDeleteCmd `cmd:"" help:"Delete a saved preset"`
}

type PresetsListCmd struct {
	out io.Writer `kong:"-"`
}

func (c *PresetsListCmd) Run(g *Globals) error {
	store, err := g.PresetStore()
	if err != nil {
		return err
	}
	all, err := presets.Catalog(store)
	if err != nil {
		return err
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	return writePresetTable(c.out, all)
}

func writePresetTable(w io.Writer, list []presets.Preset) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tPIXEL\tSAMPLING\tEFFECT\tPALETTE\tGRID")
	for _, p := range list {
		kind := "user"
		if p.BuiltIn {
			kind = "builtin"
		}
		s := p.Settings
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%d\t%t\n",
			p.Name, kind, s.PixelSize, s.Sampling, s.ColorEffect, s.PaletteSize, s.ShowGrid)
	}
	return tw.Flush()
}

type PresetsSaveCmd struct {
	Name string `arg:"" help:"Preset name"`

	SettingsFlags
}

func (c *PresetsSaveCmd) Run(g *Globals) error {
	store, err := g.PresetStore()
	if err != nil {
		return err
	}
	settings, err := c.Resolve(store)
	if err != nil {
		return err
	}
	p, err := store.Save(presets.Preset{Name: c.Name, Settings: settings})
	if err != nil {
		return err
	}
	g.Logger().Info("saved preset", "name", p.Name, "id", p.ID, "file", store.Path())
	return nil
}

type PresetsDeleteCmd struct {
	Name string `arg:"" help:"Preset name or id"`
}

func (c *PresetsDeleteCmd) Run(g *Globals) error {
	store, err := g.PresetStore()
	if err != nil {
		return err
	}
	if err := store.Delete(c.Name); err != nil {
		return err
	}
	g.Logger().Info("deleted preset", "name", c.Name, "file", store.Path())
	return nil
}
