package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/samber/lo"

	"github.com/ironsheep/pixelate-mcp/internal/pixelate"
	"github.com/ironsheep/pixelate-mcp/internal/presets"
)

// createTestImageFile writes a solid PNG into a temp dir and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "photo.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// parse parses args with a presets file isolated to the test
func parse(t *testing.T, args ...string) (*CLI, string) {
	t.Helper()
	t.Setenv("PIXELATE_PRESETS_FILE", filepath.Join(t.TempDir(), "presets.json"))
	t.Setenv("PIXELATE_LOG_LEVEL", "error")

	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		t.Fatalf("newParser failed: %v", err)
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		t.Fatalf("Parse(%v) failed: %v", args, err)
	}
	return &cli, kctx.Command()
}

func TestParse_DefaultsToServe(t *testing.T) {
	cli, cmd := parse(t)
	if cmd != "serve" {
		t.Errorf("default command: got %q, want serve", cmd)
	}
	if cli.LogLevel != "error" {
		t.Errorf("log level from env: got %q", cli.LogLevel)
	}
	if !strings.HasSuffix(cli.PresetsFile, "presets.json") {
		t.Errorf("presets file from env: got %q", cli.PresetsFile)
	}
}

func TestParse_ExportDefaults(t *testing.T) {
	in := createTestImageFile(t, 4, 4, color.White)
	cli, cmd := parse(t, "export", in)

	if cmd != "export <input>" {
		t.Errorf("command: got %q", cmd)
	}
	if diff := cmp.Diff([]int{1, 2, 4}, cli.Export.Scale); diff != "" {
		t.Errorf("default scales (-want +got):\n%s", diff)
	}
	if cli.Export.Name != "photo" {
		t.Errorf("base name: got %q, want photo", cli.Export.Name)
	}
}

func TestSettingsFlags_Resolve(t *testing.T) {
	repo := presets.NewMemoryStore()

	tests := []struct {
		name    string
		flags   SettingsFlags
		check   func(t *testing.T, s pixelate.Settings)
		wantErr error
	}{
		{
			name:  "defaults",
			flags: SettingsFlags{},
			check: func(t *testing.T, s pixelate.Settings) {
				if diff := cmp.Diff(pixelate.DefaultSettings(), s); diff != "" {
					t.Errorf("(-want +got):\n%s", diff)
				}
			},
		},
		{
			name:  "preset with override",
			flags: SettingsFlags{Preset: "Poster", PixelSize: 3, Grid: lo.ToPtr(true)},
			check: func(t *testing.T, s pixelate.Settings) {
				if s.ColorEffect != pixelate.EffectPosterize || s.PosterizeLevels != 4 {
					t.Errorf("preset not applied: %+v", s)
				}
				if s.PixelSize != 3 || !s.ShowGrid {
					t.Errorf("flags not applied: %+v", s)
				}
			},
		},
		{
			name: "duotone flags",
			flags: SettingsFlags{
				Effect: "duotone", Duotone1: "#000000", Duotone2: "#ffffff", Sampling: "nearest",
			},
			check: func(t *testing.T, s pixelate.Settings) {
				if s.ColorEffect != pixelate.EffectDuotone || s.Sampling != pixelate.SamplingNearest {
					t.Errorf("flags not applied: %+v", s)
				}
			},
		},
		{
			name:  "grid switched off over preset",
			flags: SettingsFlags{Preset: "Mosaic", Grid: lo.ToPtr(false)},
			check: func(t *testing.T, s pixelate.Settings) {
				if s.ShowGrid {
					t.Errorf("grid still on: %+v", s)
				}
			},
		},
		{name: "bad effect", flags: SettingsFlags{Effect: "sepia"}, wantErr: pixelate.ErrInvalidSettings},
		{name: "bad palette", flags: SettingsFlags{PaletteSize: 1}, wantErr: pixelate.ErrInvalidSettings},
		{name: "unknown preset", flags: SettingsFlags{Preset: "nope"}, wantErr: presets.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.flags.Resolve(repo)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			tt.check(t, s)
		})
	}
}

func TestParse_GridFlags(t *testing.T) {
	tests := []struct {
		args []string
		want *bool
	}{
		{[]string{"presets", "save", "a"}, nil},
		{[]string{"presets", "save", "a", "--grid"}, lo.ToPtr(true)},
		{[]string{"presets", "save", "a", "--preset", "Mosaic", "--no-grid"}, lo.ToPtr(false)},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			cli, _ := parse(t, tt.args...)
			if diff := cmp.Diff(tt.want, cli.Presets.Save.Grid); diff != "" {
				t.Errorf("grid flag (-want +got):\n%s", diff)
			}
			s, err := cli.Presets.Save.Resolve(presets.NewMemoryStore())
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if tt.want != nil && s.ShowGrid != *tt.want {
				t.Errorf("ShowGrid: got %v, want %v", s.ShowGrid, *tt.want)
			}
		})
	}
}

func TestRenderCmd_Run(t *testing.T) {
	in := createTestImageFile(t, 10, 6, color.RGBA{20, 40, 60, 255})
	out := filepath.Join(t.TempDir(), "out.png")
	cli, _ := parse(t, "render", in, out, "--pixel-size", "3", "--effect", "grayscale")

	if err := cli.Render.Run(&cli.Globals); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 6 {
		t.Errorf("render changed dimensions: %v", img.Bounds())
	}
	r, g, b, _ := img.At(0, 0).RGBA()
	if r != g || g != b {
		t.Errorf("grayscale not applied: %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestRenderCmd_RejectsNonPNGOutput(t *testing.T) {
	in := createTestImageFile(t, 2, 2, color.White)
	t.Setenv("PIXELATE_PRESETS_FILE", filepath.Join(t.TempDir(), "presets.json"))

	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.Parse([]string{"render", in, filepath.Join(t.TempDir(), "out.jpg")}); err == nil {
		t.Error("expected validation error for .jpg output")
	}
}

func TestExportCmd_Run(t *testing.T) {
	in := createTestImageFile(t, 8, 4, color.White)
	outDir := filepath.Join(t.TempDir(), "exports")
	cli, _ := parse(t, "export", in, "--scale", "1,2", "--out-dir", outDir, "--compress")

	if err := cli.Export.Run(&cli.Globals); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, name := range []string{"photo-1x.png", "photo-2x.png"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
}

func TestExportCmd_ContinuesPastFailedScale(t *testing.T) {
	in := createTestImageFile(t, 8, 4, color.White)
	outDir := t.TempDir()
	cli, _ := parse(t, "export", in, "--scale", "0,0,2", "--out-dir", outDir)

	err := cli.Export.Run(&cli.Globals)
	if !errors.Is(err, errExportFailed) {
		t.Fatalf("got %v, want errExportFailed", err)
	}
	// Duplicate scales are exported once, so they are counted once.
	if !strings.Contains(err.Error(), "1 of 2 scales") {
		t.Errorf("failure count: got %q", err.Error())
	}
	if _, err := os.Stat(filepath.Join(outDir, "photo-2x.png")); err != nil {
		t.Errorf("valid scale was not exported: %v", err)
	}
}

func TestPresetsCommands(t *testing.T) {
	cli, cmd := parse(t, "presets", "save", "Chunky", "--pixel-size", "20")
	if cmd != "presets save <name>" {
		t.Fatalf("command: got %q", cmd)
	}
	if err := cli.Presets.Save.Run(&cli.Globals); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	list := PresetsListCmd{out: &buf}
	if err := list.Run(&cli.Globals); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	table := buf.String()
	for _, want := range []string{"NAME", "Chunky", "user", "Game Boy", "builtin"} {
		if !strings.Contains(table, want) {
			t.Errorf("list output missing %q:\n%s", want, table)
		}
	}

	del := PresetsDeleteCmd{Name: "chunky"}
	if err := del.Run(&cli.Globals); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := del.Run(&cli.Globals); !errors.Is(err, presets.ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}
