package pixelate

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mod     func(*Settings)
		wantErr bool
	}{
		{"defaults", nil, false},
		{"pixel size 1", func(s *Settings) { s.PixelSize = 1 }, false},
		{"pixel size 0", func(s *Settings) { s.PixelSize = 0 }, true},
		{"negative pixel size", func(s *Settings) { s.PixelSize = -3 }, true},
		{"palette 2", func(s *Settings) { s.PaletteSize = 2 }, false},
		{"palette 1", func(s *Settings) { s.PaletteSize = 1 }, true},
		{"palette 257", func(s *Settings) { s.PaletteSize = 257 }, true},
		{"unknown shape", func(s *Settings) { s.Shape = "triangle" }, true},
		{"empty shape", func(s *Settings) { s.Shape = "" }, true},
		{"hex shape accepted", func(s *Settings) { s.Shape = ShapeHex }, false},
		{"unknown sampling", func(s *Settings) { s.Sampling = "bicubic" }, true},
		{"unknown effect", func(s *Settings) { s.ColorEffect = "sepia" }, true},
		{"grayscale", func(s *Settings) { s.ColorEffect = EffectGrayscale }, false},
		{"duotone without colors", func(s *Settings) { s.ColorEffect = EffectDuotone }, true},
		{"duotone one color", func(s *Settings) {
			s.ColorEffect = EffectDuotone
			s.DuotoneColor1 = "#000000"
		}, true},
		{"duotone", func(s *Settings) {
			s.ColorEffect = EffectDuotone
			s.DuotoneColor1 = "#000000"
			s.DuotoneColor2 = "#ffffff"
		}, false},
		{"posterize without levels", func(s *Settings) { s.ColorEffect = EffectPosterize }, true},
		{"posterize 9 levels", func(s *Settings) {
			s.ColorEffect = EffectPosterize
			s.PosterizeLevels = 9
		}, true},
		{"posterize 2 levels", func(s *Settings) {
			s.ColorEffect = EffectPosterize
			s.PosterizeLevels = 2
		}, false},
		{"levels ignored for normal", func(s *Settings) { s.PosterizeLevels = 99 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := settingsWith(tt.mod).Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSettings) {
					t.Errorf("Validate: got %v, want ErrInvalidSettings", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate failed: %v", err)
			}
		})
	}
}

func TestSettings_JSON(t *testing.T) {
	in := `{"pixel_size":6,"shape":"circle","sampling":"nearest","color_effect":"duotone",` +
		`"palette_size":64,"show_grid":true,"duotone_color1":"#112233","duotone_color2":"#ddeeff"}`

	var got Settings
	if err := json.Unmarshal([]byte(in), &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	want := Settings{
		PixelSize:     6,
		Shape:         ShapeCircle,
		Sampling:      SamplingNearest,
		ColorEffect:   EffectDuotone,
		PaletteSize:   64,
		ShowGrid:      true,
		DuotoneColor1: "#112233",
		DuotoneColor2: "#ddeeff",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Settings mismatch (-want +got):\n%s", diff)
	}
}

func TestSettings_JSONOverlaysDefaults(t *testing.T) {
	got := DefaultSettings()
	if err := json.Unmarshal([]byte(`{"pixel_size":12}`), &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	want := DefaultSettings()
	want.PixelSize = 12
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Settings mismatch (-want +got):\n%s", diff)
	}
}

func TestShape_Implemented(t *testing.T) {
	if !ShapeSquare.Implemented() {
		t.Error("square should be implemented")
	}
	for _, s := range []Shape{ShapeCircle, ShapeHex, ShapeIsometric} {
		if s.Implemented() {
			t.Errorf("%s should not report implemented", s)
		}
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
}
