package presets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/ironsheep/pixelate-mcp/internal/pixelate"
)

var (
	// ErrNotFound is returned when no preset matches a name or id.
	ErrNotFound = errors.New("preset not found")
	// ErrInvalidName is returned for empty names or names that shadow a
	// built-in preset.
	ErrInvalidName = errors.New("invalid preset name")
)

// Preset is a named settings bundle.
type Preset struct {
	ID       string            `json:"id,omitempty"`
	Name     string            `json:"name"`
	Settings pixelate.Settings `json:"settings"`
	BuiltIn  bool              `json:"builtin,omitempty"`
}

// Repository persists user presets. Built-in presets are never stored.
type Repository interface {
	List() ([]Preset, error)
	// Save stores p, replacing any user preset with the same name, and
	// returns the stored record with its id.
	Save(p Preset) (Preset, error)
	// Delete removes the user preset whose id or name equals idOrName.
	Delete(idOrName string) error
}

func builtin(name string, mutate func(*pixelate.Settings)) Preset {
	s := pixelate.DefaultSettings()
	mutate(&s)
	return Preset{ID: "builtin:" + slug(name), Name: name, Settings: s, BuiltIn: true}
}

var catalog = []Preset{
	builtin("Classic 8-bit", func(s *pixelate.Settings) {
		s.PixelSize = 8
		s.PaletteSize = 64
	}),
	builtin("Game Boy", func(s *pixelate.Settings) {
		s.PixelSize = 4
		s.ColorEffect = pixelate.EffectDuotone
		s.DuotoneColor1 = "#0f380f"
		s.DuotoneColor2 = "#9bbc0f"
		s.PaletteSize = 8
	}),
	builtin("Poster", func(s *pixelate.Settings) {
		s.PixelSize = 6
		s.ColorEffect = pixelate.EffectPosterize
		s.PosterizeLevels = 4
	}),
	builtin("Noir", func(s *pixelate.Settings) {
		s.PixelSize = 10
		s.ColorEffect = pixelate.EffectGrayscale
		s.PaletteSize = 27
	}),
	builtin("Mosaic", func(s *pixelate.Settings) {
		s.PixelSize = 16
		s.ShowGrid = true
	}),
	builtin("Sharp", func(s *pixelate.Settings) {
		s.PixelSize = 12
		s.Sampling = pixelate.SamplingNearest
	}),
}

// BuiltIn returns a copy of the constant preset catalog.
func BuiltIn() []Preset {
	out := make([]Preset, len(catalog))
	copy(out, catalog)
	return out
}

// Catalog returns the built-in presets followed by the user presets of repo.
func Catalog(repo Repository) ([]Preset, error) {
	user, err := repo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list user presets: %w", err)
	}
	return append(BuiltIn(), user...), nil
}

// Lookup finds a preset by id or case-insensitive name, built-ins first.
func Lookup(repo Repository, idOrName string) (Preset, error) {
	all, err := Catalog(repo)
	if err != nil {
		return Preset{}, err
	}
	p, ok := lo.Find(all, func(p Preset) bool { return matches(p, idOrName) })
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrNotFound, idOrName)
	}
	return p, nil
}

// checkSave validates a preset about to be written to a repository.
func checkSave(p Preset) (Preset, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Preset{}, fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if lo.ContainsBy(catalog, func(b Preset) bool { return strings.EqualFold(b.Name, p.Name) }) {
		return Preset{}, fmt.Errorf("%w: %q is a built-in preset", ErrInvalidName, p.Name)
	}
	if err := p.Settings.Validate(); err != nil {
		return Preset{}, err
	}
	p.BuiltIn = false
	return p, nil
}

func matches(p Preset, idOrName string) bool {
	return p.ID == idOrName || strings.EqualFold(p.Name, strings.TrimSpace(idOrName))
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}
