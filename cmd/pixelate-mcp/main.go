package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/ironsheep/pixelate-mcp/internal/logging"
	"github.com/ironsheep/pixelate-mcp/internal/presets"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Globals are flags shared by every command.
type Globals struct {
	LogLevel    string           `help:"Log level (debug, info, warn, error). Logs go to stderr" env:"PIXELATE_LOG_LEVEL" default:"info" enum:"debug,info,warn,error"`
	PresetsFile string           `help:"JSON file holding saved presets. Defaults to the user config folder" env:"PIXELATE_PRESETS_FILE" type:"path"`
	Version     kong.VersionFlag `help:"Print version information and exit"`

	logger *slog.Logger `kong:"-"`
}

// Logger returns the logger configured by --log-level.
func (g *Globals) Logger() *slog.Logger {
	if g.logger == nil {
		g.logger = logging.NewFromString(g.LogLevel, os.Stderr)
	}
	return g.logger
}

// PresetStore opens the user preset store.
func (g *Globals) PresetStore() (*presets.FileStore, error) {
	path := g.PresetsFile
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("no presets file given and no user config folder: %w", err)
		}
		path = filepath.Join(dir, "pixelate-mcp", "presets.json")
	}
	return presets.NewFileStore(path), nil
}

// CLI is the root command.
type CLI struct {
	Globals

	Serve   ServeCmd   `cmd:"" default:"1" help:"Run the MCP server over stdin/stdout (default)"`
	Render  RenderCmd  `cmd:"" help:"Pixelate an image at native resolution into a PNG file"`
	Export  ExportCmd  `cmd:"" help:"Export scaled, watermarked PNGs of a pixelated image"`
	Presets PresetsCmd `cmd:"" help:"List and manage presets"`
}

func newParser(cli *CLI) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("pixelate-mcp"),
		kong.Description("Pixel-art stylization: an MCP server plus one-shot render and export commands."),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("pixelate-mcp %s\n  Build time: %s\n  Git commit: %s", Version, BuildTime, GitCommit),
		},
	)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := kctx.Run(&cli.Globals); err != nil {
		cli.Logger().Error("command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}
