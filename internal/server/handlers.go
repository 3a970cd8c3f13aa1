package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/ironsheep/pixelate-mcp/internal/export"
	"github.com/ironsheep/pixelate-mcp/internal/imaging"
	"github.com/ironsheep/pixelate-mcp/internal/pixelate"
	"github.com/ironsheep/pixelate-mcp/internal/presets"
	"github.com/ironsheep/pixelate-mcp/internal/preview"
)

// errInvalidArguments marks tool arguments that could not be decoded.
var errInvalidArguments = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "pixelate_preview").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Argument and settings errors return code -32602; other tool failures
// return -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	log := s.logger.With("tool", params.Name)
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		if isParamError(err) {
			log.Warn("rejected tool arguments", "error", err)
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		log.Error("tool failed", "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	log.Debug("tool succeeded")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// isParamError reports whether err was caused by the caller's arguments
// rather than by processing.
func isParamError(err error) bool {
	for _, target := range []error{
		errInvalidArguments,
		pixelate.ErrInvalidSettings,
		export.ErrInvalidScale,
		presets.ErrInvalidName,
		presets.ErrNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)

	// Pipeline
	case "pixelate_preview":
		return s.handlePixelatePreview(args)
	case "pixelate_export":
		return s.handlePixelateExport(args)
	case "pixelate_export_batch":
		return s.handlePixelateExportBatch(args)

	// Presets
	case "preset_list":
		return s.handlePresetList(args)
	case "preset_save":
		return s.handlePresetSave(args)
	case "preset_delete":
		return s.handlePresetDelete(args)

	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", errInvalidArguments, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	return nil
}

// settingsArgs selects settings by preset, explicit fields, or both.
// Explicit fields override the preset, which overrides the defaults.
type settingsArgs struct {
	Path     string          `json:"path"`
	Preset   string          `json:"preset,omitempty"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

func (s *Server) resolveSettings(a settingsArgs) (pixelate.Settings, error) {
	settings := pixelate.DefaultSettings()
	if a.Preset != "" {
		p, err := presets.Lookup(s.presets, a.Preset)
		if err != nil {
			return pixelate.Settings{}, err
		}
		settings = p.Settings
	}
	if len(a.Settings) > 0 {
		if err := json.Unmarshal(a.Settings, &settings); err != nil {
			return pixelate.Settings{}, fmt.Errorf("%w: settings: %v", errInvalidArguments, err)
		}
	}
	if err := settings.Validate(); err != nil {
		return pixelate.Settings{}, err
	}
	if !settings.Shape.Implemented() {
		s.logger.Warn("shape not implemented, rendering squares", "shape", settings.Shape)
	}
	return settings, nil
}

func requirePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: path is required", errInvalidArguments)
	}
	return nil
}

// baseName strips directory and extension, so "/a/sunset.jpg" exports as
// "sunset-2x.png".
func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// === Image Information ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

// ImageLoadResult is returned by image_load.
type ImageLoadResult struct {
	*imaging.ImageInfo
	// AverageColor is the mean color of the whole image.
	AverageColor imaging.ColorInfo `json:"average_color"`
}

// handleImageLoad always decodes the file again, so a source edited on disk
// is picked up by later previews.
func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}

	s.cache.Evict(a.Path)
	info, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	avg := pixelate.SampleBlock(src, src.Bounds(), pixelate.SamplingAveraged)

	return &ImageLoadResult{
		ImageInfo:    info,
		AverageColor: imaging.DescribeColor(imaging.RGBColor{R: avg.R, G: avg.G, B: avg.B}),
	}, nil
}

// === Pipeline ===

// PreviewResult is returned by pixelate_preview. SupersededBy is the newest
// sequence when Stale is set.
type PreviewResult struct {
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	ImageBase64  string            `json:"image_base64"`
	MimeType     string            `json:"mime_type"`
	Sequence     uint64            `json:"sequence"`
	Stale        bool              `json:"stale"`
	SupersededBy uint64            `json:"superseded_by,omitempty"`
	Settings     pixelate.Settings `json:"settings"`
}

func (s *Server) handlePixelatePreview(args json.RawMessage) (interface{}, error) {
	var a settingsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	settings, err := s.resolveSettings(a)
	if err != nil {
		return nil, err
	}

	ticket := s.previews.Begin()

	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	out, err := pixelate.Pixelate(src, settings)
	if err != nil {
		return nil, err
	}
	data, err := s.codec.Encode(out)
	if err != nil {
		return nil, err
	}

	b := out.Bounds()
	accepted := s.previews.Apply(ticket, preview.Result{
		Path:     a.Path,
		Settings: settings,
		Width:    b.Dx(),
		Height:   b.Dy(),
		PNG:      data,
	})
	result := &PreviewResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/png",
		Sequence:    uint64(ticket),
		Stale:       !accepted,
		Settings:    settings,
	}
	if !accepted {
		result.SupersededBy = uint64(s.previews.Current())
		s.logger.Debug("discarding stale preview", "sequence", ticket, "newest", result.SupersededBy)
	}
	return result, nil
}

// ExportResult describes one exported scale.
type ExportResult struct {
	Scale       int    `json:"scale"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	FileName    string `json:"file_name"`
	Path        string `json:"path,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
	Error       string `json:"error,omitempty"`
}

// BatchExportResult is returned by pixelate_export_batch.
type BatchExportResult struct {
	Results   []ExportResult `json:"results"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
}

type exportArgs struct {
	settingsArgs
	Scale     int    `json:"scale"`
	Scales    []int  `json:"scales"`
	OutputDir string `json:"output_dir,omitempty"`
}

func (s *Server) loadExportArgs(args json.RawMessage) (exportArgs, pixelate.Settings, []byte, error) {
	var a exportArgs
	if err := decodeArgs(args, &a); err != nil {
		return a, pixelate.Settings{}, nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return a, pixelate.Settings{}, nil, err
	}
	settings, err := s.resolveSettings(a.settingsArgs)
	if err != nil {
		return a, pixelate.Settings{}, nil, err
	}
	source, err := imaging.ReadSource(a.Path)
	if err != nil {
		return a, pixelate.Settings{}, nil, err
	}
	return a, settings, source, nil
}

// deliver converts an export.Result into its tool form, writing it to
// outputDir when one is given.
func (s *Server) deliver(r export.Result, base, outputDir string) ExportResult {
	out := ExportResult{
		Scale:    r.Scale,
		Width:    r.Width,
		Height:   r.Height,
		FileName: export.FileName(base, r.Scale),
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
		return out
	}
	if outputDir == "" {
		out.ImageBase64 = base64.StdEncoding.EncodeToString(r.Data)
		out.MimeType = "image/png"
		return out
	}
	path, err := export.WriteFile(outputDir, base, r.Scale, r.Data)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Path = path
	return out
}

func (s *Server) handlePixelateExport(args json.RawMessage) (interface{}, error) {
	a, settings, source, err := s.loadExportArgs(args)
	if err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1
	}

	r := s.exporter.ExportScale(source, settings, a.Scale)
	if r.Err != nil {
		return nil, r.Err
	}
	res := s.deliver(r, baseName(a.Path), a.OutputDir)
	if res.Error != "" {
		return nil, errors.New(res.Error)
	}
	return &res, nil
}

func (s *Server) handlePixelateExportBatch(args json.RawMessage) (interface{}, error) {
	a, settings, source, err := s.loadExportArgs(args)
	if err != nil {
		return nil, err
	}
	if len(a.Scales) == 0 {
		a.Scales = export.DefaultScales
	}

	base := baseName(a.Path)
	batch := &BatchExportResult{}
	for _, r := range s.exporter.ExportBatch(source, settings, a.Scales) {
		res := s.deliver(r, base, a.OutputDir)
		if res.Error != "" {
			batch.Failed++
			s.logger.Warn("export scale failed", "scale", res.Scale, "error", res.Error)
		} else {
			batch.Succeeded++
		}
		batch.Results = append(batch.Results, res)
	}
	return batch, nil
}

// === Presets ===

// PresetListResult is returned by preset_list.
type PresetListResult struct {
	Presets []presets.Preset `json:"presets"`
	Count   int              `json:"count"`
}

type presetListArgs struct {
	// BuiltInOnly and UserOnly filter the listing.
	BuiltInOnly bool `json:"builtin_only,omitempty"`
	UserOnly    bool `json:"user_only,omitempty"`
}

func (s *Server) handlePresetList(args json.RawMessage) (interface{}, error) {
	var a presetListArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	all, err := presets.Catalog(s.presets)
	if err != nil {
		return nil, err
	}
	all = lo.Filter(all, func(p presets.Preset, _ int) bool {
		return !(a.BuiltInOnly && !p.BuiltIn) && !(a.UserOnly && p.BuiltIn)
	})
	return &PresetListResult{Presets: all, Count: len(all)}, nil
}

type presetSaveArgs struct {
	Name     string          `json:"name"`
	Settings json.RawMessage `json:"settings"`
}

func (s *Server) handlePresetSave(args json.RawMessage) (interface{}, error) {
	var a presetSaveArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	settings := pixelate.DefaultSettings()
	if len(a.Settings) > 0 {
		if err := json.Unmarshal(a.Settings, &settings); err != nil {
			return nil, fmt.Errorf("%w: settings: %v", errInvalidArguments, err)
		}
	}
	return s.presets.Save(presets.Preset{Name: a.Name, Settings: settings})
}

type presetDeleteArgs struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

func (s *Server) handlePresetDelete(args json.RawMessage) (interface{}, error) {
	var a presetDeleteArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	key := lo.CoalesceOrEmpty(a.ID, a.Name)
	if key == "" {
		return nil, fmt.Errorf("%w: name or id is required", errInvalidArguments)
	}
	if err := s.presets.Delete(key); err != nil {
		return nil, err
	}
	return map[string]interface{}{"deleted": key}, nil
}
