// objview - Terminal 3D Model Viewer
// Renders OBJ and glTF models in the terminal using half-block characters.
//
// Controls:
//
//	h/l  - Move left/right
//	j/k  - Move up/down
//	u/i  - Zoom in/out
//	H/L  - Yaw
//	J/K  - Pitch
//	Y/O  - Roll
//	U/I  - Double/halve the step size
//	t    - Toggle auto-rotation
//	r    - Reset the model
//	q    - Quit
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/objview/internal/config"
	"github.com/taigrr/objview/internal/logger"
	"github.com/taigrr/objview/pkg/control"
	"github.com/taigrr/objview/pkg/models"
	"github.com/taigrr/objview/pkg/render"
	"go.uber.org/zap"
)

var version = "dev"

// flags holds command-line values. They override the config file only when
// explicitly set.
type flags struct {
	configPath string
	logLevel   string
	logFile    string

	fps          int
	rotate       bool
	speed        float64
	color        string
	brightness   float64
	randomColors bool
	filter       string
	wrap         string
	normals      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd(&flags{}), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "objview <model.obj|model.gltf|model.glb>",
		Short: "Terminal 3D Model Viewer",
		Long:  "objview - Terminal 3D Model Viewer\n\nRenders OBJ and glTF models in the terminal.\n\nControls:\n" + controlsHelp(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.setup(cmd, false)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runViewer(cmd.Context(), args[0], cfg)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "Path to config file")
	pf.StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&f.logFile, "log-file", "", "Write logs to this file")
	pf.StringVar(&f.color, "color", "", "Draw every face in one color (R,G,B or #rrggbb)")
	pf.Float64Var(&f.brightness, "brightness", 1, "Global brightness multiplier")
	pf.BoolVar(&f.randomColors, "random-colors", false, "Give every face a random color")
	pf.StringVar(&f.filter, "texture-filter", "nearest", "Texture filter (nearest, bilinear)")
	pf.StringVar(&f.wrap, "texture-wrap", "clamp", "Texture wrap mode (clamp, repeat)")
	pf.BoolVar(&f.normals, "smooth-normals", false, "Generate smooth normals for meshes without them")

	cmd.Flags().IntVar(&f.fps, "fps", 60, "Target FPS")
	cmd.Flags().BoolVar(&f.rotate, "rotate", false, "Start with auto-rotation enabled")
	cmd.Flags().Float64Var(&f.speed, "speed", math.Pi, "Auto-rotation speed in rad/s")

	cmd.AddCommand(newInfoCmd(f), newSnapshotCmd(f), newConfigCmd(f))
	return cmd
}

// setup reads the config file, applies explicitly set flags on top and
// initializes logging. console is false for commands that draw to stdout.
func (f *flags) setup(cmd *cobra.Command, console bool) (*config.Config, error) {
	cfg, path, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	f.apply(cmd.Flags().Changed, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File, console); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if path != "" {
		logger.Debug("config loaded", zap.String("path", path))
	}
	return cfg, nil
}

func (f *flags) apply(changed func(string) bool, cfg *config.Config) {
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if changed("log-file") {
		cfg.Logging.File = f.logFile
	}
	if changed("fps") {
		cfg.Render.FPS = f.fps
	}
	if changed("rotate") {
		cfg.Control.AutoRotate = f.rotate
	}
	if changed("speed") {
		cfg.Control.Speed = f.speed
	}
	if changed("color") {
		cfg.Render.Color = f.color
	}
	if changed("brightness") {
		cfg.Render.Brightness = f.brightness
	}
	if changed("random-colors") {
		cfg.Render.RandomColors = f.randomColors
	}
	if changed("texture-filter") {
		cfg.Render.TextureFilter = f.filter
	}
	if changed("texture-wrap") {
		cfg.Render.TextureWrap = f.wrap
	}
	if changed("smooth-normals") {
		cfg.Render.GenerateNormals = f.normals
	}
}

func controlsHelp() string {
	var b strings.Builder
	for _, k := range control.Bindings() {
		fmt.Fprintf(&b, "  %-7s - %s\n", k.Key(), k.Help)
	}
	return b.String()
}

// loadMesh loads a model with the texture and normal settings from cfg.
func loadMesh(path string, cfg *config.Config, normalize bool) (*models.Mesh, error) {
	wrap, err := render.ParseWrapMode(cfg.Render.TextureWrap)
	if err != nil {
		return nil, err
	}
	filter, err := render.ParseFilterMode(cfg.Render.TextureFilter)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	mesh, err := models.Load(path, models.Options{
		Normalize:       normalize,
		GenerateNormals: cfg.Render.GenerateNormals,
		TextureWrap:     wrap,
		TextureFilter:   filter,
	})
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	for _, w := range mesh.Warnings {
		logger.Warn("model warning", zap.Error(w))
	}
	logger.Info("model loaded",
		zap.String("path", path),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("faces", mesh.FaceCount()),
		zap.Int("materials", len(mesh.Materials)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return mesh, nil
}

// newRenderer builds a renderer from the render section of cfg.
func newRenderer(cfg *config.Config) (*render.Renderer, error) {
	override, err := cfg.OverrideColor()
	if err != nil {
		return nil, err
	}
	r := render.NewRenderer(render.Options{
		Projection:   cfg.Projection(),
		Override:     override,
		RandomColors: cfg.Render.RandomColors,
		Seed:         uint64(time.Now().UnixNano()),
	})
	r.Context().SetLight(cfg.Light())
	r.Context().Brightness = cfg.Render.Brightness
	return r, nil
}
