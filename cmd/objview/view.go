package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/objview/internal/config"
	"github.com/taigrr/objview/internal/logger"
	"github.com/taigrr/objview/pkg/control"
	"github.com/taigrr/objview/pkg/models"
	"github.com/taigrr/objview/pkg/render"
	"go.uber.org/zap"
)

const (
	clearScreen     = "\x1b[2J"
	resetAttributes = "\x1b[0m"
)

// maxFrameStep caps dt after a stall so rotation does not jump.
const maxFrameStep = 0.1

// input is a terminal event reduced to what the controller consumes.
type input struct {
	key        string
	resize     bool
	cols, rows int
}

// viewer ties the controller, the renderer and an output stream together.
// It runs on a single goroutine; terminal events reach it over a channel.
type viewer struct {
	ctrl     *control.Controller
	renderer *render.Renderer
	mesh     *models.Mesh
	out      io.Writer
}

func newViewer(cfg *config.Config, mesh *models.Mesh, out io.Writer) (*viewer, error) {
	r, err := newRenderer(cfg)
	if err != nil {
		return nil, err
	}
	ctrl := control.New(control.Config{
		AutoRotate: cfg.Control.AutoRotate,
		Speed:      cfg.Control.Speed,
		FPS:        cfg.Render.FPS,
		StepScale:  cfg.Control.Step,
		Pose:       render.DefaultPose(),
	})
	return &viewer{ctrl: ctrl, renderer: r, mesh: mesh, out: out}, nil
}

// handle applies one input event. It returns false once the viewer should
// exit.
func (v *viewer) handle(in input) bool {
	if in.resize {
		v.ctrl.Resize(in.cols, in.rows)
		return true
	}
	if a := v.ctrl.HandleKey(in.key); a != control.ActionNone {
		logger.Debug("key", zap.String("key", in.key), zap.Stringer("action", a))
	}
	return !v.ctrl.Done()
}

// tick advances the controller by dt seconds and draws if needed.
func (v *viewer) tick(dt float64) error {
	frame := v.ctrl.Tick(dt)
	if frame.Clear {
		if _, err := io.WriteString(v.out, clearScreen); err != nil {
			return fmt.Errorf("clear screen: %w", err)
		}
		v.renderer.Encoder().Reset()
		logger.Debug("resize", zap.Int("cols", frame.Cols), zap.Int("rows", frame.Rows))
	}
	if !frame.Render {
		return nil
	}
	if _, err := v.renderer.Render(v.out, v.mesh, v.ctrl.Pose(), frame.Cols, frame.Rows); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// screen is the part of the uv terminal the viewer drives. Mode changes are
// queued by the terminal and only reach the tty on Display.
type screen interface {
	Start() error
	EnterAltScreen()
	ExitAltScreen()
	HideCursor()
	ShowCursor()
	Resize(width, height int) error
	Display() error
	Shutdown(ctx context.Context) error
}

var _ screen = (*uv.Terminal)(nil)

// openScreen switches to the alternate screen with the cursor hidden and
// flushes both before any frame is written.
func openScreen(s screen, width, height int) error {
	if err := s.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	s.EnterAltScreen()
	s.HideCursor()
	err := s.Resize(width, height)
	if err == nil {
		err = s.Display()
	}
	if err != nil {
		_ = s.Shutdown(context.Background())
		return fmt.Errorf("enter alt screen: %w", err)
	}
	return nil
}

// closeScreen drops the colors left by the last frame, then restores the
// main screen and cursor and releases the terminal.
func closeScreen(s screen, out io.Writer) error {
	_, werr := io.WriteString(out, resetAttributes)
	s.ExitAltScreen()
	s.ShowCursor()
	derr := s.Display()
	serr := s.Shutdown(context.Background())
	return errors.Join(werr, derr, serr)
}

func runViewer(ctx context.Context, modelPath string, cfg *config.Config) error {
	mesh, err := loadMesh(modelPath, cfg, true)
	if err != nil {
		return err
	}
	v, err := newViewer(cfg, mesh, os.Stdout)
	if err != nil {
		return err
	}

	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := openScreen(term, width, height); err != nil {
		return err
	}
	defer func() {
		if err := closeScreen(term, os.Stdout); err != nil {
			logger.Warn("restore terminal", zap.Error(err))
		}
	}()

	// uv also reports the initial size; the controller ignores the repeat.
	v.ctrl.Resize(width, height)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan input, 64)
	go func() {
		for ev := range term.Events() {
			var in input
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				in = input{resize: true, cols: ev.Width, rows: ev.Height}
			case uv.KeyPressEvent:
				key, ok := control.MatchKey(ev.MatchString)
				if !ok {
					continue
				}
				in = input{key: key}
			default:
				continue
			}
			select {
			case events <- in:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(cfg.Render.FPS))
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case in := <-events:
			if in.resize {
				if err := term.Resize(in.cols, in.rows); err != nil {
					return fmt.Errorf("resize terminal: %w", err)
				}
			}
			if !v.handle(in) {
				return nil
			}
		case now := <-ticker.C:
			dt := min(now.Sub(last).Seconds(), maxFrameStep)
			last = now
			if err := v.tick(dt); err != nil {
				return err
			}
		}
	}
}
