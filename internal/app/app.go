// Package app implements the application layer for delta.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.trai.ch/delta/internal/adapters/cas"    //nolint:depguard // Wired in app layer
	"go.trai.ch/delta/internal/adapters/config" //nolint:depguard // Wired in app layer
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/delta/internal/engine/cache"
	"go.trai.ch/delta/internal/engine/controller"
	"go.trai.ch/delta/internal/engine/renderer"
	"go.trai.ch/delta/internal/engine/solver"
	"go.trai.ch/delta/internal/engine/workspace"
	"go.trai.ch/delta/internal/ui/style"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// NotifyWindow is how long workspace change notifications are coalesced.
const NotifyWindow = 16 * time.Millisecond

// logConfigurer is implemented by loggers that can switch level and format.
type logConfigurer interface {
	Configure(cfg domain.LogConfig) error
}

// App represents the main application logic.
type App struct {
	loader   ports.ConfigLoader
	logger   ports.Logger
	solver   *solver.Solver
	cache    *cache.Cache
	renderer *renderer.Renderer
	tracer   ports.Tracer
	gatherer prometheus.Gatherer
	dir      string

	mu  sync.Mutex
	cfg domain.Config
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	cfg domain.Config,
	s *solver.Solver,
	results *cache.Cache,
	r *renderer.Renderer,
	tracer ports.Tracer,
	gatherer prometheus.Gatherer,
) *App {
	return &App{
		loader:   loader,
		logger:   log,
		cfg:      cfg,
		solver:   s,
		cache:    results,
		renderer: r,
		tracer:   tracer,
		gatherer: gatherer,
	}
}

// WithDir sets the directory searched for delta.yaml when watching for
// configuration changes.
func (a *App) WithDir(dir string) *App {
	a.dir = dir
	return a
}

// Config returns the configuration currently in effect.
func (a *App) Config() domain.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// Session is one open project with the workspace that owns it and the
// controller that renders it.
type Session struct {
	Sample     *Sample
	Workspace  *workspace.Workspace
	Controller *controller.Controller
}

// Open builds the sample project and starts a session on it.
func (a *App) Open(opts SampleOptions) (*Session, error) {
	sample, err := SampleProject(opts)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to build sample project")
	}
	cfg := a.Config()
	ws := workspace.New(sample.Project, a.solver, cfg.History.Depth, NotifyWindow)
	ctl := controller.New(a.renderer, ws, cfg.Output.FrameRate, cfg.Controller, a.tracer, a.logger)
	return &Session{Sample: sample, Workspace: ws, Controller: ctl}, nil
}

// Shift moves the sample's first clip to start at offset. The clips linked
// to it follow.
func (s *Session) Shift(offset domain.Time) error {
	if offset == 0 {
		return nil
	}
	_, err := s.Workspace.Edit(func(p *domain.Project) (domain.Invalidation, error) {
		c, ok := p.Snapshot().Component(s.Sample.Red)
		if !ok {
			err := zerr.Wrap(domain.ErrDanglingReference, "sample clip was removed")
			return domain.Invalidation{}, zerr.With(err, "component", s.Sample.Red.String())
		}
		return p.SetAnchor(c.Left, &offset)
	})
	return err
}

// Apply takes a reloaded configuration. Cache bounds and logging change
// immediately; everything else is used by sessions opened afterwards.
func (a *App) Apply(cfg domain.Config) {
	a.mu.Lock()
	prev := a.cfg
	a.cfg = cfg
	a.mu.Unlock()

	if cfg.Cache != prev.Cache {
		a.cache.Resize(cfg.Cache.MaxEntries, cfg.Cache.MaxBytes)
		a.logger.Info(fmt.Sprintf("cache resized to %d entries, %d bytes", cfg.Cache.MaxEntries, cfg.Cache.MaxBytes))
	}
	if cfg.Log != prev.Log {
		if lc, ok := a.logger.(logConfigurer); ok {
			if err := lc.Configure(cfg.Log); err != nil {
				a.logger.Error(err)
			}
		}
	}
	if cfg.Output != prev.Output {
		a.logger.Warn("output format changes apply to the next session")
	}
}

// RenderOptions configuration for the Render method.
type RenderOptions struct {
	At      domain.Time
	Shift   domain.Time
	Sample  SampleOptions
	Metrics bool
}

// Render evaluates one frame and the audio that plays during it, and prints a
// summary to out.
func (a *App) Render(ctx context.Context, out io.Writer, opts RenderOptions) error {
	if opts.At < 0 {
		return zerr.With(zerr.Wrap(domain.ErrInvalidArgument, "render time must not be negative"), "at", opts.At.String())
	}
	s, err := a.Open(opts.Sample)
	if err != nil {
		return err
	}
	if err := s.Shift(opts.Shift); err != nil {
		return err
	}

	view := s.Workspace.View()
	frame, err := a.renderer.RenderFrame(ctx, view, opts.At)
	if err != nil {
		return err
	}
	span := domain.Span{Start: opts.At, End: opts.At + a.Config().Output.FrameRate.FrameDuration()}
	audio, err := a.renderer.RenderAudio(ctx, view, span)
	if err != nil {
		return err
	}

	failures := slices.Concat(frame.Failures, audio.Failures)
	for _, f := range failures {
		a.logger.Error(f.Err)
	}
	printFrame(out, frame, audio, len(failures))

	if opts.Metrics {
		return a.WriteMetrics(out)
	}
	return nil
}

// ExportOptions configuration for the Export method.
type ExportOptions struct {
	Dir string
	// From and To bound the exported part of the timeline. A zero To exports
	// to the end.
	From    domain.Time
	To      domain.Time
	Shift   domain.Time
	Sample  SampleOptions
	Metrics bool
}

// Export renders a range of frames into a frame store at opts.Dir.
func (a *App) Export(ctx context.Context, out io.Writer, opts ExportOptions) error {
	if opts.Dir == "" {
		return zerr.Wrap(domain.ErrInvalidArgument, "export directory is required")
	}
	s, err := a.Open(opts.Sample)
	if err != nil {
		return err
	}
	if err := s.Shift(opts.Shift); err != nil {
		return err
	}

	view := s.Workspace.View()
	if err := view.Timing.Err(); err != nil {
		a.logger.Error(zerr.Wrap(err, "timeline has unresolved regions"))
	}

	rate := a.Config().Output.FrameRate
	r := domain.FrameRange{From: rate.FrameAt(opts.From), To: s.Controller.FrameCount(view)}
	if opts.To > 0 {
		r.To = rate.FrameAt(opts.To)
	}

	store := cas.NewStore(opts.Dir)
	if err := s.Controller.Export(ctx, r, store); err != nil {
		return zerr.With(zerr.Wrap(err, "export failed"), "dir", opts.Dir)
	}

	stats := a.cache.Stats()
	_, _ = fmt.Fprintf(out, "%s exported %d frames to %s\n", style.Check, r.Len(), opts.Dir)
	_, _ = fmt.Fprintf(out, "%s %d\n", style.Label("objects"), store.Objects())
	_, _ = fmt.Fprintf(out, "%s %d hits, %d misses, %d entries\n", style.Label("cache"), stats.Hits, stats.Misses, stats.Entries)

	if opts.Metrics {
		return a.WriteMetrics(out)
	}
	return nil
}

// PlayOptions configuration for the Play method.
type PlayOptions struct {
	From   domain.Time
	Shift  domain.Time
	Sample SampleOptions
}

// Play previews the timeline in real time and prints every delivered frame.
// While playing, edits to delta.yaml are applied as they are saved.
func (a *App) Play(ctx context.Context, out io.Writer, opts PlayOptions) error {
	s, err := a.Open(opts.Sample)
	if err != nil {
		return err
	}
	if err := s.Shift(opts.Shift); err != nil {
		return err
	}
	total := s.Controller.FrameCount(s.Workspace.View())

	var (
		mu        sync.Mutex
		delivered int
	)
	deliver := func(res *controller.Result) {
		mu.Lock()
		defer mu.Unlock()
		delivered++
		_, _ = fmt.Fprintf(out, "%s frame %d at %s\n", style.Dot, res.Index, res.Frame.At)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	if a.dir != "" {
		if path, ok := config.Find(a.dir); ok {
			g.Go(func() error {
				return a.loader.Watch(gctx, path, a.Apply)
			})
		}
	}
	g.Go(func() error {
		defer cancel()
		return s.Controller.Play(gctx, a.Config().Output.FrameRate.FrameAt(opts.From), deliver)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	_, _ = fmt.Fprintf(out, "%s played %d of %d frames\n", style.Check, delivered, total)
	return nil
}

// WriteConfig prints the configuration in effect as delta.yaml content.
func (a *App) WriteConfig(out io.Writer) error {
	data, err := config.Marshal(a.Config())
	if err != nil {
		return zerr.Wrap(err, "failed to render configuration")
	}
	_, err = out.Write(data)
	return err
}

// WriteMetrics prints the collected metrics in the Prometheus text format.
func (a *App) WriteMetrics(out io.Writer) error {
	families, err := a.gatherer.Gather()
	if err != nil {
		return zerr.Wrap(err, "failed to gather metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return zerr.Wrap(err, "failed to write metrics")
		}
	}
	return nil
}

func printFrame(out io.Writer, frame *renderer.Frame, audio *renderer.AudioChunk, failures int) {
	_, _ = fmt.Fprintf(out, "%s %s\n", style.Label("time"), frame.At)
	if img := frame.Image; img != nil {
		c := img.At(img.Width/2, img.Height/2)
		_, _ = fmt.Fprintf(out, "%s %dx%d\n", style.Label("size"), img.Width, img.Height)
		_, _ = fmt.Fprintf(out, "%s rgba(%.3f, %.3f, %.3f, %.3f)\n", style.Label("center"), c[0], c[1], c[2], c[3])
	}
	if block := audio.Audio; block != nil {
		_, _ = fmt.Fprintf(out, "%s %d frames, peak %.3f\n", style.Label("audio"), block.Frames(), peak(block))
	}
	_, _ = fmt.Fprintf(out, "%s %d\n", style.Label("failures"), failures)
}

func peak(b *domain.AudioBlock) float32 {
	var p float32
	for _, s := range b.Samples {
		p = max(p, s, -s)
	}
	return p
}
