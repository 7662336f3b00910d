package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gogpu/gg"
	"github.com/gogpu/gputypes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/gogpu/pagetex"
	"github.com/gogpu/pagetex/metrics"
	"github.com/gogpu/pagetex/source"
	"github.com/gogpu/pagetex/texture"
	"github.com/gogpu/pagetex/world"
)

type renderFlags struct {
	width, height int
	page          int
	outDir        string
	inputs        map[string]string
	dataFile      string
	mode          string
	embedded      bool
	system        bool
	fontDirs      []string
	maxInFlight   int
	jobsPerTick   int
	tick          time.Duration
	showMetrics   bool
}

func newRenderCmd(a *app) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render SOURCE...",
		Short: "Render a page of each source to a PNG file",
		Long: `Render submits one job per source and writes <name>.png (or
<name>-<page>.png for pages after the first) into the output directory.
Sources are .zip bundles or .yaml documents under the asset root, or
s3://bucket/key names when object storage is configured.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.applyRenderFlags(cmd, f); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return a.render(ctx, cmd, f, args)
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&f.width, "width", 1024, "texture width in pixels")
	fl.IntVar(&f.height, "height", 1024, "texture height in pixels")
	fl.IntVar(&f.page, "page", 0, "zero-based page index")
	fl.StringVarP(&f.outDir, "out", "o", ".", "output directory")
	fl.StringToStringVar(&f.inputs, "input", nil, "document input key=value (repeatable)")
	fl.StringVar(&f.dataFile, "data", "", "JSON file with structured document input")
	fl.StringVar(&f.mode, "input-mode", "data-overrides-dict", "how --input and --data merge: data-overrides-dict, dict-overrides-data, separate-keys")
	fl.BoolVar(&f.embedded, "embedded-fonts", true, "make the embedded Go fonts available")
	fl.BoolVar(&f.system, "system-fonts", false, "make installed system fonts available")
	fl.StringSliceVar(&f.fontDirs, "font-dir", nil, "directories scanned for system fonts")
	fl.IntVar(&f.maxInFlight, "max-in-flight", 0, "maximum jobs running at once (0 = unbounded)")
	fl.IntVar(&f.jobsPerTick, "jobs-per-tick", 0, "maximum results applied per tick (0 = all)")
	fl.DurationVar(&f.tick, "tick", 16*time.Millisecond, "interval between result polls")
	fl.BoolVar(&f.showMetrics, "metrics", false, "print job metrics to stderr when done")
	return cmd
}

// applyRenderFlags fills unset flags from the environment configuration
// and rejects values the render loop cannot run with.
func (a *app) applyRenderFlags(cmd *cobra.Command, f *renderFlags) error {
	fl := cmd.Flags()
	if !fl.Changed("embedded-fonts") {
		f.embedded = a.cfg.EmbeddedFonts
	}
	if !fl.Changed("system-fonts") {
		f.system = a.cfg.SystemFonts
	}
	if !fl.Changed("font-dir") {
		f.fontDirs = a.cfg.FontDirs
	}
	if !fl.Changed("max-in-flight") {
		f.maxInFlight = a.cfg.MaxInFlight
	}
	if !fl.Changed("jobs-per-tick") {
		f.jobsPerTick = a.cfg.JobsPerTick
	}
	if !fl.Changed("tick") {
		f.tick = a.cfg.Tick
	}
	switch {
	case f.tick <= 0:
		return fmt.Errorf("--tick must be positive, got %v", f.tick)
	case f.maxInFlight < 0:
		return fmt.Errorf("--max-in-flight must not be negative, got %d", f.maxInFlight)
	case f.jobsPerTick < 0:
		return fmt.Errorf("--jobs-per-tick must not be negative, got %d", f.jobsPerTick)
	}
	return nil
}

func parseMergeMode(s string) (world.MergeMode, error) {
	for _, m := range []world.MergeMode{world.DataOverridesDict, world.DictOverridesData, world.SeparateKeys} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown input mode %q", s)
}

func (f *renderFlags) jobOptions() (pagetex.JobOptions, error) {
	opts := pagetex.JobOptions{
		Width:  f.width,
		Height: f.height,
		Page:   f.page,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Alpha:  texture.Premultiplied,
	}
	mode, err := parseMergeMode(f.mode)
	if err != nil {
		return opts, err
	}
	opts.InputMode = mode
	if len(f.inputs) > 0 {
		opts.Input = make(map[string]any, len(f.inputs))
		for k, v := range f.inputs {
			opts.Input[k] = v
		}
	}
	if f.dataFile != "" {
		raw, err := os.ReadFile(f.dataFile)
		if err != nil {
			return opts, err
		}
		var data any
		if err := json.Unmarshal(raw, &data); err != nil {
			return opts, fmt.Errorf("%s: %w", f.dataFile, err)
		}
		opts.Data = data
	}
	return opts, nil
}

func (a *app) render(ctx context.Context, cmd *cobra.Command, f *renderFlags, args []string) error {
	opts, err := f.jobOptions()
	if err != nil {
		return err
	}
	loader, err := a.loader()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.outDir, 0o755); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	store := texture.NewStore()
	srv := pagetex.NewServer(store,
		pagetex.WithLogger(a.logger),
		pagetex.WithLoader(loader),
		pagetex.WithFonts(world.FontOptions{Embedded: f.embedded, System: f.system, Dirs: f.fontDirs}),
		pagetex.WithMaxInFlight(f.maxInFlight),
		pagetex.WithJobsPerTick(f.jobsPerTick),
		pagetex.WithMetrics(metrics.New(reg)),
	)
	defer func() {
		_ = srv.Close(context.Background())
	}()

	outputs := make(map[pagetex.JobID]string, len(args))
	for _, arg := range args {
		name, err := a.sourceName(arg)
		if err != nil {
			return err
		}
		_, id, err := srv.Submit(source.Path(name), opts)
		if err != nil {
			return fmt.Errorf("%s: %w", arg, err)
		}
		outputs[id] = filepath.Join(f.outDir, outputName(name, f.page))
	}

	var failed int
	ticker := time.NewTicker(f.tick)
	defer ticker.Stop()
	for srv.InFlight() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		a.logger.Debug("render: tick", "in_flight", srv.InFlight(), "running", srv.Running())
		for _, out := range srv.PollAndApply() {
			if !out.OK() {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", outputs[out.ID], out.Err)
				continue
			}
			if err := savePNG(store, out.Slot, outputs[out.ID]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %v)\n", outputs[out.ID], out.Digest, out.Elapsed.Round(time.Millisecond))
		}
	}

	if f.showMetrics {
		if err := writeMetrics(cmd, reg); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(args))
	}
	return nil
}

// outputName derives the PNG file name from a source name.
func outputName(name string, page int) string {
	base := path.Base(name)
	base = strings.TrimSuffix(base, path.Ext(base))
	if page > 0 {
		return fmt.Sprintf("%s-%d.png", base, page)
	}
	return base + ".png"
}

// savePNG writes a premultiplied RGBA8 slot through a gg pixmap.
func savePNG(store *texture.Store, h texture.Handle, file string) error {
	slot, ok := store.Get(h)
	if !ok {
		return fmt.Errorf("%w: %d", texture.ErrInvalidHandle, h)
	}
	var pm *gg.Pixmap
	slot.Read(func(w, h int, pixels []byte) {
		pm = gg.NewPixmap(w, h)
		copy(pm.Data(), pixels)
	})
	return pm.SavePNG(file)
}

func writeMetrics(cmd *cobra.Command, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(cmd.ErrOrStderr(), expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
