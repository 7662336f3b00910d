package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/pagetex"
	"github.com/gogpu/pagetex/internal/config"
	"github.com/gogpu/pagetex/source"
)

// app carries state shared by subcommands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var logLevel string

	root := &cobra.Command{
		Use:           "pagetex",
		Short:         "Render document bundles to textures",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("root") {
				cfg.AssetRoot, _ = cmd.Flags().GetString("root")
			}
			level, err := config.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			pagetex.SetLogger(a.logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("root", ".", "directory local sources are read from")

	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newInspectCmd(a))
	return root
}

// loader routes plain paths to the asset root and s3:// names to object
// storage when an endpoint is configured.
func (a *app) loader() (source.Loader, error) {
	mux := source.Mux{"": source.NewDirLoader(a.cfg.AssetRoot)}
	if a.cfg.S3Endpoint != "" {
		obj, err := source.NewObjectLoader(
			source.WithEndpoint(a.cfg.S3Endpoint),
			source.WithAccessKey(a.cfg.S3AccessKey),
			source.WithSecretKey(a.cfg.S3SecretKey),
			source.WithRegion(a.cfg.S3Region),
			source.WithSSL(a.cfg.S3Secure),
		)
		if err != nil {
			return nil, err
		}
		mux["s3"] = obj
	}
	return mux, nil
}

// sourceName turns a command-line argument into a loader name. Local
// paths become slash-separated paths relative to the asset root.
func (a *app) sourceName(arg string) (string, error) {
	if strings.Contains(arg, "://") && !strings.HasPrefix(arg, "file://") {
		return arg, nil
	}
	arg = strings.TrimPrefix(arg, "file://")
	root, err := filepath.Abs(a.cfg.AssetRoot)
	if err != nil {
		return "", err
	}
	p, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the asset root %s; set --root", arg, root)
	}
	return filepath.ToSlash(rel), nil
}

// open resolves one argument into a bundle for inspection.
func (a *app) open(ctx context.Context, arg string) (*openedSource, error) {
	name, err := a.sourceName(arg)
	if err != nil {
		return nil, err
	}
	l, err := a.loader()
	if err != nil {
		return nil, err
	}
	b, digest, err := source.Open(ctx, l, source.Path(name))
	if err != nil {
		return nil, err
	}
	return &openedSource{name: name, digest: digest, bundle: b}, nil
}
