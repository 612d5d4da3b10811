// Package cli implements the image-text-search command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/image-text-search/internal/config"
	"github.com/ironsheep/image-text-search/internal/ingest"
	"github.com/ironsheep/image-text-search/internal/library"
	"github.com/ironsheep/image-text-search/internal/logger"
	"github.com/ironsheep/image-text-search/internal/ocr"
	"github.com/ironsheep/image-text-search/internal/store"
)

// BuildInfo is set by ldflags in main.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// Option customizes the command tree.
type Option func(*app)

// WithAcquirer replaces the Tesseract engine, for tests.
func WithAcquirer(acq ocr.Acquirer) Option {
	return func(a *app) { a.acquirer = acq }
}

// app holds state shared by subcommands for one invocation.
type app struct {
	build BuildInfo

	cfgFile string
	verbose bool
	noColor bool

	cfg       *config.Config
	log       *zap.Logger
	acquirer  ocr.Acquirer
	tesseract *ocr.Tesseract
	store     store.Store
	lib       *library.Library

	openStore func(ctx context.Context, cfg store.Config, log *zap.Logger) (store.Store, error)
}

// NewRootCmd builds the command tree.
func NewRootCmd(build BuildInfo, opts ...Option) *cobra.Command {
	a := &app{build: build, openStore: store.New}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "image-text-search",
		Short: "OCR a personal image collection and find images by the text they contain",
		Long: `image-text-search extracts text from images with Tesseract OCR and keeps
the results in a persistent collection. Search matches a case-insensitive
substring of each image's text.

The collection can be managed from the command line, served to MCP clients
over stdio, or exposed as an HTTP API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file path")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newIngestCmd(a),
		newSearchCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newDeleteCmd(a),
		newClearCmd(a),
		newInfoCmd(a),
		newServeCmd(a),
		newVersionCmd(a),
	)
	a.closeAfterRun(root)
	return root
}

// closeAfterRun wraps every RunE so resources opened during the command are
// released whether or not it fails.
func (a *app) closeAfterRun(cmd *cobra.Command) {
	for _, sub := range cmd.Commands() {
		a.closeAfterRun(sub)
	}
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			defer a.close()
			return run(cmd, args)
		}
	}
}

// Execute runs the command tree against os.Args.
func Execute(ctx context.Context, build BuildInfo) error {
	return NewRootCmd(build).ExecuteContext(ctx)
}

func (a *app) init() error {
	if a.noColor {
		color.NoColor = true
	}

	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.log = log

	a.tesseract = ocr.NewTesseract(cfg.OCR.Tesseract())
	if a.acquirer == nil {
		a.acquirer = a.tesseract
	}
	return nil
}

// library opens the store and collection on first use.
func (a *app) library(ctx context.Context) (*library.Library, error) {
	if a.lib != nil {
		return a.lib, nil
	}

	st, err := a.openStore(ctx, a.cfg.Store, a.log)
	if err != nil {
		return nil, err
	}

	pipeline := ingest.NewPipeline(a.acquirer, a.cfg.OCR.Pipeline(), a.log)
	lib, err := library.Open(ctx, st, pipeline, a.log)
	if err != nil {
		st.Close()
		return nil, err
	}

	a.store = st
	a.lib = lib
	return lib, nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("Failed to close store", zap.Error(err))
		}
		a.store = nil
		a.lib = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}
