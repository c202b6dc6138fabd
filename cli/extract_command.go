package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"ytextract/internal/config"
	"ytextract/internal/export"
	"ytextract/internal/extract"
	"ytextract/internal/logging"
)

// runError reports a run in which at least one channel failed. The summary
// table has already been printed when it is returned.
type runError struct {
	failed int
	total  int
	err    error
}

func (e *runError) Error() string {
	return fmt.Sprintf("%d of %d channels failed", e.failed, e.total)
}

func (e *runError) Unwrap() error { return e.err }

func newExtractCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "extract [channel-url]",
		Short: "Extract channel videos to spreadsheets (default command)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, flags, args)
		},
	}
}

func runExtract(cmd *cobra.Command, flags *globalFlags, args []string) error {
	cfg, channels, err := loadRunConfig(flags, args, flagOverrides(cmd, flags))
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	logger, _ = logging.WithRunID(logger)

	if len(channels) == 0 {
		logger.Info("found 0 enabled channels")
		return renderSummary(cmd.OutOrStdout(), extract.Report{})
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lister, err := extract.NewLister(ctx, cfg, logger)
	if err != nil {
		return err
	}
	listOpts, err := extract.ListOptions(cfg)
	if err != nil {
		return err
	}

	extractor := &extract.Extractor{
		Lister:      lister,
		Writer:      export.NewWriter(),
		Output:      cfg.Output,
		ListOptions: listOpts,
		Logger:      logger,
	}

	logger.Info("extraction started",
		"channels", len(channels),
		"source", cfg.Extractor.Source,
		"output_dir", cfg.Output.Directory,
	)
	report := extractor.Run(ctx, channels)

	if err := renderSummary(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if ctx.Err() != nil {
		logger.Warn("extraction interrupted")
		return context.Canceled
	}
	if err := report.Err(); err != nil {
		failed := len(report.Failed())
		logger.Error("extraction finished with failures", "failed", failed, "total", len(report.Results))
		return &runError{failed: failed, total: len(report.Results), err: err}
	}

	logger.Info("extraction finished", "channels", len(report.Results))
	return nil
}

// loadRunConfig resolves settings and the channels to process. A channel
// argument runs that channel alone, taking settings from --config or a
// discovered config file when present. Without one, channels come from the
// config file.
func loadRunConfig(flags *globalFlags, args []string, override config.Override) (*config.Config, []config.Channel, error) {
	path := strings.TrimSpace(flags.configPath)

	if len(args) == 1 {
		channelURL := strings.TrimSpace(args[0])
		if channelURL == "" {
			return nil, nil, errors.New("channel URL must not be empty")
		}
		if path == "" {
			discovered, err := config.Discover()
			if err != nil && !errors.Is(err, config.ErrNoConfigFile) {
				return nil, nil, err
			}
			path = discovered
		}
		cfg, err := config.LoadSettings(path, override)
		if err != nil {
			return nil, nil, err
		}
		channel := config.Channel{Name: "Channel 1", URL: channelURL, DefaultName: true}
		return cfg, []config.Channel{channel}, nil
	}

	cfg, err := loadChannelConfig(path, override)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cfg.EnabledChannels(), nil
}

func loadChannelConfig(path string, overrides ...config.Override) (*config.Config, error) {
	if path == "" {
		discovered, err := config.Discover()
		if errors.Is(err, config.ErrNoConfigFile) {
			return nil, errors.New("no channel URL given and no config file found; pass a channel URL or --config")
		}
		if err != nil {
			return nil, err
		}
		path = discovered
	}
	return config.Load(path, overrides...)
}

// flagOverrides layers explicitly set flags over file and environment
// settings. Validation runs after it, so a flag can repair an invalid file
// setting.
func flagOverrides(cmd *cobra.Command, flags *globalFlags) config.Override {
	set := cmd.Flags().Changed
	return func(cfg *config.Config) {
		if set("output-dir") {
			cfg.Output.Directory = flags.outputDir
		}
		if set("filename-format") {
			cfg.Output.FilenameFormat = flags.filenameFormat
		}
		if set("source") {
			cfg.Extractor.Source = flags.source
		}
		if set("ytdlp-path") {
			cfg.Extractor.YtdlpPath = flags.ytdlpPath
		}
		if set("content") {
			cfg.Extractor.Content = flags.content
		}
		if set("log-level") {
			cfg.LogLevel = flags.logLevel
		}
		if set("log-format") {
			cfg.LogFormat = flags.logFormat
		}
	}
}
