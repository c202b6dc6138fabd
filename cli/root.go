package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type globalFlags struct {
	configPath     string
	outputDir      string
	filenameFormat string
	source         string
	ytdlpPath      string
	content        string
	logLevel       string
	logFormat      string
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "ytextract [channel-url]",
		Short: "Export YouTube channel videos to Excel",
		Long: `ytextract lists every public video of a YouTube channel and writes
ID, title, description and URL to an .xlsx spreadsheet, newest first.

Pass a channel URL, @handle or channel ID to extract a single channel, or
point --config at a YAML/TOML file listing several channels.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, flags, args)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Configuration file path (YAML or TOML)")
	pf.StringVar(&flags.outputDir, "output-dir", "", "Directory for generated spreadsheets")
	pf.StringVar(&flags.filenameFormat, "filename-format", "", "Filename template; supports {channel_name} and {date}")
	pf.StringVar(&flags.source, "source", "", "Extraction source: ytdlp or api")
	pf.StringVar(&flags.ytdlpPath, "ytdlp-path", "", "Path to the yt-dlp executable")
	pf.StringVar(&flags.content, "content", "", "Channel tab to list: all, videos, shorts or streams")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: console or json")

	rootCmd.AddCommand(newExtractCommand(flags))
	rootCmd.AddCommand(newChannelsCommand(flags))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ytextract version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write([]byte("ytextract " + version + "\n"))
			return err
		},
	}
}
