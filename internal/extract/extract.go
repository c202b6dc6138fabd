// Package extract runs the per-channel pipeline: list the channel's videos,
// normalize and sort them, and write the spreadsheet. Channels are processed
// one after another; a failing channel does not stop the others.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"ytextract/internal/config"
	"ytextract/internal/export"
	"ytextract/internal/youtube"
)

// ErrOutputConflict is reported when a channel's rendered file name matches a
// file another channel already wrote in the same run.
var ErrOutputConflict = errors.New("extract: output path already written in this run")

// RecordWriter persists normalized records to path.
type RecordWriter interface {
	Write(ctx context.Context, path string, records []export.VideoRecord) error
}

// Extractor wires a lister and a writer together.
type Extractor struct {
	Lister      youtube.VideoLister
	Writer      RecordWriter
	Output      config.OutputConfig
	ListOptions *youtube.ListOptions
	Logger      *slog.Logger

	// Now supplies the {date} token. Defaults to time.Now.
	Now func() time.Time
}

// ChannelError ties a failure to the configured channel it belongs to.
type ChannelError struct {
	Channel config.Channel
	Err     error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("channel %q (%s): %v", e.Channel.Name, e.Channel.URL, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

// Result describes the outcome for one channel.
type Result struct {
	Channel config.Channel
	// ChannelName is the name used for the file: the configured name, or the
	// extracted one when none was configured.
	ChannelName string
	Path        string
	Videos      int
	// Empty is set when the channel listed no videos. Skipped is set when no
	// file was written for that reason.
	Empty   bool
	Skipped bool
	Err     error
}

// Failed reports whether extraction or writing failed.
func (r Result) Failed() bool { return r.Err != nil }

// Report collects the results of a multi-channel run in processing order.
type Report struct {
	Results []Result
}

// Failed returns the results that carry an error.
func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Failed() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err joins every per-channel error, or returns nil when all succeeded.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, res.Err)
	}
	return errors.Join(errs...)
}

// Run processes channels sequentially. Errors are recorded per channel and
// never abort the loop; once ctx is done, remaining channels are marked as
// canceled without being contacted.
func (e *Extractor) Run(ctx context.Context, channels []config.Channel) Report {
	report := Report{Results: make([]Result, 0, len(channels))}
	written := make(outputClaims, len(channels))
	for i, ch := range channels {
		if err := ctx.Err(); err != nil {
			report.Results = append(report.Results, Result{
				Channel:     ch,
				ChannelName: ch.Name,
				Err:         &ChannelError{Channel: ch, Err: err},
			})
			continue
		}

		e.logger().Info("processing channel", "index", i+1, "total", len(channels), "channel", ch.Name, "url", ch.URL)
		report.Results = append(report.Results, e.channel(ctx, ch, written))
	}
	return report
}

// Channel extracts one channel and writes its spreadsheet.
func (e *Extractor) Channel(ctx context.Context, ch config.Channel) Result {
	return e.channel(ctx, ch, nil)
}

// outputClaims maps the output paths written during a run to the channel
// that wrote them.
type outputClaims map[string]string

// claimKey folds case so names differing only in case collide, as they do on
// case-insensitive filesystems.
func claimKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return strings.ToLower(filepath.Clean(path))
}

func (e *Extractor) channel(ctx context.Context, ch config.Channel, written outputClaims) Result {
	logger := e.logger().With("channel", ch.Name, "url", ch.URL)
	result := Result{Channel: ch, ChannelName: ch.Name}

	listing, err := e.Lister.ListChannel(ctx, ch.URL, e.ListOptions)
	if err != nil {
		logger.Error("extraction failed", "error", err)
		result.Err = &ChannelError{Channel: ch, Err: err}
		return result
	}

	result.ChannelName = channelName(ch, listing)
	records := export.Normalize(listing.Videos)
	export.SortByUploadDate(records)
	result.Videos = len(records)
	logger.Info("videos found", "videos", len(records), "channel_name", result.ChannelName)

	if len(records) == 0 {
		result.Empty = true
		logger.Warn("no videos found", "error", export.ErrEmptyChannel)
		if e.Output.SkipEmpty {
			result.Skipped = true
			return result
		}
	}

	result.Path = filepath.Join(e.Output.Directory, export.RenderFilename(e.Output.FilenameFormat, result.ChannelName, e.now()))
	key := claimKey(result.Path)
	if owner, taken := written[key]; taken {
		err := &export.WriteError{
			Path: result.Path,
			Op:   "conflict",
			Err:  fmt.Errorf("%w by channel %q", ErrOutputConflict, owner),
		}
		logger.Error("output path collides with an earlier channel", "path", result.Path, "owner", owner)
		result.Err = &ChannelError{Channel: ch, Err: err}
		return result
	}

	if err := e.Writer.Write(ctx, result.Path, records); err != nil {
		logger.Error("write failed", "path", result.Path, "error", err)
		result.Err = &ChannelError{Channel: ch, Err: err}
		return result
	}

	if written != nil {
		written[key] = ch.Name
	}
	logger.Info("exported", "path", result.Path, "videos", len(records))
	return result
}

// channelName prefers the configured name unless it was generated.
func channelName(ch config.Channel, listing *youtube.ChannelListing) string {
	if !ch.DefaultName && ch.Name != "" {
		return ch.Name
	}
	if listing.ChannelName != "" && listing.ChannelName != "unknown" {
		return listing.ChannelName
	}
	if ch.Name != "" {
		return ch.Name
	}
	return listing.ChannelName
}

func (e *Extractor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.New(slog.DiscardHandler)
}
