package ytextract

import (
	"context"
	"log/slog"

	"ytextract/internal/export"
	"ytextract/internal/youtube"
)

// VideoRecord is one spreadsheet row.
type VideoRecord = export.VideoRecord

// Options tunes the convenience functions. A nil *Options uses defaults.
type Options struct {
	// YtdlpPath is the yt-dlp executable. Defaults to "yt-dlp".
	YtdlpPath string
	// Content selects a channel tab: "", "all", "videos", "shorts" or "streams".
	Content string
	// Logger receives progress output. Nil disables logging.
	Logger *slog.Logger
}

// ListVideos returns every video of the channel as normalized records,
// newest first.
func ListVideos(ctx context.Context, channelURL string, opts *Options) ([]VideoRecord, error) {
	if opts == nil {
		opts = &Options{}
	}

	contentType, err := youtube.ParseContentType(opts.Content)
	if err != nil {
		return nil, err
	}

	lister := youtube.NewYtdlpLister()
	if opts.YtdlpPath != "" {
		lister.Path = opts.YtdlpPath
	}
	lister.Logger = opts.Logger

	listing, err := lister.ListChannel(ctx, channelURL, &youtube.ListOptions{ContentType: contentType})
	if err != nil {
		return nil, err
	}

	records := export.Normalize(listing.Videos)
	export.SortByUploadDate(records)
	return records, nil
}

// ExportChannel lists the channel and writes its spreadsheet to path,
// returning the number of data rows written.
func ExportChannel(ctx context.Context, channelURL, path string, opts *Options) (int, error) {
	records, err := ListVideos(ctx, channelURL, opts)
	if err != nil {
		return 0, err
	}
	if err := export.NewWriter().Write(ctx, path, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
