package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const (
	defaultYtdlpPath    = "yt-dlp"
	defaultYtdlpTimeout = 10 * time.Minute
)

// YtdlpLister implements VideoLister using yt-dlp as a subprocess.
// It retrieves the full video history of a channel in one flat-playlist call.
type YtdlpLister struct {
	// Path is the path to the yt-dlp executable. Defaults to "yt-dlp".
	Path string

	// Timeout is the maximum time to wait for yt-dlp. Defaults to 10 minutes.
	Timeout time.Duration

	// ExtraArgs are additional arguments to pass to yt-dlp.
	ExtraArgs []string

	// FetchDetails resolves each video individually to fill in descriptions
	// and upload dates that flat listings omit. One extra yt-dlp call per video.
	FetchDetails bool

	// Logger receives debug output. Nil disables logging.
	Logger *slog.Logger
}

// NewYtdlpLister creates a new yt-dlp based video lister.
func NewYtdlpLister() *YtdlpLister {
	return &YtdlpLister{
		Path:    defaultYtdlpPath,
		Timeout: defaultYtdlpTimeout,
	}
}

// ListChannel fetches all videos from the specified channel using yt-dlp.
func (y *YtdlpLister) ListChannel(ctx context.Context, channelURL string, opts *ListOptions) (*ChannelListing, error) {
	if err := y.checkInstalled(ctx, channelURL); err != nil {
		return nil, err
	}

	var contentType ContentType
	if opts != nil {
		contentType = opts.ContentType
	}

	url, err := NormalizeChannelURL(channelURL, contentType)
	if err != nil {
		return nil, &ListerError{Source: SourceYtdlp, Channel: channelURL, Err: err}
	}

	args := []string{
		"--flat-playlist",
		"-J", // JSON output
		"--no-warnings",
		"--skip-download",
	}
	args = append(args, y.ExtraArgs...)
	args = append(args, url)

	timeout := y.Timeout
	if timeout == 0 {
		timeout = defaultYtdlpTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	y.logger().Debug("running yt-dlp", "path", y.path(), "url", url)

	cmd := exec.CommandContext(cmdCtx, y.path(), args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
			return nil, &ListerError{Source: SourceYtdlp, Channel: channelURL, Err: ErrNetworkTimeout}
		}
		if errors.Is(cmdCtx.Err(), context.Canceled) {
			return nil, &ListerError{Source: SourceYtdlp, Channel: channelURL, Err: context.Canceled}
		}
		return nil, &ListerError{Source: SourceYtdlp, Channel: channelURL, Err: classifyYtdlpFailure(err, stderr.String())}
	}

	listing, err := parseYtdlpOutput(stdout.Bytes())
	if err != nil {
		return nil, &ListerError{Source: SourceYtdlp, Channel: channelURL, Err: err}
	}

	if y.FetchDetails {
		if err := y.enrich(ctx, listing.Videos); err != nil {
			return nil, &ListerError{Source: SourceYtdlp, Channel: channelURL, Err: err}
		}
	}
	return listing, nil
}

// checkInstalled verifies that yt-dlp is available.
func (y *YtdlpLister) checkInstalled(ctx context.Context, channelURL string) error {
	cmd := exec.CommandContext(ctx, y.path(), "--version")
	if err := cmd.Run(); err != nil {
		return &ListerError{Source: SourceYtdlp, Channel: channelURL, Err: ErrYtdlpNotInstalled}
	}
	return nil
}

func (y *YtdlpLister) path() string {
	if y.Path != "" {
		return y.Path
	}
	return defaultYtdlpPath
}

func (y *YtdlpLister) logger() *slog.Logger {
	if y.Logger != nil {
		return y.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Phrases in yt-dlp's stderr that identify a failure class. Matching is done
// on the lowercased message.
var (
	privatePhrases   = []string{"is private", "private video", "private channel", "members-only"}
	notFoundPhrases  = []string{"does not exist", "not found", "http error 404"}
	rateLimitPhrases = []string{"http error 429", "too many requests", "rate limit", "rate-limit", "ratelimit"}
)

// classifyYtdlpFailure maps common yt-dlp stderr messages to sentinel errors.
// The trimmed stderr is kept in the returned error either way.
func classifyYtdlpFailure(runErr error, stderr string) error {
	msg := strings.TrimSpace(stderr)
	lower := strings.ToLower(msg)

	var sentinel error
	switch {
	case containsAny(lower, privatePhrases):
		sentinel = ErrChannelPrivate
	case containsAny(lower, rateLimitPhrases):
		sentinel = ErrRateLimited
	case containsAny(lower, notFoundPhrases):
		sentinel = ErrChannelNotFound
	default:
		return fmt.Errorf("yt-dlp failed: %w: %s", runErr, msg)
	}

	if msg == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// ytdlpEntry represents a playlist or video node in yt-dlp's JSON output.
// Channel URLs without a tab produce a playlist whose entries are the tab
// playlists (Videos, Shorts, Live), each holding the actual videos.
type ytdlpEntry struct {
	Type             string           `json:"_type"`
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Description      *string          `json:"description"`
	Duration         float64          `json:"duration"` // seconds
	ViewCount        int64            `json:"view_count"`
	Channel          string           `json:"channel"`
	Uploader         string           `json:"uploader"`
	ChannelID        string           `json:"channel_id"`
	UploadDate       string           `json:"upload_date"`       // YYYYMMDD format
	Timestamp        int64            `json:"timestamp"`         // Unix timestamp
	ReleaseTimestamp int64            `json:"release_timestamp"` // Unix timestamp
	Thumbnail        string           `json:"thumbnail"`
	Thumbnails       []ytdlpThumbnail `json:"thumbnails"`
	Entries          []*ytdlpEntry    `json:"entries"`
}

type ytdlpThumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// parseYtdlpOutput parses yt-dlp's JSON output into a ChannelListing.
func parseYtdlpOutput(data []byte) (*ChannelListing, error) {
	var root ytdlpEntry
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	if root.ID == "" && root.Title == "" && root.Entries == nil {
		return nil, errors.New("parse yt-dlp output: empty channel information")
	}

	listing := &ChannelListing{
		ChannelID:   root.ChannelID,
		ChannelName: coalesce(root.Channel, root.Uploader, "unknown"),
	}

	videos := make([]VideoInfo, 0, len(root.Entries))
	for _, entry := range root.Entries {
		if entry == nil {
			continue
		}
		if entry.Type == "playlist" {
			tab := tabName(entry.Title)
			for _, sub := range entry.Entries {
				if sub == nil || sub.ID == "" {
					continue
				}
				videos = append(videos, toVideoInfo(sub, &root, tab))
			}
			continue
		}
		if entry.ID == "" {
			continue
		}
		videos = append(videos, toVideoInfo(entry, &root, ""))
	}

	listing.Videos = videos
	return listing, nil
}

func toVideoInfo(entry, root *ytdlpEntry, tab string) VideoInfo {
	var description string
	if entry.Description != nil {
		description = *entry.Description
	}
	return VideoInfo{
		ID:          entry.ID,
		Title:       entry.Title,
		ChannelID:   coalesce(entry.ChannelID, root.ChannelID),
		ChannelName: coalesce(entry.Channel, entry.Uploader, root.Channel, root.Uploader),
		Duration:    time.Duration(entry.Duration * float64(time.Second)),
		Description: description,
		ViewCount:   entry.ViewCount,
		Thumbnail:   bestThumbnail(entry),
		Published:   parseYtdlpDate(entry),
		Type:        tab,
	}
}

// tabName derives the tab from a tab playlist title like "Channel - Shorts".
func tabName(title string) string {
	lower := strings.ToLower(title)
	switch {
	case strings.HasSuffix(lower, "- shorts"):
		return "shorts"
	case strings.HasSuffix(lower, "- live"):
		return "streams"
	case strings.HasSuffix(lower, "- videos"):
		return "videos"
	}
	return ""
}

// parseYtdlpDate extracts the published time from a yt-dlp entry.
func parseYtdlpDate(entry *ytdlpEntry) time.Time {
	if entry.Timestamp > 0 {
		return time.Unix(entry.Timestamp, 0).UTC()
	}

	// Fall back to upload_date (YYYYMMDD)
	if entry.UploadDate != "" {
		t, err := time.Parse("20060102", entry.UploadDate)
		if err == nil {
			return t
		}
	}

	if entry.ReleaseTimestamp > 0 {
		return time.Unix(entry.ReleaseTimestamp, 0).UTC()
	}

	return time.Time{}
}

// bestThumbnail returns the best quality thumbnail URL.
func bestThumbnail(entry *ytdlpEntry) string {
	if entry.Thumbnail != "" {
		return entry.Thumbnail
	}

	var best ytdlpThumbnail
	for _, t := range entry.Thumbnails {
		if t.Width*t.Height > best.Width*best.Height {
			best = t
		}
	}
	return best.URL
}
