// Package youtube resolves the public video list of a YouTube channel.
//
// Two extraction capabilities are available: yt-dlp run as a subprocess
// (YtdlpLister) and the YouTube Data API v3 (APILister). Both exhaust the
// channel's listings internally; callers never see pagination state.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Sentinel errors for video listing operations.
var (
	ErrChannelNotFound   = errors.New("youtube: channel not found")
	ErrChannelPrivate    = errors.New("youtube: channel is private")
	ErrRateLimited       = errors.New("youtube: rate limited")
	ErrNetworkTimeout    = errors.New("youtube: network timeout")
	ErrInvalidURL        = errors.New("youtube: invalid URL")
	ErrYtdlpNotInstalled = errors.New("youtube: yt-dlp not installed")
	ErrAPIKeyMissing     = errors.New("youtube: api key required")
)

// Source names reported in ListerError.Source.
const (
	SourceYtdlp = "ytdlp"
	SourceAPI   = "api"
)

// VideoLister defines the interface for fetching the video list of a channel.
type VideoLister interface {
	// ListChannel fetches every public video of the channel.
	// The URL can be a channel URL, handle (@username), or channel ID.
	ListChannel(ctx context.Context, channelURL string, opts *ListOptions) (*ChannelListing, error)
}

// ListOptions configures video listing behavior.
type ListOptions struct {
	// ContentType selects which channel tab to list.
	// Default is ContentTypeAll.
	ContentType ContentType
}

// ContentType specifies what type of content to list.
type ContentType int

const (
	// ContentTypeAll lists every tab of the channel (videos, shorts, live).
	ContentTypeAll ContentType = iota
	// ContentTypeVideos lists regular videos.
	ContentTypeVideos
	// ContentTypeShorts lists YouTube Shorts.
	ContentTypeShorts
	// ContentTypeStreams lists live streams.
	ContentTypeStreams
)

// ParseContentType maps a configuration value to a ContentType.
func ParseContentType(s string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ContentTypeAll, nil
	case "videos":
		return ContentTypeVideos, nil
	case "shorts":
		return ContentTypeShorts, nil
	case "streams", "live":
		return ContentTypeStreams, nil
	default:
		return 0, fmt.Errorf("youtube: unknown content type %q", s)
	}
}

// String returns the configuration spelling of the content type.
func (c ContentType) String() string {
	switch c {
	case ContentTypeVideos:
		return "videos"
	case ContentTypeShorts:
		return "shorts"
	case ContentTypeStreams:
		return "streams"
	default:
		return "all"
	}
}

func (c ContentType) tab() string {
	if c == ContentTypeAll {
		return ""
	}
	return c.String()
}

// ChannelListing is the result of listing one channel.
type ChannelListing struct {
	// ChannelID is the YouTube channel ID, when the source reports it.
	ChannelID string
	// ChannelName is the channel's display name.
	ChannelName string
	// Videos holds one entry per video in source order.
	Videos []VideoInfo
}

// VideoInfo contains the raw metadata of a YouTube video as reported by the source.
type VideoInfo struct {
	// ID is the YouTube video ID (e.g., "dQw4w9WgXcQ").
	ID string `json:"id"`

	// Title is the video title.
	Title string `json:"title"`

	// ChannelID is the YouTube channel ID (e.g., "UCuAXFkgsw1L7xaCfnd5JJOw").
	ChannelID string `json:"channel_id"`

	// ChannelName is the display name of the channel.
	ChannelName string `json:"channel_name"`

	// Published is when the video was published. Zero when the source omits it,
	// which is common for yt-dlp flat listings.
	Published time.Time `json:"published"`

	// Duration is the video length. May be zero for live streams.
	Duration time.Duration `json:"duration,omitempty"`

	// Description is the video description. Often empty in flat listings.
	Description string `json:"description,omitempty"`

	// Thumbnail is the URL to the video thumbnail image.
	Thumbnail string `json:"thumbnail,omitempty"`

	// ViewCount is the number of views. May be zero if not available.
	ViewCount int64 `json:"view_count,omitempty"`

	// Type is the tab the entry came from ("videos", "shorts", "streams"), if known.
	Type string `json:"type,omitempty"`
}

// VideoURL returns the full YouTube URL for this video.
func (v VideoInfo) VideoURL() string {
	return VideoURL(v.ID)
}

// VideoURL returns the watch URL for a video ID.
func VideoURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// ListerError wraps listing errors with context about what failed.
// Use errors.As() to extract this error type and get operation details:
//
//	var listerErr *youtube.ListerError
//	if errors.As(err, &listerErr) {
//		fmt.Printf("Failed to list %s via %s: %v\n", listerErr.Channel, listerErr.Source, listerErr.Err)
//	}
type ListerError struct {
	// Source indicates which lister produced the error ("ytdlp", "api").
	Source string
	// Channel is the channel URL or ID that was being listed.
	Channel string
	// Err is the underlying error that occurred.
	Err error
}

// Error returns a string representation of the listing error.
func (e *ListerError) Error() string {
	return "youtube: " + e.Source + " listing " + e.Channel + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *ListerError) Unwrap() error { return e.Err }

// channelIDRegex matches YouTube channel IDs (UC followed by 22 base64 chars).
var channelIDRegex = regexp.MustCompile(`^UC[a-zA-Z0-9_-]{22}$`)

// NormalizeChannelURL turns a channel ID, handle or URL into a channel URL
// pointing at the tab selected by contentType.
func NormalizeChannelURL(input string, contentType ContentType) (string, error) {
	url := strings.TrimSpace(input)
	if url == "" {
		return "", ErrInvalidURL
	}

	switch {
	case channelIDRegex.MatchString(url):
		url = "https://www.youtube.com/channel/" + url
	case strings.HasPrefix(url, "@"):
		url = "https://www.youtube.com/" + url
	case !strings.Contains(url, "://"):
		if !strings.Contains(url, "youtube.com") {
			return "", fmt.Errorf("%w: %q", ErrInvalidURL, input)
		}
		url = "https://" + url
	}

	url = strings.TrimSuffix(url, "/")
	for _, known := range []string{"/videos", "/shorts", "/streams", "/featured"} {
		if strings.HasSuffix(url, known) {
			url = strings.TrimSuffix(url, known)
			break
		}
	}

	if tab := contentType.tab(); tab != "" {
		url += "/" + tab
	}
	return url, nil
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
