package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const playlistPageSize = 50

// APILister implements VideoLister using YouTube Data API v3.
// It walks the channel's uploads playlist page by page until exhausted.
type APILister struct {
	service *youtube.Service

	// Logger receives per-page debug output. Nil disables logging.
	Logger *slog.Logger
}

// NewAPILister creates a new YouTube Data API v3-based video lister.
// Extra client options (endpoint, HTTP client) are appended after the API key.
func NewAPILister(ctx context.Context, apiKey string, opts ...option.ClientOption) (*APILister, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrAPIKeyMissing
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &APILister{service: service}, nil
}

// ListChannel fetches every upload of the channel via the Data API.
// ContentType is ignored: the uploads playlist holds all public uploads.
func (a *APILister) ListChannel(ctx context.Context, channelURL string, _ *ListOptions) (*ChannelListing, error) {
	call, err := a.channelLookup(channelURL)
	if err != nil {
		return nil, &ListerError{Source: SourceAPI, Channel: channelURL, Err: err}
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, &ListerError{Source: SourceAPI, Channel: channelURL, Err: classifyAPIError(ctx, err)}
	}
	if len(resp.Items) == 0 {
		return nil, &ListerError{Source: SourceAPI, Channel: channelURL, Err: ErrChannelNotFound}
	}

	channel := resp.Items[0]
	listing := &ChannelListing{ChannelID: channel.Id}
	if channel.Snippet != nil {
		listing.ChannelName = channel.Snippet.Title
	}
	if channel.ContentDetails == nil || channel.ContentDetails.RelatedPlaylists == nil ||
		channel.ContentDetails.RelatedPlaylists.Uploads == "" {
		return nil, &ListerError{Source: SourceAPI, Channel: channelURL, Err: ErrChannelPrivate}
	}

	videos, err := a.listPlaylistVideos(ctx, channel.ContentDetails.RelatedPlaylists.Uploads, listing)
	if err != nil {
		return nil, &ListerError{Source: SourceAPI, Channel: channelURL, Err: err}
	}
	listing.Videos = videos
	return listing, nil
}

// channelLookup builds the channels.list call for a channel ID, URL or handle.
func (a *APILister) channelLookup(input string) (*youtube.ChannelsListCall, error) {
	call := a.service.Channels.List([]string{"snippet", "contentDetails"})
	ref := strings.TrimSpace(input)
	ref = strings.TrimPrefix(ref, "https://")
	ref = strings.TrimPrefix(ref, "http://")
	ref = strings.TrimPrefix(ref, "www.")
	ref = strings.TrimPrefix(ref, "m.")
	ref = strings.TrimPrefix(ref, "youtube.com/")
	ref = strings.SplitN(ref, "?", 2)[0]
	segments := strings.Split(strings.Trim(ref, "/"), "/")

	switch {
	case ref == "" || segments[0] == "":
		return nil, ErrInvalidURL
	case channelIDRegex.MatchString(segments[0]):
		return call.Id(segments[0]), nil
	case strings.HasPrefix(segments[0], "@"):
		return call.ForHandle(segments[0]), nil
	case segments[0] == "channel" && len(segments) > 1 && channelIDRegex.MatchString(segments[1]):
		return call.Id(segments[1]), nil
	case segments[0] == "user" && len(segments) > 1:
		return call.ForUsername(segments[1]), nil
	}
	return nil, fmt.Errorf("%w: cannot resolve channel from %q", ErrInvalidURL, input)
}

// listPlaylistVideos fetches all videos from a playlist using pagination.
func (a *APILister) listPlaylistVideos(ctx context.Context, playlistID string, channel *ChannelListing) ([]VideoInfo, error) {
	var videos []VideoInfo
	pageToken := ""
	for page := 1; ; page++ {
		call := a.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
			PlaylistId(playlistID).
			MaxResults(playlistPageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, classifyAPIError(ctx, err)
		}

		for _, item := range resp.Items {
			if item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
				continue
			}
			video := VideoInfo{
				ID:          item.ContentDetails.VideoId,
				ChannelID:   channel.ChannelID,
				ChannelName: channel.ChannelName,
				Published:   parseRFC3339(item.ContentDetails.VideoPublishedAt),
			}
			if item.Snippet != nil {
				video.Title = item.Snippet.Title
				video.Description = item.Snippet.Description
				if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.High != nil {
					video.Thumbnail = item.Snippet.Thumbnails.High.Url
				}
				if video.Published.IsZero() {
					video.Published = parseRFC3339(item.Snippet.PublishedAt)
				}
			}
			videos = append(videos, video)
		}

		a.logger().Debug("fetched playlist page", "playlist", playlistID, "page", page, "videos", len(videos))

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return videos, nil
		}
	}
}

func (a *APILister) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func parseRFC3339(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// classifyAPIError maps Data API failures to sentinel errors where possible.
func classifyAPIError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrNetworkTimeout
		}
		return ctx.Err()
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrChannelNotFound, apiErr.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
		case http.StatusForbidden:
			for _, item := range apiErr.Errors {
				if item.Reason == "quotaExceeded" || item.Reason == "rateLimitExceeded" {
					return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
				}
			}
			return fmt.Errorf("%w: %s", ErrChannelPrivate, apiErr.Message)
		}
	}
	return err
}
