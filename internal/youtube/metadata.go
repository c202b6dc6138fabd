package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Flat listings carry neither descriptions nor upload dates for most tabs.
// When YtdlpLister.FetchDetails is set, each video is resolved individually
// so both columns can be filled in.

// videoDetails is the subset of yt-dlp's per-video JSON we consume.
type videoDetails struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	UploadDate  string  `json:"upload_date"`
	Timestamp   int64   `json:"timestamp"`
	Duration    float64 `json:"duration"`
	ViewCount   int64   `json:"view_count"`
}

// fetchDetails retrieves metadata for a single video using yt-dlp.
func (y *YtdlpLister) fetchDetails(ctx context.Context, videoID string) (*videoDetails, error) {
	cmd := exec.CommandContext(ctx, y.path(), "-J", "--no-warnings", "--skip-download", VideoURL(videoID))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("fetch metadata for %s: %w: %s", videoID, err, strings.TrimSpace(stderr.String()))
	}

	var details videoDetails
	if err := json.Unmarshal(stdout.Bytes(), &details); err != nil {
		return nil, fmt.Errorf("parse metadata JSON for %s: %w", videoID, err)
	}
	if details.ID == "" {
		return nil, fmt.Errorf("invalid metadata for %s: missing id", videoID)
	}
	return &details, nil
}

// enrich fills missing descriptions and dates in place. A video whose
// lookup fails keeps its flat-listing data; only cancellation aborts.
func (y *YtdlpLister) enrich(ctx context.Context, videos []VideoInfo) error {
	for i := range videos {
		v := &videos[i]
		if v.Description != "" && !v.Published.IsZero() {
			continue
		}

		details, err := y.fetchDetails(ctx, v.ID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			y.logger().Warn("video metadata unavailable", "video_id", v.ID, "error", err)
			continue
		}

		if v.Description == "" && details.Description != nil {
			v.Description = *details.Description
		}
		if v.Title == "" {
			v.Title = details.Title
		}
		if v.Published.IsZero() {
			v.Published = parseYtdlpDate(&ytdlpEntry{Timestamp: details.Timestamp, UploadDate: details.UploadDate})
		}
		if v.Duration == 0 && details.Duration > 0 {
			v.Duration = time.Duration(details.Duration * float64(time.Second))
		}
		if v.ViewCount == 0 {
			v.ViewCount = details.ViewCount
		}
	}
	return nil
}
