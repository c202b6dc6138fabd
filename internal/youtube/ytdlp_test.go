package youtube

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestNormalizeChannelURL(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		contentType ContentType
		want        string
	}{
		{
			name:  "channel ID only",
			input: "UCuAXFkgsw1L7xaCfnd5JJOw",
			want:  "https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw",
		},
		{
			name:        "channel ID videos tab",
			input:       "UCuAXFkgsw1L7xaCfnd5JJOw",
			contentType: ContentTypeVideos,
			want:        "https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw/videos",
		},
		{
			name:  "bare handle",
			input: "@AlexHormozi",
			want:  "https://www.youtube.com/@AlexHormozi",
		},
		{
			name:  "handle URL with trailing slash",
			input: "https://www.youtube.com/@testchannel/",
			want:  "https://www.youtube.com/@testchannel",
		},
		{
			name:        "videos tab replaced by streams",
			input:       "https://www.youtube.com/@testchannel/videos",
			contentType: ContentTypeStreams,
			want:        "https://www.youtube.com/@testchannel/streams",
		},
		{
			name:        "shorts tab",
			input:       "https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw",
			contentType: ContentTypeShorts,
			want:        "https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw/shorts",
		},
		{
			name:  "scheme added",
			input: "youtube.com/@testchannel",
			want:  "https://youtube.com/@testchannel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeChannelURL(tt.input, tt.contentType)
			if err != nil {
				t.Fatalf("NormalizeChannelURL(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeChannelURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeChannelURL_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "not a channel"} {
		if _, err := NormalizeChannelURL(input, ContentTypeAll); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("NormalizeChannelURL(%q) error = %v, want ErrInvalidURL", input, err)
		}
	}
}

func TestParseContentType(t *testing.T) {
	tests := map[string]ContentType{
		"":        ContentTypeAll,
		"all":     ContentTypeAll,
		"Videos":  ContentTypeVideos,
		"shorts":  ContentTypeShorts,
		"streams": ContentTypeStreams,
		"live":    ContentTypeStreams,
	}
	for input, want := range tests {
		got, err := ParseContentType(input)
		if err != nil {
			t.Fatalf("ParseContentType(%q) error = %v", input, err)
		}
		if got != want {
			t.Errorf("ParseContentType(%q) = %v, want %v", input, got, want)
		}
	}

	if _, err := ParseContentType("podcasts"); err == nil {
		t.Error("ParseContentType(podcasts) expected error")
	}
}

func TestParseYtdlpOutput(t *testing.T) {
	listing, err := parseYtdlpOutput([]byte(sampleYtdlpOutput))
	if err != nil {
		t.Fatalf("parseYtdlpOutput() error = %v", err)
	}

	if listing.ChannelName != "Test Channel" {
		t.Errorf("ChannelName = %q, want %q", listing.ChannelName, "Test Channel")
	}
	if len(listing.Videos) != 2 {
		t.Fatalf("len(Videos) = %d, want 2", len(listing.Videos))
	}

	v := listing.Videos[0]
	if v.ID != "dQw4w9WgXcQ" {
		t.Errorf("video.ID = %q, want %q", v.ID, "dQw4w9WgXcQ")
	}
	if v.Title != "Test Video 1" {
		t.Errorf("video.Title = %q, want %q", v.Title, "Test Video 1")
	}
	if v.Duration != 212*time.Second {
		t.Errorf("video.Duration = %v, want %v", v.Duration, 212*time.Second)
	}
	if v.ChannelID != "UCuAXFkgsw1L7xaCfnd5JJOw" {
		t.Errorf("video.ChannelID = %q, want %q", v.ChannelID, "UCuAXFkgsw1L7xaCfnd5JJOw")
	}
	if v.VideoURL() != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("video.VideoURL() = %q", v.VideoURL())
	}
}

func TestParseYtdlpOutput_NestedTabs(t *testing.T) {
	listing, err := parseYtdlpOutput([]byte(sampleTabbedOutput))
	if err != nil {
		t.Fatalf("parseYtdlpOutput() error = %v", err)
	}

	wantIDs := []string{"vid1", "vid2", "short1", "live1"}
	if len(listing.Videos) != len(wantIDs) {
		t.Fatalf("len(Videos) = %d, want %d", len(listing.Videos), len(wantIDs))
	}
	for i, id := range wantIDs {
		if listing.Videos[i].ID != id {
			t.Errorf("Videos[%d].ID = %q, want %q", i, listing.Videos[i].ID, id)
		}
	}
	if listing.Videos[2].Type != "shorts" {
		t.Errorf("Videos[2].Type = %q, want shorts", listing.Videos[2].Type)
	}
	if listing.Videos[3].Type != "streams" {
		t.Errorf("Videos[3].Type = %q, want streams", listing.Videos[3].Type)
	}
	if listing.ChannelName != "Alex Hormozi" {
		t.Errorf("ChannelName = %q, want channel field preferred", listing.ChannelName)
	}
	if listing.Videos[1].Description != "" {
		t.Errorf("null description = %q, want empty", listing.Videos[1].Description)
	}
}

func TestParseYtdlpOutput_EmptyChannel(t *testing.T) {
	listing, err := parseYtdlpOutput([]byte(`{"id": "UCempty", "title": "Empty", "entries": []}`))
	if err != nil {
		t.Fatalf("parseYtdlpOutput() error = %v", err)
	}
	if len(listing.Videos) != 0 {
		t.Errorf("len(Videos) = %d, want 0", len(listing.Videos))
	}
	if listing.ChannelName != "unknown" {
		t.Errorf("ChannelName = %q, want unknown", listing.ChannelName)
	}
}

func TestParseYtdlpOutput_Invalid(t *testing.T) {
	for _, data := range []string{"", "not json", "null"} {
		if _, err := parseYtdlpOutput([]byte(data)); err == nil {
			t.Errorf("parseYtdlpOutput(%q) expected error", data)
		}
	}
}

func TestParseYtdlpDate(t *testing.T) {
	tests := []struct {
		name  string
		entry ytdlpEntry
		want  time.Time
	}{
		{
			name:  "timestamp",
			entry: ytdlpEntry{Timestamp: 1704067200},
			want:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "upload_date",
			entry: ytdlpEntry{UploadDate: "20240115"},
			want:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "timestamp preferred over upload_date",
			entry: ytdlpEntry{Timestamp: 1704067200, UploadDate: "20240115"},
			want:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "release_timestamp fallback",
			entry: ytdlpEntry{ReleaseTimestamp: 1704067200},
			want:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "no date",
			entry: ytdlpEntry{},
			want:  time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseYtdlpDate(&tt.entry)
			if !got.Equal(tt.want) {
				t.Errorf("parseYtdlpDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBestThumbnail(t *testing.T) {
	entry := ytdlpEntry{
		Thumbnails: []ytdlpThumbnail{
			{URL: "small.jpg", Width: 120, Height: 90},
			{URL: "large.jpg", Width: 1280, Height: 720},
			{URL: "medium.jpg", Width: 320, Height: 180},
		},
	}

	if got := bestThumbnail(&entry); got != "large.jpg" {
		t.Errorf("bestThumbnail() = %q, want %q", got, "large.jpg")
	}

	entry.Thumbnail = "direct.jpg"
	if got := bestThumbnail(&entry); got != "direct.jpg" {
		t.Errorf("bestThumbnail() with direct = %q, want %q", got, "direct.jpg")
	}
}

func TestClassifyYtdlpFailure(t *testing.T) {
	runErr := errors.New("exit status 1")
	tests := []struct {
		stderr string
		want   error
	}{
		{"ERROR: [youtube:tab] @nobody: This channel does not exist.", ErrChannelNotFound},
		{"ERROR: HTTP Error 404: Not Found", ErrChannelNotFound},
		{"ERROR: This channel is private", ErrChannelPrivate},
		{"ERROR: HTTP Error 429: Too Many Requests", ErrRateLimited},
		{"ERROR: [youtube] abc: Sign in to confirm you're not a bot. Rate limit exceeded", ErrRateLimited},
	}
	for _, tt := range tests {
		got := classifyYtdlpFailure(runErr, tt.stderr)
		if !errors.Is(got, tt.want) {
			t.Errorf("classifyYtdlpFailure(%q) = %v, want %v", tt.stderr, got, tt.want)
		}
		if !strings.Contains(got.Error(), strings.TrimSpace(tt.stderr)) {
			t.Errorf("classifyYtdlpFailure(%q) = %q, want stderr kept in message", tt.stderr, got)
		}
	}

	// Words that merely contain "rate" must not be read as throttling.
	for _, stderr := range []string{
		"ERROR: Unable to generate playlist data",
		"ERROR: separate stream extraction failed",
		"ERROR: could not get an accurate duration",
	} {
		got := classifyYtdlpFailure(runErr, stderr)
		if errors.Is(got, ErrRateLimited) {
			t.Errorf("classifyYtdlpFailure(%q) = %v, want no rate limit", stderr, got)
		}
		if !errors.Is(got, runErr) || !strings.Contains(got.Error(), stderr) {
			t.Errorf("classifyYtdlpFailure(%q) = %v, want wrapped run error with stderr", stderr, got)
		}
	}

	got := classifyYtdlpFailure(runErr, "ERROR: something odd")
	if !errors.Is(got, runErr) {
		t.Errorf("classifyYtdlpFailure() = %v, want wrapped run error", got)
	}
}

func TestYtdlpLister_NotInstalled(t *testing.T) {
	lister := &YtdlpLister{Path: "/nonexistent/path/to/yt-dlp"}

	_, err := lister.ListChannel(context.Background(), "https://www.youtube.com/@test", nil)
	if !errors.Is(err, ErrYtdlpNotInstalled) {
		t.Errorf("ListChannel() error = %v, want ErrYtdlpNotInstalled", err)
	}

	var listerErr *ListerError
	if !errors.As(err, &listerErr) {
		t.Fatalf("ListChannel() error = %T, want *ListerError", err)
	}
	if listerErr.Channel != "https://www.youtube.com/@test" {
		t.Errorf("ListerError.Channel = %q, want the requested channel", listerErr.Channel)
	}
}

// writeMockYtdlp installs a shell script that mimics yt-dlp: --version
// succeeds, single-video lookups print detailsJSON, anything else prints
// listingJSON (or fails with stderr when exitCode is non-zero).
func writeMockYtdlp(t *testing.T, listingJSON, detailsJSON, stderr string, exitCode int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("mock yt-dlp requires a POSIX shell")
	}

	dir := t.TempDir()
	listingPath := filepath.Join(dir, "listing.json")
	detailsPath := filepath.Join(dir, "details.json")
	if err := os.WriteFile(listingPath, []byte(listingJSON), 0o644); err != nil {
		t.Fatalf("write listing fixture: %v", err)
	}
	if err := os.WriteFile(detailsPath, []byte(detailsJSON), 0o644); err != nil {
		t.Fatalf("write details fixture: %v", err)
	}

	script := `#!/bin/sh
if [ "$1" = "--version" ]; then
    echo "2024.01.01"
    exit 0
fi
for arg in "$@"; do
    case "$arg" in
        *watch\?v=*) cat "` + detailsPath + `"; exit 0 ;;
    esac
done
if [ ` + strconv.Itoa(exitCode) + ` -ne 0 ]; then
    echo "` + stderr + `" >&2
    exit ` + strconv.Itoa(exitCode) + `
fi
cat "` + listingPath + `"
`
	mockPath := filepath.Join(dir, "yt-dlp")
	if err := os.WriteFile(mockPath, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to create mock yt-dlp: %v", err)
	}
	return mockPath
}

func TestYtdlpLister_ListChannel(t *testing.T) {
	lister := &YtdlpLister{
		Path:    writeMockYtdlp(t, sampleYtdlpOutput, "{}", "", 0),
		Timeout: 30 * time.Second,
	}

	listing, err := lister.ListChannel(context.Background(), "https://www.youtube.com/@test", nil)
	if err != nil {
		t.Fatalf("ListChannel() error = %v", err)
	}
	if len(listing.Videos) != 2 {
		t.Errorf("ListChannel() len = %d, want 2", len(listing.Videos))
	}
}

func TestYtdlpLister_ChannelNotFound(t *testing.T) {
	lister := &YtdlpLister{
		Path: writeMockYtdlp(t, "", "{}", "ERROR: This channel does not exist.", 1),
	}

	_, err := lister.ListChannel(context.Background(), "https://www.youtube.com/@missing", nil)
	if !errors.Is(err, ErrChannelNotFound) {
		t.Fatalf("ListChannel() error = %v, want ErrChannelNotFound", err)
	}

	var listerErr *ListerError
	if !errors.As(err, &listerErr) {
		t.Fatalf("ListChannel() error type = %T, want *ListerError", err)
	}
	if listerErr.Channel != "https://www.youtube.com/@missing" || listerErr.Source != SourceYtdlp {
		t.Errorf("ListerError = %+v, want channel and source populated", listerErr)
	}
}

func TestYtdlpLister_FetchDetails(t *testing.T) {
	details := `{"id": "vid2", "title": "Second", "description": "filled in", "upload_date": "20240110"}`
	lister := &YtdlpLister{
		Path:         writeMockYtdlp(t, sampleTabbedOutput, details, "", 0),
		FetchDetails: true,
	}

	listing, err := lister.ListChannel(context.Background(), "@AlexHormozi", nil)
	if err != nil {
		t.Fatalf("ListChannel() error = %v", err)
	}

	v := listing.Videos[1]
	if v.Description != "filled in" {
		t.Errorf("Description = %q, want %q", v.Description, "filled in")
	}
	if !v.Published.Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Published = %v, want 2024-01-10", v.Published)
	}
}

func TestYtdlpLister_Canceled(t *testing.T) {
	lister := &YtdlpLister{Path: writeMockYtdlp(t, sampleYtdlpOutput, "{}", "", 0)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := lister.ListChannel(ctx, "@test", nil); err == nil {
		t.Error("ListChannel() with canceled context expected error")
	}
}

const sampleYtdlpOutput = `{
  "id": "UCuAXFkgsw1L7xaCfnd5JJOw",
  "title": "Test Channel - Videos",
  "uploader": "Test Channel",
  "uploader_id": "@testchannel",
  "channel_id": "UCuAXFkgsw1L7xaCfnd5JJOw",
  "channel_url": "https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw",
  "entries": [
    {
      "id": "dQw4w9WgXcQ",
      "title": "Test Video 1",
      "description": "This is test video 1",
      "duration": 212,
      "view_count": 1000000,
      "uploader": "Test Channel",
      "channel_id": "UCuAXFkgsw1L7xaCfnd5JJOw",
      "upload_date": "20250110",
      "timestamp": 1736505600,
      "thumbnail": "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg"
    },
    {
      "id": "test123abc",
      "title": "Test Video 2",
      "description": "This is test video 2",
      "duration": 300,
      "view_count": 5000,
      "uploader": "Test Channel",
      "channel_id": "UCuAXFkgsw1L7xaCfnd5JJOw",
      "upload_date": "20250109",
      "timestamp": 1736419200,
      "thumbnail": "https://i.ytimg.com/vi/test123abc/maxresdefault.jpg"
    }
  ]
}`

const sampleTabbedOutput = `{
  "id": "UCUyDOdBWhC1MCxEjC46d-zw",
  "title": "Alex Hormozi",
  "channel": "Alex Hormozi",
  "uploader": "AlexHormozi",
  "channel_id": "UCUyDOdBWhC1MCxEjC46d-zw",
  "_type": "playlist",
  "entries": [
    {
      "_type": "playlist",
      "id": "UCUyDOdBWhC1MCxEjC46d-zw",
      "title": "Alex Hormozi - Videos",
      "entries": [
        {"_type": "url", "id": "vid1", "title": "First", "description": "one", "timestamp": 1705276800},
        {"_type": "url", "id": "vid2", "title": "Second", "description": null},
        {"_type": "url", "id": "", "title": "No ID"},
        null
      ]
    },
    {
      "_type": "playlist",
      "id": "UCUyDOdBWhC1MCxEjC46d-zw",
      "title": "Alex Hormozi - Shorts",
      "entries": [
        {"_type": "url", "id": "short1", "title": "Short"}
      ]
    },
    {
      "_type": "playlist",
      "id": "UCUyDOdBWhC1MCxEjC46d-zw",
      "title": "Alex Hormozi - Live",
      "entries": [
        {"_type": "url", "id": "live1", "title": "Live"}
      ]
    },
    null
  ]
}`
