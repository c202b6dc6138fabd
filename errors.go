package ytextract

import (
	"ytextract/internal/export"
	"ytextract/internal/extract"
	"ytextract/internal/storage"
	"ytextract/internal/youtube"
)

// Error types exported for library users.
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(err, ytextract.ErrChannelPrivate) {
//		fmt.Println("Channel is private")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var writeErr *ytextract.WriteError
//	if errors.As(err, &writeErr) {
//		fmt.Printf("Writing %s failed: %v\n", writeErr.Path, writeErr.Err)
//	}
type (
	// ListerError wraps a failure to list a channel's videos.
	ListerError = youtube.ListerError
	// WriteError wraps a failure to write a spreadsheet.
	WriteError = export.WriteError
	// ChannelError ties a failure to a configured channel.
	ChannelError = extract.ChannelError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrChannelNotFound indicates the YouTube channel does not exist.
	ErrChannelNotFound = youtube.ErrChannelNotFound
	// ErrChannelPrivate indicates the channel or its uploads are not public.
	ErrChannelPrivate = youtube.ErrChannelPrivate
	// ErrRateLimited indicates the operation was rate limited.
	ErrRateLimited = youtube.ErrRateLimited
	// ErrNetworkTimeout indicates a network timeout occurred.
	ErrNetworkTimeout = youtube.ErrNetworkTimeout
	// ErrInvalidURL indicates the provided URL is invalid.
	ErrInvalidURL = youtube.ErrInvalidURL
	// ErrYtdlpNotInstalled indicates yt-dlp binary was not found.
	ErrYtdlpNotInstalled = youtube.ErrYtdlpNotInstalled
	// ErrAPIKeyMissing indicates the api source was chosen without a key.
	ErrAPIKeyMissing = youtube.ErrAPIKeyMissing

	// ErrEmptyChannel marks a channel that listed no videos. It is logged,
	// never returned as a failure.
	ErrEmptyChannel = export.ErrEmptyChannel
	// ErrOutputConflict indicates two channels of one run rendered the same
	// file name; the later channel is not written.
	ErrOutputConflict = extract.ErrOutputConflict
	// ErrLockTimeout indicates another process kept the output file locked.
	ErrLockTimeout = storage.ErrLockTimeout
)
