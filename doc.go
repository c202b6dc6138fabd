// Package ytextract exports the video catalogue of YouTube channels to Excel
// spreadsheets.
//
// Overview
//
// ytextract provides high-level convenience functions for the common cases:
//
//   - ListVideos: Fetch every video of a channel, newest first
//   - ExportChannel: Fetch a channel and write its .xlsx spreadsheet
//
// Quick Start
//
// Write a channel's videos to a spreadsheet:
//
//	ctx := context.Background()
//	n, err := ytextract.ExportChannel(ctx, "https://www.youtube.com/@AlexHormozi", "alex.xlsx", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("%d videos written\n", n)
//
// List videos without writing anything:
//
//	videos, err := ytextract.ListVideos(ctx, "@AlexHormozi", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, v := range videos {
//		fmt.Println(v.ID, v.Title)
//	}
//
// The spreadsheet has a single sheet named "Videos" with the columns ID,
// Title, Description and URL, one row per video sorted by upload date
// descending. A channel without videos produces a header-only sheet.
//
// Configuration
//
// The ytextract command reads channels and settings from a YAML or TOML file
// (ytextract.yaml or ~/.config/ytextract/ytextract.yaml by default).
// Environment variables override the file:
//
//   - YTEXTRACT_YTDLP_PATH: Path to yt-dlp executable
//   - YTEXTRACT_YTDLP_TIMEOUT: Timeout for one channel listing
//   - YTEXTRACT_SOURCE: ytdlp or api
//   - YTEXTRACT_OUTPUT_DIR: Directory for generated spreadsheets
//   - YTEXTRACT_LOG_LEVEL: debug, info, warn or error
//   - YOUTUBE_API_KEY: Data API key for the api source
//
// Error Handling
//
// Checking for sentinel errors:
//
//	if errors.Is(err, ytextract.ErrChannelNotFound) {
//		fmt.Println("Channel not found")
//	}
//
// Extracting wrapped error details:
//
//	var listerErr *ytextract.ListerError
//	if errors.As(err, &listerErr) {
//		fmt.Printf("Listing %s failed: %v\n", listerErr.Channel, listerErr.Err)
//	}
//
// Dependencies
//
// The default source requires yt-dlp in PATH or at Options.YtdlpPath.
//
// Install yt-dlp: https://github.com/yt-dlp/yt-dlp
package ytextract
