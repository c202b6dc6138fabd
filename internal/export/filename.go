package export

import (
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultFilenameFormat mirrors the output naming used when none is configured.
	DefaultFilenameFormat = "{channel_name}_videos.xlsx"
	// DateLayout renders the {date} token.
	DateLayout = "2006-01-02"

	maxChannelNameRunes = 100
	fallbackChannelName = "channel"
)

// RenderFilename substitutes {channel_name} and {date} in format. The channel
// name is sanitized for use in a file name; a missing .xlsx extension is added.
func RenderFilename(format, channelName string, date time.Time) string {
	if strings.TrimSpace(format) == "" {
		format = DefaultFilenameFormat
	}

	name := strings.NewReplacer(
		"{channel_name}", SanitizeFilename(channelName),
		"{date}", date.Format(DateLayout),
	).Replace(format)

	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		name += ".xlsx"
	}
	return name
}

// SanitizeFilename replaces characters that are invalid in file names on
// common filesystems, trims leading/trailing dots and spaces, and caps the
// length. It never returns an empty string.
func SanitizeFilename(name string) string {
	name = norm.NFC.String(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if strings.ContainsRune(`<>:"/\|?*`, r) || unicode.IsControl(r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}

	cleaned := strings.Trim(b.String(), ". ")
	if runes := []rune(cleaned); len(runes) > maxChannelNameRunes {
		cleaned = strings.TrimRight(string(runes[:maxChannelNameRunes]), ". ")
	}
	if cleaned == "" {
		return fallbackChannelName
	}
	return cleaned
}
