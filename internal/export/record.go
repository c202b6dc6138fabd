// Package export normalizes raw video metadata into spreadsheet rows and
// writes them to .xlsx files.
package export

import (
	"errors"
	"slices"
	"strings"
	"time"

	"ytextract/internal/youtube"
)

// ErrEmptyChannel indicates a channel listing contained no videos. It is a
// warning: the caller may still write a header-only sheet.
var ErrEmptyChannel = errors.New("export: channel has no videos")

// Columns is the fixed header row of every sheet.
var Columns = []string{"ID", "Title", "Description", "URL"}

// VideoRecord is the normalized form of one video.
type VideoRecord struct {
	ID          string
	Title       string
	Description string
	URL         string
	// UploadDate orders records; the zero value means unknown and sorts last.
	UploadDate time.Time
}

// Row returns the record's cells in Columns order.
func (r VideoRecord) Row() []string {
	return []string{r.ID, r.Title, r.Description, r.URL}
}

// Normalize converts raw entries into records. Entries without an ID are
// dropped and a repeated ID keeps its first occurrence, so IDs are unique
// within the result. Source order is preserved.
func Normalize(videos []youtube.VideoInfo) []VideoRecord {
	records := make([]VideoRecord, 0, len(videos))
	seen := make(map[string]struct{}, len(videos))
	for _, v := range videos {
		id := strings.TrimSpace(v.ID)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		records = append(records, VideoRecord{
			ID:          id,
			Title:       v.Title,
			Description: v.Description,
			URL:         youtube.VideoURL(id),
			UploadDate:  v.Published,
		})
	}
	return records
}

// SortByUploadDate orders records newest first. The sort is stable: records
// with equal (or unknown) dates keep their relative order.
func SortByUploadDate(records []VideoRecord) {
	slices.SortStableFunc(records, func(a, b VideoRecord) int {
		return b.UploadDate.Compare(a.UploadDate)
	})
}
