package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"ytextract/internal/storage"
)

const (
	// SheetName is the worksheet holding the video rows.
	SheetName = "Videos"

	defaultLockTimeout = 5 * time.Second
)

// columnWidths are the widths of ID, Title, Description and URL.
var columnWidths = []float64{15, 50, 80, 50}

// Writer serializes records to an .xlsx workbook.
type Writer struct {
	// LockTimeout bounds the wait for another process writing the same path.
	LockTimeout time.Duration
}

// NewWriter returns a Writer with default settings.
func NewWriter() *Writer {
	return &Writer{LockTimeout: defaultLockTimeout}
}

// Write produces a workbook at path with a header row followed by one row
// per record, in the order given. The file appears atomically: on any error
// the destination is left untouched and a *WriteError is returned.
func (w *Writer) Write(ctx context.Context, path string, records []VideoRecord) (err error) {
	timeout := w.LockTimeout
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &WriteError{Path: path, Op: "mkdir", Err: err}
	}

	lock := storage.NewFileLock(path)
	if err := lock.Lock(ctx, timeout); err != nil {
		return &WriteError{Path: path, Op: "lock", Err: err}
	}
	defer lock.Unlock()

	book, err := buildWorkbook(records)
	if err != nil {
		return &WriteError{Path: path, Op: "build", Err: err}
	}
	defer book.Close()

	out, err := storage.NewAtomicWriter(path)
	if err != nil {
		return &WriteError{Path: path, Op: "create", Err: err}
	}
	defer out.Abort()

	if err := book.Write(out); err != nil {
		return &WriteError{Path: path, Op: "encode", Err: err}
	}
	if err := out.Commit(); err != nil {
		return &WriteError{Path: path, Op: "commit", Err: err}
	}
	return nil
}

func buildWorkbook(records []VideoRecord) (*excelize.File, error) {
	book := excelize.NewFile()
	ok := false
	defer func() {
		if !ok {
			book.Close()
		}
	}()

	if err := book.SetSheetName(book.GetSheetName(0), SheetName); err != nil {
		return nil, err
	}

	headerStyle, err := book.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	sw, err := book.NewStreamWriter(SheetName)
	if err != nil {
		return nil, err
	}
	for i, width := range columnWidths {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return nil, err
		}
	}

	header := make([]interface{}, len(Columns))
	for i, title := range Columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: title}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, err
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		cells := record.Row()
		row := make([]interface{}, len(cells))
		for j, value := range cells {
			row[j] = clampCell(value)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, err
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, err
	}
	ok = true
	return book, nil
}

// clampCell replaces characters XML 1.0 cannot carry with a space and
// truncates values beyond the per-cell character limit of the format.
func clampCell(value string) string {
	value = strings.Map(xmlSafeRune, value)
	if len(value) <= excelize.TotalCellChars {
		return value
	}
	runes := []rune(value)
	if len(runes) <= excelize.TotalCellChars {
		return value
	}
	return string(runes[:excelize.TotalCellChars])
}

// xmlSafeRune keeps tab, newline and carriage return; other C0 controls and
// the non-characters U+FFFE and U+FFFF become spaces.
func xmlSafeRune(r rune) rune {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return r
	case r < 0x20, r == 0xFFFE, r == 0xFFFF:
		return ' '
	}
	return r
}
