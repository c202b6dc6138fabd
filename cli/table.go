package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"ytextract/internal/export"
	"ytextract/internal/extract"
	"ytextract/internal/youtube"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	return newTable(headers, rows, aligns).Render()
}

func newTable(headers []string, rows [][]string, aligns []columnAlignment) table.Writer {
	columns := len(headers)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)
	return tw
}

// Summary statuses.
const (
	statusOK      = "ok"
	statusEmpty   = "empty"
	statusSkipped = "skipped"
	statusFailed  = "failed"
)

// renderSummary prints one row per channel. Status colours are only used
// when w is a terminal.
func renderSummary(w io.Writer, report extract.Report) error {
	colorize := shouldColorize(w)

	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		status := resultStatus(res)
		if res.Failed() {
			status += ": " + failureReason(res.Err)
		}
		if colorize {
			status = statusColors(res).Sprint(status)
		}
		rows = append(rows, []string{res.ChannelName, strconv.Itoa(res.Videos), res.Path, status})
	}

	tw := newTable(
		[]string{"Channel", "Videos", "File", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
	)
	failed := len(report.Failed())
	tw.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d ok, %d failed", len(report.Results)-failed, failed)})

	_, err := fmt.Fprintln(w, tw.Render())
	return err
}

func resultStatus(res extract.Result) string {
	switch {
	case res.Failed():
		return statusFailed
	case res.Skipped:
		return statusSkipped
	case res.Empty:
		return statusEmpty
	default:
		return statusOK
	}
}

func statusColors(res extract.Result) text.Colors {
	switch resultStatus(res) {
	case statusFailed:
		return text.Colors{text.FgRed, text.Bold}
	case statusEmpty, statusSkipped:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{text.FgGreen}
	}
}

// failureReason strips the channel and path context already shown in the row.
func failureReason(err error) string {
	var listerErr *youtube.ListerError
	if errors.As(err, &listerErr) {
		return listerErr.Err.Error()
	}
	var writeErr *export.WriteError
	if errors.As(err, &writeErr) {
		return writeErr.Err.Error()
	}
	var channelErr *extract.ChannelError
	if errors.As(err, &channelErr) {
		return channelErr.Err.Error()
	}
	return err.Error()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
