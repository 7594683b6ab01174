package sheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/rss-sheets/app/feed"
)

// ErrSinkWrite marks failed header checks, appends and reads against the spreadsheet.
var ErrSinkWrite = errors.New("sheet write failed")

const (
	headerRange  = "A1:E1"
	headerAnchor = "A1"
	dataAnchor   = "A2"
	linkRange    = "C2:C"
	tableRange   = "A:E"
)

// Writer appends rows to one spreadsheet.
type Writer struct {
	values        ValuesService
	spreadsheetID string
	timeout       time.Duration
}

func NewWriter(values ValuesService, spreadsheetID string, timeout time.Duration) *Writer {
	return &Writer{
		values:        values,
		spreadsheetID: spreadsheetID,
		timeout:       timeout,
	}
}

// EnsureHeader writes the header row when the first row is empty.
func (w *Writer) EnsureHeader(ctx context.Context) error {
	callCtx, cancel := w.callContext(ctx)
	defer cancel()

	existing, err := w.values.Get(callCtx, w.spreadsheetID, headerRange)
	if err != nil {
		return fmt.Errorf("%w: failed to read header: %w", ErrSinkWrite, err)
	}

	if hasValues(existing) {
		return nil
	}

	header := make([]interface{}, len(feed.Header))
	for i, name := range feed.Header {
		header[i] = name
	}

	if err := w.values.Append(callCtx, w.spreadsheetID, headerAnchor, [][]interface{}{header}); err != nil {
		return fmt.Errorf("%w: failed to write header: %w", ErrSinkWrite, err)
	}

	slog.Info("Header row written", "spreadsheet", w.spreadsheetID)
	return nil
}

// Append adds rows after the existing content.
func (w *Writer) Append(ctx context.Context, rows []feed.Row) error {
	if len(rows) == 0 {
		return nil
	}

	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells := row.Values()
		line := make([]interface{}, len(cells))
		for i, cell := range cells {
			line[i] = cell
		}
		values = append(values, line)
	}

	callCtx, cancel := w.callContext(ctx)
	defer cancel()

	if err := w.values.Append(callCtx, w.spreadsheetID, dataAnchor, values); err != nil {
		return fmt.Errorf("%w: failed to append %d rows: %w", ErrSinkWrite, len(rows), err)
	}

	return nil
}

// ExistingLinks returns the non-empty values of the VIDEO column below the header.
func (w *Writer) ExistingLinks(ctx context.Context) ([]string, error) {
	callCtx, cancel := w.callContext(ctx)
	defer cancel()

	values, err := w.values.Get(callCtx, w.spreadsheetID, linkRange)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read links: %w", ErrSinkWrite, err)
	}

	links := make([]string, 0, len(values))
	for _, line := range values {
		if len(line) == 0 {
			continue
		}
		if link := fmt.Sprint(line[0]); link != "" {
			links = append(links, link)
		}
	}

	return links, nil
}

// Rows returns every row of the A:E table, header included.
func (w *Writer) Rows(ctx context.Context) ([][]string, error) {
	callCtx, cancel := w.callContext(ctx)
	defer cancel()

	values, err := w.values.Get(callCtx, w.spreadsheetID, tableRange)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read rows: %w", ErrSinkWrite, err)
	}

	rows := make([][]string, 0, len(values))
	for _, line := range values {
		row := make([]string, len(line))
		for i, cell := range line {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (w *Writer) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if w.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, w.timeout)
}

func hasValues(values [][]interface{}) bool {
	for _, line := range values {
		for _, cell := range line {
			if fmt.Sprint(cell) != "" {
				return true
			}
		}
	}
	return false
}
