package sheet

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/rss-sheets/app/feed"
)

// memoryValues emulates a single sheet for the ranges the writer uses.
type memoryValues struct {
	grid      [][]interface{}
	anchors   []string
	getErr    error
	appendErr error
	sheetIDs  []string
}

func (m *memoryValues) Get(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	m.sheetIDs = append(m.sheetIDs, spreadsheetID)
	if m.getErr != nil {
		return nil, m.getErr
	}

	switch readRange {
	case headerRange:
		if len(m.grid) == 0 {
			return nil, nil
		}
		return m.grid[:1], nil
	case linkRange:
		var out [][]interface{}
		for i, line := range m.grid {
			if i == 0 {
				continue
			}
			if len(line) > 2 {
				out = append(out, []interface{}{line[2]})
			} else {
				out = append(out, []interface{}{})
			}
		}
		return out, nil
	case tableRange:
		return m.grid, nil
	default:
		return nil, fmt.Errorf("unexpected range %s", readRange)
	}
}

func (m *memoryValues) Append(ctx context.Context, spreadsheetID, anchor string, values [][]interface{}) error {
	m.sheetIDs = append(m.sheetIDs, spreadsheetID)
	if m.appendErr != nil {
		return m.appendErr
	}
	m.anchors = append(m.anchors, anchor)
	m.grid = append(m.grid, values...)
	return nil
}

func TestEnsureHeaderWritesOnce(t *testing.T) {
	values := &memoryValues{}
	writer := NewWriter(values, "sheet-1", time.Second)

	for i := 0; i < 3; i++ {
		require.NoError(t, writer.EnsureHeader(context.Background()))
	}

	require.Len(t, values.grid, 1)
	assert.Equal(t, []interface{}{"DATA", "UUID", "VIDEO", "TITLE", "USER"}, values.grid[0])
	assert.Equal(t, []string{"A1"}, values.anchors)
	for _, id := range values.sheetIDs {
		assert.Equal(t, "sheet-1", id)
	}
}

func TestEnsureHeaderKeepsExistingFirstRow(t *testing.T) {
	values := &memoryValues{grid: [][]interface{}{{"custom", "header"}}}
	writer := NewWriter(values, "sheet-1", time.Second)

	require.NoError(t, writer.EnsureHeader(context.Background()))

	assert.Empty(t, values.anchors)
	assert.Len(t, values.grid, 1)
}

func TestEnsureHeaderTreatsBlankCellsAsEmpty(t *testing.T) {
	values := &memoryValues{grid: [][]interface{}{{"", ""}}}
	writer := NewWriter(values, "sheet-1", time.Second)

	require.NoError(t, writer.EnsureHeader(context.Background()))

	assert.Equal(t, []string{"A1"}, values.anchors)
}

func TestEnsureHeaderReadFailure(t *testing.T) {
	values := &memoryValues{getErr: errors.New("quota exceeded")}
	writer := NewWriter(values, "sheet-1", time.Second)

	err := writer.EnsureHeader(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSinkWrite)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestAppendRowsInColumnOrder(t *testing.T) {
	values := &memoryValues{}
	writer := NewWriter(values, "sheet-1", time.Second)

	require.NoError(t, writer.EnsureHeader(context.Background()))
	err := writer.Append(context.Background(), []feed.Row{
		{Timestamp: "2023-01-02 10:00:00", ID: "id-1", Link: "https://example.com/a", Title: "A", User: "alice"},
		{Timestamp: "2023-01-02 11:00:00", ID: "id-2", Link: "https://example.com/b", Title: "B", User: ""},
	})
	require.NoError(t, err)

	require.Len(t, values.grid, 3)
	assert.Equal(t, []interface{}{"2023-01-02 10:00:00", "id-1", "https://example.com/a", "A", "alice"}, values.grid[1])
	assert.Equal(t, []interface{}{"2023-01-02 11:00:00", "id-2", "https://example.com/b", "B", ""}, values.grid[2])
	assert.Equal(t, []string{"A1", "A2"}, values.anchors)
}

func TestAppendNothingSkipsSink(t *testing.T) {
	values := &memoryValues{appendErr: errors.New("should not be called")}
	writer := NewWriter(values, "sheet-1", time.Second)

	require.NoError(t, writer.Append(context.Background(), nil))
	assert.Empty(t, values.sheetIDs)
}

func TestAppendFailure(t *testing.T) {
	values := &memoryValues{appendErr: errors.New("unauthorized")}
	writer := NewWriter(values, "sheet-1", time.Second)

	err := writer.Append(context.Background(), []feed.Row{{Link: "x"}})

	assert.ErrorIs(t, err, ErrSinkWrite)
}

func TestExistingLinks(t *testing.T) {
	values := &memoryValues{grid: [][]interface{}{
		{"DATA", "UUID", "VIDEO", "TITLE", "USER"},
		{"t", "1", "https://example.com/a", "A", "u"},
		{"t", "2"},
		{"t", "3", "https://example.com/b", "B", "u"},
	}}
	writer := NewWriter(values, "sheet-1", time.Second)

	links, err := writer.ExistingLinks(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, links)
}

func TestRows(t *testing.T) {
	values := &memoryValues{grid: [][]interface{}{
		{"DATA", "UUID", "VIDEO", "TITLE", "USER"},
		{"t", "1", "https://example.com/a", "A", "u"},
	}}
	writer := NewWriter(values, "sheet-1", time.Second)

	rows, err := writer.Rows(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"t", "1", "https://example.com/a", "A", "u"}, rows[1])
}

func TestCallContextHasDeadline(t *testing.T) {
	writer := NewWriter(&memoryValues{}, "sheet-1", time.Second)

	ctx, cancel := writer.callContext(context.Background())
	defer cancel()

	_, ok := ctx.Deadline()
	assert.True(t, ok)
}
