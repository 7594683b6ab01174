package sheet

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	valueInputOption = "USER_ENTERED"
	insertDataOption = "INSERT_ROWS"
)

// ValuesService is the subset of the Sheets values API the writer needs.
type ValuesService interface {
	Get(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error)
	Append(ctx context.Context, spreadsheetID, anchor string, values [][]interface{}) error
}

var _ ValuesService = (*GoogleValues)(nil)

type GoogleValues struct {
	service *sheets.Service
}

func NewGoogleValues(ctx context.Context, tokenSource oauth2.TokenSource) (*GoogleValues, error) {
	service, err := sheets.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &GoogleValues{service: service}, nil
}

func (g *GoogleValues) Get(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	resp, err := g.service.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// Append inserts rows after the table found at anchor; existing rows are pushed down, never overwritten.
func (g *GoogleValues) Append(ctx context.Context, spreadsheetID, anchor string, values [][]interface{}) error {
	_, err := g.service.Spreadsheets.Values.Append(spreadsheetID, anchor, &sheets.ValueRange{Values: values}).
		ValueInputOption(valueInputOption).
		InsertDataOption(insertDataOption).
		Context(ctx).
		Do()
	return err
}
