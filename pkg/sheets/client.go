package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type Client interface {
	ClearRange(spreadsheetID, rangeStr string) error
	UpdateValues(spreadsheetID, rangeStr string, values [][]interface{}) error
}

type GoogleSheetsClient struct {
	sheets *sheets.Service
}

func NewGoogleSheetsClient(credentialsPath string) (*GoogleSheetsClient, error) {
	ctx := context.Background()

	srv, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &GoogleSheetsClient{sheets: srv}, nil
}

func (c *GoogleSheetsClient) ClearRange(spreadsheetID, rangeStr string) error {
	_, err := c.sheets.Spreadsheets.Values.Clear(spreadsheetID, rangeStr, &sheets.ClearValuesRequest{}).Do()
	if err != nil {
		return fmt.Errorf("failed to clear range: %w", err)
	}
	return nil
}

func (c *GoogleSheetsClient) UpdateValues(spreadsheetID, rangeStr string, values [][]interface{}) error {
	valRange := &sheets.ValueRange{Values: values}
	_, err := c.sheets.Spreadsheets.Values.Update(spreadsheetID, rangeStr, valRange).ValueInputOption("RAW").Do()
	if err != nil {
		return fmt.Errorf("failed to update values: %w", err)
	}
	return nil
}
