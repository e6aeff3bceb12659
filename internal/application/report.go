package application

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// StandingsReport renders the current standings as an Excel workbook.
func (s *MonitorServiceImpl) StandingsReport() ([]byte, error) {
	snapshot := s.Snapshot()
	if snapshot == nil {
		return nil, ErrNoSnapshot
	}

	f := excelize.NewFile()
	sheet := "Standings"
	f.NewSheet(sheet)
	f.DeleteSheet("Sheet1")

	headers := []string{"Rank", "Player", "Rating", "Points"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for i, p := range snapshot.Players {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), p.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), p.Rating)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), p.Points)
		row++
	}

	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 30)
	f.SetColWidth(sheet, "C", "D", 10)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SyncStandingsToSheet pushes the current standings to the configured Google
// Sheet and returns its URL.
func (s *MonitorServiceImpl) SyncStandingsToSheet() (string, error) {
	if s.sheetsClient == nil {
		return "", ErrSheetsNotConfigured
	}
	snapshot := s.Snapshot()
	if snapshot == nil {
		return "", ErrNoSnapshot
	}

	var rows [][]interface{}
	rows = append(rows, []interface{}{"Rank", "Player", "Rating", "Points"})
	for i, p := range snapshot.Players {
		rows = append(rows, []interface{}{i + 1, p.Name, p.Rating, p.Points})
	}

	if err := s.sheetsClient.ClearRange(s.spreadsheetID, "A1:Z1000"); err != nil {
		s.logger.Error("failed to clear sheet: %s", err.Error())
	}
	if err := s.sheetsClient.UpdateValues(s.spreadsheetID, "A1", rows); err != nil {
		return "", fmt.Errorf("failed to update standings sheet: %w", err)
	}

	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s", s.spreadsheetID), nil
}
