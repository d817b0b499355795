package httpapi

import (
	"bytes"
	"fmt"
	"strings"

	"damage-assessment/internal/domain"

	"github.com/xuri/excelize/v2"
)

// JobExportHeader 导出表头
var JobExportHeader = []string{
	"ID",
	"Location",
	"Position",
	"Number Of",
	"File Name",
	"Image URL",
	"Damage Scale",
	"Damage Detected",
	"Description",
	"Caption",
	"Observation",
	"Include In Observations",
	"Include In Report",
}

// GenerateJobWorkbook 生成任务记录的 Excel 文件（记录顺序与查询结果一致）
func GenerateJobWorkbook(jobID string, records []domain.Record) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo 之前不能 Close

	sheetName := "Job " + sanitizeSheetName(jobID)
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range JobExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i, rec := range records {
		values := []any{
			rec.ID,
			rec.Location,
			fmt.Sprintf("%d / %d", rec.LocationIndex, rec.LocationTotal),
			rec.NumberOf,
			rec.FileName,
			rec.ImageURL,
			rec.DamageScale.String(),
			rec.DamageDetected,
			rec.Description,
			rec.Caption,
			rec.Observation,
			rec.IncludeInObservations,
			rec.IncludeInReport,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	widths := map[string]float64{"A": 38, "B": 18, "C": 10, "D": 12, "E": 22, "F": 40, "G": 14, "H": 30}
	for col, width := range widths {
		_ = f.SetColWidth(sheetName, col, col, width)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	f.Close()
	return buf.Bytes(), nil
}

// sanitizeSheetName Excel 工作表名不能包含 : \ / ? * [ ]，最长 31 字符
func sanitizeSheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, s)
	if runes := []rune(s); len(runes) > 27 {
		s = string(runes[:27])
	}
	return s
}
