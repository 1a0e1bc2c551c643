package export

import (
	"bytes"
	"fmt"
	"strings"

	"caresense-playback/internal/models"

	"github.com/xuri/excelize/v2"
)

// HistoryExportHeader 历史导出表头
var HistoryExportHeader = []string{
	"Predicted At",
	"Prediction",
	"Confidence",
	"Corrected Label",
	"Corrected At",
	"Batch Size",
	"First Event",
	"Last Event",
}

// GenerateHistoryExport 生成分类历史 Excel 文件
// results 为空时只生成表头
func GenerateHistoryExport(results []models.ClassificationResult) ([]byte, error) {
	f := excelize.NewFile()

	sheetName := "Activity History"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	// 删除默认的 Sheet1
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	// 表头样式
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
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

	// 写入表头
	for col, header := range HistoryExportHeader {
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

	// 设置列宽
	columnWidths := []float64{
		22, // Predicted At
		40, // Prediction
		12, // Confidence
		25, // Corrected Label
		22, // Corrected At
		12, // Batch Size
		25, // First Event
		25, // Last Event
	}
	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	// 写入数据行
	for rowIdx, result := range results {
		values := []interface{}{
			result.PredictedAt.Format("2006-01-02 15:04:05"),
			result.Prediction,
			result.ConfidenceScore,
			result.CorrectedLabel,
			formatCorrectedAt(&result),
			len(result.SourceBatch),
			formatBatchEdge(result.SourceBatch, 0),
			formatBatchEdge(result.SourceBatch, len(result.SourceBatch)-1),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func formatCorrectedAt(result *models.ClassificationResult) string {
	if result.CorrectedAt == nil {
		return ""
	}
	return result.CorrectedAt.Format("2006-01-02 15:04:05")
}

// formatBatchEdge 批次首/末事件的 CSV 形式（date,time,sensor,state）
func formatBatchEdge(batch models.Batch, idx int) string {
	if idx < 0 || idx >= len(batch) {
		return ""
	}
	rec := batch[idx]
	return strings.Join([]string{rec.Date, rec.Time, rec.Sensor, rec.State}, ",")
}
