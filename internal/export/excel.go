package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelOptions configures the summary workbook
type ExcelOptions struct {
	SheetName    string            `json:"sheet_name"`
	FreezeHeader bool              `json:"freeze_header"`
	HeaderStyle  *ExcelStyleConfig `json:"header_style,omitempty"`
	DataStyle    *ExcelStyleConfig `json:"data_style,omitempty"`
	MinWidth     float64           `json:"min_width"`
	MaxWidth     float64           `json:"max_width"`
}

// ExcelStyleConfig defines style for cells
type ExcelStyleConfig struct {
	FontBold  bool   `json:"font_bold"`
	FontSize  int    `json:"font_size"`
	FontColor string `json:"font_color"`
	FillColor string `json:"fill_color"`
	Alignment string `json:"alignment"` // left, center, right
	Border    bool   `json:"border"`
	WrapText  bool   `json:"wrap_text"`
}

// DefaultExcelOptions returns default Excel export options
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		SheetName:    "Summary",
		FreezeHeader: true,
		MinWidth:     12,
		MaxWidth:     60,
		HeaderStyle: &ExcelStyleConfig{
			FontBold:  true,
			FontSize:  11,
			FillColor: "4472C4",
			FontColor: "FFFFFF",
			Alignment: "center",
			Border:    true,
		},
		DataStyle: &ExcelStyleConfig{
			FontSize:  11,
			Alignment: "left",
			Border:    true,
			WrapText:  true,
		},
	}
}

var summaryColumns = []string{"Section", "Field", "Value"}

// ExcelExporter writes the summary into a single sheet
type ExcelExporter struct {
	file    *excelize.File
	options ExcelOptions
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter(options ExcelOptions) *ExcelExporter {
	file := excelize.NewFile()
	file.SetSheetName("Sheet1", options.SheetName)
	return &ExcelExporter{file: file, options: options}
}

// Render writes the header and rows of doc and returns the workbook bytes.
// The exporter can not be reused afterwards.
func (e *ExcelExporter) Render(doc Document) ([]byte, error) {
	defer e.file.Close()

	sheet := e.options.SheetName
	if doc.Title != "" {
		e.file.SetDocProps(&excelize.DocProperties{Title: doc.Title})
	}

	headerStyle, err := e.createStyle(e.options.HeaderStyle)
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	dataStyle, err := e.createStyle(e.options.DataStyle)
	if err != nil {
		return nil, fmt.Errorf("failed to create data style: %w", err)
	}

	widths := make([]float64, len(summaryColumns))
	for i, col := range summaryColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := e.file.SetCellValue(sheet, cell, col); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		if headerStyle > 0 {
			e.file.SetCellStyle(sheet, cell, cell, headerStyle)
		}
		widths[i] = float64(len(col))
	}

	for r, row := range doc.Rows {
		values := []string{row.Section, row.Field, row.Value}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if err := e.file.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", r+1, err)
			}
			if dataStyle > 0 {
				e.file.SetCellStyle(sheet, cell, cell, dataStyle)
			}
			if w := float64(len(v)) * 1.2; w > widths[i] {
				widths[i] = w
			}
		}
	}

	for i, w := range widths {
		if w < e.options.MinWidth {
			w = e.options.MinWidth
		}
		if e.options.MaxWidth > 0 && w > e.options.MaxWidth {
			w = e.options.MaxWidth
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		e.file.SetColWidth(sheet, col, col, w)
	}

	if e.options.FreezeHeader {
		e.file.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}

	buf, err := e.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *ExcelExporter) createStyle(config *ExcelStyleConfig) (int, error) {
	if config == nil {
		return 0, nil
	}

	style := &excelize.Style{
		Font: &excelize.Font{
			Bold:  config.FontBold,
			Size:  float64(config.FontSize),
			Color: config.FontColor,
		},
	}
	if config.FillColor != "" {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{config.FillColor},
		}
	}
	if config.Alignment != "" || config.WrapText {
		style.Alignment = &excelize.Alignment{
			Horizontal: config.Alignment,
			Vertical:   "top",
			WrapText:   config.WrapText,
		}
	}
	if config.Border {
		style.Border = []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		}
	}

	return e.file.NewStyle(style)
}

// SummaryXLSX renders doc with the default options.
func SummaryXLSX(doc Document) ([]byte, error) {
	return NewExcelExporter(DefaultExcelOptions()).Render(doc)
}

// SummaryPDF renders doc with the default options.
func SummaryPDF(doc Document) ([]byte, error) {
	return NewPDFGenerator(DefaultPDFOptions()).Render(doc)
}
