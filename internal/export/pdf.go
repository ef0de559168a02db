package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFColor represents an RGB color
type PDFColor struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// PDFOptions configures PDF generation
type PDFOptions struct {
	PageSize       string   `json:"page_size"`
	DateFormat     string   `json:"date_format"`
	IncludeDate    bool     `json:"include_date"`
	IncludePageNum bool     `json:"include_page_num"`
	HeaderColor    PDFColor `json:"header_color"`
	AlternateColor PDFColor `json:"alternate_color"`
	FontFamily     string   `json:"font_family"`
	FontSize       float64  `json:"font_size"`
	TitleFontSize  float64  `json:"title_font_size"`
	Margin         float64  `json:"margin"`
}

// DefaultPDFOptions returns default PDF options
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageSize:       "A4",
		DateFormat:     "2006-01-02",
		IncludeDate:    true,
		IncludePageNum: true,
		HeaderColor:    PDFColor{R: 68, G: 114, B: 196},
		AlternateColor: PDFColor{R: 242, G: 242, B: 242},
		FontFamily:     "Arial",
		FontSize:       10,
		TitleFontSize:  16,
		Margin:         15,
	}
}

// PDFGenerator generates the summary PDF
type PDFGenerator struct {
	pdf     *gofpdf.Fpdf
	options PDFOptions
}

// NewPDFGenerator creates a new PDF generator
func NewPDFGenerator(options PDFOptions) *PDFGenerator {
	pdf := gofpdf.New("P", "mm", options.PageSize, "")
	pdf.SetMargins(options.Margin, options.Margin+5, options.Margin)
	pdf.SetAutoPageBreak(true, options.Margin+5)

	g := &PDFGenerator{pdf: pdf, options: options}
	if options.IncludePageNum {
		g.setFooter()
	}
	return g
}

// Render writes doc grouped by section and returns the PDF bytes.
func (g *PDFGenerator) Render(doc Document) ([]byte, error) {
	g.pdf.AddPage()

	g.pdf.SetFont(g.options.FontFamily, "B", g.options.TitleFontSize)
	g.pdf.SetTextColor(0, 0, 0)
	g.pdf.CellFormat(0, 10, tr(g.pdf, doc.Title), "", 1, "C", false, 0, "")

	if doc.Subtitle != "" {
		g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize+2)
		g.pdf.SetTextColor(100, 100, 100)
		g.pdf.MultiCell(0, 6, tr(g.pdf, doc.Subtitle), "", "C", false)
	}

	if g.options.IncludeDate {
		g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize-1)
		g.pdf.SetTextColor(128, 128, 128)
		g.pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", time.Now().Format(g.options.DateFormat)), "", 1, "R", false, 0, "")
	}

	section := ""
	shaded := false
	for _, row := range doc.Rows {
		if row.Section != section {
			section = row.Section
			g.addSectionHeader(section)
			shaded = false
		}
		g.addRow(row, shaded)
		shaded = !shaded
	}

	if err := g.pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := g.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *PDFGenerator) addSectionHeader(title string) {
	g.pdf.Ln(4)
	g.pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize+1)
	g.pdf.SetFillColor(g.options.HeaderColor.R, g.options.HeaderColor.G, g.options.HeaderColor.B)
	g.pdf.SetTextColor(255, 255, 255)
	g.pdf.CellFormat(0, 8, tr(g.pdf, title), "1", 1, "L", true, 0, "")
}

func (g *PDFGenerator) addRow(row Row, shaded bool) {
	if shaded {
		g.pdf.SetFillColor(g.options.AlternateColor.R, g.options.AlternateColor.G, g.options.AlternateColor.B)
	} else {
		g.pdf.SetFillColor(255, 255, 255)
	}
	g.pdf.SetTextColor(0, 0, 0)

	pageWidth, _ := g.pdf.GetPageSize()
	labelWidth := 60.0
	valueWidth := pageWidth - 2*g.options.Margin - labelWidth

	g.pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize)
	g.pdf.CellFormat(labelWidth, 7, tr(g.pdf, row.Field), "1", 0, "L", true, 0, "")
	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
	g.pdf.MultiCell(valueWidth, 7, tr(g.pdf, row.Value), "1", "L", true)
}

func (g *PDFGenerator) setFooter() {
	g.pdf.SetFooterFunc(func() {
		g.pdf.SetY(-15)
		g.pdf.SetFont(g.options.FontFamily, "", 8)
		g.pdf.SetTextColor(128, 128, 128)
		g.pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", g.pdf.PageNo()), "", 0, "C", false, 0, "")
	})
}

// tr converts UTF-8 text to the core fonts' code page.
func tr(pdf *gofpdf.Fpdf, s string) string {
	return pdf.UnicodeTranslatorFromDescriptor("")(s)
}
