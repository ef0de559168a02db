// Package export renders the wizard review summary as PDF or XLSX.
package export

// Row is one labelled summary line
type Row struct {
	Section string
	Field   string
	Value   string
}

// Document is what gets exported
type Document struct {
	Title    string
	Subtitle string
	Rows     []Row
}
