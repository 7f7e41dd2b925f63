// Package document holds the normalized extraction result and its encoders.
package document

// Document is the root of an extracted PDF.
type Document struct {
	Title  string  `json:"document_title"`
	Author *string `json:"author"`
	Date   *string `json:"date"`
	Pages  []Page  `json:"pages"`
}

// Page is one source page. PageNumber is 1-based.
type Page struct {
	PageNumber int     `json:"page_number"`
	Text       string  `json:"text"`
	Title      *string `json:"title"`
	Tables     []Table `json:"tables"`
	Images     []Image `json:"images"`
}

// Table is a logical table, possibly merged from several detected regions.
// Rows are not required to match the length of Columns.
type Table struct {
	Name    string     `json:"table_name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Image carries a PNG payload encoded as standard base64.
type Image struct {
	Data string `json:"image_base64"`
}

// NewPage returns a page with non-nil table and image slices so that empty
// sequences encode as [] rather than null.
func NewPage(number int, text string, title *string) Page {
	return Page{
		PageNumber: number,
		Text:       text,
		Title:      title,
		Tables:     []Table{},
		Images:     []Image{},
	}
}

// NewTable returns a table whose columns and rows are never nil.
func NewTable(name string, columns []string, rows [][]string) Table {
	if columns == nil {
		columns = []string{}
	}
	if rows == nil {
		rows = [][]string{}
	}
	return Table{Name: name, Columns: columns, Rows: rows}
}

// TableCount returns the number of tables across all pages.
func (d *Document) TableCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Tables)
	}
	return n
}

// ImageCount returns the number of images across all pages.
func (d *Document) ImageCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Images)
	}
	return n
}
