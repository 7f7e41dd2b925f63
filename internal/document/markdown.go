package document

import (
	"fmt"
	"strings"
)

// Markdown renders doc as GitHub-flavoured Markdown. Tables become pipe
// tables padded to their widest row; images are inlined as data URIs.
func Markdown(doc *Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	if doc.Author != nil {
		fmt.Fprintf(&b, "*Author:* %s  \n", *doc.Author)
	}
	if doc.Date != nil {
		fmt.Fprintf(&b, "*Date:* %s  \n", *doc.Date)
	}
	if doc.Author != nil || doc.Date != nil {
		b.WriteString("\n")
	}

	for _, p := range doc.Pages {
		if p.Title != nil && *p.Title != "" {
			fmt.Fprintf(&b, "## Page %d: %s\n\n", p.PageNumber, *p.Title)
		} else {
			fmt.Fprintf(&b, "## Page %d\n\n", p.PageNumber)
		}
		if p.Text != "" {
			b.WriteString(p.Text)
			b.WriteString("\n\n")
		}
		for _, t := range p.Tables {
			fmt.Fprintf(&b, "### %s\n\n", t.Name)
			writeMarkdownTable(&b, t)
		}
		for i, img := range p.Images {
			fmt.Fprintf(&b, "![Page %d image %d](data:image/png;base64,%s)\n\n", p.PageNumber, i+1, img.Data)
		}
	}
	return b.String()
}

func writeMarkdownTable(b *strings.Builder, t Table) {
	width := len(t.Columns)
	for _, row := range t.Rows {
		width = max(width, len(row))
	}
	if width == 0 {
		return
	}

	writeMarkdownRow(b, t.Columns, width)
	b.WriteString("|")
	for range width {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range t.Rows {
		writeMarkdownRow(b, row, width)
	}
	b.WriteString("\n")
}

func writeMarkdownRow(b *strings.Builder, cells []string, width int) {
	b.WriteString("|")
	for i := range width {
		cell := ""
		if i < len(cells) {
			cell = escapeCell(cells[i])
		}
		b.WriteString(" ")
		b.WriteString(cell)
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

var cellReplacer = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

func escapeCell(s string) string {
	return strings.TrimSpace(cellReplacer.Replace(s))
}
