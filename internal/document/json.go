package document

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const jsonIndent = "    "

// EncodeJSON writes doc as indented JSON.
func EncodeJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", jsonIndent)
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

// DecodeJSON reads a document previously written by EncodeJSON.
func DecodeJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// WriteFile renders doc in the given format and atomically replaces path.
// Nothing is left at path if rendering or writing fails.
func WriteFile(path string, doc *Document, format string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pdfextract-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := Render(tmp, doc, format); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

// Render writes doc to w in one of the supported formats.
func Render(w io.Writer, doc *Document, format string) error {
	switch format {
	case "", "json":
		return EncodeJSON(w, doc)
	case "markdown":
		_, err := io.WriteString(w, Markdown(doc))
		return err
	case "html":
		out, err := HTML(doc)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// ContentType returns the MIME type for a render format, or "" when the
// format is not supported.
func ContentType(format string) string {
	switch format {
	case "", "json":
		return "application/json"
	case "markdown":
		return "text/markdown; charset=utf-8"
	case "html":
		return "text/html; charset=utf-8"
	default:
		return ""
	}
}
