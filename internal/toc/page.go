// Package toc assembles the HTML table of contents and its SVG assets.
package toc

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/chesstoc/chesstoc/internal/thumbnail"
)

//go:embed template.html
var pageTemplate string

//go:embed chesstoc.css
var stylesheet string

// Entry is one game on the page together with its rendered images.
type Entry struct {
	Index  int
	White  string
	Black  string
	Result string
	Event  string
	Date   string

	ECO     string
	Opening string

	// HasEval reports whether the combined thumbnail exists; without it
	// the page falls back to the bare board diagram.
	HasEval bool

	Board    []byte
	Plot     []byte
	Combined []byte
}

func (e *Entry) baseName() string {
	return fmt.Sprintf("%03d", e.Index)
}

// BoardFile is the filename of the board diagram.
func (e *Entry) BoardFile() string { return e.baseName() + "-board.svg" }

// PlotFile is the filename of the evaluation curve.
func (e *Entry) PlotFile() string { return e.baseName() + "-plot.svg" }

// CombinedFile is the filename of the composite thumbnail.
func (e *Entry) CombinedFile() string { return e.baseName() + ".svg" }

// Thumbnail is the image the page shows for this entry.
func (e *Entry) Thumbnail() string {
	if e.HasEval {
		return e.CombinedFile()
	}
	return e.BoardFile()
}

// Page is the final output artifact: an ordered list of entries grouped
// into rows of a fixed column count.
type Page struct {
	Title   string
	Columns int
	Entries []*Entry
}

// NewPage creates an empty page. Columns below 1 are treated as 1.
func NewPage(title string, columns int) *Page {
	if columns < 1 {
		columns = 1
	}
	return &Page{Title: title, Columns: columns}
}

// Add appends an entry, keeping input order.
func (p *Page) Add(e *Entry) {
	p.Entries = append(p.Entries, e)
}

// Rows groups the entries into rows of at most Columns each.
func (p *Page) Rows() [][]*Entry {
	var rows [][]*Entry
	for start := 0; start < len(p.Entries); start += p.Columns {
		end := start + p.Columns
		if end > len(p.Entries) {
			end = len(p.Entries)
		}
		rows = append(rows, p.Entries[start:end])
	}
	return rows
}

// WriteAssets writes every entry's SVG files into dir.
func (p *Page) WriteAssets(dir string) error {
	for _, e := range p.Entries {
		if err := os.WriteFile(filepath.Join(dir, e.BoardFile()), e.Board, 0o644); err != nil {
			return fmt.Errorf("failed to write board image: %w", err)
		}
		if !e.HasEval {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, e.PlotFile()), e.Plot, 0o644); err != nil {
			return fmt.Errorf("failed to write plot image: %w", err)
		}
		if err := os.WriteFile(filepath.Join(dir, e.CombinedFile()), e.Combined, 0o644); err != nil {
			return fmt.Errorf("failed to write thumbnail: %w", err)
		}
	}
	return nil
}

// WriteHTML renders the page template to w.
func (p *Page) WriteHTML(w io.Writer) error {
	tmpl, err := template.New("page").Parse(pageTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse page template: %w", err)
	}

	data := struct {
		Title string
		CSS   template.CSS
		Size  int
		Rows  [][]*Entry
	}{
		Title: p.Title,
		CSS:   template.CSS(stylesheet),
		Size:  thumbnail.Size,
		Rows:  p.Rows(),
	}

	return tmpl.Execute(w, data)
}

// WriteFile writes the SVG assets next to path and the HTML page itself.
func (p *Page) WriteFile(path string) error {
	dir := filepath.Dir(path)
	if err := p.WriteAssets(dir); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := p.WriteHTML(f); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return f.Sync()
}
