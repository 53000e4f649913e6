// Package export writes the note collection to files under the exports
// directory, either as JSONL records or as a rendered HTML document.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/yuin/goldmark"

	"github.com/kayratasci4/Notes/internal/errors"
	"github.com/kayratasci4/Notes/internal/note"
)

// Format selects the export file format.
type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatHTML  Format = "html"
)

// SchemaVersion identifies the JSONL export format.
const SchemaVersion = "1"

// Input contains parameters for Export.
type Input struct {
	Path   string // default: <baseDir>/exports/notes-<timestamp>.<ext>
	Format Format // default: jsonl
}

// Output contains the result of Export.
type Output struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// header is the first JSONL line, used for format detection on import.
type header struct {
	NotesExport   bool   `json:"_notes_export"`
	SchemaVersion string `json:"schema_version"`
	ExportedAt    int64  `json:"exported_at"`
}

// Export writes notes to a file per input. baseDir is the application
// base directory (its exports/ subdirectory is the default target).
func Export(notes []note.Note, baseDir string, input Input) (*Output, error) {
	format := input.Format
	if format == "" {
		format = FormatJSONL
	}
	if format != FormatJSONL && format != FormatHTML {
		return nil, errors.NewInvalidRequest("format must be one of: jsonl, html")
	}

	path := input.Path
	if path == "" {
		name := fmt.Sprintf("notes-%d.%s", time.Now().Unix(), format)
		path = filepath.Join(baseDir, "exports", name)
	}

	var data []byte
	var err error
	switch format {
	case FormatJSONL:
		data, err = renderJSONL(notes)
	case FormatHTML:
		data, err = renderHTML(notes)
	}
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &Output{Path: path, Count: len(notes)}, nil
}

// renderJSONL emits a header line followed by one JSON note per line.
func renderJSONL(notes []note.Note) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	h := header{
		NotesExport:   true,
		SchemaVersion: SchemaVersion,
		ExportedAt:    note.NowMillis(),
	}
	if err := enc.Encode(h); err != nil {
		return nil, errors.NewInternal(err)
	}
	for _, n := range notes {
		if err := enc.Encode(n); err != nil {
			return nil, errors.NewInternal(err)
		}
	}
	return buf.Bytes(), nil
}

var htmlPage = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html lang="tr">
<head>
<meta charset="utf-8">
<title>Notlar</title>
</head>
<body>
{{range .}}<article>
<h1>{{.Title}}</h1>
{{.Body}}
</article>
{{end}}</body>
</html>
`))

type htmlNote struct {
	Title string
	Body  template.HTML
}

// renderHTML renders each note's content as Markdown into one document.
func renderHTML(notes []note.Note) ([]byte, error) {
	items := make([]htmlNote, 0, len(notes))
	for _, n := range notes {
		var body bytes.Buffer
		if err := goldmark.Convert([]byte(n.Content), &body); err != nil {
			return nil, errors.NewInternal(err)
		}
		items = append(items, htmlNote{
			Title: n.DisplayTitle(),
			Body:  template.HTML(body.String()),
		})
	}

	var out bytes.Buffer
	if err := htmlPage.Execute(&out, items); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out.Bytes(), nil
}
