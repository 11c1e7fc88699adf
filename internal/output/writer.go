// Package output persists finished documents as Markdown, optionally with an
// HTML rendering next to it.
package output

import (
	"bytes"
	"fmt"
	"html"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/josephgoksu/agentwriting/internal/document"
	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	"golang.org/x/text/unicode/norm"
)

// Config controls where and how documents are written.
type Config struct {
	Dir  string
	HTML bool
}

// Saved lists the files written for one document.
type Saved struct {
	Markdown string
	HTML     string // empty when HTML output is off
}

// Writer writes documents to a filesystem.
type Writer struct {
	fs  afero.Fs
	cfg Config
}

// NewWriter creates a Writer. A nil fs writes to the OS filesystem.
func NewWriter(fs afero.Fs, cfg Config) *Writer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	return &Writer{fs: fs, cfg: cfg}
}

// Save writes doc as <dir>/<id>.md, plus <id>.html when enabled. An empty id
// gets a generated one.
func (w *Writer) Save(id string, doc document.Document) (Saved, error) {
	name := SanitizeID(id)
	if name == "" {
		name = "writing-" + uuid.NewString()[:8]
	}

	if err := w.fs.MkdirAll(w.cfg.Dir, 0o755); err != nil {
		return Saved{}, fmt.Errorf("create output dir: %w", err)
	}

	var saved Saved
	saved.Markdown = filepath.Join(w.cfg.Dir, name+".md")
	body := strings.TrimRight(doc.Text, "\n") + "\n"
	if err := afero.WriteFile(w.fs, saved.Markdown, []byte(body), 0o644); err != nil {
		return Saved{}, fmt.Errorf("write markdown: %w", err)
	}

	if !w.cfg.HTML {
		return saved, nil
	}

	page, err := RenderHTML(name, doc.Text)
	if err != nil {
		return saved, err
	}
	saved.HTML = filepath.Join(w.cfg.Dir, name+".html")
	if err := afero.WriteFile(w.fs, saved.HTML, []byte(page), 0o644); err != nil {
		return saved, fmt.Errorf("write html: %w", err)
	}
	return saved, nil
}

// RenderHTML converts Markdown text into a standalone HTML page.
func RenderHTML(title, md string) (string, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(md), &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	page.WriteString(html.EscapeString(title))
	page.WriteString("</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}

const maxIDLen = 100

// SanitizeID turns an arbitrary identifier into a safe file base name.
// Path separators and other unsafe characters become underscores. Input is
// NFC-normalized first so decomposed accents stay part of their letter.
func SanitizeID(id string) string {
	id = norm.NFC.String(strings.TrimSpace(id))
	id = strings.TrimSuffix(id, ".md")

	var b strings.Builder
	for _, r := range id {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	if len(out) > maxIDLen {
		cut := maxIDLen
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = strings.TrimRight(out[:cut], "._")
	}
	return out
}
