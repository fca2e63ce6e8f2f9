// Package parse extracts a lightweight text preview from uploaded documents.
package parse

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Result is the parsed preview returned from an upload. Pages is zero when
// the format does not expose a page count.
type Result struct {
	Kind        string `json:"kind"`
	Pages       int    `json:"pages"`
	Text        string `json:"text"`
	TextLength  int    `json:"text_length"`
	TextPreview string `json:"text_preview"`
}

const previewRunes = 1000

// File sniffs the document type from the declared content type and the file
// extension, extracts its text and builds the preview. Unknown types fall
// back to a best-effort plain-text read.
func File(path, contentType string) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		kind  string
		text  string
		pages int
		err   error
	)
	switch {
	case strings.Contains(contentType, "pdf") || ext == ".pdf":
		kind = "pdf"
		text, pages, err = readPDF(path)
	case strings.Contains(contentType, "word") || ext == ".docx":
		kind = "docx"
		text, err = readDOCX(path)
	default:
		kind = "text"
		text, err = readText(path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", kind, err)
	}

	text = strings.TrimSpace(text)
	preview := text
	if r := []rune(preview); len(r) > previewRunes {
		preview = string(r[:previewRunes])
	}
	return &Result{
		Kind:        kind,
		Pages:       pages,
		Text:        text,
		TextLength:  len([]rune(text)),
		TextPreview: preview,
	}, nil
}

func readPDF(path string) (string, int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	total := r.NumPage()
	var sb strings.Builder
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the whole document.
			continue
		}
		if i > 1 {
			sb.WriteByte('\n')
		}
		sb.WriteString(content)
	}
	return sb.String(), total, nil
}

// readDOCX walks word/document.xml directly, collecting text runs per
// paragraph. Page count is not recoverable from docx.
func readDOCX(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	var doc io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc, err = f.Open()
			if err != nil {
				return "", err
			}
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("word/document.xml not found")
	}
	defer doc.Close()

	dec := xml.NewDecoder(doc)
	var (
		lines     []string
		paragraph strings.Builder
		inText    bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				if paragraph.Len() > 0 {
					lines = append(lines, paragraph.String())
					paragraph.Reset()
				}
			}
		case xml.CharData:
			if inText {
				paragraph.Write(el)
			}
		}
	}
	if paragraph.Len() > 0 {
		lines = append(lines, paragraph.String())
	}
	return strings.Join(lines, "\n"), nil
}

func readText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(raw), ""), nil
}
