// Package textextract implements the extract_text collaborator: best-effort
// plain text from attachment content. Unsupported formats yield an empty
// string, never an error. Absence of text only degrades classification.
package textextract

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html"
)

const (
	maxChars    = 20000
	maxRawBytes = 200000
)

var textSuffixes = map[string]bool{
	".txt": true, ".csv": true, ".json": true, ".xml": true, ".md": true, ".log": true,
}

var imageSuffixes = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".tif": true, ".tiff": true, ".bmp": true, ".webp": true,
}

// Extractor converts attachment bytes into analysis text. Callers own the
// blob lifecycle; the extractor only reads.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, filename, mimeType string, r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", nil
	}

	suffix := strings.ToLower(filepath.Ext(filename))
	mime := strings.ToLower(mimeType)

	switch {
	case textSuffixes[suffix]:
		return trimmed(decodeRaw(raw)), nil
	case suffix == ".pdf" || strings.Contains(mime, "pdf"):
		return trimmed(extractPDF(raw)), nil
	case suffix == ".xlsx":
		return trimmed(extractXLSX(raw)), nil
	case suffix == ".html" || suffix == ".htm" || strings.Contains(mime, "html"):
		return trimmed(StripHTML(decodeRaw(raw))), nil
	case imageSuffixes[suffix] || strings.HasPrefix(mime, "image/"):
		// OCR is owned by an external collaborator; images carry no text
		// here.
		return "", nil
	default:
		return trimmed(decodeRaw(raw)), nil
	}
}

// BodyText cleans an email body for analysis: HTML markup is stripped,
// plain bodies pass through.
func (e *Extractor) BodyText(raw string) string {
	if strings.Contains(raw, "<") && strings.Contains(raw, ">") {
		return strings.TrimSpace(StripHTML(raw))
	}
	return strings.TrimSpace(raw)
}

func decodeRaw(raw []byte) string {
	if len(raw) > maxRawBytes {
		raw = raw[:maxRawBytes]
	}
	return string(bytes.ToValidUTF8(raw, nil))
}

func extractPDF(raw []byte) string {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return ""
	}

	content, err := reader.GetPlainText()
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, content); err != nil {
		return ""
	}
	return buf.String()
}

func extractXLSX(raw []byte) string {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, row := range rows {
			sb.WriteString(strings.Join(row, " "))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// StripHTML walks the markup and keeps text nodes, skipping script and
// style subtrees.
func StripHTML(raw string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(raw))
	var sb strings.Builder
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			text := strings.TrimSpace(string(tokenizer.Text()))
			if text == "" {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(text)
		}
	}
}

func trimmed(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxChars]))
}
