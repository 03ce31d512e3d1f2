// Package resume turns uploaded résumés into skill profiles.
package resume

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MIMEText = "text/plain"
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	ErrNoText          = errors.New("no text content found in résumé")
	ErrUnsupportedType = errors.New("unsupported file type")
)

var (
	xmlTag     = regexp.MustCompile(`<[^>]+>`)
	paragraphs = regexp.MustCompile(`</w:p>|<w:br/>|<w:tab/>`)
)

// ExtractText returns the plain text of a résumé in one of the supported
// formats. Parameters after ';' in mime are ignored.
func ExtractText(mime string, data []byte) (string, error) {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}

	var (
		text string
		err  error
	)
	switch strings.TrimSpace(strings.ToLower(mime)) {
	case MIMEText:
		text = string(data)
	case MIMEPDF:
		text, err = extractPDFText(data)
	case MIMEDOCX:
		text, err = extractDocxText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// DetectMIME guesses a résumé's type from its file name, then its content.
func DetectMIME(filename string, data []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return MIMEPDF
	case ".docx":
		return MIMEDOCX
	case ".txt", ".md", ".text":
		return MIMEText
	}
	mime := http.DetectContentType(data)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return mime
}

func extractPDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("reading pdf page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	// GetContent yields document.xml; keep paragraph breaks, drop markup.
	content := paragraphs.ReplaceAllString(doc.Editable().GetContent(), "\n")
	return html.UnescapeString(xmlTag.ReplaceAllString(content, "")), nil
}
