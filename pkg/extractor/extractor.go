package extractor

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"clinidoc-be/internal/entity"
)

var (
	// ErrUnreadablePDF means the byte stream is not a parseable PDF.
	ErrUnreadablePDF = errors.New("unreadable pdf document")
	// ErrEmptyDocument means the PDF parsed but no page yielded any text.
	ErrEmptyDocument = errors.New("document contains no extractable text")
)

// Extract parses the PDF once and returns every page's text in order.
// The reader is opened a single time and all pages are walked in one pass;
// reopening the document per page dominates extraction time on large reports.
func Extract(data []byte) ([]entity.Page, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}

	pageCount := reader.NumPage()
	if pageCount == 0 {
		return nil, ErrEmptyDocument
	}

	pages := make([]entity.Page, 0, pageCount)
	hasText := false

	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		text := ""
		if !page.V.IsNull() {
			// A single corrupt page should not sink the document; it just
			// contributes an empty page.
			if t, err := page.GetPlainText(nil); err == nil {
				text = cleanText(t)
			}
		}
		if text != "" {
			hasText = true
		}
		pages = append(pages, entity.Page{
			PageNumber: i,
			Text:       text,
			WordCount:  len(strings.Fields(text)),
		})
	}

	if !hasText {
		return nil, ErrEmptyDocument
	}
	return pages, nil
}

// ContentHash identifies a document payload for dedup and caching.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func cleanText(text string) string {
	// PDF text streams tend to carry NULs and stray carriage returns.
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}
