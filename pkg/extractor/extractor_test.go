package extractor

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF assembles a minimal valid PDF with one uncompressed content
// stream per page and a single-section xref table.
func buildPDF(pageStreams []string) []byte {
	n := len(pageStreams)
	fontObj := 2 + 2*n + 1

	kids := make([]string, n)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n),
	}
	for i, stream := range pageStreams {
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", fontObj, 4+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets[1:] {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func textStream(text string) string {
	return fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
}

func TestExtractRejectsNonPDF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty payload", []byte{}},
		{"plain text", []byte("this is not a pdf at all")},
		{"truncated header", []byte("%PDF-1.7")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.data)
			require.ErrorIs(t, err, ErrUnreadablePDF)
		})
	}
}

func TestExtractWalksEveryPageInOrder(t *testing.T) {
	data := buildPDF([]string{
		textStream("Patient stable condition"),
		textStream("Discharged home today"),
	})

	pages, err := Extract(data)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, 1, pages[0].PageNumber)
	assert.Equal(t, "Patient stable condition", pages[0].Text)
	assert.Equal(t, 3, pages[0].WordCount)

	assert.Equal(t, 2, pages[1].PageNumber)
	assert.Equal(t, "Discharged home today", pages[1].Text)
	assert.Equal(t, 3, pages[1].WordCount)
}

func TestExtractEmptyDocument(t *testing.T) {
	// Both pages parse but neither content stream draws any text.
	data := buildPDF([]string{"q Q", "q Q"})

	_, err := Extract(data)
	require.ErrorIs(t, err, ErrEmptyDocument)
}

func TestContentHashIsStable(t *testing.T) {
	data := []byte("same bytes, same hash")
	assert.Equal(t, ContentHash(data), ContentHash(data))

	// sha256 hex digest
	assert.Len(t, ContentHash(data), 64)
	assert.NotEqual(t, ContentHash(data), ContentHash([]byte("different bytes")))
}

func TestContentHashEmptyPayload(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		ContentHash(nil))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips nuls", "a\x00b", "ab"},
		{"normalizes crlf", "line1\r\nline2\rline3", "line1\nline2\nline3"},
		{"trims whitespace", "  padded  ", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanText(tt.in))
		})
	}
}
