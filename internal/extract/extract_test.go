package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractTextFromBytes_PlainPassthrough(t *testing.T) {
	text, err := ExtractTextFromBytes(context.Background(), []byte("hello world"), "text/plain; charset=utf-8", "notes.txt")
	if err != nil {
		t.Fatalf("extract plain text: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractTextFromBytes_Docx(t *testing.T) {
	docXML := `<?xml version="1.0"?><w:document xmlns:w="ns"><w:body><w:p><w:r><w:t>First paragraph</w:t></w:r></w:p><w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p></w:body></w:document>`
	data := buildDocx(t, docXML)

	text, err := ExtractTextFromBytes(context.Background(), data, MimeDOCX, "letter.docx")
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	if !strings.Contains(text, "First paragraph") || !strings.Contains(text, "Second paragraph") {
		t.Fatalf("missing paragraphs in extracted text: %q", text)
	}
}

func TestExtractTextFromBytes_ZipDocxNormalizes(t *testing.T) {
	docXML := `<w:document xmlns:w="ns"><w:body><w:p><w:r><w:t>zip-shaped docx</w:t></w:r></w:p></w:body></w:document>`
	data := buildDocx(t, docXML)

	text, err := ExtractTextFromBytes(context.Background(), data, "application/zip", "test.docx")
	if err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
	if !strings.Contains(text, "zip-shaped docx") {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractTextFromBytes_RealZipRejected(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	_, err = ExtractTextFromBytes(context.Background(), buf.Bytes(), "application/zip", "notes.zip")
	if err == nil {
		t.Fatal("expected unsupported mime error for zip")
	}
	if !strings.Contains(err.Error(), "unsupported mime type: application/zip") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtractTextFromBytes_ImagesHaveNoText(t *testing.T) {
	for _, mime := range []string{MimeJPEG, MimePNG, MimeGIF} {
		_, err := ExtractTextFromBytes(context.Background(), []byte{0xFF, 0xD8}, mime, "photo")
		if !errors.Is(err, ErrNoTextContent) {
			t.Errorf("mime %s: expected ErrNoTextContent, got %v", mime, err)
		}
	}
}

func TestExtractTextFromBytes_LegacyDoc(t *testing.T) {
	payload := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0x00, 0x01}, []byte("Quarterly results attached for review")...)
	payload = append(payload, 0x00, 0x01)

	text, err := ExtractTextFromBytes(context.Background(), payload, MimeDOC, "report.doc")
	if err != nil {
		t.Fatalf("extract legacy doc: %v", err)
	}
	if !strings.Contains(text, "Quarterly results") {
		t.Fatalf("expected text run in output, got %q", text)
	}
}
