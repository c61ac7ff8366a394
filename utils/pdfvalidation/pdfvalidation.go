package pdfvalidation

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFLimits defines the validation limits for PDF uploads
type PDFLimits struct {
	MaxFileSizeMB int
	MaxPages      int
	Name          string // for error messages
}

// NoteLimits bounds note attachments uploaded alongside videos.
var NoteLimits = PDFLimits{
	MaxFileSizeMB: 25,
	MaxPages:      200,
	Name:          "note",
}

// ValidationResult contains the result of PDF validation
type ValidationResult struct {
	Valid     bool
	PageCount int
	FileSize  int64
	Error     string
}

// ValidatePDFFile validates a PDF file against the given limits.
func ValidatePDFFile(file *multipart.FileHeader, limits PDFLimits) (*ValidationResult, error) {
	result := &ValidationResult{FileSize: file.Size}

	maxSize := int64(limits.MaxFileSizeMB) * 1024 * 1024
	if file.Size > maxSize {
		result.Error = fmt.Sprintf("File size exceeds maximum allowed size of %dMB", limits.MaxFileSizeMB)
		return result, nil
	}

	if !strings.HasSuffix(strings.ToLower(file.Filename), ".pdf") {
		result.Error = "Only PDF files are supported"
		return result, nil
	}

	fileContent, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer fileContent.Close()

	content, err := io.ReadAll(fileContent)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return validateContent(content, result, limits)
}

// ValidatePDFBytes validates PDF content bytes against the given limits.
func ValidatePDFBytes(content []byte, limits PDFLimits) (*ValidationResult, error) {
	result := &ValidationResult{FileSize: int64(len(content))}

	maxSize := int64(limits.MaxFileSizeMB) * 1024 * 1024
	if result.FileSize > maxSize {
		result.Error = fmt.Sprintf("File size exceeds maximum allowed size of %dMB", limits.MaxFileSizeMB)
		return result, nil
	}

	return validateContent(content, result, limits)
}

func validateContent(content []byte, result *ValidationResult, limits PDFLimits) (*ValidationResult, error) {
	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		result.Error = "Invalid PDF file: missing PDF header"
		return result, nil
	}

	pageCount, err := pageCountOf(content)
	if err != nil {
		result.Error = fmt.Sprintf("Failed to read PDF: %v", err)
		return result, nil
	}
	result.PageCount = pageCount

	if pageCount > limits.MaxPages {
		result.Error = fmt.Sprintf("PDF has %d pages, which exceeds the maximum of %d pages for a %s",
			pageCount, limits.MaxPages, limits.Name)
		return result, nil
	}
	if pageCount == 0 {
		result.Error = "PDF has no pages"
		return result, nil
	}

	result.Valid = true
	return result, nil
}

// sanitizePDF trims trailing garbage after the final %%EOF marker.
func sanitizePDF(content []byte) []byte {
	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		return content
	}

	eofMarker := []byte("%%EOF")
	lastEOF := bytes.LastIndex(content, eofMarker)
	if lastEOF == -1 {
		return content
	}

	pdfEnd := lastEOF + len(eofMarker)
	for pdfEnd < len(content) && (content[pdfEnd] == '\n' || content[pdfEnd] == '\r') {
		pdfEnd++
	}

	if pdfEnd < len(content) {
		return content[:pdfEnd]
	}
	return content
}

func pageCountOf(content []byte) (int, error) {
	content = sanitizePDF(content)
	reader := bytes.NewReader(content)

	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse PDF: %w", err)
	}

	return pdfReader.NumPage(), nil
}
