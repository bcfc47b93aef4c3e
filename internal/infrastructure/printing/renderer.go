// Package printing renders sale receipts to PDF using headless Chrome.
package printing

import (
	"context"
	"time"
)

// PaperSize identifies a supported output paper format
type PaperSize string

const (
	// PaperSizeA4 is standard A4 paper (210x297mm)
	PaperSizeA4 PaperSize = "A4"
	// PaperSizeReceipt80 is 80mm thermal receipt paper
	PaperSizeReceipt80 PaperSize = "receipt_80"
	// PaperSizeReceipt58 is 58mm thermal receipt paper
	PaperSizeReceipt58 PaperSize = "receipt_58"
)

// IsValid reports whether the paper size is supported
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeReceipt80, PaperSizeReceipt58:
		return true
	}
	return false
}

// IsReceipt reports whether the paper size is continuous receipt paper
func (p PaperSize) IsReceipt() bool {
	return p == PaperSizeReceipt80 || p == PaperSizeReceipt58
}

// Dimensions returns the paper width and height in millimeters.
// Receipt paper heights are nominal; actual output follows content length.
func (p PaperSize) Dimensions() (width, height float64) {
	switch p {
	case PaperSizeReceipt80:
		return 80, 297
	case PaperSizeReceipt58:
		return 58, 297
	default:
		return 210, 297
	}
}

// Margins holds page margins in millimeters
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// RenderRequest contains the parameters for rendering HTML to PDF
type RenderRequest struct {
	// HTML content to render
	HTML string
	// PaperSize defines the output paper dimensions
	PaperSize PaperSize
	// Margins in millimeters
	Margins Margins
	// Title for the PDF document metadata
	Title string
	// Timeout overrides the default rendering timeout
	Timeout time.Duration
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	// PDFData is the raw PDF file content
	PDFData []byte
	// PageCount is the number of pages in the PDF
	PageCount int
	// RenderDuration is how long the rendering took
	RenderDuration time.Duration
}

// PDFRenderer defines the interface for rendering HTML to PDF
type PDFRenderer interface {
	// Render converts HTML content to a PDF document
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	// Close releases any resources held by the renderer
	Close() error
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
