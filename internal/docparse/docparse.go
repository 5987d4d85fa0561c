// Package docparse extracts purchase data from supplier fiscal documents:
// NF-e XML invoices and the consumer-receipt HTML template. Parsing never
// panics or returns a Go error to the caller — every failure is reported as a
// structured Result with Success=false and a diagnostic message, so the
// interactive flow can always offer the user a correction path.
package docparse

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the detected document format.
type Kind string

const (
	KindXML     Kind = "xml"
	KindHTML    Kind = "html"
	KindUnknown Kind = "unknown"
)

// Item is one extracted document line. LineTotal is always derived as
// Quantity × UnitPrice; a source-declared total that disagrees is noted in the
// Result message but never stored.
type Item struct {
	Name      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Result is the outcome of parsing one document.
type Result struct {
	Success        bool
	Message        string
	Kind           Kind
	TotalValue     decimal.Decimal
	IssuedAt       time.Time
	Supplier       string
	DocumentNumber string
	Items          []Item
}

// Parse sniffs the payload kind and dispatches to the matching extractor.
func Parse(data []byte) Result {
	switch DetectKind(data) {
	case KindHTML:
		return parseReceiptHTML(data)
	case KindXML:
		return parseInvoiceXML(data)
	default:
		return Result{
			Kind:    KindUnknown,
			Message: "unrecognized document: expected an NF-e XML invoice or a receipt HTML page",
		}
	}
}

// DetectKind sniffs content rather than trusting a file extension: an HTML
// doctype or <html> tag wins over an XML prolog because receipt pages often
// carry both.
func DetectKind(data []byte) Kind {
	probe := bytes.ToLower(bytes.TrimSpace(stripBOM(data)))
	if len(probe) == 0 {
		return KindUnknown
	}
	if bytes.Contains(probe, []byte("<!doctype html")) || bytes.Contains(probe, []byte("<html")) {
		return KindHTML
	}
	if bytes.HasPrefix(probe, []byte("<?xml")) ||
		bytes.Contains(probe, []byte("<nfeproc")) ||
		bytes.Contains(probe, []byte("<nfe")) ||
		bytes.Contains(probe, []byte("&lt;nfe")) {
		return KindXML
	}
	return KindUnknown
}

func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}

// Describe renders the human-readable import summary: supplier, document
// number and an enumerated item list. Generated on demand from the structured
// result — the structured line items remain the source of truth.
func (r Result) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Compra importada — %s", r.Supplier)
	if r.DocumentNumber != "" {
		fmt.Fprintf(&b, " (documento %s)", r.DocumentNumber)
	}
	b.WriteString("\n")
	for i, it := range r.Items {
		fmt.Fprintf(&b, "%d. %s — %s × R$ %s = R$ %s\n",
			i+1, it.Name,
			it.Quantity.String(),
			it.UnitPrice.StringFixed(2),
			it.LineTotal.StringFixed(2))
	}
	return strings.TrimRight(b.String(), "\n")
}

func failure(kind Kind, format string, args ...any) Result {
	return Result{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
