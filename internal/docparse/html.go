package docparse

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// The receipt page is one specific government consumer-receipt template, so
// extraction is regex against its fixed CSS class markers rather than a full
// HTML parse. Values use Brazilian number formatting (1.234,56).
var (
	receiptItemPattern = regexp.MustCompile(`(?s)<span class="txtTit2?">\s*(.*?)\s*</span>.*?` +
		`<span class="Rqtd">.*?</strong>\s*([\d.,]+)\s*</span>.*?` +
		`<span class="RvlUnit">.*?</strong>\s*([\d.,]+)\s*</span>`)
	receiptTotalPattern    = regexp.MustCompile(`<span class="totalNumb txtMax">\s*([\d.,]+)\s*</span>`)
	receiptIssuerPattern   = regexp.MustCompile(`(?s)<div class="txtTopo[^"]*">\s*(.*?)\s*</div>`)
	receiptNumberPattern   = regexp.MustCompile(`<strong>\s*N[úu]mero:?\s*</strong>\s*(\d+)`)
	receiptEmissionPattern = regexp.MustCompile(`Emiss[ãa]o:?\s*</strong>?\s*(\d{2}/\d{2}/\d{4})(?:\s+(\d{2}:\d{2}:\d{2}))?`)
)

// parseReceiptHTML pulls total, issuer, emission date, document number and
// the repeated item pattern out of a receipt page.
func parseReceiptHTML(data []byte) Result {
	page := string(stripBOM(data))

	itemMatches := receiptItemPattern.FindAllStringSubmatch(page, -1)
	if len(itemMatches) == 0 {
		return failure(KindHTML, "receipt page contains no recognizable item entries")
	}

	items := make([]Item, 0, len(itemMatches))
	for i, m := range itemMatches {
		qty, err := parseBrazilianNumber(m[2])
		if err != nil {
			return failure(KindHTML, "item %d quantity %q is not a number", i+1, m[2])
		}
		price, err := parseBrazilianNumber(m[3])
		if err != nil {
			return failure(KindHTML, "item %d unit price %q is not a number", i+1, m[3])
		}
		items = append(items, Item{
			Name:      strings.TrimSpace(m[1]),
			Quantity:  qty,
			UnitPrice: price,
			LineTotal: qty.Mul(price).Round(2),
		})
	}

	totalMatch := receiptTotalPattern.FindStringSubmatch(page)
	if totalMatch == nil {
		return failure(KindHTML, "receipt total not found")
	}
	total, err := parseBrazilianNumber(totalMatch[1])
	if err != nil {
		return failure(KindHTML, "receipt total %q is not a number", totalMatch[1])
	}

	var supplier string
	if m := receiptIssuerPattern.FindStringSubmatch(page); m != nil {
		supplier = strings.TrimSpace(m[1])
	}

	var docNumber string
	if m := receiptNumberPattern.FindStringSubmatch(page); m != nil {
		docNumber = m[1]
	}

	issuedAt := time.Time{}
	if m := receiptEmissionPattern.FindStringSubmatch(page); m != nil {
		layout, raw := "02/01/2006", m[1]
		if m[2] != "" {
			layout, raw = "02/01/2006 15:04:05", m[1]+" "+m[2]
		}
		if t, err := time.Parse(layout, raw); err == nil {
			issuedAt = t
		}
	}

	return Result{
		Success:        true,
		Message:        fmt.Sprintf("receipt parsed: %d items", len(items)),
		Kind:           KindHTML,
		TotalValue:     total,
		IssuedAt:       issuedAt,
		Supplier:       supplier,
		DocumentNumber: docNumber,
		Items:          items,
	}
}

// parseBrazilianNumber converts "1.234,56" to a decimal. Plain dot-decimal
// values ("2.5") pass through unchanged.
func parseBrazilianNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}
