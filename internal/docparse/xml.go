package docparse

import (
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NF-e layout subset. Tags carry no namespace so unmarshaling matches the
// local element names whether or not the document declares the
// portalfiscal namespace.
type nfeProc struct {
	NFe nfeDoc `xml:"NFe"`
}

type nfeDoc struct {
	InfNFe infNFe `xml:"infNFe"`
}

type infNFe struct {
	Ide   nfeIde   `xml:"ide"`
	Emit  nfeEmit  `xml:"emit"`
	Det   []nfeDet `xml:"det"`
	Total nfeTotal `xml:"total"`
}

type nfeIde struct {
	Number string `xml:"nNF"`
	DhEmi  string `xml:"dhEmi"` // current layout: RFC 3339 with offset
	DEmi   string `xml:"dEmi"`  // legacy layout: date only
}

type nfeEmit struct {
	LegalName string `xml:"xNome"`
	TradeName string `xml:"xFant"`
}

type nfeDet struct {
	Prod nfeProd `xml:"prod"`
}

type nfeProd struct {
	Name      string `xml:"xProd"`
	Quantity  string `xml:"qCom"`
	UnitPrice string `xml:"vUnCom"`
	LineTotal string `xml:"vProd"`
}

type nfeTotal struct {
	ICMSTot nfeICMSTot `xml:"ICMSTot"`
}

type nfeICMSTot struct {
	InvoiceTotal string `xml:"vNF"`
}

// parseInvoiceXML locates the invoice element inside the payload and extracts
// header fields plus one Item per product element.
func parseInvoiceXML(data []byte) Result {
	doc, err := sliceInvoiceElement(data)
	if err != nil {
		return failure(KindXML, "invalid invoice XML: %v", err)
	}

	// Tolerate the parse target being the process wrapper or the inner
	// document element.
	var nfe nfeDoc
	var proc nfeProc
	if err := xml.Unmarshal([]byte(doc), &proc); err == nil && len(proc.NFe.InfNFe.Det) > 0 {
		nfe = proc.NFe
	} else if err := xml.Unmarshal([]byte(doc), &nfe); err != nil {
		return failure(KindXML, "invalid invoice XML: %v", err)
	}

	inf := nfe.InfNFe
	if len(inf.Det) == 0 {
		return failure(KindXML, "invoice has no product lines")
	}

	supplier := strings.TrimSpace(inf.Emit.TradeName)
	if supplier == "" {
		supplier = strings.TrimSpace(inf.Emit.LegalName)
	}

	issuedAt, err := parseEmissionDate(inf.Ide)
	if err != nil {
		return failure(KindXML, "invoice emission date: %v", err)
	}

	total, err := decimal.NewFromString(strings.TrimSpace(inf.Total.ICMSTot.InvoiceTotal))
	if err != nil {
		return failure(KindXML, "invoice total %q is not a number", inf.Total.ICMSTot.InvoiceTotal)
	}

	var notes []string
	items := make([]Item, 0, len(inf.Det))
	for i, det := range inf.Det {
		qty, err := decimal.NewFromString(strings.TrimSpace(det.Prod.Quantity))
		if err != nil {
			return failure(KindXML, "product %d quantity %q is not a number", i+1, det.Prod.Quantity)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(det.Prod.UnitPrice))
		if err != nil {
			return failure(KindXML, "product %d unit price %q is not a number", i+1, det.Prod.UnitPrice)
		}

		// Line totals are derived, never trusted: when the document's vProd
		// disagrees beyond a cent we keep qty × price and note the deviation.
		lineTotal := qty.Mul(price).Round(2)
		if declared, err := decimal.NewFromString(strings.TrimSpace(det.Prod.LineTotal)); err == nil {
			if declared.Sub(lineTotal).Abs().GreaterThan(decimal.NewFromFloat(0.01)) {
				notes = append(notes, fmt.Sprintf(
					"line %d: declared total %s differs from computed %s",
					i+1, declared.StringFixed(2), lineTotal.StringFixed(2)))
			}
		}

		items = append(items, Item{
			Name:      strings.TrimSpace(det.Prod.Name),
			Quantity:  qty,
			UnitPrice: price,
			LineTotal: lineTotal,
		})
	}

	msg := fmt.Sprintf("invoice parsed: %d items", len(items))
	if len(notes) > 0 {
		msg += " (" + strings.Join(notes, "; ") + ")"
	}

	return Result{
		Success:        true,
		Message:        msg,
		Kind:           KindXML,
		TotalValue:     total,
		IssuedAt:       issuedAt,
		Supplier:       supplier,
		DocumentNumber: strings.TrimSpace(inf.Ide.Number),
		Items:          items,
	}
}

// sliceInvoiceElement cuts the innermost well-formed invoice element out of
// the payload. Inputs arrive wrapped in unrelated markup (registry responses,
// escaped download envelopes), so the BOM is stripped and HTML entities are
// unescaped before locating the element.
func sliceInvoiceElement(data []byte) (string, error) {
	s := string(stripBOM(data))
	if !strings.Contains(s, "<NFe") && strings.Contains(s, "&lt;") {
		s = html.UnescapeString(s)
	}

	// Prefer the bare invoice element; fall back to the process wrapper.
	for _, tag := range []string{"NFe", "nfeProc"} {
		open := "<" + tag
		close := "</" + tag + ">"
		start := strings.Index(s, open)
		end := strings.LastIndex(s, close)
		if start >= 0 && end > start {
			return s[start : end+len(close)], nil
		}
	}
	return "", fmt.Errorf("no NFe element found in payload")
}

func parseEmissionDate(ide nfeIde) (time.Time, error) {
	if raw := strings.TrimSpace(ide.DhEmi); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("bad dhEmi %q", raw)
		}
		return t, nil
	}
	if raw := strings.TrimSpace(ide.DEmi); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("bad dEmi %q", raw)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("no emission date present")
}
