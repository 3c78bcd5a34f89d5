// Package parser extracts the typed listing fields from raw product page
// markup. Extraction is a pure function of the markup: every field is
// located independently through a structural signature and missing blocks
// yield nil for that field only.
package parser

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ebaysync/internal/listing"
	apperr "ebaysync/pkg/errors"
)

const (
	currencyPrefix = "US $"
	perUnitSuffix  = "/ea"

	freeMarker   = "Free"
	noShipMarker = "May not ship to"
	// fixed copy written to the sheet for listings that cannot be delivered
	undeliverableText = "Cannot be delivered to your country"

	siteSuffix = " | eBay"

	boldSpanSelector  = "span.ux-textspans.ux-textspans--BOLD"
	plainSpanSelector = "span.ux-textspans"
)

var weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Structural markers of the listing page blocks. Class-list containment is a
// best-effort heuristic; the provider can rename these at any time.
var (
	priceSig = Signature{
		Tag:     "div",
		Classes: []string{"x-price-primary"},
	}
	shippingSig = Signature{
		Tag:     "div",
		Classes: []string{"ux-labels-values", "col-12", "false", "ux-labels-values--shipping"},
	}
	deliverySig = Signature{
		Tag:         "div",
		Classes:     []string{"ux-labels-values__values-content"},
		ContainsAny: weekdays,
	}
	paramClasses = []string{"ux-labels-values", "ux-labels-values--inline", "col-6", "false"}
)

// Extractor parses one listing page.
type Extractor struct {
	doc *goquery.Document
	loc Locator
}

// New builds an extractor for the given markup using the default
// class-list locator.
func New(markup string) (*Extractor, error) {
	return NewWithLocator(markup, ClassListLocator{})
}

// NewWithLocator builds an extractor with a custom element locator.
func NewWithLocator(markup string, loc Locator) (*Extractor, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, apperr.NewParsing("parser", "failed to build document", err)
	}
	return &Extractor{doc: doc, loc: loc}, nil
}

// Extract returns all eight listing fields. Fields the markup does not
// carry stay nil.
func (e *Extractor) Extract() listing.Fields {
	return listing.Fields{
		Price:     e.Price(),
		Shipping:  e.Shipping(),
		Delivery:  e.DeliveryTime(),
		Title:     e.Title(),
		Condition: e.Param("Condition"),
		MPN:       e.Param("MPN"),
		Brand:     e.Param("Brand"),
		Model:     e.Param("Model"),
	}
}

// Price returns the main price text with the currency prefix and per-unit
// suffix stripped. Secondary and strikethrough prices live in different
// blocks and are never matched.
func (e *Extractor) Price() *string {
	block := e.loc.Locate(e.doc, priceSig)
	if block == nil {
		return nil
	}

	// Typical format: "US $123.45" or "US $123.45/ea"
	text := strings.TrimSpace(block.Text())
	text = strings.ReplaceAll(text, currencyPrefix, "")
	text = strings.ReplaceAll(text, perUnitSuffix, "")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return &text
}

// Shipping classifies the first bold value of the shipping block.
// Classification order matters: the free marker wins over a currency amount
// present in the same text.
func (e *Extractor) Shipping() *listing.ShippingCost {
	block := e.loc.Locate(e.doc, shippingSig)
	if block == nil {
		return nil
	}

	bold := block.Find(boldSpanSelector)
	if bold.Length() == 0 {
		return nil
	}

	text := strings.TrimSpace(bold.First().Text())
	switch {
	case strings.Contains(text, freeMarker):
		return listing.FreeShipping()
	case strings.Contains(text, noShipMarker):
		return listing.ShippingText(undeliverableText)
	case strings.Contains(text, currencyPrefix):
		// e.g. "US $15.00"
		return listing.ShippingText(strings.TrimSpace(strings.ReplaceAll(text, currencyPrefix, "")))
	}
	return listing.ShippingText(text)
}

// DeliveryTime returns the estimated delivery window. Only a values block
// whose text mentions a weekday qualifies; other values blocks on the page
// share the same classes.
func (e *Extractor) DeliveryTime() *string {
	block := e.loc.Locate(e.doc, deliverySig)
	if block == nil {
		return nil
	}

	bold := block.Find(boldSpanSelector)
	if bold.Length() >= 2 {
		window := strings.TrimSpace(bold.Eq(0).Text()) + " to " + strings.TrimSpace(bold.Eq(1).Text())
		return &window
	}

	// fallback: first plain span text
	span := block.Find(plainSpanSelector).First()
	if span.Length() == 0 {
		return nil
	}
	text := strings.TrimSpace(span.Text())
	return &text
}

// Title returns the document title with HTML entities resolved and the
// trailing site suffix stripped.
func (e *Extractor) Title() *string {
	sel := e.doc.Find("title").First()
	if sel.Length() == 0 {
		return nil
	}

	// The net/html tokenizer already resolves entities once; scraped pages
	// regularly carry double-escaped titles, so unescape again.
	text := html.UnescapeString(strings.TrimSpace(sel.Text()))
	text = strings.ReplaceAll(text, siteSuffix, "")
	return &text
}

// Param returns the value of a generic key-value attribute block keyed by
// its label text, e.g. "Condition", "MPN", "Brand" or "Model". The first
// span of the block is the label, the second is the value.
func (e *Extractor) Param(name string) *string {
	block := e.loc.Locate(e.doc, Signature{
		Tag:         "dl",
		Classes:     paramClasses,
		ContainsAny: []string{name},
	})
	if block == nil {
		return nil
	}

	spans := block.Find("span")
	if spans.Length() < 2 {
		return nil
	}

	text := strings.TrimSpace(spans.Eq(1).Text())
	return &text
}
