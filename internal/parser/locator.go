package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Signature describes the structural location of a field block: an element
// tag, the classes its class list must contain, and optionally substrings
// the rendered text must contain.
type Signature struct {
	Tag         string
	Classes     []string
	ContainsAny []string
}

// Locator finds the first element matching a signature. The matching
// strategy lives behind this interface so it can be swapped without
// touching the field-level extraction logic.
type Locator interface {
	Locate(doc *goquery.Document, sig Signature) *goquery.Selection
}

// ClassListLocator matches elements whose class list contains every class of
// the signature, then filters by rendered-text containment.
type ClassListLocator struct{}

// Locate implements Locator.
func (ClassListLocator) Locate(doc *goquery.Document, sig Signature) *goquery.Selection {
	candidates := doc.Find(sig.Tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		for _, class := range sig.Classes {
			if !s.HasClass(class) {
				return false
			}
		}
		return true
	})
	if candidates.Length() == 0 {
		return nil
	}

	if len(sig.ContainsAny) == 0 {
		return candidates.First()
	}

	var match *goquery.Selection
	candidates.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		for _, sub := range sig.ContainsAny {
			if strings.Contains(text, sub) {
				match = s
				return false
			}
		}
		return true
	})
	return match
}
