package dietapi

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanIngredients strips embedded HTML markup from ingredient strings. The
// provider occasionally ships ingredient names as HTML fragments; only their
// text content is shown to the user and sent to the oracle.
func CleanIngredients(ingredients []string) []string {
	cleaned := make([]string, 0, len(ingredients))
	for _, ingredient := range ingredients {
		cleaned = append(cleaned, cleanHTML(ingredient))
	}
	return cleaned
}

func cleanHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
