package form

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const metaDescriptionLimit = 160

// MetaDescription turns description HTML into plain text fit for the
// meta description tag.
func MetaDescription(descriptionHTML string) string {
	if strings.TrimSpace(descriptionHTML) == "" {
		return ""
	}

	text := descriptionHTML
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(descriptionHTML))
	if err == nil {
		text = doc.Text()
	}

	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= metaDescriptionLimit {
		return text
	}
	return strings.TrimSpace(string(runes[:metaDescriptionLimit-1])) + "…"
}
