package html_parser

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// SummaryMaxRunes is the length summaries are cut to before the ellipsis.
const SummaryMaxRunes = 120

// strictPolicy drops every tag. script and style bodies are skipped by
// bluemonday's default skip-content set.
var strictPolicy = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// HTMLToText strips markup, collapses whitespace and decodes entities.
func HTMLToText(raw string) string {
	if raw == "" {
		return ""
	}
	stripped := strictPolicy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(normalizeWS(stripped)))
}

// Summarize cuts text to maxRunes characters and appends "..." when it
// was longer.
func Summarize(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes]) + "..."
}

// FirstImageURL returns the source of the first <img> in the fragment that
// carries one, with entities already decoded. Lazy-load attributes such as
// data-src count when src is absent.
func FirstImageURL(fragment string) string {
	if fragment == "" || !strings.Contains(strings.ToLower(fragment), "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	var found string
	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found = imageSource(s)
		return found == ""
	})
	return found
}

func imageSource(s *goquery.Selection) string {
	if src, ok := s.Attr("src"); ok && strings.TrimSpace(src) != "" {
		return strings.TrimSpace(src)
	}
	if len(s.Nodes) == 0 {
		return ""
	}
	for _, attr := range s.Nodes[0].Attr {
		if strings.HasSuffix(strings.ToLower(attr.Key), "src") && strings.TrimSpace(attr.Val) != "" {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}

func normalizeWS(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
