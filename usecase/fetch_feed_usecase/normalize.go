package fetch_feed_usecase

import (
	"html"
	"net/url"
	"strings"

	"rebang/domain"
	"rebang/utils/html_parser"
)

// ImageProxyPath is where the media proxy is mounted.
const ImageProxyPath = "/api/rebang/image"

// Normalize turns a JSON Feed into at most limit ranked UI items. Unusable
// items are dropped before the limit applies. When proxyBase is non-empty,
// remote images are rewritten to go through the media proxy.
func Normalize(feed *domain.JSONFeed, source domain.SourceRef, limit int, proxyBase string) []domain.UiItem {
	if feed == nil || limit <= 0 {
		return []domain.UiItem{}
	}

	items := make([]domain.UiItem, 0, min(limit, len(feed.Items)))
	for _, it := range feed.Items {
		if !it.Usable() {
			continue
		}
		if len(items) == limit {
			break
		}

		link := it.Link()
		ui := domain.UiItem{
			Rank:          len(items) + 1,
			Title:         it.Title,
			Link:          link,
			Summary:       summaryOf(it),
			Image:         imageOf(it),
			DatePublished: it.DatePublished,
			Source:        source,
		}
		if ui.Image != "" && proxyBase != "" {
			ui.Image = ProxiedImageURL(proxyBase, ui.Image, link)
		}
		items = append(items, ui)
	}
	return items
}

func summaryOf(it domain.JSONFeedItem) string {
	raw := it.Summary
	if raw == "" {
		raw = it.ContentText
	}
	if raw == "" {
		raw = it.ContentHTML
	}
	text := html_parser.HTMLToText(raw)
	if text == "" {
		return ""
	}
	return html_parser.Summarize(text, html_parser.SummaryMaxRunes)
}

func imageOf(it domain.JSONFeedItem) string {
	if it.Image != "" {
		// Feeds often carry attribute-escaped URLs ("&amp;") in this field.
		return html.UnescapeString(it.Image)
	}
	if img := html_parser.FirstImageURL(it.ContentHTML); img != "" {
		return img
	}
	return html_parser.FirstImageURL(it.Summary)
}

// ProxiedImageURL points image at the media proxy under proxyBase. Images
// that are not absolute http(s) URLs are returned unchanged.
func ProxiedImageURL(proxyBase, image, link string) string {
	target := image
	if strings.HasPrefix(target, "//") {
		target = "https:" + target
	}
	lower := strings.ToLower(target)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return image
	}
	if strings.HasPrefix(target, proxyBase+ImageProxyPath) {
		return image
	}

	var b strings.Builder
	b.WriteString(proxyBase)
	b.WriteString(ImageProxyPath)
	b.WriteString("?url=")
	b.WriteString(url.QueryEscape(target))
	if link != "" {
		b.WriteString("&link=")
		b.WriteString(url.QueryEscape(link))
	}
	return b.String()
}
