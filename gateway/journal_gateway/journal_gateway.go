package journal_gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"

	"rebang/domain"
	"rebang/utils/logger"
)

const maxDocumentSize = 4 << 20

// fallbackFeedPaths are tried, in order, when a homepage does not advertise
// its feed.
var fallbackFeedPaths = []string{"rss", "rss.xml", "feed", "feed.xml", "feed.rss", "atom.xml", "index.xml"}

// JournalGateway reads RSS/Atom/JSON feeds of the journal sources.
type JournalGateway struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	maxRetries uint64
}

func NewJournalGateway(httpClient *http.Client, userAgent string, timeout time.Duration) *JournalGateway {
	if httpClient == nil {
		httpClient = &http.Client{Transport: http.DefaultTransport}
	}
	return &JournalGateway{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
		maxRetries: 2,
	}
}

// Probe reports whether url answers a GET with a 2xx status.
func (g *JournalGateway) Probe(ctx context.Context, target string) bool {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		logger.FromContext(ctx).DebugContext(ctx, "journal probe failed", "url", target, "error", err)
		return false
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
	}()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// FetchEntries reads the source's feed, discovering it from the homepage
// when no feed URL is configured.
func (g *JournalGateway) FetchEntries(ctx context.Context, source domain.JournalSource, limit int) ([]domain.JournalEntry, error) {
	if source.FeedURL != "" {
		return g.fetchFeed(ctx, source.FeedURL, source.Name, limit)
	}
	return g.fetchDiscovered(ctx, source, limit)
}

func (g *JournalGateway) fetchDiscovered(ctx context.Context, source domain.JournalSource, limit int) ([]domain.JournalEntry, error) {
	home, err := g.get(ctx, source.Homepage)
	if err != nil {
		return nil, err
	}

	candidates, err := FeedCandidates(source.Homepage, home)
	if err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		entries, err := g.fetchFeed(ctx, candidate, source.Name, limit)
		if err != nil {
			logger.FromContext(ctx).DebugContext(ctx, "journal feed candidate rejected",
				"source", source.Name, "candidate", candidate, "error", err)
			continue
		}
		if len(entries) > 0 {
			return entries, nil
		}
	}
	return nil, nil
}

// FeedCandidates lists feed URLs for a homepage: the first advertised
// alternate link, then the conventional paths, without duplicates.
func FeedCandidates(homepage string, html []byte) ([]string, error) {
	base, err := url.Parse(homepage)
	if err != nil {
		return nil, fmt.Errorf("parse homepage: %w", err)
	}

	var candidates []string
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err == nil {
		doc.Find(`link[rel="alternate"][href]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, _ := s.Attr("href")
			typ := strings.ToLower(s.AttrOr("type", ""))
			if href == "" || !looksLikeFeed(href, typ) {
				return true
			}
			if ref, err := url.Parse(href); err == nil {
				candidates = append(candidates, base.ResolveReference(ref).String())
			}
			return false
		})
	}

	for _, p := range fallbackFeedPaths {
		candidates = append(candidates, base.ResolveReference(&url.URL{Path: "/" + p}).String())
	}
	return lo.Uniq(candidates), nil
}

func looksLikeFeed(href, typ string) bool {
	return strings.Contains(typ, "rss") ||
		strings.Contains(typ, "atom") ||
		strings.HasSuffix(href, ".xml") ||
		strings.HasSuffix(href, ".rss") ||
		strings.HasSuffix(href, ".atom")
}

func (g *JournalGateway) fetchFeed(ctx context.Context, feedURL, sourceName string, limit int) ([]domain.JournalEntry, error) {
	body, err := g.get(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}
	return EntriesFromFeed(feed, sourceName, limit), nil
}

// EntriesFromFeed keeps the first limit items and drops those without a
// title or link.
func EntriesFromFeed(feed *gofeed.Feed, sourceName string, limit int) []domain.JournalEntry {
	items := feed.Items
	if limit >= 0 && len(items) > limit {
		items = items[:limit]
	}

	entries := make([]domain.JournalEntry, 0, len(items))
	for _, item := range items {
		if item == nil || item.Title == "" || item.Link == "" {
			continue
		}
		description := item.Content
		if description == "" {
			description = item.Description
		}
		entry := domain.JournalEntry{
			Title:       item.Title,
			Link:        item.Link,
			Description: description,
			Author:      authorName(item, sourceName),
			Categories:  []string{sourceName},
		}
		switch {
		case item.PublishedParsed != nil:
			entry.Published = item.PublishedParsed
		case item.UpdatedParsed != nil:
			entry.Published = item.UpdatedParsed
		}
		entries = append(entries, entry)
	}
	return entries
}

func authorName(item *gofeed.Item, fallback string) string {
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		if names := lo.Compact(item.DublinCoreExt.Creator); len(names) > 0 {
			return strings.Join(names, ", ")
		}
	}
	names := lo.FilterMap(item.Authors, func(p *gofeed.Person, _ int) (string, bool) {
		if p == nil || p.Name == "" {
			return "", false
		}
		return p.Name, true
	})
	if len(names) > 0 {
		return strings.Join(names, ", ")
	}
	return fallback
}

// get fetches a document, retrying transport failures and 5xx replies.
func (g *JournalGateway) get(ctx context.Context, target string) ([]byte, error) {
	var body []byte
	operation := func() error {
		reqCtx, cancel := g.withTimeout(ctx)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", g.userAgent)

		resp, err := g.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("GET %s: status %d", target, resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return backoff.Permanent(fmt.Errorf("GET %s: status %d", target, resp.StatusCode))
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 2 * time.Second
	policy.Multiplier = 2

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, g.maxRetries), ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

func (g *JournalGateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}
