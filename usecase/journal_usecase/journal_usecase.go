package journal_usecase

import (
	"cmp"
	"context"
	"math"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"rebang/domain"
	"rebang/port/journal_port"
	"rebang/utils/logger"
	"rebang/utils/metrics"
)

const (
	FeedTitle    = "技术期刊"
	FeedHomePage = "https://rebang.today/?tab=journal-tech"

	DefaultLimit = 50
	MaxLimit     = 200
)

// ProbeCache memoizes source reachability by probe URL.
type ProbeCache = expirable.LRU[string, bool]

// NewProbeCache returns a probe memo holding size entries for ttl.
func NewProbeCache(size int, ttl time.Duration) *ProbeCache {
	return expirable.NewLRU[string, bool](size, nil, ttl)
}

// JournalUsecase builds the merged tech journal feed.
type JournalUsecase struct {
	port        journal_port.JournalSourcePort
	sources     []domain.JournalSource
	probes      *ProbeCache
	concurrency int
}

func NewJournalUsecase(port journal_port.JournalSourcePort, sources []domain.JournalSource, probes *ProbeCache, concurrency int) *JournalUsecase {
	if concurrency < 1 {
		concurrency = 1
	}
	return &JournalUsecase{
		port:        port,
		sources:     sources,
		probes:      probes,
		concurrency: concurrency,
	}
}

// Sources lists the configured sources for display.
func (u *JournalUsecase) Sources() []domain.JournalSourceRef {
	return lo.Map(u.sources, func(s domain.JournalSource, _ int) domain.JournalSourceRef {
		return s.Ref()
	})
}

// PerSourceLimit is min(max(5, ceil(limit/3)), 20).
func PerSourceLimit(limit int) int {
	return min(max(5, int(math.Ceil(float64(limit)/3))), 20)
}

// ClampLimit parses the journal limit: 50 by default, at most 200.
func ClampLimit(raw string) int {
	n, ok := domain.ParseLeadingInt(raw)
	if !ok {
		return DefaultLimit
	}
	return min(max(n, 1), MaxLimit)
}

// BuildFeed probes every source, reads the reachable ones and merges their
// posts newest first. Undated posts sort last. Source failures are skipped.
func (u *JournalUsecase) BuildFeed(ctx context.Context, limit int) (*domain.JSONFeed, error) {
	ctx = logger.WithOperation(ctx, "journal_feed")
	accessible := u.accessibleSources(ctx)
	metrics.JournalSourcesAccessible.Set(float64(len(accessible)))

	perSource := PerSourceLimit(limit)
	results := make([][]domain.JournalEntry, len(accessible))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)
	for i, src := range accessible {
		g.Go(func() error {
			entries, err := u.port.FetchEntries(gctx, src, perSource)
			if err != nil {
				logger.FromContext(gctx).WarnContext(gctx, "journal source failed", "source", src.Name, "error", err)
				return nil
			}
			results[i] = tagEntries(entries, src.Name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := lo.Filter(lo.Flatten(results), func(e domain.JournalEntry, _ int) bool {
		return e.Link != ""
	})
	SortEntries(merged)
	if len(merged) > limit {
		merged = merged[:limit]
	}

	items := lo.Map(merged, func(e domain.JournalEntry, _ int) domain.JSONFeedItem {
		return e.FeedItem()
	})
	logger.FromContext(ctx).InfoContext(ctx, "journal feed built",
		"sources", len(u.sources), "accessible", len(accessible), "items", len(items))

	return &domain.JSONFeed{
		Version:     domain.JSONFeedVersion,
		Title:       FeedTitle,
		HomePageURL: FeedHomePage,
		Items:       items,
	}, nil
}

func (u *JournalUsecase) accessibleSources(ctx context.Context) []domain.JournalSource {
	ok := make([]bool, len(u.sources))

	var g errgroup.Group
	g.SetLimit(u.concurrency)
	for i, src := range u.sources {
		g.Go(func() error {
			ok[i] = u.probe(ctx, src.Probe())
			return nil
		})
	}
	_ = g.Wait()

	return lo.Filter(u.sources, func(_ domain.JournalSource, i int) bool {
		return ok[i]
	})
}

func (u *JournalUsecase) probe(ctx context.Context, url string) bool {
	if u.probes != nil {
		if cached, found := u.probes.Get(url); found {
			return cached
		}
	}
	ok := u.port.Probe(ctx, url)
	if u.probes != nil && ctx.Err() == nil {
		u.probes.Add(url, ok)
	}
	return ok
}

func tagEntries(entries []domain.JournalEntry, sourceName string) []domain.JournalEntry {
	for i := range entries {
		entries[i].Categories = lo.Uniq(append([]string{sourceName}, entries[i].Categories...))
	}
	return entries
}

// SortEntries orders entries newest first; entries without a date go last,
// keeping their relative order.
func SortEntries(entries []domain.JournalEntry) {
	slices.SortStableFunc(entries, func(a, b domain.JournalEntry) int {
		return cmp.Compare(publishedUnix(b), publishedUnix(a))
	})
}

func publishedUnix(e domain.JournalEntry) int64 {
	if e.Published == nil {
		return 0
	}
	return e.Published.UnixMilli()
}
