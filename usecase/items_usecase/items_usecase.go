package items_usecase

import (
	"context"
	"time"

	"rebang/domain"
	"rebang/usecase/aggregate_usecase"
	"rebang/usecase/fetch_feed_usecase"
	"rebang/usecase/menu_usecase"
	"rebang/utils/errors"
	"rebang/utils/logger"
)

const (
	RisingTitle = "全站飙升榜"

	defaultDisabledReason    = "该节点未启用"
	defaultSubDisabledReason = "该子分类未启用"
	missingMappingMessage    = "该节点暂无可用数据源映射"
)

// ItemsQuery is a /items selection. Empty keys mean "use the default".
type ItemsQuery struct {
	Category string
	Tab      string
	Sub      string
	Limit    int
}

// ItemsResult answers GET /items for both tab kinds. Errors is only set for
// aggregate tabs, Link and Sources only for feed tabs.
type ItemsResult struct {
	Category string                    `json:"category"`
	Tab      string                    `json:"tab"`
	Sub      string                    `json:"sub,omitempty"`
	Title    string                    `json:"title"`
	Link     string                    `json:"link,omitempty"`
	Items    []domain.UiItem           `json:"items"`
	Errors   []domain.SourceError      `json:"errors,omitempty"`
	Sources  []domain.JournalSourceRef `json:"sources,omitempty"`
}

// RisingResult answers GET /rising.
type RisingResult struct {
	Title  string               `json:"title"`
	Items  []domain.UiItem      `json:"items"`
	Errors []domain.SourceError `json:"errors,omitempty"`
}

// JournalSourceLister exposes the journal sources shown next to journal-tech.
type JournalSourceLister interface {
	Sources() []domain.JournalSourceRef
}

// Timeouts holds the per-request budgets for collaborator calls.
type Timeouts struct {
	Default time.Duration
	Slow    time.Duration
	// SlowTabKey gets the Slow budget.
	SlowTabKey string
}

type ItemsUsecase struct {
	menu      *menu_usecase.MenuUsecase
	feeds     *fetch_feed_usecase.FetchFeedUsecase
	aggregate *aggregate_usecase.AggregateUsecase
	journal   JournalSourceLister
	timeouts  Timeouts
	now       func() time.Time
}

func NewItemsUsecase(
	menu *menu_usecase.MenuUsecase,
	feeds *fetch_feed_usecase.FetchFeedUsecase,
	aggregate *aggregate_usecase.AggregateUsecase,
	journal JournalSourceLister,
	timeouts Timeouts,
) *ItemsUsecase {
	return &ItemsUsecase{
		menu:      menu,
		feeds:     feeds,
		aggregate: aggregate,
		journal:   journal,
		timeouts:  timeouts,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for period seeds.
func (u *ItemsUsecase) WithClock(now func() time.Time) *ItemsUsecase {
	u.now = now
	return u
}

// Items resolves the selection and serves it from its feed path or its
// aggregate sources.
func (u *ItemsUsecase) Items(ctx context.Context, origin string, q ItemsQuery) (*ItemsResult, error) {
	res := u.menu.Resolve(q.Category, q.Tab, q.Sub)
	if !res.Found {
		return nil, errors.NewAppContextError(
			errors.CodeValidation,
			"Bad category/tab",
			"usecase",
			"ItemsUsecase",
			"resolve",
			errors.ErrBadMenuSelection,
			map[string]interface{}{"category": q.Category, "tab": q.Tab},
		)
	}
	tab := res.Tab
	if tab.Disabled {
		return nil, notConfigured(orDefault(tab.DisabledReason, defaultDisabledReason), res, errors.ErrNodeDisabled)
	}

	ctx = logger.WithSourceKey(ctx, tab.Key)
	ctx, cancel := context.WithTimeout(ctx, u.timeoutFor(tab.Key))
	defer cancel()

	if tab.Type == domain.TabTypeAggregate {
		return u.aggregateItems(ctx, origin, res, q.Limit), nil
	}
	return u.feedItems(ctx, origin, res, q.Limit)
}

func (u *ItemsUsecase) aggregateItems(ctx context.Context, origin string, res menu_usecase.Resolution, limit int) *ItemsResult {
	out := &ItemsResult{
		Category: res.Category.Key,
		Tab:      res.Tab.Key,
		Sub:      res.SubKey,
		Title:    res.Tab.Name,
		Items:    []domain.UiItem{},
	}
	if len(res.Tab.AggregateSources) == 0 {
		return out
	}

	seed := aggregate_usecase.SeedForSub(res.SubKey, u.now())
	agg := u.aggregate.Aggregate(ctx, origin, res.Tab.AggregateSources, limit, seed)
	out.Items = agg.Items
	out.Errors = agg.Errors
	return out
}

func (u *ItemsUsecase) feedItems(ctx context.Context, origin string, res menu_usecase.Resolution, limit int) (*ItemsResult, error) {
	tab := res.Tab

	path := tab.RsshubPath
	if len(tab.SubTabs) > 0 {
		path = ""
		if sub := tab.FindSubTab(res.SubKey); sub != nil {
			if sub.Disabled {
				return nil, notConfigured(orDefault(sub.DisabledReason, defaultSubDisabledReason), res, errors.ErrNodeDisabled)
			}
			path = sub.RsshubPath
		}
	}
	if path == "" {
		return nil, notConfigured(missingMappingMessage, res, errors.ErrMissingFeedMapping)
	}

	feed, err := u.feeds.FetchItems(ctx, origin, path, tab.Source(), limit)
	if err != nil {
		return nil, err
	}

	out := &ItemsResult{
		Category: res.Category.Key,
		Tab:      tab.Key,
		Sub:      res.SubKey,
		Title:    feed.Title,
		Link:     feed.Link,
		Items:    feed.Items,
	}
	if tab.Key == u.timeouts.SlowTabKey && u.journal != nil {
		out.Sources = u.journal.Sources()
	}
	return out, nil
}

// Rising shuffles the home/top sources with a caller supplied seed, capped
// at domain.RisingLimit items.
func (u *ItemsUsecase) Rising(ctx context.Context, origin string, seed uint32, limit int) *RisingResult {
	ctx, cancel := context.WithTimeout(ctx, u.timeouts.Default)
	defer cancel()

	limit = min(limit, domain.RisingLimit)
	sources := u.menu.TopSources()
	if len(sources) == 0 {
		return &RisingResult{Title: RisingTitle, Items: []domain.UiItem{}}
	}
	agg := u.aggregate.Aggregate(ctx, origin, sources, limit, seed)
	return &RisingResult{Title: RisingTitle, Items: agg.Items, Errors: agg.Errors}
}

func (u *ItemsUsecase) timeoutFor(tabKey string) time.Duration {
	if tabKey == u.timeouts.SlowTabKey && u.timeouts.Slow > 0 {
		return u.timeouts.Slow
	}
	return u.timeouts.Default
}

func notConfigured(message string, res menu_usecase.Resolution, cause error) error {
	return errors.NewAppContextError(
		errors.CodeNotConfigured,
		message,
		"usecase",
		"ItemsUsecase",
		"items",
		cause,
		map[string]interface{}{"category": res.Category.Key, "tab": res.Tab.Key, "sub": res.SubKey},
	)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
