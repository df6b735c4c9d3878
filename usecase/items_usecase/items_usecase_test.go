package items_usecase

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"rebang/domain"
	"rebang/mocks"
	"rebang/usecase/aggregate_usecase"
	"rebang/usecase/fetch_feed_usecase"
	"rebang/usecase/menu_usecase"
	"rebang/utils/errors"
)

const origin = "http://collab"

func testMenu() *domain.Menu {
	return &domain.Menu{
		Version: 1,
		Categories: []domain.Category{
			{
				Key:           "home",
				Name:          "综合",
				DefaultTabKey: "top",
				Tabs: []domain.Tab{
					{
						Key:  "top",
						Name: "热榜",
						Type: domain.TabTypeAggregate,
						SubTabs: []domain.SubTab{
							{Key: "today", Name: "今日"},
							{Key: "weekly", Name: "本周"},
						},
						AggregateSources: []domain.AggregateSource{
							{Key: "zhihu", Name: "知乎", RsshubPath: "/zhihu/hot"},
							{Key: "hupu", Name: "虎扑", RsshubPath: "/hupu/hot"},
						},
					},
					{Key: "empty", Name: "空", Type: domain.TabTypeAggregate},
				},
			},
			{
				Key:           "tech",
				Name:          "科技",
				DefaultTabKey: "ithome",
				Tabs: []domain.Tab{
					{
						Key:  "ithome",
						Name: "IT之家",
						Type: domain.TabTypeFeed,
						SubTabs: []domain.SubTab{
							{Key: "today", Name: "日榜", RsshubPath: "/ithome/ranking/24h"},
							{Key: "ent", Name: "文娱", Disabled: true},
						},
					},
					{Key: "github", Name: "GitHub", Type: domain.TabTypeFeed, RsshubPath: "/github/trending", Disabled: true, DisabledReason: "需要 GITHUB_ACCESS_TOKEN"},
					{Key: "off", Name: "Off", Type: domain.TabTypeFeed, Disabled: true},
					{Key: "unmapped", Name: "Unmapped", Type: domain.TabTypeFeed},
					{Key: "journal-tech", Name: "技术期刊", Type: domain.TabTypeFeed, RsshubPath: "/journal-tech"},
				},
			},
		},
	}
}

type stubJournal []domain.JournalSourceRef

func (s stubJournal) Sources() []domain.JournalSourceRef { return s }

func newUsecase(port *mocks.MockFetchFeedPort) *ItemsUsecase {
	menu := menu_usecase.NewMenuUsecase(testMenu())
	return NewItemsUsecase(
		menu,
		fetch_feed_usecase.NewFetchFeedUsecase(port, menu, "", time.Second),
		aggregate_usecase.NewAggregateUsecase(port, ""),
		stubJournal{{Name: "Go Blog", Homepage: "https://go.dev/blog"}},
		Timeouts{Default: time.Second, Slow: 5 * time.Second, SlowTabKey: "journal-tech"},
	).WithClock(func() time.Time { return time.Date(2025, time.January, 6, 12, 0, 0, 0, time.Local) })
}

func feedOf(title string, items ...string) *domain.JSONFeed {
	feed := &domain.JSONFeed{Title: title, HomePageURL: "https://example.com"}
	for _, it := range items {
		feed.Items = append(feed.Items, domain.JSONFeedItem{ID: "https://example.com/" + it, Title: it})
	}
	return feed
}

func requireAppError(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := errors.AsAppContextError(err)
	require.True(t, ok)
	assert.Equal(t, status, appErr.HTTPStatusCode())
	assert.Equal(t, message, appErr.Message)
}

func TestItemsUsecase_FeedTabWithSub(t *testing.T) {
	ctrl := gomock.NewController(t)
	port := mocks.NewMockFetchFeedPort(ctrl)
	port.EXPECT().FetchFeed(gomock.Any(), origin, "/ithome/ranking/24h", 20).Return(feedOf("", "a", "b"), nil)

	res, err := newUsecase(port).Items(context.Background(), origin, ItemsQuery{Category: "tech", Limit: 20})
	require.NoError(t, err)

	assert.Equal(t, "tech", res.Category)
	assert.Equal(t, "ithome", res.Tab)
	assert.Equal(t, "today", res.Sub)
	assert.Equal(t, "IT之家", res.Title)
	assert.Equal(t, "https://example.com", res.Link)
	require.Len(t, res.Items, 2)
	assert.Equal(t, domain.SourceRef{Key: "ithome", Name: "IT之家"}, res.Items[0].Source)
	assert.Nil(t, res.Sources)
}

func TestItemsUsecase_JournalTabListsSourcesAndUsesSlowTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	port := mocks.NewMockFetchFeedPort(ctrl)
	port.EXPECT().FetchFeed(gomock.Any(), origin, "/journal-tech", 5).
		DoAndReturn(func(ctx context.Context, _, _ string, _ int) (*domain.JSONFeed, error) {
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			assert.Greater(t, time.Until(deadline), 2*time.Second)
			return feedOf("技术期刊", "post"), nil
		})

	res, err := newUsecase(port).Items(context.Background(), origin, ItemsQuery{Category: "tech", Tab: "journal-tech", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, "技术期刊", res.Title)
	assert.Equal(t, []domain.JournalSourceRef{{Name: "Go Blog", Homepage: "https://go.dev/blog"}}, res.Sources)
}

func TestItemsUsecase_NotConfigured(t *testing.T) {
	tests := []struct {
		name    string
		query   ItemsQuery
		message string
	}{
		{name: "disabled tab with reason", query: ItemsQuery{Category: "tech", Tab: "github"}, message: "需要 GITHUB_ACCESS_TOKEN"},
		{name: "disabled tab default reason", query: ItemsQuery{Category: "tech", Tab: "off"}, message: "该节点未启用"},
		{name: "disabled sub", query: ItemsQuery{Category: "tech", Tab: "ithome", Sub: "ent"}, message: "该子分类未启用"},
		{name: "unknown sub", query: ItemsQuery{Category: "tech", Tab: "ithome", Sub: "nope"}, message: "该节点暂无可用数据源映射"},
		{name: "no path", query: ItemsQuery{Category: "tech", Tab: "unmapped"}, message: "该节点暂无可用数据源映射"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			// No expectations: the collaborator must not be called.
			port := mocks.NewMockFetchFeedPort(ctrl)

			res, err := newUsecase(port).Items(context.Background(), origin, tt.query)
			assert.Nil(t, res)
			requireAppError(t, err, 422, tt.message)
		})
	}
}

func TestItemsUsecase_BadSelection(t *testing.T) {
	ctrl := gomock.NewController(t)
	port := mocks.NewMockFetchFeedPort(ctrl)
	menu := menu_usecase.NewMenuUsecase(&domain.Menu{Categories: []domain.Category{{Key: "home"}}})
	u := NewItemsUsecase(menu, fetch_feed_usecase.NewFetchFeedUsecase(port, menu, "", time.Second),
		aggregate_usecase.NewAggregateUsecase(port, ""), nil, Timeouts{Default: time.Second})

	_, err := u.Items(context.Background(), origin, ItemsQuery{})
	requireAppError(t, err, 400, "Bad category/tab")
	assert.True(t, stderrors.Is(err, errors.ErrBadMenuSelection))
}

func TestItemsUsecase_AggregateTab(t *testing.T) {
	ctrl := gomock.NewController(t)
	port := mocks.NewMockFetchFeedPort(ctrl)
	port.EXPECT().FetchFeed(gomock.Any(), origin, "/zhihu/hot", 5).Return(feedOf("知乎", "z1", "z2"), nil)
	port.EXPECT().FetchFeed(gomock.Any(), origin, "/hupu/hot", 5).Return(nil, stderrors.New("boom"))

	res, err := newUsecase(port).Items(context.Background(), origin, ItemsQuery{Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, "home", res.Category)
	assert.Equal(t, "top", res.Tab)
	assert.Equal(t, "today", res.Sub)
	assert.Equal(t, "热榜", res.Title)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, []domain.SourceError{{SourceKey: "hupu", Message: "boom"}}, res.Errors)
}

func TestItemsUsecase_AggregateSeedFollowsSub(t *testing.T) {
	run := func(sub string) []string {
		ctrl := gomock.NewController(t)
		port := mocks.NewMockFetchFeedPort(ctrl)
		port.EXPECT().FetchFeed(gomock.Any(), origin, "/zhihu/hot", gomock.Any()).Return(feedOf("", "z1", "z2", "z3"), nil)
		port.EXPECT().FetchFeed(gomock.Any(), origin, "/hupu/hot", gomock.Any()).Return(feedOf("", "h1", "h2", "h3"), nil)

		res, err := newUsecase(port).Items(context.Background(), origin, ItemsQuery{Sub: sub, Limit: 20})
		require.NoError(t, err)
		titles := make([]string, 0, len(res.Items))
		for _, item := range res.Items {
			titles = append(titles, item.Title)
		}
		return titles
	}

	assert.Equal(t, run("today"), run("today"))
	assert.ElementsMatch(t, run("today"), run("weekly"))
}

func TestItemsUsecase_EmptyAggregateTab(t *testing.T) {
	ctrl := gomock.NewController(t)
	port := mocks.NewMockFetchFeedPort(ctrl)

	res, err := newUsecase(port).Items(context.Background(), origin, ItemsQuery{Tab: "empty"})
	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Nil(t, res.Errors)
}

func TestItemsUsecase_FeedErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	port := mocks.NewMockFetchFeedPort(ctrl)
	upstream := errors.NewExternalAPIContextError("Request failed: 503 Service Unavailable", "gateway", "FeedGateway", "http_response", errors.ErrUpstreamStatus, nil)
	port.EXPECT().FetchFeed(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, upstream)

	_, err := newUsecase(port).Items(context.Background(), origin, ItemsQuery{Category: "tech"})
	requireAppError(t, err, 502, "Request failed: 503 Service Unavailable")
}

func TestItemsUsecase_Rising(t *testing.T) {
	ctrl := gomock.NewController(t)
	port := mocks.NewMockFetchFeedPort(ctrl)
	many := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
	port.EXPECT().FetchFeed(gomock.Any(), origin, "/zhihu/hot", 5).Return(feedOf("", many...), nil)
	port.EXPECT().FetchFeed(gomock.Any(), origin, "/hupu/hot", 5).Return(feedOf("", many...), nil)

	res := newUsecase(port).Rising(context.Background(), origin, 7, 50)

	assert.Equal(t, RisingTitle, res.Title)
	assert.Len(t, res.Items, domain.RisingLimit)
	assert.Equal(t, 1, res.Items[0].Rank)
	assert.Equal(t, domain.RisingLimit, res.Items[len(res.Items)-1].Rank)
}
