package aggregate_usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"rebang/domain"
	"rebang/mocks"
	"rebang/utils/errors"
)

var testSources = []domain.AggregateSource{
	{Key: "a", Name: "A", RsshubPath: "/a/hot"},
	{Key: "b", Name: "B", RsshubPath: "/b/hot"},
	{Key: "c", Name: "C", RsshubPath: "/c/hot"},
}

func feedOf(titles ...string) *domain.JSONFeed {
	feed := &domain.JSONFeed{}
	for _, title := range titles {
		feed.Items = append(feed.Items, domain.JSONFeedItem{ID: "https://x/" + title, Title: title})
	}
	return feed
}

func TestAggregateUsecase_PartialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	port := mocks.NewMockFetchFeedPort(ctrl)

	port.EXPECT().FetchFeed(gomock.Any(), "http://collab", "/a/hot", 4).Return(feedOf("A1", "A2"), nil)
	port.EXPECT().FetchFeed(gomock.Any(), "http://collab", "/b/hot", 4).Return(nil,
		errors.NewExternalAPIContextError("Request failed: 500 Internal Server Error", "gateway", "FeedGateway", "http_response", errors.ErrUpstreamStatus, nil))
	port.EXPECT().FetchFeed(gomock.Any(), "http://collab", "/c/hot", 4).Return(feedOf("C1"), nil)

	res := NewAggregateUsecase(port, "").Aggregate(context.Background(), "http://collab", testSources, 10, 1)

	require.Len(t, res.Items, 3)
	titles := []string{res.Items[0].Title, res.Items[1].Title, res.Items[2].Title}
	assert.Equal(t, []string{"A2", "C1", "A1"}, titles)
	for i, item := range res.Items {
		assert.Equal(t, i+1, item.Rank)
	}
	assert.Equal(t, domain.SourceRef{Key: "c", Name: "C"}, res.Items[1].Source)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, domain.SourceError{SourceKey: "b", Message: "Request failed: 500 Internal Server Error"}, res.Errors[0])
}

func TestAggregateUsecase_NoErrorsWhenAllSucceed(t *testing.T) {
	ctrl := gomock.NewController(t)
	port := mocks.NewMockFetchFeedPort(ctrl)
	port.EXPECT().FetchFeed(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(feedOf(), nil).Times(3)

	res := NewAggregateUsecase(port, "").Aggregate(context.Background(), "http://collab", testSources, 10, 1)

	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Items)
	assert.Nil(t, res.Errors)
}

func TestAggregateUsecase_PlainErrorMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	port := mocks.NewMockFetchFeedPort(ctrl)
	port.EXPECT().FetchFeed(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, stderrors.New("boom"))

	res := NewAggregateUsecase(port, "").Aggregate(context.Background(), "http://collab", testSources[:1], 10, 1)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "boom", res.Errors[0].Message)
}

func TestAggregateUsecase_DeterministicAndLimited(t *testing.T) {
	run := func() []string {
		ctrl := gomock.NewController(t)
		port := mocks.NewMockFetchFeedPort(ctrl)
		for i, src := range testSources {
			titles := make([]string, 0, 5)
			for n := 0; n < 5; n++ {
				titles = append(titles, fmt.Sprintf("%s%d", src.Key, n))
			}
			port.EXPECT().FetchFeed(gomock.Any(), gomock.Any(), src.RsshubPath, 3).Return(feedOf(titles[:3+i%2]...), nil)
		}
		res := NewAggregateUsecase(port, "").Aggregate(context.Background(), "http://collab", testSources, 5, 20250106)
		out := make([]string, 0, len(res.Items))
		for i, item := range res.Items {
			assert.Equal(t, i+1, item.Rank)
			out = append(out, item.Title)
		}
		return out
	}

	first := run()
	assert.Len(t, first, 5)
	assert.Equal(t, first, run())
}

func TestAggregateUsecase_PerSourceLimitAppliedToNormalize(t *testing.T) {
	ctrl := gomock.NewController(t)
	port := mocks.NewMockFetchFeedPort(ctrl)
	port.EXPECT().FetchFeed(gomock.Any(), gomock.Any(), "/a/hot", 3).Return(feedOf("1", "2", "3", "4", "5"), nil)

	res := NewAggregateUsecase(port, "").Aggregate(context.Background(), "http://collab", testSources[:1], 3, 1)

	assert.Len(t, res.Items, 3)
}
