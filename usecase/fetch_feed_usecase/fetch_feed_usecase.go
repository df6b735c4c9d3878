package fetch_feed_usecase

import (
	"context"
	"time"

	"rebang/domain"
	"rebang/port/feed_port"
	"rebang/utils/errors"
	"rebang/utils/logger"
)

// FollowingCategory is the category reported for ad-hoc /feed requests.
const FollowingCategory = "following"

// NamespaceNamer maps a route namespace to its display name.
type NamespaceNamer interface {
	NamespaceName(ns string) string
}

// FeedResult is one normalized collaborator feed.
type FeedResult struct {
	Title string
	Link  string
	Items []domain.UiItem
}

// FollowingResult answers GET /feed.
type FollowingResult struct {
	Category string          `json:"category"`
	Tab      string          `json:"tab"`
	Title    string          `json:"title"`
	Link     string          `json:"link,omitempty"`
	Items    []domain.UiItem `json:"items"`
}

type FetchFeedUsecase struct {
	feedPort  feed_port.FetchFeedPort
	namer     NamespaceNamer
	proxyBase string
	timeout   time.Duration
}

func NewFetchFeedUsecase(feedPort feed_port.FetchFeedPort, namer NamespaceNamer, proxyBase string, timeout time.Duration) *FetchFeedUsecase {
	return &FetchFeedUsecase{
		feedPort:  feedPort,
		namer:     namer,
		proxyBase: proxyBase,
		timeout:   timeout,
	}
}

// ProxyBase is the public origin used for image rewriting, possibly empty.
func (u *FetchFeedUsecase) ProxyBase() string {
	return u.proxyBase
}

// FetchItems fetches one collaborator path and normalizes it under source.
// The deadline is whatever ctx carries.
func (u *FetchFeedUsecase) FetchItems(ctx context.Context, origin, path string, source domain.SourceRef, limit int) (*FeedResult, error) {
	feed, err := u.feedPort.FetchFeed(ctx, origin, path, limit)
	if err != nil {
		return nil, err
	}
	title := feed.Title
	if title == "" {
		title = source.Name
	}
	return &FeedResult{
		Title: title,
		Link:  feed.HomePageURL,
		Items: Normalize(feed, source, limit, u.proxyBase),
	}, nil
}

// FetchFollowing serves an arbitrary collaborator path. Paths that could
// leave the collaborator origin are rejected before any request is made.
func (u *FetchFeedUsecase) FetchFollowing(ctx context.Context, origin, path string, limit int) (*FollowingResult, error) {
	if !domain.IsCollaboratorPath(path) {
		return nil, errors.NewAppContextError(
			errors.CodeValidation,
			"Invalid path",
			"usecase",
			"FetchFeedUsecase",
			"fetch_following",
			errors.ErrInvalidPath,
			map[string]interface{}{"path": path},
		)
	}

	ns := domain.RouteNamespace(path)
	name := ns
	if u.namer != nil {
		name = u.namer.NamespaceName(ns)
	}

	ctx = logger.WithSourceKey(ctx, ns)
	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	res, err := u.FetchItems(ctx, origin, path, domain.SourceRef{Key: ns, Name: name}, limit)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).InfoContext(ctx, "following feed served", "path", path, "items", len(res.Items))
	return &FollowingResult{
		Category: FollowingCategory,
		Tab:      ns,
		Title:    res.Title,
		Link:     res.Link,
		Items:    res.Items,
	}, nil
}
