package feed_port

import (
	"context"

	"rebang/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=feed_port.go -destination=../../mocks/mock_feed_port.go -package=mocks

// FetchFeedPort retrieves one collaborator route as a JSON Feed.
type FetchFeedPort interface {
	// FetchFeed requests origin+path with format=json and the given limit.
	FetchFeed(ctx context.Context, origin, path string, limit int) (*domain.JSONFeed, error)
}
