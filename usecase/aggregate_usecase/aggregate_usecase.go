package aggregate_usecase

import (
	"context"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"rebang/domain"
	"rebang/port/feed_port"
	"rebang/usecase/fetch_feed_usecase"
	"rebang/utils/errors"
	"rebang/utils/logger"
	"rebang/utils/metrics"
)

const minPerSource = 3

var tracer = otel.Tracer("rebang/aggregate_usecase")

// AggregateUsecase merges several collaborator feeds into one shuffled list.
type AggregateUsecase struct {
	feedPort  feed_port.FetchFeedPort
	proxyBase string
}

func NewAggregateUsecase(feedPort feed_port.FetchFeedPort, proxyBase string) *AggregateUsecase {
	return &AggregateUsecase{feedPort: feedPort, proxyBase: proxyBase}
}

// PerSourceLimit is how many items each source is asked for.
func PerSourceLimit(limit, sources int) int {
	if sources <= 0 {
		return minPerSource
	}
	return max(minPerSource, int(math.Ceil(float64(limit)/float64(sources))))
}

type sourceOutcome struct {
	items []domain.UiItem
	err   error
}

// Aggregate fetches every source concurrently and waits for all of them.
// A failed source contributes one error entry and no items. The merged list
// is shuffled with seed, cut to limit and re-ranked.
func (u *AggregateUsecase) Aggregate(ctx context.Context, origin string, sources []domain.AggregateSource, limit int, seed uint32) *domain.AggregationResult {
	ctx, span := tracer.Start(ctx, "AggregateUsecase.Aggregate")
	defer span.End()

	perSource := PerSourceLimit(limit, len(sources))
	span.SetAttributes(
		attribute.Int("rebang.sources", len(sources)),
		attribute.Int("rebang.limit", limit),
		attribute.Int("rebang.per_source", perSource),
		attribute.Int64("rebang.seed", int64(seed)),
	)

	outcomes := make([]sourceOutcome, len(sources))
	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			srcCtx := logger.WithSourceKey(ctx, src.Key)
			feed, err := u.feedPort.FetchFeed(srcCtx, origin, src.RsshubPath, perSource)
			metrics.RecordAggregateSource(src.Key, err == nil)
			if err != nil {
				logger.FromContext(srcCtx).WarnContext(srcCtx, "aggregate source failed",
					"path", src.RsshubPath, "error", err)
				outcomes[i] = sourceOutcome{err: err}
				return nil
			}
			outcomes[i] = sourceOutcome{items: fetch_feed_usecase.Normalize(feed, src.Ref(), perSource, u.proxyBase)}
			return nil
		})
	}
	// Every goroutine returns nil so Wait is a settle-all join.
	_ = g.Wait()

	merged := make([]domain.UiItem, 0, perSource*len(sources))
	var sourceErrors []domain.SourceError
	for i, o := range outcomes {
		if o.err != nil {
			sourceErrors = append(sourceErrors, domain.SourceError{
				SourceKey: sources[i].Key,
				Message:   errorMessage(o.err),
			})
			continue
		}
		merged = append(merged, o.items...)
	}

	Shuffle(merged, seed)
	if len(merged) > limit {
		merged = merged[:max(limit, 0)]
	}

	span.SetAttributes(
		attribute.Int("rebang.items", len(merged)),
		attribute.Int("rebang.failed_sources", len(sourceErrors)),
	)
	logger.FromContext(ctx).InfoContext(ctx, "aggregation finished",
		"sources", len(sources), "failed", len(sourceErrors), "items", len(merged))

	return &domain.AggregationResult{
		Items:  domain.Rerank(merged),
		Errors: sourceErrors,
	}
}

func errorMessage(err error) string {
	if appErr, ok := errors.AsAppContextError(err); ok {
		return appErr.Message
	}
	return err.Error()
}
