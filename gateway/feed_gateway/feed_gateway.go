package feed_gateway

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"rebang/domain"
	"rebang/utils/errors"
	"rebang/utils/logger"
	"rebang/utils/metrics"
)

const (
	feedAccept      = "application/feed+json, application/json;q=0.9, */*;q=0.8"
	maxFeedBodySize = 8 << 20
	errorSnippetLen = 200
)

var tracer = otel.Tracer("rebang/feed_gateway")

// FeedGateway calls collaborator routes and decodes their JSON Feed output.
type FeedGateway struct {
	httpClient *http.Client
}

func NewFeedGateway(httpClient *http.Client) *FeedGateway {
	if httpClient == nil {
		httpClient = &http.Client{Transport: http.DefaultTransport}
	}
	return &FeedGateway{httpClient: httpClient}
}

// FetchFeed performs GET origin+path?format=json&limit=n. The caller's
// context carries the deadline.
func (g *FeedGateway) FetchFeed(ctx context.Context, origin, path string, limit int) (*domain.JSONFeed, error) {
	ns := domain.RouteNamespace(path)
	ctx, span := tracer.Start(ctx, "FeedGateway.FetchFeed")
	defer span.End()
	span.SetAttributes(
		attribute.String("rebang.path", path),
		attribute.String("rebang.namespace", ns),
		attribute.Int("rebang.limit", limit),
	)

	start := time.Now()
	feed, err := g.fetch(ctx, origin, path, limit)
	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "feed fetch failed")
		logger.FromContext(ctx).WarnContext(ctx, "collaborator feed fetch failed",
			"path", path, "error", err)
	}
	metrics.RecordFeedFetch(ns, status, time.Since(start).Seconds())
	return feed, err
}

func (g *FeedGateway) fetch(ctx context.Context, origin, path string, limit int) (*domain.JSONFeed, error) {
	target, err := BuildFeedURL(origin, path, limit)
	if err != nil {
		return nil, errors.NewValidationContextError(
			"Invalid path",
			"gateway",
			"FeedGateway",
			"build_url",
			map[string]interface{}{"origin": origin, "path": path},
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.NewExternalAPIContextError(
			"failed to create request",
			"gateway",
			"FeedGateway",
			"create_request",
			err,
			map[string]interface{}{"url": target},
		)
	}
	req.Header.Set("Accept", feedAccept)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, err, target)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBodySize))
	if err != nil {
		return nil, transportError(ctx, err, target)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewExternalAPIContextError(
			upstreamStatusMessage(resp, string(body)),
			"gateway",
			"FeedGateway",
			"http_response",
			errors.ErrUpstreamStatus,
			map[string]interface{}{"url": target, "status_code": resp.StatusCode},
		)
	}

	var feed domain.JSONFeed
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, errors.NewParseContextError(
			fmt.Sprintf("Invalid JSON feed: %v", err),
			"gateway",
			"FeedGateway",
			"decode",
			fmt.Errorf("%w: %v", errors.ErrInvalidFeedDocument, err),
			map[string]interface{}{"url": target},
		)
	}
	return &feed, nil
}

// BuildFeedURL resolves path against origin and sets format=json and limit,
// keeping any query the path already had.
func BuildFeedURL(origin, path string, limit int) (string, error) {
	base, err := url.Parse(origin)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	u := base.ResolveReference(ref)
	q := u.Query()
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// upstreamStatusMessage renders "Request failed: <code> <text>" with up to
// 200 characters of the body appended when there is one.
func upstreamStatusMessage(resp *http.Response, body string) string {
	msg := fmt.Sprintf("Request failed: %d %s", resp.StatusCode, statusText(resp))
	if body == "" {
		return msg
	}
	runes := []rune(body)
	if len(runes) > errorSnippetLen {
		runes = runes[:errorSnippetLen]
	}
	return msg + " - " + string(runes)
}

func statusText(resp *http.Response) string {
	if text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); text != "" && text != resp.Status {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func transportError(ctx context.Context, err error, target string) error {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.NewTimeoutContextError(
			"Request timed out",
			"gateway",
			"FeedGateway",
			"http_request",
			err,
			map[string]interface{}{"url": target},
		)
	}
	if stderrors.Is(err, context.Canceled) {
		return errors.NewExternalAPIContextError(
			"Request aborted",
			"gateway",
			"FeedGateway",
			"http_request",
			err,
			map[string]interface{}{"url": target},
		)
	}
	return errors.NewExternalAPIContextError(
		fmt.Sprintf("Request failed: %v", unwrapURLError(err)),
		"gateway",
		"FeedGateway",
		"http_request",
		err,
		map[string]interface{}{"url": target},
	)
}

// unwrapURLError drops the "Get \"...\":" prefix so messages do not echo
// internal collaborator addresses.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if stderrors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
