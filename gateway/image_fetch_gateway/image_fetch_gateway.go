package image_fetch_gateway

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"rebang/domain"
	"rebang/utils/errors"
	"rebang/utils/security"
)

const imageAccept = "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8"

// ImageFetchGateway issues one upstream image request. The client is
// expected to come from security.NewSecureHTTPClient so dials and redirects
// are address-checked.
type ImageFetchGateway struct {
	httpClient *http.Client
	userAgent  string
}

func NewImageFetchGateway(httpClient *http.Client, userAgent string) *ImageFetchGateway {
	return &ImageFetchGateway{httpClient: httpClient, userAgent: userAgent}
}

// FetchImage returns the upstream response with its body still open. Non-2xx
// statuses are not errors here; the caller decides whether to retry.
func (g *ImageFetchGateway) FetchImage(ctx context.Context, in domain.ImageFetchRequest) (*domain.ImageResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, in.URL, nil)
	if err != nil {
		return nil, errors.NewValidationContextError(
			"Invalid url: "+security.ReasonInvalidURL,
			"gateway",
			"ImageFetchGateway",
			"create_request",
			map[string]interface{}{"url": in.URL},
		)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", imageAccept)
	if in.Referer != "" {
		req.Header.Set("Referer", in.Referer)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err, in.URL)
	}

	return &domain.ImageResponse{
		StatusCode:   resp.StatusCode,
		StatusText:   statusText(resp),
		ContentType:  resp.Header.Get("Content-Type"),
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		Body:         resp.Body,
	}, nil
}

func classifyTransportError(ctx context.Context, err error, target string) error {
	var rejection *security.RejectionError
	if stderrors.As(err, &rejection) {
		return errors.NewSecurityContextError(
			"Invalid url: "+rejection.Reason,
			"gateway",
			"ImageFetchGateway",
			"http_request",
			stderrors.Join(errors.ErrForbiddenTarget, err),
			map[string]interface{}{"url": target, "host": rejection.Host},
		)
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.NewTimeoutContextError(
			"Image fetch failed: timeout",
			"gateway",
			"ImageFetchGateway",
			"http_request",
			err,
			map[string]interface{}{"url": target},
		)
	}
	return errors.NewExternalAPIContextError(
		"Image fetch failed",
		"gateway",
		"ImageFetchGateway",
		"http_request",
		err,
		map[string]interface{}{"url": target},
	)
}

func statusText(resp *http.Response) string {
	if text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); text != "" && text != resp.Status {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
