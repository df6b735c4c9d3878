package image_proxy_usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"rebang/domain"
	"rebang/port/image_fetch_port"
	"rebang/utils/errors"
	"rebang/utils/logger"
	"rebang/utils/metrics"
	"rebang/utils/rate_limiter"
	"rebang/utils/security"
)

var tracer = otel.Tracer("rebang/image_proxy_usecase")

// TargetValidator checks a caller supplied URL before any outbound request.
type TargetValidator interface {
	Validate(ctx context.Context, raw string) (*url.URL, error)
}

// ImageProxyUsecase validates, fetches and hands back an upstream image.
type ImageProxyUsecase struct {
	validator      TargetValidator
	imageFetchPort image_fetch_port.ImageFetchPort
	rateLimiter    *rate_limiter.HostRateLimiter
	timeout        time.Duration
}

func NewImageProxyUsecase(
	validator TargetValidator,
	imageFetchPort image_fetch_port.ImageFetchPort,
	rateLimiter *rate_limiter.HostRateLimiter,
	timeout time.Duration,
) *ImageProxyUsecase {
	return &ImageProxyUsecase{
		validator:      validator,
		imageFetchPort: imageFetchPort,
		rateLimiter:    rateLimiter,
		timeout:        timeout,
	}
}

// ProxyImage returns a 2xx image response whose body the caller must close.
// The deadline covers validation, DNS, the fetch and reading the body.
func (u *ImageProxyUsecase) ProxyImage(ctx context.Context, rawURL, link string) (_ *domain.ImageResponse, err error) {
	ctx, span := tracer.Start(ctx, "ImageProxyUsecase.ProxyImage")
	defer span.End()
	ctx = logger.WithOperation(ctx, "image_proxy")

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "image proxy failed")
			if errors.IsSecurityRejection(err) {
				metrics.RecordMediaRejection(rejectionReason(err))
			} else {
				metrics.RecordMediaProxy(outcomeLabel(err))
			}
		} else {
			metrics.RecordMediaProxy("success")
		}
	}()

	if rawURL == "" {
		return nil, errors.NewValidationContextError(
			"Missing required query: url",
			"usecase",
			"ImageProxyUsecase",
			"proxy_image",
			nil,
		)
	}

	cancel := context.CancelFunc(func() {})
	if u.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
	}
	// Ownership of cancel moves to the returned body on success.
	released := false
	defer func() {
		if !released {
			cancel()
		}
	}()

	target, err := u.validator.Validate(ctx, rawURL)
	if err != nil {
		return nil, rejection(err, rawURL)
	}
	span.SetAttributes(attribute.String("rebang.image_host", target.Hostname()))

	if u.rateLimiter != nil {
		if err := u.rateLimiter.WaitForHost(ctx, target.String()); err != nil {
			return nil, errors.NewTimeoutContextError(
				"Image fetch failed: rate limited",
				"usecase",
				"ImageProxyUsecase",
				"rate_limit",
				err,
				map[string]interface{}{"host": target.Hostname()},
			)
		}
	}

	referer := RefererFromLink(link)
	resp, err := u.imageFetchPort.FetchImage(ctx, domain.ImageFetchRequest{URL: target.String(), Referer: referer})
	if err != nil {
		return nil, err
	}
	if !resp.OK() && referer != "" {
		logger.FromContext(ctx).DebugContext(ctx, "image fetch with referer failed, retrying without",
			"status", resp.StatusCode, "host", target.Hostname())
		resp.Close()
		resp, err = u.imageFetchPort.FetchImage(ctx, domain.ImageFetchRequest{URL: target.String()})
		if err != nil {
			return nil, err
		}
	}

	if !resp.OK() {
		resp.Close()
		return nil, errors.NewExternalAPIContextError(
			fmt.Sprintf("Image fetch failed: %d %s", resp.StatusCode, resp.StatusText),
			"usecase",
			"ImageProxyUsecase",
			"fetch_image",
			errors.ErrUpstreamStatus,
			map[string]interface{}{"host": target.Hostname(), "status_code": resp.StatusCode},
		)
	}
	if !resp.IsImage() {
		resp.Close()
		return nil, errors.NewExternalAPIContextError(
			"Image fetch failed: upstream did not return an image",
			"usecase",
			"ImageProxyUsecase",
			"fetch_image",
			errors.ErrUpstreamNotImage,
			map[string]interface{}{"host": target.Hostname(), "content_type": resp.ContentType},
		)
	}

	released = true
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// RefererFromLink returns "scheme://host/" of link, or "" when link is not
// an absolute http(s) URL.
func RefererFromLink(link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/"
}

func rejection(err error, rawURL string) error {
	reason := security.ReasonInvalidURL
	host := ""
	var rej *security.RejectionError
	if stderrors.As(err, &rej) {
		reason = rej.Reason
		host = rej.Host
	}
	return errors.NewSecurityContextError(
		"Invalid url: "+reason,
		"usecase",
		"ImageProxyUsecase",
		"validate_url",
		stderrors.Join(errors.ErrForbiddenTarget, err),
		map[string]interface{}{"url_length": len(rawURL), "host": host},
	)
}

func rejectionReason(err error) string {
	var rej *security.RejectionError
	if stderrors.As(err, &rej) {
		return rej.Reason
	}
	return security.ReasonInvalidURL
}

func outcomeLabel(err error) string {
	if errors.IsUpstreamFailure(err) {
		return "upstream_error"
	}
	if appErr, ok := errors.AsAppContextError(err); ok && appErr.Code == errors.CodeValidation {
		return "bad_request"
	}
	return "fetch_error"
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}
