package image_proxy_usecase

import (
	"context"
	stderrors "errors"
	"io"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"rebang/domain"
	"rebang/mocks"
	"rebang/utils/errors"
	"rebang/utils/rate_limiter"
	"rebang/utils/security"
)

type fakeResolver map[string][]string

func (f fakeResolver) LookupAddrs(_ context.Context, host string) ([]netip.Addr, error) {
	raw, ok := f[host]
	if !ok {
		return nil, stderrors.New("no such host")
	}
	addrs := make([]netip.Addr, 0, len(raw))
	for _, r := range raw {
		addrs = append(addrs, netip.MustParseAddr(r))
	}
	return addrs, nil
}

var resolver = fakeResolver{
	"img.example.com":      {"93.184.216.34"},
	"internal.example.com": {"93.184.216.34", "10.0.0.5"},
}

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func imageResponse(status int, contentType, body string) *domain.ImageResponse {
	return &domain.ImageResponse{
		StatusCode:  status,
		StatusText:  map[int]string{200: "OK", 403: "Forbidden", 404: "Not Found"}[status],
		ContentType: contentType,
		Body:        &trackingBody{Reader: strings.NewReader(body)},
	}
}

func newUsecase(port *mocks.MockImageFetchPort) *ImageProxyUsecase {
	return NewImageProxyUsecase(
		security.NewTargetValidator(resolver),
		port,
		rate_limiter.NewHostRateLimiter(100, 10),
		time.Second,
	)
}

func TestImageProxyUsecase_RejectsWithoutFetching(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantMsg string
	}{
		{name: "missing url", url: "", wantMsg: "Missing required query: url"},
		{name: "too long", url: "https://img.example.com/" + strings.Repeat("a", 2048), wantMsg: "Invalid url: url too long"},
		{name: "relative", url: "/a.png", wantMsg: "Invalid url: invalid url"},
		{name: "ftp", url: "ftp://img.example.com/a.png", wantMsg: "Invalid url: unsupported protocol"},
		{name: "localhost", url: "http://localhost/a.png", wantMsg: "Invalid url: forbidden hostname"},
		{name: "dot local", url: "http://printer.local/a.png", wantMsg: "Invalid url: forbidden hostname"},
		{name: "metadata address", url: "http://169.254.169.254/latest", wantMsg: "Invalid url: forbidden address"},
		{name: "mapped loopback", url: "http://[::ffff:127.0.0.1]/a.png", wantMsg: "Invalid url: forbidden address"},
		{name: "one private answer", url: "https://internal.example.com/a.png", wantMsg: "Invalid url: forbidden address"},
		{name: "unresolvable", url: "https://nowhere.example.com/a.png", wantMsg: "Invalid url: dns lookup failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			// No expectations: reaching the fetch port fails the test.
			port := mocks.NewMockImageFetchPort(ctrl)

			resp, err := newUsecase(port).ProxyImage(context.Background(), tt.url, "")

			assert.Nil(t, resp)
			require.Error(t, err)
			appErr, ok := errors.AsAppContextError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, appErr.Message)
			assert.Equal(t, 400, appErr.HTTPStatusCode())
		})
	}
}

func TestImageProxyUsecase_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	port := mocks.NewMockImageFetchPort(ctrl)

	port.EXPECT().
		FetchImage(gomock.Any(), domain.ImageFetchRequest{
			URL:     "https://img.example.com/a.png",
			Referer: "https://news.example.com/",
		}).
		Return(imageResponse(200, "image/png", "png"), nil)

	resp, err := newUsecase(port).ProxyImage(context.Background(), "https://img.example.com/a.png", "https://news.example.com/story/1?x=1")
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "png", string(body))
	require.NoError(t, resp.Body.Close())
}

func TestImageProxyUsecase_RetriesWithoutReferer(t *testing.T) {
	ctrl := gomock.NewController(t)
	port := mocks.NewMockImageFetchPort(ctrl)

	first := imageResponse(403, "text/html", "denied")
	gomock.InOrder(
		port.EXPECT().
			FetchImage(gomock.Any(), domain.ImageFetchRequest{URL: "https://img.example.com/a.png", Referer: "https://news.example.com/"}).
			Return(first, nil),
		port.EXPECT().
			FetchImage(gomock.Any(), domain.ImageFetchRequest{URL: "https://img.example.com/a.png"}).
			Return(imageResponse(200, "image/jpeg", "jpg"), nil),
	)

	resp, err := newUsecase(port).ProxyImage(context.Background(), "https://img.example.com/a.png", "https://news.example.com/x")
	require.NoError(t, err)
	defer resp.Close()

	assert.Equal(t, "image/jpeg", resp.ContentType)
	assert.True(t, first.Body.(*trackingBody).closed)
}

func TestImageProxyUsecase_NoRetryWithoutReferer(t *testing.T) {
	ctrl := gomock.NewController(t)
	port := mocks.NewMockImageFetchPort(ctrl)

	failed := imageResponse(404, "text/html", "")
	port.EXPECT().FetchImage(gomock.Any(), domain.ImageFetchRequest{URL: "https://img.example.com/a.png"}).Return(failed, nil).Times(1)

	_, err := newUsecase(port).ProxyImage(context.Background(), "https://img.example.com/a.png", "not a link")
	require.Error(t, err)

	appErr, ok := errors.AsAppContextError(err)
	require.True(t, ok)
	assert.Equal(t, "Image fetch failed: 404 Not Found", appErr.Message)
	assert.Equal(t, 502, appErr.HTTPStatusCode())
	assert.True(t, failed.Body.(*trackingBody).closed)
}

func TestImageProxyUsecase_NotAnImage(t *testing.T) {
	ctrl := gomock.NewController(t)
	port := mocks.NewMockImageFetchPort(ctrl)
	port.EXPECT().FetchImage(gomock.Any(), gomock.Any()).Return(imageResponse(200, "text/html; charset=utf-8", "<html>"), nil)

	_, err := newUsecase(port).ProxyImage(context.Background(), "https://img.example.com/a.png", "")
	require.Error(t, err)

	appErr, ok := errors.AsAppContextError(err)
	require.True(t, ok)
	assert.Equal(t, "Image fetch failed: upstream did not return an image", appErr.Message)
	assert.True(t, stderrors.Is(err, errors.ErrUpstreamNotImage))
}

func TestImageProxyUsecase_DeadlineAppliesToFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	port := mocks.NewMockImageFetchPort(ctrl)
	port.EXPECT().FetchImage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ domain.ImageFetchRequest) (*domain.ImageResponse, error) {
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
			return imageResponse(200, "image/gif", "gif"), nil
		})

	resp, err := newUsecase(port).ProxyImage(context.Background(), "https://img.example.com/a.gif", "")
	require.NoError(t, err)
	resp.Close()
}

func TestRefererFromLink(t *testing.T) {
	assert.Equal(t, "https://news.example.com/", RefererFromLink("https://news.example.com/a/b?c=d"))
	assert.Equal(t, "http://news.example.com:8080/", RefererFromLink("http://news.example.com:8080/a"))
	assert.Equal(t, "", RefererFromLink(""))
	assert.Equal(t, "", RefererFromLink("/relative"))
	assert.Equal(t, "", RefererFromLink("javascript:alert(1)"))
}
