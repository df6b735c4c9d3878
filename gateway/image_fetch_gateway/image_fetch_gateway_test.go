package image_fetch_gateway

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rebang/domain"
	"rebang/utils/errors"
	"rebang/utils/security"
)

func TestImageFetchGateway_FetchImage_SendsHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("ETag", `"abc"`)
		w.Header().Set("Last-Modified", "Wed, 21 Oct 2015 07:28:00 GMT")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	gw := NewImageFetchGateway(srv.Client(), "test-agent/1.0")
	resp, err := gw.FetchImage(context.Background(), domain.ImageFetchRequest{
		URL:     srv.URL + "/a.png",
		Referer: "https://news.example.com/",
	})
	require.NoError(t, err)
	defer resp.Close()

	assert.Equal(t, "test-agent/1.0", got.Get("User-Agent"))
	assert.Equal(t, imageAccept, got.Get("Accept"))
	assert.Equal(t, "https://news.example.com/", got.Get("Referer"))

	assert.True(t, resp.OK())
	assert.True(t, resp.IsImage())
	assert.Equal(t, `"abc"`, resp.ETag)
	assert.Equal(t, "Wed, 21 Oct 2015 07:28:00 GMT", resp.LastModified)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(body))
}

func TestImageFetchGateway_FetchImage_OmitsEmptyReferer(t *testing.T) {
	var referer string
	var sawReferer bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		referer = r.Header.Get("Referer")
		_, sawReferer = r.Header["Referer"]
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	resp, err := NewImageFetchGateway(srv.Client(), "ua").FetchImage(context.Background(), domain.ImageFetchRequest{URL: srv.URL})
	require.NoError(t, err)
	defer resp.Close()

	assert.False(t, sawReferer)
	assert.Empty(t, referer)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Forbidden", resp.StatusText)
}

func TestImageFetchGateway_FetchImage_SecureClientRejectsLoopback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should never reach a loopback server")
	}))
	defer srv.Close()

	validator := security.NewTargetValidator(security.NewSystemResolver())
	client := security.NewSecureHTTPClient(validator, 2*time.Second)

	_, err := NewImageFetchGateway(client, "ua").FetchImage(context.Background(), domain.ImageFetchRequest{URL: srv.URL})
	require.Error(t, err)

	appErr, ok := errors.AsAppContextError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeSecurity, appErr.Code)
	assert.Equal(t, "Invalid url: "+security.ReasonForbiddenAddress, appErr.Message)
	assert.True(t, stderrors.Is(err, errors.ErrForbiddenTarget))
}
