package domain

import (
	"io"
	"strings"
)

// ImageResponse is an upstream reply to an image fetch. Body must be closed
// by whoever ends up owning it.
type ImageResponse struct {
	StatusCode   int
	StatusText   string
	ContentType  string
	ETag         string
	LastModified string
	Body         io.ReadCloser
}

func (r *ImageResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsImage reports whether the upstream declared an image/* content type.
func (r *ImageResponse) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(r.ContentType)), "image/")
}

// Close releases the body if present.
func (r *ImageResponse) Close() {
	if r != nil && r.Body != nil {
		_ = r.Body.Close()
	}
}

// ImageFetchRequest carries the outbound headers for one attempt.
type ImageFetchRequest struct {
	URL     string
	Referer string
}
