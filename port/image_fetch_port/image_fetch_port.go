package image_fetch_port

import (
	"context"

	"rebang/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=image_fetch_port.go -destination=../../mocks/mock_image_fetch_port.go -package=mocks

// ImageFetchPort performs a single outbound image request. Non-2xx replies
// are returned as responses, not errors.
type ImageFetchPort interface {
	FetchImage(ctx context.Context, req domain.ImageFetchRequest) (*domain.ImageResponse, error)
}
