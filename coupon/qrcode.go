package coupon

import (
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	DefaultImageEndpoint = "https://api.qrserver.com/v1/create-qr-code/"
	DefaultImageSize     = 256
)

// RenderPNG encodes content as a QR code image.
func RenderPNG(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultImageSize
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}
	return png, nil
}

// HostedImageURL points an external QR image endpoint at content. Mail clients strip
// inline data URLs, so coupon emails reference a hosted image instead.
func HostedImageURL(endpoint, content string, size int) string {
	if endpoint == "" {
		endpoint = DefaultImageEndpoint
	}
	if size <= 0 {
		size = DefaultImageSize
	}
	q := url.Values{}
	q.Set("size", fmt.Sprintf("%dx%d", size, size))
	q.Set("data", content)
	return endpoint + "?" + q.Encode()
}
