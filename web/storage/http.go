package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"meal-coupon/registration"
)

// HTTPStore uploads to a Supabase style object storage API:
// POST {base}/storage/v1/object/{bucket}/{name}, public at
// {base}/storage/v1/object/public/{bucket}/{name}.
type HTTPStore struct {
	baseURL string
	bucket  string
	apiKey  string
	client  *http.Client
}

func NewHTTPStore(baseURL, bucket, apiKey string, client *http.Client) *HTTPStore {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		bucket:  bucket,
		apiKey:  apiKey,
		client:  client,
	}
}

func (s *HTTPStore) Put(ctx context.Context, name, contentType string, body io.Reader) (Object, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	target := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, url.PathEscape(s.bucket), url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return Object{}, err
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return Object{}, &registration.UpstreamError{Service: "object storage", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Object{}, &registration.UpstreamError{
			Service: "object storage",
			Err:     fmt.Errorf("upload returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
		}
	}

	return Object{
		URL:      fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, url.PathEscape(s.bucket), url.PathEscape(name)),
		FileName: name,
	}, nil
}
