package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resty.dev/v3"
)

const (
	objectEndpoint = "/storage/v1/object/"
	publicEndpoint = "/storage/v1/object/public/"
)

// Supabase uploads images to a Supabase Storage bucket through its REST API.
type Supabase struct {
	client  *resty.Client
	baseURL string
	bucket  string
}

func NewSupabase(baseURL, apiKey, bucket string) *Supabase {
	baseURL = strings.TrimRight(baseURL, "/")
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("apikey", apiKey).
		SetTimeout(defaultTimeout)

	return &Supabase{
		client:  client,
		baseURL: baseURL,
		bucket:  bucket,
	}
}

func (s *Supabase) Close() error {
	return s.client.Close()
}

func (s *Supabase) Upload(ctx context.Context, path string, data []byte, contentType string) (err error) {
	started := time.Now()
	defer func() { observeUpload("supabase", started, err) }()

	res, err := s.client.R().
		WithContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "false").
		SetBody(data).
		Post(objectEndpoint + s.bucket + "/" + path)
	if err != nil {
		return fmt.Errorf("storage/supabase: failed uploading %s: %w", path, err)
	}
	if res.IsError() {
		return fmt.Errorf("storage/supabase: upload of %s rejected with %d: %s", path, res.StatusCode(), res.String())
	}
	return nil
}

func (s *Supabase) PublicURL(path string) string {
	return s.baseURL + publicEndpoint + s.bucket + "/" + path
}
