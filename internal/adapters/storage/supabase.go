// Package storage implements the artifact object store on the Supabase
// Storage REST API: upload with upsert, then a short-lived signed URL.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/proflock/browserd/internal/config"
)

// SupabaseStore uploads artifacts to a Supabase Storage bucket and issues
// signed URLs for them. Safe for concurrent use.
type SupabaseStore struct {
	client  *http.Client
	baseURL string
	key     string
	bucket  string
	signTTL time.Duration

	ensureOnce sync.Once
}

// NewSupabaseStore builds a store from config. Returns nil when the URL or
// key is missing: artifact upload is best-effort and absence is tolerated.
func NewSupabaseStore(cfg config.SupabaseConfig) *SupabaseStore {
	if cfg.URL == "" || cfg.Key == "" {
		return nil
	}
	ttl := cfg.SignedURLTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SupabaseStore{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(cfg.URL, "/") + "/storage/v1",
		key:     cfg.Key,
		bucket:  cfg.Bucket,
		signTTL: ttl,
	}
}

// Upload stores data under name in the bucket and returns a signed URL for
// it. The bucket is created on first use if it does not exist.
func (s *SupabaseStore) Upload(ctx context.Context, data []byte, name string) (string, error) {
	s.ensureOnce.Do(func() { s.ensureBucket(ctx) })

	uploadURL := fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucket, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	s.authorize(req)
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("x-upsert", "true")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload returned status %d: %s", resp.StatusCode, string(body))
	}

	return s.signURL(ctx, name)
}

func (s *SupabaseStore) signURL(ctx context.Context, name string) (string, error) {
	payload, err := json.Marshal(map[string]int{
		"expiresIn": int(s.signTTL.Seconds()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal sign payload: %w", err)
	}

	signReqURL := fmt.Sprintf("%s/object/sign/%s/%s", s.baseURL, s.bucket, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signReqURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create sign request: %w", err)
	}
	s.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sign failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("sign returned status %d: %s", resp.StatusCode, string(body))
	}

	var signed struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&signed); err != nil {
		return "", fmt.Errorf("failed to decode sign response: %w", err)
	}
	if signed.SignedURL == "" {
		return "", fmt.Errorf("sign response missing signedURL")
	}
	return s.baseURL + signed.SignedURL, nil
}

// ensureBucket creates the bucket if it does not exist. Best-effort: a
// failure here surfaces later as an upload error.
func (s *SupabaseStore) ensureBucket(ctx context.Context) {
	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/bucket/"+s.bucket, nil)
	if err != nil {
		return
	}
	s.authorize(getReq)
	if resp, err := s.client.Do(getReq); err == nil {
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)
		if resp.StatusCode == http.StatusOK {
			return
		}
	}

	payload, err := json.Marshal(map[string]string{"name": s.bucket})
	if err != nil {
		return
	}
	createReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/bucket", bytes.NewReader(payload))
	if err != nil {
		return
	}
	s.authorize(createReq)
	createReq.Header.Set("Content-Type", "application/json")
	if resp, err := s.client.Do(createReq); err == nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}

func (s *SupabaseStore) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)
}
