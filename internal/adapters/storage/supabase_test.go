package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/proflock/browserd/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSupabaseStore_RequiresURLAndKey(t *testing.T) {
	assert.Nil(t, NewSupabaseStore(config.SupabaseConfig{}))
	assert.Nil(t, NewSupabaseStore(config.SupabaseConfig{URL: "https://x.supabase.co"}))
	assert.Nil(t, NewSupabaseStore(config.SupabaseConfig{Key: "key"}))
	assert.NotNil(t, NewSupabaseStore(config.SupabaseConfig{URL: "https://x.supabase.co", Key: "key"}))
}

func TestSupabaseStore_UploadAndSign(t *testing.T) {
	var gotUpload []byte
	var uploadHeaders http.Header
	var signExpires int

	mux := http.NewServeMux()
	mux.HandleFunc("GET /storage/v1/bucket/browser-frames", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /storage/v1/object/browser-frames/jobs/j1/step_1.png", func(w http.ResponseWriter, r *http.Request) {
		gotUpload, _ = io.ReadAll(r.Body)
		uploadHeaders = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /storage/v1/object/sign/browser-frames/jobs/j1/step_1.png", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		signExpires = body["expiresIn"]
		json.NewEncoder(w).Encode(map[string]string{
			"signedURL": "/object/sign/browser-frames/jobs/j1/step_1.png?token=abc",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := NewSupabaseStore(config.SupabaseConfig{
		URL:          srv.URL,
		Key:          "service-key",
		Bucket:       "browser-frames",
		SignedURLTTL: 15 * time.Minute,
	})
	require.NotNil(t, store)

	url, err := store.Upload(context.Background(), []byte("png-bytes"), "jobs/j1/step_1.png")
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/storage/v1/object/sign/browser-frames/jobs/j1/step_1.png?token=abc", url)
	assert.Equal(t, []byte("png-bytes"), gotUpload)
	assert.Equal(t, "Bearer service-key", uploadHeaders.Get("Authorization"))
	assert.Equal(t, "service-key", uploadHeaders.Get("apikey"))
	assert.Equal(t, "true", uploadHeaders.Get("x-upsert"))
	assert.Equal(t, "image/png", uploadHeaders.Get("Content-Type"))
	assert.Equal(t, 900, signExpires)
}

func TestSupabaseStore_CreatesMissingBucket(t *testing.T) {
	var bucketCreated bool

	mux := http.NewServeMux()
	mux.HandleFunc("GET /storage/v1/bucket/frames", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("POST /storage/v1/bucket", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "frames", body["name"])
		bucketCreated = true
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /storage/v1/object/frames/f.png", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /storage/v1/object/sign/frames/f.png", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"signedURL": "/object/sign/frames/f.png?token=x"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := NewSupabaseStore(config.SupabaseConfig{URL: srv.URL, Key: "k", Bucket: "frames"})
	_, err := store.Upload(context.Background(), []byte("x"), "f.png")
	require.NoError(t, err)
	assert.True(t, bucketCreated)
}

func TestSupabaseStore_UploadErrorSurfaces(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /storage/v1/bucket/frames", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /storage/v1/object/frames/f.png", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := NewSupabaseStore(config.SupabaseConfig{URL: srv.URL, Key: "k", Bucket: "frames"})
	_, err := store.Upload(context.Background(), []byte("x"), "f.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
