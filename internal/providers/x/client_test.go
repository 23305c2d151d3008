package x_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teleport-xyz/teleport-indexer/internal/adapter"
	"github.com/teleport-xyz/teleport-indexer/internal/domain"
	"github.com/teleport-xyz/teleport-indexer/internal/providers/x"
)

var testCredentials = domain.AccountCredentials{AccessToken: "at-123", AccessSecret: "as-456"}

func newTestClient(server *httptest.Server) x.Client {
	return x.NewClient(x.Config{
		APIURL:         server.URL,
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		HTTPTimeout:    5 * time.Second,
		Retry: adapter.RetryConfig{
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
			MaxElapsedTime:  time.Second,
		},
	})
}

func TestCreatePost_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/2/tweets", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		auth := r.Header.Get("Authorization")
		assert.True(t, strings.HasPrefix(auth, "OAuth "))
		assert.Contains(t, auth, `oauth_consumer_key="ck"`)
		assert.Contains(t, auth, `oauth_token="at-123"`)
		assert.Contains(t, auth, `oauth_signature_method="HMAC-SHA1"`)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gm frens", body["text"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"1799999999999999999","text":"gm frens"}}`))
	}))
	defer server.Close()

	id, err := newTestClient(server).CreatePost(context.Background(), testCredentials, "gm frens")
	require.NoError(t, err)
	assert.Equal(t, "1799999999999999999", id)
}

func TestCreatePost_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"title":"Too Many Requests"}`))
			return
		}
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "retry me", body["text"], "body is replayed on retry")

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"42","text":"retry me"}}`))
	}))
	defer server.Close()

	id, err := newTestClient(server).CreatePost(context.Background(), testCredentials, "retry me")
	require.NoError(t, err)
	assert.Equal(t, "42", id)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCreatePost_ConnectionDroppedAfterCommit(t *testing.T) {
	var posts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The post is created, then the response is lost
		if posts.Add(1) == 1 {
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			_ = conn.Close()
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"2","text":"once"}}`))
	}))
	defer server.Close()

	id, err := newTestClient(server).CreatePost(context.Background(), testCredentials, "once")
	require.Error(t, err)
	assert.Empty(t, id)
	assert.ErrorContains(t, err, "failed to perform request")
	assert.Equal(t, int32(1), posts.Load(), "a post that may have been created is not sent again")
}

func TestCreatePost_ServerErrorNotRetried(t *testing.T) {
	var posts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if posts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"title":"Service Unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"2","text":"once"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server).CreatePost(context.Background(), testCredentials, "once")
	require.Error(t, err)

	var statusErr *adapter.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, int32(1), posts.Load())
}

func TestCreatePost_Rejected(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"You are not allowed to create a Tweet with duplicate content."}`))
	}))
	defer server.Close()

	id, err := newTestClient(server).CreatePost(context.Background(), testCredentials, "dup")
	assert.Empty(t, id)
	require.Error(t, err)

	var statusErr *adapter.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load(), "client errors are not retried")
}

func TestCreatePost_MissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server).CreatePost(context.Background(), testCredentials, "gm")
	assert.ErrorContains(t, err, "no post id")
}

func TestCreatePost_UnlinkedAccount(t *testing.T) {
	client := x.NewClient(x.Config{APIURL: "http://127.0.0.1:1"})

	_, err := client.CreatePost(context.Background(), domain.AccountCredentials{AccessToken: "at"}, "gm")
	assert.ErrorIs(t, err, domain.ErrAccountNotLinked)
}
