package grader

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepdesk/prepdesk/internal/domain/shared"
	"github.com/prepdesk/prepdesk/pkg/retry"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(DefaultClientConfig(server.URL))
}

func TestSubmit_Success(t *testing.T) {
	var gotBody submitRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/grade", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(gradeResponse{
			Correct:       true,
			Explanation:   "well done",
			CorrectAnswer: "42",
		})
	})

	result, err := client.Submit(context.Background(), "item-1", "42", 17)
	require.NoError(t, err)

	assert.True(t, result.Correct)
	assert.Equal(t, "well done", result.Explanation)
	assert.Equal(t, "42", result.CorrectAnswer)
	assert.Equal(t, "item-1", gotBody.ItemID)
	assert.Equal(t, "42", gotBody.Answer)
	assert.Equal(t, 17, gotBody.TimeSpentSeconds)
}

func TestSubmit_SendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(gradeResponse{Correct: false})
	}))
	defer server.Close()

	cfg := DefaultClientConfig(server.URL)
	cfg.APIKey = "secret"
	client := NewClient(cfg)

	_, err := client.Submit(context.Background(), "item-1", "x", 1)
	require.NoError(t, err)
}

func TestSubmit_ServerErrorIsRetryable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Submit(context.Background(), "item-1", "x", 1)
	require.Error(t, err)

	assert.True(t, retry.IsRetryable(err))
	assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
}

func TestSubmit_RateLimitIsRetryable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Submit(context.Background(), "item-1", "x", 1)
	require.Error(t, err)

	assert.True(t, retry.IsRetryable(err))
	assert.ErrorIs(t, err, shared.ErrRateLimited)
}

func TestSubmit_ClientErrorIsPermanent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.Submit(context.Background(), "item-1", "x", 1)
	require.Error(t, err)

	assert.True(t, retry.IsPermanent(err))
	assert.False(t, retry.IsRetryable(err))
	assert.ErrorIs(t, err, shared.ErrRejected)
}

func TestSubmit_NetworkFailureIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(DefaultClientConfig(server.URL))

	_, err := client.Submit(context.Background(), "item-1", "x", 1)
	require.Error(t, err)

	assert.True(t, retry.IsRetryable(err))
	assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
}

func TestSubmit_MalformedBodyIsPermanent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := client.Submit(context.Background(), "item-1", "x", 1)
	require.Error(t, err)

	assert.True(t, retry.IsPermanent(err))
}

func TestSubmit_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Submit(ctx, "item-1", "x", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
