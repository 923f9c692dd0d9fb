package scoring

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL, Logger: zerolog.Nop()})
	require.NoError(t, err)

	return client
}

func TestScore(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"score": 81.5}`))
	})

	score, err := client.Score(context.Background(), "if2110", "explain tail recursion", "a thorough explanation")
	require.NoError(t, err)
	require.Equal(t, 81.5, score)

	require.Equal(t, "/if2110", gotPath)
	require.Equal(t, "explain tail recursion", gotBody["markingScheme"])
	require.Equal(t, "a thorough explanation", gotBody["studentResponse"])
}

func TestScoreTrimsSlashes(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"score": 10}`))
	}))
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL + "/", Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, err = client.Score(context.Background(), "/if2110", "scheme", "answer")
	require.NoError(t, err)
	require.Equal(t, "/if2110", gotPath)
}

func TestScoreUnexpectedStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	})

	_, err := client.Score(context.Background(), "if2110", "scheme", "answer")
	require.ErrorIs(t, err, ErrUnavailable)
	require.Contains(t, err.Error(), "status 500")
}

func TestScoreMalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	_, err := client.Score(context.Background(), "if2110", "scheme", "answer")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestScoreTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The server only watches for client disconnects (and cancels the
		// request context) once the request body has been consumed.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond, Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, err = client.Score(context.Background(), "if2110", "scheme", "answer")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}
