package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientStubWithoutURL(t *testing.T) {
	client := NewClient(Config{})
	assert.False(t, client.Configured())

	reply, err := client.Chat(context.Background(), "legal", "contract question")
	require.NoError(t, err)
	assert.Equal(t, "სტუბ-პასუხი legal-დან", reply)
}

func TestClientChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/legal/chat", r.URL.Path)

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "contract question", req.Prompt)

		_ = json.NewEncoder(w).Encode(map[string]string{"reply": "see article 5"})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL + "/"})
	reply, err := client.Chat(context.Background(), "legal", "contract question")
	require.NoError(t, err)
	assert.Equal(t, "see article 5", reply)
}

func TestClientPollsPendingJob(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/social/chat", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{"job_id": "j1"})
	})
	mux.HandleFunc("/social/jobs/j1", func(w http.ResponseWriter, _ *http.Request) {
		if polls.Add(1) < 3 {
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"status":"pending"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"done","reply":"benefits info"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Poll: PollConfig{MaxAttempts: 5, Interval: time.Millisecond}})
	reply, err := client.Chat(context.Background(), "social", "help")
	require.NoError(t, err)
	assert.Equal(t, "benefits info", reply)
	assert.Equal(t, int32(3), polls.Load())
}

func TestClientPollExhausted(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/social/chat", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"job_id":"j1"}`))
	})
	mux.HandleFunc("/social/jobs/j1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"pending"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Poll: PollConfig{MaxAttempts: 2, Interval: time.Millisecond}})
	_, err := client.Chat(context.Background(), "social", "help")
	assert.ErrorIs(t, err, ErrPollExhausted)
}

func TestClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Chat(context.Background(), "legal", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestPoll(t *testing.T) {
	t.Run("done on first attempt", func(t *testing.T) {
		calls := 0
		v, err := Poll(context.Background(), PollConfig{MaxAttempts: 3}, func(context.Context) (int, bool, error) {
			calls++
			return 7, true, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 7, v)
		assert.Equal(t, 1, calls)
	})

	t.Run("bounded attempts", func(t *testing.T) {
		calls := 0
		_, err := Poll(context.Background(), PollConfig{MaxAttempts: 4, Interval: time.Millisecond}, func(context.Context) (int, bool, error) {
			calls++
			return 0, false, nil
		})
		assert.ErrorIs(t, err, ErrPollExhausted)
		assert.Equal(t, 4, calls)
	})

	t.Run("context canceled between attempts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		_, err := Poll(ctx, PollConfig{MaxAttempts: 10, Interval: time.Hour}, func(context.Context) (int, bool, error) {
			cancel()
			return 0, false, nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
