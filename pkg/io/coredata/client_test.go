package coredata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventsBody = `{
	"events": [
		{"id": "e2", "deviceName": "thermo-1", "origin": 200, "readings": {"temp": 22.0}},
		{"id": "e1", "deviceName": "thermo-1", "origin": 100, "readings": {"temp": 21.0}}
	]
}`

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/event/all", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("offset"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		w.Write([]byte(eventsBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithLimit(2))

	events, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e2", events[0].ID)
	assert.Equal(t, "thermo-1", events[0].DeviceName)
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Fetch(context.Background())
	assert.ErrorContains(t, err, "unexpected status")
}

func TestRead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(eventsBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	samples, err := c.Read()
	require.NoError(t, err)
	require.Len(t, samples, 2)

	// Oldest first, readings as the payload.
	assert.Equal(t, "e1", samples[0].Key)
	assert.Equal(t, "event", samples[0].Type)
	assert.Equal(t, map[string]any{"temp": 21.0}, samples[0].Value)
}

func TestStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(eventsBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := c.Stream(ctx)
	require.NoError(t, err)

	// First batch, oldest first.
	first := <-ch
	second := <-ch
	assert.Equal(t, "e1", first.Key)
	assert.Equal(t, "e2", second.Key)

	cancel()
	for range ch {
		// Drain until the poller notices cancellation and closes.
	}
}
