package connectivity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsOnlineBeforeStart(t *testing.T) {
	m := New(Config{})
	assert.True(t, m.IsOnline(), "monitor should be optimistic before the first probe")
}

func TestStartProbesSynchronously(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	m := New(Config{ProbeURL: srv.URL, Interval: time.Hour})
	defer m.Stop(time.Second)

	m.Start(context.Background())
	assert.True(t, m.IsOnline())
}

func TestStartWithUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	m := New(Config{ProbeURL: srv.URL, Interval: time.Hour})
	defer m.Stop(time.Second)

	m.Start(context.Background())
	assert.False(t, m.IsOnline())
}

func TestErrorStatusStillCountsAsOnline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := New(Config{ProbeURL: srv.URL, Interval: time.Hour})
	defer m.Stop(time.Second)

	m.Start(context.Background())
	assert.True(t, m.IsOnline(), "a completed exchange means the network is reachable")
}

func TestProbeLoopDetectsTransition(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				conn.Close()
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	m := New(Config{ProbeURL: srv.URL, Interval: 10 * time.Millisecond})
	defer m.Stop(time.Second)

	sub := m.Subscribe()
	m.Start(context.Background())
	require.True(t, m.IsOnline())

	healthy.Store(false)

	select {
	case online := <-sub:
		assert.False(t, online)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for offline transition")
	}
	assert.False(t, m.IsOnline())
}

func TestSetOnlineNotifiesSubscribers(t *testing.T) {
	m := New(Config{})
	sub := m.Subscribe()

	m.SetOnline(false)

	select {
	case online := <-sub:
		assert.False(t, online)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
	}
	assert.False(t, m.IsOnline())

	m.SetOnline(true)

	select {
	case online := <-sub:
		assert.True(t, online)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
	}
	assert.True(t, m.IsOnline())
}

func TestSetOnlineSameStateDoesNotNotify(t *testing.T) {
	m := New(Config{})
	sub := m.Subscribe()

	m.SetOnline(true)

	select {
	case <-sub:
		t.Fatal("no transition happened, subscriber should stay silent")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	m := New(Config{})
	m.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			m.SetOnline(i%2 == 0)
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SetOnline blocked on an undrained subscriber")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	m := New(Config{})
	sub := m.Subscribe()

	m.Unsubscribe(sub)

	_, open := <-sub
	assert.False(t, open)

	// Transitions after unsubscribe must not panic on the closed channel.
	m.SetOnline(false)
}

func TestStopWithoutStart(t *testing.T) {
	m := New(Config{})
	m.Stop(time.Second)
}

func TestStartTwice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	m := New(Config{ProbeURL: srv.URL, Interval: time.Hour})
	defer m.Stop(time.Second)

	ctx := context.Background()
	m.Start(ctx)
	m.Start(ctx)
	assert.True(t, m.IsOnline())
}
