package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartnav/pkg/model"
)

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	srv := httptest.NewServer(NewServer("localhost:0", NewNavHandler(), nil, hub, nil, func() {}).Handler)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the server a moment to register the client
	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 1
	}, 2*time.Second, 10*time.Millisecond)

	update := &model.NavUpdate{
		FilteredLat:        52.52,
		FilteredLon:        13.405,
		SpeedKmh:           30,
		RemainingDistanceM: 400,
		ETAMinutes:         1,
		State:              model.StateActive,
	}
	hub.Broadcast("trip-1", update)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got NavResponse
	require.NoError(t, conn.ReadJSON(&got))

	assert.Equal(t, "trip-1", got.TripID)
	assert.Equal(t, update.FilteredLat, got.FilteredLat)
	assert.Equal(t, model.StateActive, got.State)
}

func TestHub_DropsDeadClients(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	srv := httptest.NewServer(NewServer("localhost:0", NewNavHandler(), nil, hub, nil, func() {}).Handler)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	conn.Close()

	// Broadcast after disconnect must not wedge the hub
	hub.Broadcast("trip-1", &model.NavUpdate{State: model.StateActive})

	assert.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
