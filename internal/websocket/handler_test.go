package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisingdash/internal/infrastructure"
	"advisingdash/internal/services"
)

func dial(t *testing.T, server *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	return websocket.DefaultDialer.Dial(url, header)
}

func TestHandler_StreamsDatasetEvents(t *testing.T) {
	hub := newTestHub(t)
	server := httptest.NewServer(NewHandler(hub, nil, infrastructure.NewNopLogger()))
	defer server.Close()

	conn, _, err := dial(t, server, "")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var hello Message
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, MessageTypeConnection, hello.Type)
	assert.Equal(t, 1, hub.ClientCount())

	hub.ObserveDataset(services.DatasetEvent{
		Type:    services.EventDatasetAdded,
		Dataset: services.Dataset{ID: "d1", Kind: services.KindAdvising, Filename: "appointments.xlsx"},
	})

	var added Message
	require.NoError(t, conn.ReadJSON(&added))
	assert.Equal(t, services.EventDatasetAdded, added.Type)
	data, ok := added.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "d1", data["id"])
	assert.NotContains(t, data, "reason")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"heartbeat"}`)))
	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_CheckOrigin(t *testing.T) {
	hub := newTestHub(t)
	server := httptest.NewServer(NewHandler(hub, []string{"https://dash.example.edu/"}, infrastructure.NewNopLogger()))
	defer server.Close()

	tests := []struct {
		name   string
		origin string
		ok     bool
	}{
		{"no origin", "", true},
		{"same origin", server.URL, true},
		{"allowed origin", "https://dash.example.edu", true},
		{"foreign origin", "https://evil.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, resp, err := dial(t, server, tt.origin)
			if tt.ok {
				require.NoError(t, err)
				conn.Close()
				return
			}
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}

func TestHandler_WildcardOrigin(t *testing.T) {
	h := NewHandler(NewHub(nil, nil), []string{"*"}, nil)
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "https://anywhere.example")
	assert.True(t, h.checkOrigin(r))
}
