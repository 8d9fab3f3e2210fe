package api

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleUpdates_PushesRefreshNotification(t *testing.T) {
	provider := NewMockSnapshotProvider()
	server := New("0", provider, new(MockAssembler))

	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/updates"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the handler a moment to register its subscription
	time.Sleep(50 * time.Millisecond)
	provider.subscriptions.Emit(context.Background())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg UpdateMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "snapshot_refresh", msg.Type)
	assert.Greater(t, msg.At, int64(0))
}
