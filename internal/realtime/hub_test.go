package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/monocle-dev/tracker/internal/ids"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T, hub *Hub, projectID ids.ID) string {
	t.Helper()
	return newUserHubServer(t, hub, projectID, ids.New())
}

func newUserHubServer(t *testing.T, hub *Hub, projectID, userID ids.ID) string {
	t.Helper()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(projectID, userID, conn)
	}))
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func TestHubPublishesToProjectClients(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(logger)
	projectID := ids.New()
	url := newHubServer(t, hub, projectID)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	welcome := readEvent(t, conn)
	assert.Equal(t, EventConnected, welcome.Type)
	assert.True(t, welcome.ProjectID.Equal(projectID))

	require.Eventually(t, func() bool { return hub.Clients(projectID) == 1 }, 5*time.Second, 10*time.Millisecond)

	ticketID := ids.New()
	hub.Publish(projectID, EventTicketChanged, &ticketID)

	event := readEvent(t, conn)
	assert.Equal(t, EventTicketChanged, event.Type)
	require.NotNil(t, event.TicketID)
	assert.True(t, event.TicketID.Equal(ticketID))

	// Events for other projects are not delivered; the next message must
	// be the second event for this project.
	hub.Publish(ids.New(), EventTicketChanged, nil)
	hub.Publish(projectID, EventCommentAdded, nil)
	assert.Equal(t, EventCommentAdded, readEvent(t, conn).Type)
}

func TestHubUnregistersOnClose(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(logger)
	projectID := ids.New()
	url := newHubServer(t, hub, projectID)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	readEvent(t, conn)
	require.Eventually(t, func() bool { return hub.Clients(projectID) == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	assert.Eventually(t, func() bool { return hub.Clients(projectID) == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestPublishWithoutClients(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(logger)

	hub.Publish(ids.New(), EventProjectDeleted, nil)
	assert.Equal(t, 0, hub.Clients(ids.New()))
}

func TestDisconnectClosesOnlyThatUser(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(logger)
	projectID := ids.New()
	removed := ids.New()

	removedConn, _, err := websocket.DefaultDialer.Dial(newUserHubServer(t, hub, projectID, removed), nil)
	require.NoError(t, err)
	defer removedConn.Close()
	readEvent(t, removedConn)

	stayingConn, _, err := websocket.DefaultDialer.Dial(newHubServer(t, hub, projectID), nil)
	require.NoError(t, err)
	defer stayingConn.Close()
	readEvent(t, stayingConn)

	require.Eventually(t, func() bool { return hub.Clients(projectID) == 2 }, 5*time.Second, 10*time.Millisecond)

	hub.Disconnect(projectID, removed)
	assert.Equal(t, 1, hub.Clients(projectID))

	require.NoError(t, removedConn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = removedConn.ReadMessage()
	assert.Error(t, err)

	hub.Publish(projectID, EventMembersChanged, nil)
	assert.Equal(t, EventMembersChanged, readEvent(t, stayingConn).Type)
}

func TestPublishDoesNotWaitForSlowClients(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(logger)
	projectID := ids.New()

	// Never read after the welcome; the client's buffers eventually fill.
	conn, _, err := websocket.DefaultDialer.Dial(newHubServer(t, hub, projectID), nil)
	require.NoError(t, err)
	defer conn.Close()
	readEvent(t, conn)
	require.Eventually(t, func() bool { return hub.Clients(projectID) == 1 }, 5*time.Second, 10*time.Millisecond)

	start := time.Now()
	for i := 0; i < 10*sendBuffer; i++ {
		hub.Publish(projectID, EventTicketChanged, nil)
	}
	assert.Less(t, time.Since(start), writeWait)
}
