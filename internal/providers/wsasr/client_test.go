package wsasr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynv223/talklink/internal/vpipe/core"
)

var upgrader = websocket.Upgrader{}

func newEchoTranscriptServer(t *testing.T, reply transcriptMessage) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
			msg, _ := json.Marshal(reply)
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestClient_TranscribeReturnsResultFromReadLoop(t *testing.T) {
	server := newEchoTranscriptServer(t, transcriptMessage{Text: "hello", Speaker: "alice", Final: true})
	defer server.Close()

	c := New(wsURL(server))
	require.NoError(t, c.Start(context.Background(), "en"))
	defer c.Stop(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		res, err := c.Transcribe(context.Background(), &core.PCM{Samples: []int16{1, 2, 3}, Channels: 1})
		require.NoError(t, err)
		if res != nil {
			assert.Equal(t, "hello", res.Text)
			assert.Equal(t, "alice", res.Speaker)
			assert.True(t, res.IsFinal)
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("no transcript received within deadline")
}

func TestClient_TranscribeBeforeStartErrors(t *testing.T) {
	c := New("ws://unused")
	_, err := c.Transcribe(context.Background(), &core.PCM{Samples: []int16{1}, Channels: 1})
	assert.Error(t, err)
}

func TestClient_StartErrorsOnUnreachableURL(t *testing.T) {
	c := New("ws://127.0.0.1:1")
	err := c.Start(context.Background(), "en")
	assert.Error(t, err)
}

func TestClient_StopWithoutStartIsNoOp(t *testing.T) {
	c := New("ws://unused")
	assert.NoError(t, c.Stop(context.Background()))
}
