// Package wsasr is an illustrative ASRService reference implementation: a
// streaming recognizer reached over a plain JSON-over-WebSocket protocol.
// It exists to exercise the ASR plug-point and the "explicit timeouts on
// streaming service clients" requirement, not as a production Google/
// Deepgram/Gemini client (those concrete providers are out of scope).
// Grounded on the request/response shape of
// _examples/iamprashant-voice-ai's cartesia stt/tts transformers, adapted
// from protobuf+credential-vault plumbing to a minimal binary-PCM-in,
// JSON-transcript-out protocol.
package wsasr

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/duynv223/talklink/internal/vpipe/capsules/services"
	"github.com/duynv223/talklink/internal/vpipe/core"
)

// HandshakeTimeout bounds the initial WebSocket dial, matching the
// "20 s for handshake" guidance.
const HandshakeTimeout = 20 * time.Second

// WriteTimeout bounds a single audio-frame write.
const WriteTimeout = 1 * time.Second

// transcriptMessage is the wire shape of one recognizer update.
type transcriptMessage struct {
	Text    string `json:"text"`
	Speaker string `json:"speaker,omitempty"`
	Final   bool   `json:"final"`
}

// Client implements services.ASRService over a WebSocket connection to url.
// One Client handles at most one recognition session at a time: Start
// dials and begins a session, Transcribe streams audio and returns whatever
// transcript has arrived since the last call, Stop closes the session.
type Client struct {
	url    string
	dialer *websocket.Dialer

	mu      sync.Mutex
	conn    *websocket.Conn
	pending []*services.TranscribeResult
	readErr error
}

// New creates a Client dialing url on Start.
func New(url string) *Client {
	return &Client{
		url:    url,
		dialer: &websocket.Dialer{HandshakeTimeout: HandshakeTimeout},
	}
}

// Start satisfies services.ASRService: dials the recognizer and begins a
// background read loop collecting transcript messages into c.pending.
func (c *Client) Start(ctx context.Context, srcLang string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return &core.ServiceError{Service: "asr", Op: "dial", Err: err}
	}
	c.conn = conn
	c.pending = nil
	c.readErr = nil

	go c.readLoop(conn)
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			c.readErr = err
			c.mu.Unlock()
			return
		}
		var tm transcriptMessage
		if err := json.Unmarshal(msg, &tm); err != nil {
			slog.Warn("wsasr: malformed transcript message", "err", err)
			continue
		}
		c.mu.Lock()
		c.pending = append(c.pending, &services.TranscribeResult{
			Text:    tm.Text,
			Speaker: tm.Speaker,
			IsFinal: tm.Final,
		})
		c.mu.Unlock()
	}
}

// Transcribe writes one PCM block as a binary frame and returns the oldest
// transcript the read loop has accumulated since the previous call (nil if
// none arrived yet). ASRTransform is responsible for merging this into its
// work-in-progress Payload; the client never constructs one itself, so an
// interim and its eventual final keep the caller's one Payload id.
func (c *Client) Transcribe(ctx context.Context, chunk *core.PCM) (*services.TranscribeResult, error) {
	c.mu.Lock()
	conn := c.conn
	readErr := c.readErr
	c.mu.Unlock()

	if conn == nil {
		return nil, fmt.Errorf("wsasr: Transcribe called before Start")
	}
	if readErr != nil {
		return nil, &core.ServiceError{Service: "asr", Op: "transcribe", Err: readErr}
	}

	payload := make([]byte, len(chunk.Samples)*2)
	for i, s := range chunk.Samples {
		binary.LittleEndian.PutUint16(payload[i*2:], uint16(s))
	}

	conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		return nil, &core.ServiceError{Service: "asr", Op: "transcribe", Err: err}
	}

	c.mu.Lock()
	var result *services.TranscribeResult
	if len(c.pending) > 0 {
		result = c.pending[0]
		c.pending = c.pending[1:]
	}
	c.mu.Unlock()
	return result, nil
}

// Stop closes the WebSocket session.
func (c *Client) Stop(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	if err := conn.Close(); err != nil {
		return &core.ServiceError{Service: "asr", Op: "stop", Err: err}
	}
	return nil
}
