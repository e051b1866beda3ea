package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/heightwalk/pkg/errors"
	"github.com/matzehuels/heightwalk/pkg/pipeline"
)

func dialStream(t *testing.T) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(newTestServer().Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn, want int) []byte {
	t.Helper()
	kind, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if kind != want {
		t.Fatalf("frame type = %d, want %d", kind, want)
	}
	return data
}

func TestStream(t *testing.T) {
	conn := dialStream(t)

	opts := `{"size":2,"max_long_age":3,"max_generations":0,"seed":5}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(opts)); err != nil {
		t.Fatal(err)
	}

	var meta pipeline.Metadata
	if err := json.Unmarshal(readFrame(t, conn, websocket.TextMessage), &meta); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if meta.Seed != 5 || meta.MaxAge != 4 || meta.ID == "" {
		t.Errorf("metadata = %+v", meta)
	}

	heights := readFrame(t, conn, websocket.BinaryMessage)
	if want := []byte{0, 191, 127, 1}; !bytes.Equal(heights, want) {
		t.Errorf("heights = %v, want %v", heights, want)
	}
}

func TestStreamErrorKeepsConnection(t *testing.T) {
	conn := dialStream(t)

	tests := []struct {
		name string
		kind int
		msg  string
		code errors.Code
	}{
		{"unknown field", websocket.TextMessage, `{"sise":2}`, errors.ErrCodeInvalidInput},
		{"bad radius", websocket.TextMessage, `{"size":2,"radius":-1}`, errors.ErrCodeInvalidRadius},
		{"binary", websocket.BinaryMessage, "\x00\x01", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(tt.kind, []byte(tt.msg)); err != nil {
				t.Fatal(err)
			}
			var resp errorResponse
			if err := json.Unmarshal(readFrame(t, conn, websocket.TextMessage), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Error != tt.code {
				t.Errorf("error = %s, want %s", resp.Error, tt.code)
			}
		})
	}

	// The connection survives and still serves runs.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"size":2,"max_long_age":3,"max_generations":0}`)); err != nil {
		t.Fatal(err)
	}
	readFrame(t, conn, websocket.TextMessage)
	if got := readFrame(t, conn, websocket.BinaryMessage); len(got) != 4 {
		t.Errorf("heights len = %d, want 4", len(got))
	}
}
