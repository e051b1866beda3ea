package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/heightwalk/pkg/errors"
	"github.com/matzehuels/heightwalk/pkg/pipeline"
)

const (
	// maxStreamMessage bounds a single options message.
	maxStreamMessage = 64 << 10
	streamWriteWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 64 << 10,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleStream upgrades to a websocket and runs the pipeline once per
// incoming text message. Each message is a JSON options document applied
// over the default options. A successful run is answered with two frames:
// the JSON metadata as text, then the final heights as binary. A failed
// run is answered with a single {"error","message"} text frame and the
// connection stays open.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxStreamMessage)

	ctx := r.Context()
	logger := s.logger.With("remote", r.RemoteAddr)
	logger.Debug("stream opened")

	for {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("stream read failed", "err", err)
			}
			logger.Debug("stream closed")
			return
		}
		if kind != websocket.TextMessage {
			if err := s.streamError(conn, errors.New(errors.ErrCodeInvalidInput, "expected a JSON text message")); err != nil {
				return
			}
			continue
		}

		res, err := s.streamRun(ctx, msg)
		if err != nil {
			if err := s.streamError(conn, err); err != nil {
				return
			}
			continue
		}
		logger.Debug("stream frame", "run", res.ID, "bytes", len(res.Output()))

		if err := streamWrite(conn, websocket.TextMessage, res.Artifacts[pipeline.FormatJSON]); err != nil {
			return
		}
		if err := streamWrite(conn, websocket.BinaryMessage, res.Artifacts[pipeline.FormatRaw]); err != nil {
			return
		}
	}
}

func (s *Server) streamRun(ctx context.Context, msg []byte) (*pipeline.Result, error) {
	opts := pipeline.DefaultOptions()
	if len(bytes.TrimSpace(msg)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&opts); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode options")
		}
	}
	opts.Formats = []string{pipeline.FormatJSON, pipeline.FormatRaw}
	opts.Scale = 1
	return s.runner.Execute(ctx, opts)
}

func (s *Server) streamError(conn *websocket.Conn, err error) error {
	s.logger.Debug("stream run failed", "err", err)
	data, _ := json.Marshal(errorResponse{Error: errorCode(err), Message: errors.UserMessage(err)})
	return streamWrite(conn, websocket.TextMessage, data)
}

func streamWrite(conn *websocket.Conn, kind int, data []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteMessage(kind, data)
}
