package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/mrz1836/astromedia/internal/domain"
)

const (
	streamWriteTimeout = 10 * time.Second
	streamPingInterval = 30 * time.Second
)

// Stream message types.
const (
	StreamSnapshot = "snapshot"
	StreamUpdate   = "update"
)

// StreamMessage is one WebSocket frame of /api/stream. The first frame is a
// snapshot of the whole collection; every later frame carries one task.
type StreamMessage struct {
	Type  string              `json:"type"`
	Tasks []*domain.AgentTask `json:"tasks,omitempty"`
	Task  *domain.AgentTask   `json:"task,omitempty"`
}

func (s *Server) handleStream(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	current, updates, cancel := s.deps.Feed.Subscribe()
	defer cancel()

	// the reader only notices the client going away
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	if err := writeFrame(conn, StreamMessage{Type: StreamSnapshot, Tasks: current}); err != nil {
		return
	}

	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	for {
		select {
		case snapshot, ok := <-updates:
			if !ok {
				// disconnected as a slow subscriber, or the bus closed
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream closed"),
					time.Now().Add(streamWriteTimeout))
				return
			}
			if err := writeFrame(conn, StreamMessage{Type: StreamUpdate, Task: snapshot}); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteTimeout)); err != nil {
				return
			}
		case <-clientGone:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, msg StreamMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}
