package observer

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/mrz1836/astromedia/internal/domain"
)

// natsConn is the subset of *nats.Conn the sink uses.
type natsConn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSSink publishes every snapshot as JSON on <subject>.<agent_id>.
type NATSSink struct {
	conn    natsConn
	subject string
}

// NewNATSSink connects to the NATS server at url.
func NewNATSSink(url, subject string) (*NATSSink, error) {
	nc, err := nats.Connect(url,
		nats.Name("astromedia"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}
	return &NATSSink{conn: nc, subject: subject}, nil
}

// Export implements Sink.
func (s *NATSSink) Export(snapshot *domain.AgentTask) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	subject := s.subject + "." + snapshot.AgentID
	if err := s.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (s *NATSSink) Close() error {
	return s.conn.Drain()
}
