
// Package notify announces committed snapshots to other processes.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"

	"trend-collector/internal/models"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "trends.snapshot.committed"

// SnapshotEvent is the message body published for each stored snapshot.
type SnapshotEvent struct {
	Date        string    `json:"date"`
	CollectedAt time.Time `json:"collected_at"`
	Sources     []string  `json:"sources"`
	TopKeywords []string  `json:"top_keywords"`
	NewsCount   int       `json:"news_count"`
	BlogCount   int       `json:"blog_count"`
}

func NewSnapshotEvent(s *models.Snapshot) SnapshotEvent {
	return SnapshotEvent{
		Date:        s.Date(),
		CollectedAt: s.CollectedAt,
		Sources:     s.Sources,
		TopKeywords: s.TopKeywords(),
		NewsCount:   len(s.News),
		BlogCount:   len(s.Blogs),
	}
}

type Notifier interface {
	SnapshotCommitted(ctx context.Context, s *models.Snapshot) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) SnapshotCommitted(context.Context, *models.Snapshot) error { return nil }

// natsHeaderCarrier adapts nats.Msg headers for OTel TextMapCarrier.
type natsHeaderCarrier nats.Msg

func (c *natsHeaderCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *natsHeaderCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *natsHeaderCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// NATSNotifier publishes SnapshotEvents as JSON with the caller's trace
// context in the message headers.
type NATSNotifier struct {
	nc      *nats.Conn
	subject string
}

func NewNATS(nc *nats.Conn, subject string) *NATSNotifier {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSNotifier{nc: nc, subject: subject}
}

// ConnectNATS dials url and returns a notifier that owns the connection.
func ConnectNATS(url, subject string) (*NATSNotifier, error) {
	nc, err := nats.Connect(url, nats.Name("trend-collector"))
	if err != nil {
		return nil, err
	}
	return NewNATS(nc, subject), nil
}

func (n *NATSNotifier) SnapshotCommitted(ctx context.Context, s *models.Snapshot) error {
	data, err := json.Marshal(NewSnapshotEvent(s))
	if err != nil {
		return err
	}
	msg := &nats.Msg{
		Subject: n.subject,
		Data:    data,
	}
	otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(msg))
	return n.nc.PublishMsg(msg)
}

// Close drains pending messages and closes the connection.
func (n *NATSNotifier) Close() error {
	return n.nc.Drain()
}
