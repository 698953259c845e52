
package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"trend-collector/internal/models"
)

func startTestNATS(t *testing.T) *nats.Conn {
	t.Helper()
	srv, err := natsserver.NewServer(&natsserver.Options{Port: -1})
	if err != nil {
		t.Fatal(err)
	}
	srv.Start()
	if !srv.ReadyForConnections(3 * time.Second) {
		t.Fatal("nats not ready")
	}
	nc, err := nats.Connect(srv.ClientURL())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		nc.Close()
		srv.Shutdown()
	})
	return nc
}

func testSnapshot() *models.Snapshot {
	kw := []string{"k1", "k2", "k3", "k4", "k5", "k6", "k7", "k8", "k9", "k10", "k11"}
	return &models.Snapshot{
		CollectedAt:     time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
		Sources:         []string{"naver"},
		News:            []models.RawRecord{{Title: "a"}, {Title: "b"}},
		Blogs:           []models.RawRecord{{Title: "c"}},
		OverallKeywords: kw,
	}
}

func TestSnapshotCommittedPublishes(t *testing.T) {
	nc := startTestNATS(t)
	ch := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe(DefaultSubject, ch)
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Unsubscribe()

	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prev)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	if err := NewNATS(nc, "").SnapshotCommitted(ctx, testSnapshot()); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-ch:
		var ev SnapshotEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			t.Fatal(err)
		}
		if ev.Date != "2024-06-10" || ev.NewsCount != 2 || ev.BlogCount != 1 || len(ev.TopKeywords) != 10 {
			t.Fatalf("unexpected event: %+v", ev)
		}
		if got := msg.Header.Get("traceparent"); got == "" || got[3:35] != traceID.String() {
			t.Fatalf("trace context not propagated, header %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestHeaderCarrier(t *testing.T) {
	msg := &natsHeaderCarrier{}
	if msg.Get("missing") != "" || msg.Keys() != nil {
		t.Fatal("empty carrier should have no values")
	}
	msg.Set("key", "val1")
	msg.Set("key", "val2")
	if got := msg.Get("key"); got != "val2" {
		t.Fatalf("expected val2, got %s", got)
	}
	if len(msg.Keys()) != 1 {
		t.Fatalf("expected 1 key, got %v", msg.Keys())
	}
}

func TestNop(t *testing.T) {
	var n Notifier = Nop{}
	if err := n.SnapshotCommitted(context.Background(), testSnapshot()); err != nil {
		t.Fatal(err)
	}
}
