package bus

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

func startEmbeddedServer(t *testing.T) *Server {
	t.Helper()
	// Port -1 asks the server for a random free port.
	srv, err := NewServer(ServerOptions{Port: -1})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })
	return srv
}

func TestNATSBusRoundTrip(t *testing.T) {
	srv := startEmbeddedServer(t)

	nc, err := nats.Connect(srv.ClientURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	b := NewNATSBus(nc)
	defer b.Close()

	rec := &recorder{}
	unsub, err := b.Subscribe("job:event", rec.handler)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := b.Publish("job:event", []byte("one")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := b.Publish("job:event", []byte("two")); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got := rec.waitFor(t, 2)
	if got[0] != "one" || got[1] != "two" {
		t.Errorf("payloads = %v", got)
	}

	unsub()
	if err := b.Publish("job:event", []byte("three")); err != nil {
		t.Fatalf("publish after unsubscribe: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 2 {
		t.Errorf("unsubscribed handler still receiving: %v", got)
	}
}

func TestNATSBusSubjectIsolation(t *testing.T) {
	srv := startEmbeddedServer(t)

	nc, err := nats.Connect(srv.ClientURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	b := NewNATSBus(nc)
	defer b.Close()

	recA := &recorder{}
	if _, err := b.Subscribe("a:event", recA.handler); err != nil {
		t.Fatal(err)
	}

	b.Publish("b:event", []byte("not-for-a"))
	b.Publish("a:event", []byte("for-a"))

	got := recA.waitFor(t, 1)
	if len(got) != 1 || got[0] != "for-a" {
		t.Errorf("payloads = %v", got)
	}
}
