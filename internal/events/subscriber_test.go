package events

import (
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// startTestNATS starts an embedded NATS server and returns its client URL.
func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func TestNATSSubscriber_ReceivesMessagesWithTopic(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicAll)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	if err := pub.conn.Publish(TopicBuildOutput, []byte(`{"line":"hi"}`)); err != nil {
		t.Fatalf("publishing: %v", err)
	}
	pub.conn.Flush()

	select {
	case msg := <-ch:
		if msg.Topic != TopicBuildOutput {
			t.Errorf("topic = %q, want %q", msg.Topic, TopicBuildOutput)
		}
		if string(msg.Data) != `{"line":"hi"}` {
			t.Errorf("got %q, want %q", msg.Data, `{"line":"hi"}`)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestNATSSubscriber_PreservesOrder(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicBuildOutput)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	lines := []string{"one", "two", "three", "four"}
	for _, line := range lines {
		if err := pub.conn.Publish(TopicBuildOutput, []byte(line)); err != nil {
			t.Fatalf("publishing %s: %v", line, err)
		}
	}
	pub.conn.Flush()

	for i, want := range lines {
		select {
		case msg := <-ch:
			if string(msg.Data) != want {
				t.Fatalf("message %d = %q, want %q", i, msg.Data, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

func TestNATSSubscriber_Cancel(t *testing.T) {
	url := startTestNATS(t)

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicAll)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	cancel()

	_, ok := <-ch
	if ok {
		t.Fatal("expected channel to be closed after cancel")
	}
}

func TestNATSSubscriber_DoubleCancel(t *testing.T) {
	url := startTestNATS(t)

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	_, cancel, err := sub.Subscribe(TopicAll)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	cancel()
	cancel()
}

func TestNATSSubscriber_CancelDuringMessages(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicAll)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = pub.conn.Publish(TopicBuildOutput, []byte(`{"line":"x"}`))
		}
		pub.conn.Flush()
	}()

	cancel()
	<-done

	_, ok := <-ch
	if ok {
		t.Fatal("expected channel to be closed after cancel")
	}
}

func TestNATSSubscriber_ReconnectHandler(t *testing.T) {
	url := startTestNATS(t)

	sub, err := NewNATSSubscriber(url,
		nats.ReconnectHandler(func(_ *nats.Conn) {}),
	)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	if !sub.conn.IsConnected() {
		t.Fatal("expected subscriber to be connected")
	}
}

func TestNATSSubscriber_ImplementsSubscriber(t *testing.T) {
	var _ Subscriber = (*NATSSubscriber)(nil)
}

func TestDecode(t *testing.T) {
	for _, tc := range []struct {
		name  string
		msg   Message
		check func(t *testing.T, v any)
	}{
		{
			name: "BuildOutput",
			msg:  Message{Topic: TopicBuildOutput, Data: []byte(`{"project_id":"p1","stream":"stderr","line":"boom"}`)},
			check: func(t *testing.T, v any) {
				out, ok := v.(*BuildOutput)
				if !ok {
					t.Fatalf("Decode type = %T, want *BuildOutput", v)
				}
				if out.ProjectID != "p1" || out.Stream != "stderr" || out.Line != "boom" {
					t.Errorf("Decode = %+v", out)
				}
			},
		},
		{
			name: "BuildFinished",
			msg:  Message{Topic: TopicBuildFinished, Data: []byte(`{"project_id":"p1","exit_code":2,"error":"failed"}`)},
			check: func(t *testing.T, v any) {
				out, ok := v.(*BuildFinished)
				if !ok {
					t.Fatalf("Decode type = %T, want *BuildFinished", v)
				}
				if out.ExitCode != 2 || out.Error != "failed" {
					t.Errorf("Decode = %+v", out)
				}
			},
		},
		{
			name: "UnknownTopic",
			msg:  Message{Topic: "pakegui.other", Data: []byte(`{"a":1}`)},
			check: func(t *testing.T, v any) {
				m, ok := v.(*map[string]any)
				if !ok {
					t.Fatalf("Decode type = %T, want *map[string]any", v)
				}
				if (*m)["a"] != float64(1) {
					t.Errorf("Decode = %v", *m)
				}
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Decode(tc.msg)
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			tc.check(t, v)
		})
	}

	if _, err := Decode(Message{Topic: TopicBuildOutput, Data: []byte(`not json`)}); err == nil {
		t.Error("Decode(invalid) expected error")
	}
}
