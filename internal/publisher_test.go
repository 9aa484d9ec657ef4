package internal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gitcord/pkg/discord"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// stubPublisher is a mock publisher for testing.
type stubPublisher struct {
	published   int
	lastTopic   string
	lastPayload []byte
}

// Publish increments the published count and records the topic.
func (s *stubPublisher) Publish(topic string, msgs ...*message.Message) error {
	s.published += len(msgs)
	s.lastTopic = topic
	if len(msgs) > 0 {
		s.lastPayload = append([]byte(nil), msgs[0].Payload...)
	}
	return nil
}

// Close is a no-op.
func (s *stubPublisher) Close() error {
	return nil
}

func testPayload() discord.Payload {
	return discord.NewPayload(discord.Embed{Title: "hello", Color: 0x2ECC71})
}

// TestNewPublisherSelectsDriver tests that discord.driver picks the factory, case-insensitively.
func TestNewPublisherSelectsDriver(t *testing.T) {
	const driverName = "custom"

	orig, had := publisherFactories[driverName]
	defer func() {
		if had {
			publisherFactories[driverName] = orig
		} else {
			delete(publisherFactories, driverName)
		}
	}()

	stub := &stubPublisher{}
	closed := false
	publisherFactories[driverName] = func(cfg DiscordConfig, logger watermill.LoggerAdapter) (message.Publisher, func() error, error) {
		return stub, func() error { closed = true; return nil }, nil
	}

	pub, err := NewPublisher(DiscordConfig{WebhookURL: "https://discord.test/api/webhooks/1/x", Driver: "Custom", Username: "Hooks"})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}

	if err := pub.Publish(context.Background(), testPayload()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if stub.published != 1 || stub.lastTopic != "https://discord.test/api/webhooks/1/x" {
		t.Fatalf("expected one publish to the webhook url, got %d to %q", stub.published, stub.lastTopic)
	}

	var sent discord.Payload
	if err := json.Unmarshal(stub.lastPayload, &sent); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if sent.Username != "Hooks" || len(sent.Embeds) != 1 || sent.Embeds[0].Title != "hello" {
		t.Fatalf("unexpected payload %+v", sent)
	}

	if err := pub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !closed {
		t.Fatalf("expected custom close to be called")
	}
}

// TestHTTPPublisherDelivers tests a successful POST against a Discord-like endpoint.
func TestHTTPPublisherDelivers(t *testing.T) {
	var (
		gotMethod      string
		gotContentType string
		gotBody        []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	pub, err := NewPublisher(DiscordConfig{WebhookURL: server.URL, TimeoutMS: 2000})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	defer pub.Close()

	if err := pub.Publish(context.Background(), testPayload()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("expected POST, got %s", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Fatalf("expected json content type, got %q", gotContentType)
	}
	var sent map[string]interface{}
	if err := json.Unmarshal(gotBody, &sent); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	embeds, ok := sent["embeds"].([]interface{})
	if !ok || len(embeds) != 1 {
		t.Fatalf("expected one embed, got %v", sent["embeds"])
	}
	if _, ok := sent["username"]; ok {
		t.Fatalf("expected username to be omitted when unset")
	}
}

// TestHTTPPublisherRejectsNon2xx tests that error and redirect statuses fail the delivery.
func TestHTTPPublisherRejectsNon2xx(t *testing.T) {
	redirected := false
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		redirected = true
		w.WriteHeader(http.StatusNoContent)
	}))
	defer target.Close()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "server error", handler: func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{name: "bad request", handler: func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"Invalid Form Body"}`, http.StatusBadRequest)
		}},
		{name: "redirect", handler: func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, target.URL, http.StatusFound)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			pub, err := NewPublisher(DiscordConfig{WebhookURL: server.URL, TimeoutMS: 2000})
			if err != nil {
				t.Fatalf("new publisher: %v", err)
			}
			defer pub.Close()

			err = pub.Publish(context.Background(), testPayload())
			if err == nil {
				t.Fatalf("expected publish error")
			}
			if !errors.Is(err, ErrUnexpectedStatus) {
				t.Fatalf("expected unexpected status error, got %v", err)
			}
		})
	}
	if redirected {
		t.Fatalf("expected redirect not to be followed")
	}
}

// TestHTTPPublisherHonoursContext tests that a cancelled request context aborts delivery.
func TestHTTPPublisherHonoursContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()
	defer close(release)

	pub, err := NewPublisher(DiscordConfig{WebhookURL: server.URL, TimeoutMS: 5000})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := pub.Publish(ctx, testPayload()); err == nil {
		t.Fatalf("expected cancelled publish to fail")
	}
}

func TestNewPublisherValidatesURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "ftp://discord.test/hook", "https://"} {
		if _, err := NewPublisher(DiscordConfig{WebhookURL: raw}); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
	if _, err := NewPublisher(DiscordConfig{WebhookURL: "https://discord.test/hook", Driver: "carrier-pigeon"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

// TestDryRunPublisher tests that the gochannel driver accepts messages without any network.
func TestDryRunPublisher(t *testing.T) {
	pub, err := NewPublisher(DiscordConfig{WebhookURL: "https://discord.test/hook", Driver: "gochannel"})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	if err := pub.Publish(context.Background(), testPayload()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
