package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gitcord/pkg/discord"

	"github.com/ThreeDotsLabs/watermill"
	wmhttp "github.com/ThreeDotsLabs/watermill-http/v2/pkg/http"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ErrUnexpectedStatus is returned when Discord answers with anything but 2xx.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// Publisher delivers one Discord message per call.
type Publisher interface {
	Publish(ctx context.Context, payload discord.Payload) error
	Close() error
}

type publisherFactory func(cfg DiscordConfig, logger watermill.LoggerAdapter) (message.Publisher, func() error, error)

// publisherFactories is keyed by the lowercase discord.driver value.
var publisherFactories = map[string]publisherFactory{
	"http":      buildHTTPPublisher,
	"gochannel": buildGoChannelPublisher,
}

type watermillPublisher struct {
	publisher message.Publisher
	closeFn   func() error
	target    string
	username  string
	avatarURL string
}

// NewPublisher builds the delivery publisher selected by cfg.Driver. The
// webhook URL is the topic, so each message goes to exactly that URL.
func NewPublisher(cfg DiscordConfig) (Publisher, error) {
	target := strings.TrimSpace(cfg.WebhookURL)
	if target == "" {
		return nil, ErrMissingWebhookURL
	}
	parsed, err := url.Parse(target)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("invalid discord webhook url %q", target)
	}

	driver := strings.ToLower(cfg.Driver)
	if driver == "" {
		driver = "http"
	}
	factory, ok := publisherFactories[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported publisher driver: %s", cfg.Driver)
	}
	pub, closeFn, err := factory(cfg, watermill.NewStdLogger(false, false))
	if err != nil {
		return nil, err
	}
	return &watermillPublisher{
		publisher: pub,
		closeFn:   closeFn,
		target:    target,
		username:  cfg.Username,
		avatarURL: cfg.AvatarURL,
	}, nil
}

func (w *watermillPublisher) Publish(ctx context.Context, payload discord.Payload) error {
	if payload.Username == "" {
		payload.Username = w.username
	}
	if payload.AvatarURL == "" {
		payload.AvatarURL = w.avatarURL
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	if ctx != nil {
		msg.SetContext(ctx)
	}
	if err := w.publisher.Publish(w.target, msg); err != nil {
		return fmt.Errorf("publish to discord: %w", err)
	}
	return nil
}

func (w *watermillPublisher) Close() error {
	if w.publisher == nil {
		return nil
	}
	err := w.publisher.Close()
	if w.closeFn != nil {
		return errors.Join(err, w.closeFn())
	}
	return err
}

func buildHTTPPublisher(cfg DiscordConfig, logger watermill.LoggerAdapter) (message.Publisher, func() error, error) {
	pub, err := wmhttp.NewPublisher(wmhttp.PublisherConfig{
		MarshalMessageFunc: marshalDiscordRequest,
		Client:             newDiscordClient(time.Duration(cfg.TimeoutMS) * time.Millisecond),
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	return pub, nil, nil
}

func marshalDiscordRequest(topic string, msg *message.Message) (*http.Request, error) {
	if topic == "" {
		return nil, fmt.Errorf("http topic url is empty")
	}
	req, err := wmhttp.DefaultMarshalMessageFunc(topic, msg)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(msg.Context())
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// newDiscordClient never follows redirects and turns every non-2xx answer
// into an error, so a 3xx counts as a failed delivery.
func newDiscordClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: statusTransport{next: http.DefaultTransport},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type statusTransport struct {
	next http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return nil, fmt.Errorf("%w: %s %s", ErrUnexpectedStatus, resp.Status, strings.TrimSpace(string(detail)))
}

// buildGoChannelPublisher is the dry-run driver: messages are logged instead
// of sent.
func buildGoChannelPublisher(cfg DiscordConfig, logger watermill.LoggerAdapter) (message.Publisher, func() error, error) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            16,
		BlockPublishUntilSubscriberAck: true,
	}, logger)
	messages, err := pubsub.Subscribe(context.Background(), strings.TrimSpace(cfg.WebhookURL))
	if err != nil {
		return nil, nil, err
	}
	out := NewLogger("dry-run")
	go drainDryRun(out, messages)
	return pubsub, nil, nil
}

func drainDryRun(logger *log.Logger, messages <-chan *message.Message) {
	for msg := range messages {
		logger.Printf("message %s: %s", msg.UUID, msg.Payload)
		msg.Ack()
	}
}
