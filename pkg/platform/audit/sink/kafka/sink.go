// Package kafka streams audit events to a Kafka topic. Events are keyed by
// account ID so a single account's trail stays ordered within a partition.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "sahay/pkg/platform/audit"
)

type Sink struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

type Option func(*Sink)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		s.logger = logger
	}
}

// New connects to the given brokers and ensures the topic exists before
// returning. Topic creation is idempotent so concurrent instances can race.
func New(brokers []string, topic string, opts ...Option) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	s := &Sink{
		client: client,
		topic:  topic,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.ensureTopic(); err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sink) ensureTopic() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	adm := kadm.NewClient(s.client)
	resp, err := adm.CreateTopic(ctx, 3, 1, nil, s.topic)
	if err != nil {
		return fmt.Errorf("create topic %q: %w", s.topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %q: %w", s.topic, resp.Err)
	}
	return nil
}

// payload is the JSON structure written to the topic. Field names stay
// stable so downstream consumers can rely on them.
type payload struct {
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	AccountID string `json:"account_id,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Action    string `json:"action"`
	Reason    string `json:"reason,omitempty"`
	Email     string `json:"email,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Publish produces the event synchronously. The caller decides whether to
// treat failures as fatal; the portal tees to a primary store first.
func (s *Sink) Publish(ctx context.Context, event audit.Event) error {
	p := payload{
		Category:  string(event.Category),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Subject:   event.Subject,
		Action:    event.Action,
		Reason:    event.Reason,
		Email:     event.Email,
		RequestID: event.RequestID,
	}
	var key []byte
	if !event.AccountID.IsNil() {
		p.AccountID = event.AccountID.String()
		key = []byte(p.AccountID)
	}

	value, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{Topic: s.topic, Key: key, Value: value}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (s *Sink) Close() {
	s.client.Close()
}
