package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "vouch/pkg/platform/audit"
)

// Publisher mirrors the audit stream to a Kafka topic. Events are keyed by
// principal so per-principal ordering survives partitioning; the single
// upstream writer keeps global order within a partition.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// New connects to the brokers and ensures the topic exists. A single
// in-flight produce per partition keeps append order.
func New(ctx context.Context, brokers []string, topic string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.MaxProduceRequestsInflightPerBroker(1),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	if _, err := adm.CreateTopic(ctx, 1, 1, nil, topic); err != nil {
		// Topic may already exist; anything else is fatal.
		if exists, derr := adm.ListTopics(ctx, topic); derr != nil || !exists.Has(topic) {
			client.Close()
			return nil, fmt.Errorf("ensure topic %q: %w", topic, err)
		}
	}

	return &Publisher{client: client, topic: topic}, nil
}

type eventPayload struct {
	Seq       uint64 `json:"seq"`
	Principal string `json:"principal"`
	Action    string `json:"action"`
	Subject   string `json:"subject,omitempty"`
	Decision  string `json:"decision,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (p *Publisher) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(eventPayload{
		Seq:       uint64(event.Seq),
		Principal: event.Principal.String(),
		Action:    event.Action,
		Subject:   event.Subject,
		Decision:  event.Decision,
		RequestID: event.RequestID,
	})
	if err != nil {
		return err
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.Principal.String()),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Close()
}
