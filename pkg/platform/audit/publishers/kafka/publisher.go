// Package kafka forwards audit events to a Kafka topic so downstream
// consumers (compliance archival, notification fan-out) can tail the
// verification trail without touching the ledger.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"canopy/pkg/platform/audit"
)

// DefaultTopic is used when no topic is configured.
const DefaultTopic = "canopy.audit"

// Sink produces one JSON record per audit event, keyed by the subject
// principal so a user's trail stays in partition order.
type Sink struct {
	client *kgo.Client
	topic  string
}

// New connects a Kafka sink to the given brokers.
func New(brokers []string, topic string) (*Sink, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	return &Sink{client: client, topic: topic}, nil
}

type wireEvent struct {
	Action      string `json:"action"`
	Timestamp   string `json:"timestamp"`
	Height      uint64 `json:"height"`
	ActorID     string `json:"actor_id"`
	SubjectID   string `json:"subject_id"`
	ForestID    uint64 `json:"forest_id,omitempty"`
	MilestoneID uint64 `json:"milestone_id,omitempty"`
	Detail      string `json:"detail,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// Append produces the event synchronously so delivery errors surface to the
// publisher's failure log.
func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(wireEvent{
		Action:      string(event.Action),
		Timestamp:   event.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Height:      uint64(event.Height),
		ActorID:     event.ActorID.String(),
		SubjectID:   event.SubjectID.String(),
		ForestID:    uint64(event.ForestID),
		MilestoneID: uint64(event.MilestoneID),
		Detail:      event.Detail,
		RequestID:   event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.SubjectID),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes and releases the Kafka client.
func (s *Sink) Close() {
	s.client.Close()
}
